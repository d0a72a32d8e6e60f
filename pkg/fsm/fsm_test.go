package fsm

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState string

type testEvent string

// Test states
const (
	stateA testState = "a"
	stateB testState = "b"
	stateC testState = "c"
)

// Test events
const (
	evGo   testEvent = "go"
	evBack testEvent = "back"
	evIdle testEvent = "idle"
)

type testContext struct {
	counter int
}

func newTestMachine(t *testing.T) *Machine[testState, testEvent, testContext] {
	t.Helper()

	m := New[testState, testEvent](testContext{}, WithLogger(slogt.New(t)))
	m.RegisterState(stateA)
	m.RegisterState(stateB)
	m.RegisterState(stateC)
	return m
}

func TestBasicTransition(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t)
	require.NoError(t, m.AddTransition(stateA, evGo, nil, nil, stateB))
	require.NoError(t, m.AddTransition(stateB, evBack, nil, nil, stateA))
	require.NoError(t, m.Start(stateA))

	assert.Equal(t, stateA, m.CurrentState())
	assert.True(t, m.ProcessEvent(evGo))
	assert.Equal(t, stateB, m.CurrentState())
	assert.True(t, m.ProcessEvent(evBack))
	assert.Equal(t, stateA, m.CurrentState())
}

func TestUnmatchedEventIsNoop(t *testing.T) {
	t.Parallel()

	var calls []string
	m := New[testState, testEvent](testContext{}, WithLogger(slogt.New(t)))
	m.RegisterState(stateA,
		WithOnEnter(func(*testContext) { calls = append(calls, "enter a") }),
		WithOnExit(func(*testContext) { calls = append(calls, "exit a") }),
	)
	m.RegisterState(stateB,
		WithOnEnter(func(*testContext) { calls = append(calls, "enter b") }),
	)
	require.NoError(t, m.AddTransition(stateA, evGo,
		func(testEvent, testContext) Readiness {
			calls = append(calls, "guard")
			return Ready
		},
		func(testEvent, *testContext) { calls = append(calls, "action") },
		stateB))
	require.NoError(t, m.Start(stateA))

	assert.False(t, m.ProcessEvent(evBack))
	assert.False(t, m.ProcessEvent(evIdle))
	assert.Equal(t, stateA, m.CurrentState())
	assert.Empty(t, calls)
}

func TestStartDoesNotEnter(t *testing.T) {
	t.Parallel()

	entered := 0
	m := New[testState, testEvent](testContext{})
	m.RegisterState(stateA, WithOnEnter(func(*testContext) { entered++ }))

	assert.False(t, m.Started())
	require.NoError(t, m.Start(stateA))
	assert.True(t, m.Started())
	assert.Zero(t, entered)
}

func TestEventBeforeStartIsIgnored(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t)
	require.NoError(t, m.AddTransition(stateA, evGo, nil, nil, stateB))

	assert.False(t, m.ProcessEvent(evGo))
	assert.False(t, m.Started())
}

func TestExitActionEnterOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	var changes [][2]testState

	m := New[testState, testEvent](testContext{}, WithLogger(slogt.New(t)))
	m.RegisterState(stateA, WithOnExit(func(*testContext) { calls = append(calls, "exit a") }))
	m.RegisterState(stateB, WithOnEnter(func(*testContext) { calls = append(calls, "enter b") }))
	m.OnStateChange(func(from, to testState) { changes = append(changes, [2]testState{from, to}) })

	fired := false
	require.NoError(t, m.AddTransition(stateA, evGo,
		func(testEvent, testContext) Readiness {
			if fired {
				return Advance
			}
			fired = true
			return Ready
		},
		func(testEvent, *testContext) { calls = append(calls, "action") },
		stateB))
	require.NoError(t, m.Start(stateA))

	assert.True(t, m.ProcessEvent(evGo))
	assert.Equal(t, []string{"exit a", "action", "enter b"}, calls)
	assert.Equal(t, [][2]testState{{stateA, stateB}}, changes)

	// stateB has no entry for evGo, so nothing else runs.
	assert.False(t, m.ProcessEvent(evGo))
	assert.Equal(t, []string{"exit a", "action", "enter b"}, calls)
}

func TestGuardSideEffectsPersist(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t)
	ticks := 0
	require.NoError(t, m.AddTransition(stateA, evGo,
		func(testEvent, testContext) Readiness {
			if ticks >= 3 {
				return Ready
			}
			ticks++
			return Advance
		},
		nil, stateB))
	require.NoError(t, m.Start(stateA))

	for i := 1; i <= 3; i++ {
		assert.False(t, m.ProcessEvent(evGo))
		assert.Equal(t, stateA, m.CurrentState())
		assert.Equal(t, i, ticks)
	}

	assert.True(t, m.ProcessEvent(evGo))
	assert.Equal(t, stateB, m.CurrentState())
	assert.Equal(t, 3, ticks)
}

func TestGuardCannotMutateContext(t *testing.T) {
	t.Parallel()

	m := New[testState, testEvent](testContext{counter: 7}, WithLogger(slogt.New(t)))
	m.RegisterState(stateA)
	m.RegisterState(stateB)

	var seen int
	require.NoError(t, m.AddTransition(stateA, evGo,
		func(_ testEvent, c testContext) Readiness {
			seen = c.counter
			c.counter = 100
			return Ready
		},
		func(_ testEvent, c *testContext) { c.counter++ },
		stateB))
	require.NoError(t, m.Start(stateA))

	require.True(t, m.ProcessEvent(evGo))
	assert.Equal(t, 7, seen)
	assert.Equal(t, 8, m.Context().counter)
}

func TestActionMutatesContext(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t)
	require.NoError(t, m.AddTransition(stateA, evGo, nil,
		func(_ testEvent, c *testContext) { c.counter = 42 },
		stateB))
	require.NoError(t, m.Start(stateA))

	m.ProcessEvent(evGo)
	assert.Equal(t, 42, m.Context().counter)
}

func TestSelfTransitionRunsHooks(t *testing.T) {
	t.Parallel()

	var calls []string
	m := New[testState, testEvent](testContext{})
	m.RegisterState(stateA,
		WithOnEnter(func(*testContext) { calls = append(calls, "enter") }),
		WithOnExit(func(*testContext) { calls = append(calls, "exit") }),
	)
	require.NoError(t, m.AddTransition(stateA, evIdle, nil, nil, stateA))
	require.NoError(t, m.Start(stateA))

	assert.True(t, m.ProcessEvent(evIdle))
	assert.Equal(t, []string{"exit", "enter"}, calls)
}

func TestAddTransitionErrors(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t)
	require.NoError(t, m.AddTransition(stateA, evGo, nil, nil, stateB))

	err := m.AddTransition(stateA, evGo, nil, nil, stateC)
	assert.ErrorIs(t, err, ErrDuplicateTransition)

	err = m.AddTransition("missing", evGo, nil, nil, stateB)
	assert.ErrorIs(t, err, ErrUnknownState)

	err = m.AddTransition(stateB, evGo, nil, nil, "missing")
	assert.ErrorIs(t, err, ErrUnknownState)

	assert.ErrorIs(t, m.Start("missing"), ErrUnknownState)
}

func TestRestartReplacesState(t *testing.T) {
	t.Parallel()

	m := newTestMachine(t)
	require.NoError(t, m.AddTransition(stateA, evGo, nil, nil, stateB))
	require.NoError(t, m.Start(stateA))
	m.ProcessEvent(evGo)
	require.Equal(t, stateB, m.CurrentState())

	require.NoError(t, m.Start(stateA))
	assert.Equal(t, stateA, m.CurrentState())
}

func TestReadinessString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "advance", Advance.String())
}
