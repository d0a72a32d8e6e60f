package main

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/pickarm/pkg/control"
	"github.com/gwillem/pickarm/pkg/robot"
	"github.com/gwillem/pickarm/pkg/vec"
)

const (
	headerHeight = 3 // title + status + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Joint colors - distinct colors for each joint
var jointColors = map[robot.JointName]string{
	robot.BaseYaw:       "196", // red
	robot.ShoulderPitch: "208", // orange
	robot.ElbowPitch:    "226", // yellow
	robot.ForearmRoll:   "46",  // green
	robot.WristPitch:    "51",  // cyan
	robot.WristRoll:     "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	phaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

type controlModel struct {
	ctrl       *control.Controller
	title      string
	chart      *streamlinechart.Model
	width      int      // terminal width
	height     int      // terminal height
	logs       []string // last N log messages
	quitting   bool
	state      control.State
	lastTarget vec.Vec6 // previous target to detect movement
	hasTarget  bool
}

func (m *controlModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// hasMovement checks if the target changed since the last state
func (m *controlModel) hasMovement(target vec.Vec6) bool {
	return !m.hasTarget || target != m.lastTarget
}

// Messages from the controller
type stateMsg control.State
type logMsg string

func waitForState(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *controlModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *controlModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialControlModel(ctrl *control.Controller, title string) controlModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-math.Pi-0.5, math.Pi+0.5),
	)

	for _, name := range robot.AllJoints() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return controlModel{
		ctrl:  ctrl,
		title: title,
		chart: &chart,
	}
}

func (m controlModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

// keyCommands maps keys to held operator commands.
var keyCommands = map[string]control.Command{
	"up":    control.CommandUp,
	"k":     control.CommandUp,
	"down":  control.CommandDown,
	"j":     control.CommandDown,
	" ":     control.CommandNone,
	"space": control.CommandNone,
	"r":     control.CommandReset,
	"d":     control.CommandDisable,
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		if cmd, ok := keyCommands[key]; ok {
			m.ctrl.SetCommand(cmd)
		}
		return m, nil

	case stateMsg:
		m.state = control.State(msg)
		target := m.state.Target
		// Freeze the chart while the target holds or is dropped
		if !target.HasNaN() && m.hasMovement(target) {
			for i, name := range robot.AllJoints() {
				m.chart.PushDataSet(string(name), target[i])
			}
			m.chart.DrawAll()
			m.lastTarget = target
			m.hasTarget = true
		}
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m controlModel) View() string {
	if m.quitting {
		return "Control stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n")
	sb.WriteString(renderStatus(m.state))
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20)).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("↑ up  ↓ down  space release  r reset  d disable  q quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderStatus(s control.State) string {
	parts := []string{
		phaseStyle.Render(s.Phase.String()),
		statusStyle.Render(fmt.Sprintf("command %s", s.Command)),
		statusStyle.Render(fmt.Sprintf("direction %s", s.Direction)),
		statusStyle.Render(fmt.Sprintf("neutral step %d  lift step %d", s.NeutralStep, s.LiftStep)),
	}
	if s.Rejections > 0 {
		parts = append(parts, alertStyle.Render(fmt.Sprintf("%d rejected", s.Rejections)))
	}
	if s.Stale {
		parts = append(parts, alertStyle.Render("STALE"))
	}
	if s.Target.HasNaN() && s.Tick > 0 {
		parts = append(parts, alertStyle.Render("no target"))
	}
	return strings.Join(parts, "  ")
}

func renderLegend() string {
	var items []string
	for _, name := range robot.AllJoints() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name])).Bold(true)
		item := colorStyle.Render("━━") + " " + string(name)
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}
