package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/pickarm/pkg/robot"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type ScanCommand struct {
	NoWiggle bool `long:"no-wiggle" description:"Do not move the base joint to identify an arm"`
}

func (c *ScanCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("pickarm scan"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	fmt.Println("Scanning for arms...")
	fmt.Println()

	arms := findArms()
	if len(arms) == 0 {
		fmt.Println("No arm found.")
		fmt.Println("Make sure the arm is connected and powered on.")
		os.Exit(1)
	}

	var chosen *armInfo
	for i := range arms {
		if chosen == nil && c.identifyArm(arms[i]) {
			chosen = &arms[i]
			continue
		}
		arms[i].bus.Close()
	}
	if chosen == nil {
		fmt.Println()
		fmt.Println("No arm selected.")
		os.Exit(1)
	}
	defer chosen.bus.Close()

	cfg.Arm.Port = chosen.port
	if !cfg.Arm.IsCalibrated() {
		cfg.Arm.Calibration = robot.DefaultCalibration()
	}

	fmt.Println()
	fmt.Println(renderServos(chosen, cfg.Arm.Calibration))
	fmt.Println()

	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println(successStyle.Render("Scan complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start a maneuver with: " + headerStyle.Render("pickarm run"))

	return nil
}

type armInfo struct {
	port   string
	servos []feetech.FoundServo
	bus    *feetech.Bus
}

func findArms() []armInfo {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var arms []armInfo

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

		bus, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			cancel()
			continue
		}

		servos, err := bus.Scan(ctx, 1, len(robot.AllJoints()))
		cancel()

		if err != nil {
			bus.Close()
			continue
		}

		if isSixJointArm(servos) {
			fmt.Printf("  Found arm on %s\n", port)
			arms = append(arms, armInfo{
				port:   port,
				servos: servos,
				bus:    bus,
			})
		} else {
			bus.Close()
		}
	}

	return arms
}

// isSixJointArm checks for exactly one servo on each of the IDs 1-6.
func isSixJointArm(servos []feetech.FoundServo) bool {
	n := len(robot.AllJoints())
	if len(servos) != n {
		return false
	}

	ids := make(map[int]bool)
	for _, s := range servos {
		ids[s.ID] = true
	}

	for i := 1; i <= n; i++ {
		if !ids[i] {
			return false
		}
	}

	return true
}

// identifyArm wiggles the base joint and asks whether to use the arm.
func (c *ScanCommand) identifyArm(arm armInfo) bool {
	if !c.NoWiggle {
		wiggle(arm)
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Use the arm on %s?", arm.port)).
				Description("The arm that just wiggled").
				Options(
					huh.NewOption("Use this arm", "use"),
					huh.NewOption("Skip this arm", "skip"),
				).
				Value(&choice),
		),
	)

	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	return choice == "use"
}

func wiggle(arm armInfo) {
	ctx := context.Background()

	// Servo ID 1 is the base joint
	var servo *feetech.Servo
	for _, s := range arm.servos {
		if s.ID == 1 {
			servo = feetech.NewServo(arm.bus, s.ID, s.Model)
			break
		}
	}
	if servo == nil {
		return
	}

	originalPos, err := servo.Position(ctx)
	if err != nil {
		fmt.Printf("  Error reading position: %v\n", err)
		return
	}

	if err := servo.Enable(ctx); err != nil {
		fmt.Printf("  Error enabling servo: %v\n", err)
		return
	}

	fmt.Printf("\n  Wiggling arm on %s...\n", arm.port)

	wiggleAmount := 30
	moveTimeMs := 500
	servo.SetPositionWithTime(ctx, originalPos+wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)
	servo.SetPositionWithTime(ctx, originalPos-wiggleAmount, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)

	servo.SetPositionWithTime(ctx, originalPos, moveTimeMs)
	time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)

	servo.Disable(ctx)
}

// renderServos shows every joint servo with its current position.
func renderServos(arm *armInfo, cal robot.Calibration) string {
	ctx := context.Background()

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableJointStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableErrorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	models := make(map[int]feetech.FoundServo, len(arm.servos))
	for _, s := range arm.servos {
		models[s.ID] = s
	}

	var failed []int
	rows := make([][]string, 0, len(robot.AllJoints()))
	for _, name := range robot.AllJoints() {
		jc := cal[name]
		found, ok := models[jc.ID]
		if !ok {
			failed = append(failed, len(rows))
			rows = append(rows, []string{string(name), fmt.Sprintf("%d", jc.ID), "-", "-", "missing"})
			continue
		}
		raw, err := feetech.NewServo(arm.bus, found.ID, found.Model).Position(ctx)
		if err != nil {
			failed = append(failed, len(rows))
			rows = append(rows, []string{string(name), fmt.Sprintf("%d", jc.ID), fmt.Sprintf("%v", found.Model), "-", err.Error()})
			continue
		}
		rows = append(rows, []string{
			string(name),
			fmt.Sprintf("%d", jc.ID),
			fmt.Sprintf("%v", found.Model),
			fmt.Sprintf("%d", raw),
			fmt.Sprintf("%+.3f", jc.Radians(raw)),
		})
	}

	isFailed := func(row int) bool {
		for _, r := range failed {
			if r == row {
				return true
			}
		}
		return false
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "ID", "Model", "Raw", "Angle (rad)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch {
			case col == 4 && isFailed(row):
				return tableErrorStyle
			case col == 0:
				return tableJointStyle
			default:
				return tableCellStyle
			}
		})

	return t.Render()
}
