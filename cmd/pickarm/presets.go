package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/pickarm/pkg/pick"
)

type PresetsCommand struct {
	ManeuverFile string `long:"maneuver-file" description:"YAML file with additional maneuvers"`
}

func (c *PresetsCommand) Execute(args []string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	all, err := ManeuverOptions{ManeuverFile: c.ManeuverFile}.maneuvers(cfg)
	if err != nil {
		return err
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(all))
	for _, name := range pick.Names(all) {
		m := all[name]
		path := "line"
		if m.LiftControl != nil {
			path = "bezier"
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d/%d/%d", m.NeutralSteps, m.LiftSteps, m.ReturnSteps),
			path,
			fmt.Sprintf("%.3f", m.LiftEnd.Position.Sub(m.LiftStart.Position).Norm()),
			fmt.Sprintf("%d", len(m.WristPins)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Maneuver", "Steps (neutral/lift/return)", "Path", "Lift (m)", "Pins").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Println(t.Render())

	if cfg.Maneuver != "" {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Configured maneuver: %s", cfg.Maneuver)))
	}
	return nil
}
