package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config  string `short:"c" long:"config" default:"pickarm.json" description:"Configuration file"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`

	Scan     ScanCommand     `command:"scan" description:"Find the arm on a serial port and save it to the configuration"`
	Run      RunCommand      `command:"run" description:"Drive the arm through a pick maneuver"`
	Simulate SimulateCommand `command:"simulate" alias:"sim" description:"Run a pick maneuver against a simulated arm"`
	Presets  PresetsCommand  `command:"presets" description:"List the available maneuvers"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "pickarm - pick maneuver control for six-joint feetech arms"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
