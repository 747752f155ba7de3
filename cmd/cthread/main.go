// Command cthread runs demonstrations of cooperative threads and reports
// runtime statistics.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cthread",
		Usage: "Cooperative user-level threads: demos and diagnostics",
		Flags: runtimeFlags(),
		Commands: []*cli.Command{
			IdentifyCommand(),
			DemoCommand(),
		},
	}
}

func runtimeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Usage:   "Runtime name used in logs and metrics (generated when empty)",
			EnvVars: []string{"CTHREAD_NAME"},
		},
		&cli.IntFlag{
			Name:    "stack-size",
			Usage:   "Stack reservation per thread in bytes",
			Value:   defaultStackSize,
			EnvVars: []string{"CTHREAD_STACK_SIZE"},
		},
		&cli.Int64Flag{
			Name:    "max-stack-bytes",
			Usage:   "Cap on live stack reservations in bytes, 0 for unlimited",
			EnvVars: []string{"CTHREAD_MAX_STACK_BYTES"},
		},
		&cli.BoolFlag{
			Name:    "round-robin",
			Usage:   "Charge every slice the same cost so equal-priority threads take turns",
			EnvVars: []string{"CTHREAD_ROUND_ROBIN"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Minimum log level: debug, info, warn or error",
			Value:   "info",
			EnvVars: []string{"CTHREAD_LOG_LEVEL"},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Shorthand for --log-level debug",
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "Append logs to this file instead of stderr",
			EnvVars: []string{"CTHREAD_LOG_FILE"},
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "Serve Prometheus metrics on this address, e.g. :2112",
			EnvVars: []string{"CTHREAD_METRICS_ADDR"},
		},
	}
}
