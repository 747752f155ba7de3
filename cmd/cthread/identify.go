package main

import (
	"fmt"

	"github.com/Swind/go-cthread/core"
	"github.com/urfave/cli/v2"
)

func IdentifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "identify",
		Usage:  "Print what this library implements",
		Action: IdentifyAction,
	}
}

func IdentifyAction(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, core.Identify())
	return nil
}
