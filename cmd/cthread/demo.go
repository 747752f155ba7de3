package main

import (
	"fmt"

	"github.com/Swind/go-cthread/core"
	"github.com/urfave/cli/v2"
)

func DemoCommand() *cli.Command {
	threads := &cli.IntFlag{
		Name:    "threads",
		Aliases: []string{"n"},
		Usage:   "Number of worker threads",
		Value:   3,
	}
	steps := &cli.IntFlag{
		Name:  "steps",
		Usage: "Slices (or items) per worker",
		Value: 3,
	}

	return &cli.Command{
		Name:  "demo",
		Usage: "Run a scheduling demonstration",
		Subcommands: []*cli.Command{
			{
				Name:   "join",
				Usage:  "Create workers one by one and join each",
				Flags:  []cli.Flag{threads},
				Action: demoAction(runJoinDemo),
			},
			{
				Name:   "yield",
				Usage:  "Interleave workers that yield after every step",
				Flags:  []cli.Flag{threads, steps},
				Action: demoAction(runYieldDemo),
			},
			{
				Name:   "semaphore",
				Usage:  "Pass items from a producer to a consumer through a bounded buffer",
				Flags:  []cli.Flag{steps},
				Action: demoAction(runSemaphoreDemo),
			},
			{
				Name:   "all",
				Usage:  "Run every demo on one runtime",
				Flags:  []cli.Flag{threads, steps},
				Action: demoAction(runAllDemos),
			},
		},
	}
}

type demoFunc func(s *session, c *cli.Context) error

// demoAction runs fn on a fresh session and prints the runtime summary.
func demoAction(fn demoFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		for _, f := range c.Command.Flags {
			name := f.Names()[0]
			if (name == "threads" || name == "steps") && c.Int(name) < 1 {
				return cli.Exit(fmt.Sprintf("--%s must be positive", name), 2)
			}
		}

		s, err := newSession(c)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := fn(s, c); err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		s.printStats()
		return nil
	}
}

func runAllDemos(s *session, c *cli.Context) error {
	for _, fn := range []demoFunc{runJoinDemo, runYieldDemo, runSemaphoreDemo} {
		if err := fn(s, c); err != nil {
			return err
		}
	}
	return nil
}

func runJoinDemo(s *session, c *cli.Context) error {
	rt := s.rt
	for i := range c.Int("threads") {
		id, err := rt.Create(func(arg any) any {
			n := arg.(int)
			return n * n
		}, i+1, i)
		if err != nil {
			return err
		}
		if err := rt.Join(id); err != nil {
			return err
		}
		rec, _ := rt.LastFinished()
		fmt.Fprintf(s.out, "join: thread %d returned %v\n", rec.ID, rec.Result)
	}
	return nil
}

// runYieldDemo lets every worker signal done when it finishes; main waits on
// that semaphore once per worker, so completion order does not matter.
func runYieldDemo(s *session, c *cli.Context) error {
	rt := s.rt
	var done core.Semaphore
	if err := rt.SemInit(&done, 0); err != nil {
		return err
	}

	workers := c.Int("threads")
	steps := c.Int("steps")
	for range workers {
		_, err := rt.Create(func(arg any) any {
			self := rt.Self()
			for step := range steps {
				fmt.Fprintf(s.out, "yield: thread %d step %d\n", self, step)
				if err := rt.Yield(); err != nil {
					return err
				}
			}
			return rt.SemSignal(&done)
		}, nil, 0)
		if err != nil {
			return err
		}
	}

	for range workers {
		if err := rt.SemWait(&done); err != nil {
			return err
		}
	}
	return nil
}

// runSemaphoreDemo is the classic bounded buffer: free counts empty slots,
// full counts queued items.
func runSemaphoreDemo(s *session, c *cli.Context) error {
	const capacity = 2
	rt := s.rt
	items := c.Int("steps")

	var free, full, done core.Semaphore
	for sem, n := range map[*core.Semaphore]int{&free: capacity, &full: 0, &done: 0} {
		if err := rt.SemInit(sem, n); err != nil {
			return err
		}
	}

	var buffer []int
	producer := func(arg any) any {
		for i := range items {
			if err := rt.SemWait(&free); err != nil {
				return err
			}
			buffer = append(buffer, i)
			fmt.Fprintf(s.out, "semaphore: produced %d (buffered %d)\n", i, len(buffer))
			if err := rt.SemSignal(&full); err != nil {
				return err
			}
		}
		return rt.SemSignal(&done)
	}
	consumer := func(arg any) any {
		for range items {
			if err := rt.SemWait(&full); err != nil {
				return err
			}
			item := buffer[0]
			buffer = buffer[1:]
			fmt.Fprintf(s.out, "semaphore: consumed %d\n", item)
			if err := rt.SemSignal(&free); err != nil {
				return err
			}
			if err := rt.Yield(); err != nil {
				return err
			}
		}
		return rt.SemSignal(&done)
	}

	if _, err := rt.Create(consumer, nil, 0); err != nil {
		return err
	}
	if _, err := rt.Create(producer, nil, 1); err != nil {
		return err
	}
	for range 2 {
		if err := rt.SemWait(&done); err != nil {
			return err
		}
	}
	return nil
}
