/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Rfam/rfcloud/pkg/defaults"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/router"
	"github.com/Rfam/rfcloud/pkg/server"
	"github.com/Rfam/rfcloud/pkg/sweeper"
)

func submitCmd() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Submit a batch job sharing the session workspace",
		ArgsUsage: "<command> <cpus> <index>",
		Description: `Submit a batch job that runs <command> with the user's workspace mounted
at /workdir. <cpus> is a number of whole CPUs and <index> tells the user's
jobs apart; it must be unique among the user's jobs.

The command runs as given inside the job container.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "memory",
				Usage: "Memory request for the job (e.g. 4Gi)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 3 {
				return usageError(cmd, "expected <command> <cpus> <index>")
			}
			args := cmd.Args()

			cpus, err := strconv.ParseInt(args.Get(1), 10, 64)
			if err != nil {
				return usageError(cmd, fmt.Sprintf("cpus must be a whole number, got %q", args.Get(1)))
			}

			e, err := newEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.router().SubmitJob(ctx, router.JobRequest{
				Command: args.Get(0),
				CPUs:    cpus,
				Index:   args.Get(2),
				Memory:  cmd.String("memory"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "job %s submitted\n", res.Name)
			return nil
		},
	}
}

func logsCmd() *cli.Command {
	return &cli.Command{
		Name:      "logs",
		Usage:     "Print the output of a batch job",
		ArgsUsage: "<index>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"f"},
				Usage:   "Stream the output until the job finishes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return usageError(cmd, "expected exactly one job index")
			}

			e, err := newEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.user(ctx)
			if err != nil {
				return err
			}

			job := manifest.JobName(user, cmd.Args().First())
			return e.client.StreamJobLogs(ctx, job, cmd.Bool("follow"), cmd.Root().Writer)
		},
	}
}

func sweepCmd() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Delete batch jobs that have completed",
		Description: `Delete every batch job whose pods have all succeeded, for one user or for
all users. Deletions are throttled to spare the control plane.

With --interval the sweep repeats until interrupted. Adding --listen-port
serves /health, /ready and /metrics while it runs.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "List the jobs that would be deleted",
			},
			&cli.BoolFlag{
				Name:  "all-users",
				Usage: "Sweep the jobs of every user",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Repeat the sweep at this interval",
			},
			&cli.IntFlag{
				Name:  "listen-port",
				Usage: "Serve health and metrics on this port while sweeping at an interval (0 disables)",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "Maximum deletions per second",
				Value: defaults.SweepDeleteRate,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Maximum deletions in flight",
				Value: defaults.SweepConcurrency,
			},
			formatFlag(),
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			var user string
			if !cmd.Bool("all-users") {
				if user, err = e.user(ctx); err != nil {
					return err
				}
			}

			opts := []sweeper.Option{
				sweeper.WithDryRun(cmd.Bool("dry-run")),
				sweeper.WithConcurrency(cmd.Int("concurrency")),
				sweeper.WithRateLimit(rate.Limit(cmd.Float64("rate")), defaults.SweepDeleteBurst),
			}

			if interval := cmd.Duration("interval"); interval > 0 {
				port := cmd.Int("listen-port")
				if port <= 0 {
					sweeper.New(e.client, opts...).Run(ctx, user, interval)
					return nil
				}
				return sweepAndServe(ctx, e, user, interval, port, opts)
			}

			s := sweeper.New(e.client, opts...)

			report, sweepErr := s.Sweep(ctx, user)
			if sweepErr != nil && len(report.Candidates) == 0 {
				return sweepErr
			}

			ser, err := newSerializer(cmd)
			if err != nil {
				return err
			}
			defer ser.Close()

			if err := ser.Serialize(ctx, newSweepSummary(report)); err != nil {
				return err
			}
			return sweepErr
		},
	}
}

// sweepAndServe runs the periodic sweep next to the ops server. The server
// reports ready once the first pass has finished.
func sweepAndServe(ctx context.Context, e *env, user string, interval time.Duration, port int, opts []sweeper.Option) error {
	srv := server.New(server.WithAddress("", port))
	opts = append(opts, sweeper.WithAfterSweep(func(sweeper.Report, error) {
		srv.SetReady(true)
	}))
	s := sweeper.New(e.client, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		s.Run(gctx, user, interval)
		return nil
	})
	return g.Wait()
}

// sweepSummary is the printable form of a sweep report.
type sweepSummary struct {
	Candidates []string          `json:"candidates" yaml:"candidates"`
	Deleted    []string          `json:"deleted" yaml:"deleted"`
	Failed     map[string]string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func newSweepSummary(r sweeper.Report) sweepSummary {
	s := sweepSummary{Candidates: r.Candidates, Deleted: r.Deleted}
	if len(r.Failed) > 0 {
		s.Failed = make(map[string]string, len(r.Failed))
		for name, err := range r.Failed {
			s.Failed[name] = err.Error()
		}
	}
	return s
}

func (s sweepSummary) Header() []string {
	return []string{"JOB", "RESULT"}
}

func (s sweepSummary) Rows() [][]string {
	deleted := make(map[string]bool, len(s.Deleted))
	for _, name := range s.Deleted {
		deleted[name] = true
	}

	rows := make([][]string, 0, len(s.Candidates))
	for _, name := range s.Candidates {
		result := "completed"
		if deleted[name] {
			result = "deleted"
		} else if msg, ok := s.Failed[name]; ok {
			result = "error: " + msg
		}
		rows = append(rows, []string{name, result})
	}
	return rows
}
