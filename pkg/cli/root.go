/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/logging"
)

const (
	name           = "rfcloud"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Exit statuses by error code. Anything unclassified exits with 1.
const (
	exitGeneric            = 1
	exitValidation         = 2
	exitDuplicateSession   = 3
	exitProvisionTimeout   = 4
	exitProvisioningFailed = 5
	exitSubmission         = 6
)

type invocationKey struct{}

// invocationID returns the ID assigned to this run of the CLI.
func invocationID(ctx context.Context) string {
	if id, ok := ctx.Value(invocationKey{}).(string); ok {
		return id
	}
	return ""
}

// Execute runs the rfcloud command line and exits with a status derived
// from the error, if any.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	switch rferrors.CodeOf(err) {
	case rferrors.ErrCodeValidation:
		return exitValidation
	case rferrors.ErrCodeDuplicateSession:
		return exitDuplicateSession
	case rferrors.ErrCodeProvisioningTimeout:
		return exitProvisionTimeout
	case rferrors.ErrCodeProvisioningFailed:
		return exitProvisioningFailed
	case rferrors.ErrCodeSubmission:
		return exitSubmission
	default:
		return exitGeneric
	}
}

func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:                  name,
		EnableShellCompletion: true,
		Usage:                 "Per-user Rfam curation sessions on Kubernetes",
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Description: `rfcloud provisions a persistent workspace and an interactive login
session for the current user, moves data in and out of it and submits
batch search jobs that share the same workspace.

Typical workflow:
  rfcloud start
  rfcloud copy-to SEED
  rfcloud submit "rfsearch.pl -nodesc" 4 1
  rfcloud status
  rfcloud copy-from outlist`,
		Flags: []cli.Flag{
			configFlag(),
			logLevelFlag(),
			kubeconfigFlag(),
			namespaceFlag(),
			userFlag(),
			imageFlag(),
			deadlineFlag(),
			metricsFileFlag(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			id := uuid.NewString()
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.SetDefault(slog.Default().With("invocation", id))
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date)
			return context.WithValue(ctx, invocationKey{}, id), nil
		},
		After: func(_ context.Context, cmd *cli.Command) error {
			return writeMetrics(cmd.String("metrics-file"))
		},
		Commands: []*cli.Command{
			startCmd(),
			copyToCmd(),
			copyFromCmd(),
			submitCmd(),
			logsCmd(),
			statusCmd(),
			renderCmd(),
			sweepCmd(),
			checkCmd(),
			versionCmd(),
		},
	}
}

// writeMetrics dumps the process metrics in the text exposition format so a
// node exporter textfile collector can pick them up.
func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "%s %s\ncommit: %s\nbuilt:  %s\n", name, version, commit, date)
			return err
		},
	}
}
