/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Rfam/rfcloud/pkg/config"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/identity"
	"github.com/Rfam/rfcloud/pkg/logging"
	"github.com/Rfam/rfcloud/pkg/serializer"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Usage:   fmt.Sprintf("config file (default is $HOME/%s)", config.FileName),
		Sources: cli.EnvVars("RFCLOUD_CONFIG"),
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Value:   "info",
		Sources: cli.EnvVars(logging.EnvLogLevel),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig file (default: KUBECONFIG, ~/.kube/config, then in-cluster)",
	}
}

func namespaceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "namespace",
		Aliases: []string{"n"},
		Usage:   "Kubernetes namespace sessions and jobs are created in",
		Sources: cli.EnvVars("RFCLOUD_NAMESPACE"),
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "user",
		Usage:   "Act as this user instead of deriving it from the host",
		Sources: cli.EnvVars(identity.EnvUser),
	}
}

func imageFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "image",
		Usage:   "Container image for login sessions and jobs",
		Sources: cli.EnvVars("RFCLOUD_IMAGE"),
	}
}

func deadlineFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "timeout",
		Usage: "How long to wait for a resource to become ready",
	}
}

func metricsFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "metrics-file",
		Usage:   "Write Prometheus metrics to this file on exit",
		Sources: cli.EnvVars("RFCLOUD_METRICS_FILE"),
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("output format (supported values: %s)", strings.Join(serializer.SupportedFormats(), ", ")),
		Value:   string(serializer.FormatTable),
	}
}

// loadConfig resolves the effective configuration: defaults, then the
// config file, then flags and environment.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("namespace") {
		cfg.Namespace = cmd.String("namespace")
	}
	if cmd.IsSet("kubeconfig") {
		cfg.Kubeconfig = cmd.String("kubeconfig")
	}
	if cmd.IsSet("image") {
		cfg.Image = cmd.String("image")
	}
	if cmd.IsSet("timeout") {
		cfg.Deadline = cmd.Duration("timeout")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newSerializer returns the writer selected by the format and output flags.
func newSerializer(cmd *cli.Command) (*serializer.Writer, error) {
	format := serializer.Format(cmd.String("format"))
	if format.IsUnknown() {
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
	if path := cmd.String("output"); path != "" {
		return serializer.NewFileWriterOrStdout(format, path), nil
	}
	return serializer.NewWriter(format, cmd.Root().Writer), nil
}

// usageError reports bad command line arguments as a validation error.
func usageError(cmd *cli.Command, msg string) error {
	return rferrors.NewWithContext(rferrors.ErrCodeValidation,
		fmt.Sprintf("%s: %s (usage: %s %s)", cmd.Name, msg, cmd.FullName(), cmd.ArgsUsage),
		map[string]any{"command": cmd.Name})
}
