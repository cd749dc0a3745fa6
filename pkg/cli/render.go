/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Rfam/rfcloud/pkg/defaults"
	"github.com/Rfam/rfcloud/pkg/identity"
	"github.com/Rfam/rfcloud/pkg/manifest"
)

func renderCmd() *cli.Command {
	kinds := make([]string, 0, len(manifest.SupportedKinds()))
	for _, k := range manifest.SupportedKinds() {
		kinds = append(kinds, k.String())
	}

	return &cli.Command{
		Name:      "render",
		Usage:     "Print the manifest that would be submitted, without contacting the cluster",
		ArgsUsage: "<kind>",
		Description: fmt.Sprintf(`Render the manifest for one resource kind as YAML.

Supported kinds: %s

Examples:
  rfcloud render StorageClaim --size 10
  rfcloud render BatchJob --command "rfsearch.pl" --cpus 4 --index 1`, strings.Join(kinds, ", ")),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "size",
				Usage: "Workspace size in GiB (StorageClaim)",
			},
			&cli.StringFlag{
				Name:  "command",
				Usage: "Job command (BatchJob)",
			},
			&cli.Int64Flag{
				Name:  "cpus",
				Usage: "Whole CPUs requested (BatchJob)",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "index",
				Usage: "Job index (BatchJob)",
			},
			&cli.StringFlag{
				Name:  "memory",
				Usage: "Memory request (BatchJob)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return usageError(cmd, fmt.Sprintf("expected one kind (%s)", strings.Join(kinds, ", ")))
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			user, err := identity.Current(ctx, identity.Default(cmd.String("user")))
			if err != nil {
				return err
			}

			kind := manifest.Kind(cmd.Args().First())
			var params any
			switch kind {
			case manifest.KindStorageClaim:
				size := cfg.StorageSizeGi
				if cmd.IsSet("size") {
					size = cmd.Int("size")
				}
				params = manifest.StorageClaimParams{User: user, SizeGi: size}
			case manifest.KindLoginWorkload:
				params = manifest.LoginParams{User: user}
			case manifest.KindBatchJob:
				cpus := cmd.Int64("cpus")
				if maxCPUs := int64(defaults.MaxCPUMillis / 1000); cpus < 1 || cpus > maxCPUs {
					return usageError(cmd, fmt.Sprintf("cpus must be between 1 and %d, got %d", maxCPUs, cpus))
				}
				memory := cmd.String("memory")
				if memory == "" {
					memory = cfg.JobMemory
				}
				params = manifest.JobParams{
					User:      user,
					Index:     cmd.String("index"),
					Command:   cmd.String("command"),
					CPUMillis: cpus * 1000,
					Memory:    memory,
				}
			}

			opts := append(cfg.TemplaterOptions(), manifest.WithInvocationID(invocationID(ctx)))
			obj, err := manifest.NewTemplater(opts...).Render(kind, params)
			if err != nil {
				return err
			}

			out, err := manifest.Encode(obj)
			if err != nil {
				return fmt.Errorf("failed to encode manifest: %w", err)
			}
			_, err = cmd.Root().Writer.Write(out)
			return err
		},
	}
}
