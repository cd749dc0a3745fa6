/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Rfam/rfcloud/pkg/router"
)

func startCmd() *cli.Command {
	return &cli.Command{
		Name:                  "start",
		EnableShellCompletion: true,
		Usage:                 "Start a login session and attach to it",
		Description: `Ensure the user's workspace claim and login session exist and are ready,
then open an interactive shell in the session.

The workspace is created on first use and reused afterwards. Only one login
session per user is allowed unless --multi is given, in which case a running
session is joined instead of rejected.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "multi",
				Usage: "Join an already running session instead of failing",
			},
			&cli.BoolFlag{
				Name:  "no-attach",
				Usage: "Only provision the session, do not open a shell",
			},
			&cli.IntFlag{
				Name:  "storage-size",
				Usage: "Workspace size in GiB, used when the workspace is created",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if cmd.IsSet("storage-size") {
				e.cfg.StorageSizeGi = cmd.Int("storage-size")
			}

			session, err := e.router().Start(ctx, router.StartOptions{
				Multi:  cmd.Bool("multi"),
				Attach: !cmd.Bool("no-attach"),
			})
			if err != nil {
				return err
			}

			if cmd.Bool("no-attach") {
				fmt.Fprintf(cmd.Root().Writer, "session %s ready (workspace %s)\n", session.Login.ID, session.Storage.ID)
			}
			return nil
		},
	}
}

func copyToCmd() *cli.Command {
	return &cli.Command{
		Name:      "copy-to",
		Usage:     "Copy a local file or directory into the session workspace",
		ArgsUsage: "<path>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return usageError(cmd, "expected exactly one path")
			}

			e, err := newEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			return e.router().CopyTo(ctx, cmd.Args().First())
		},
	}
}

func copyFromCmd() *cli.Command {
	return &cli.Command{
		Name:      "copy-from",
		Usage:     "Copy a file or directory out of the session workspace",
		ArgsUsage: "<item>",
		Description: `Copy an item from the session workspace into the local directory.
Relative items are taken relative to the workspace.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dest",
				Aliases: []string{"d"},
				Usage:   "Local directory to copy into",
				Value:   ".",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return usageError(cmd, "expected exactly one item")
			}

			e, err := newEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			return e.router().CopyFrom(ctx, cmd.Args().First(), cmd.String("dest"))
		},
	}
}
