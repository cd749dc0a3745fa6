/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Rfam/rfcloud/pkg/orchestrator"
	"github.com/Rfam/rfcloud/pkg/probe"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the user's workspace, login session and jobs",
		Flags: []cli.Flag{
			formatFlag(),
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ser, err := newSerializer(cmd)
			if err != nil {
				return err
			}
			defer ser.Close()

			e, err := newEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			st, err := e.router().Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}

			return ser.Serialize(ctx, statusTable(st))
		},
	}
}

// statusTable lays out a status snapshot, one row per resource.
type statusTable orchestrator.Status

func (t statusTable) Header() []string {
	return []string{"RESOURCE", "NAME", "PHASE", "STATE"}
}

func (t statusTable) Rows() [][]string {
	title := cases.Title(language.English)
	row := func(resource string, obs probe.Observation) []string {
		id, phase := obs.ID, obs.Phase
		if id == "" {
			id = "-"
		}
		if phase == "" {
			phase = "-"
		}
		return []string{title.String(resource), id, phase, obs.State.String()}
	}

	rows := [][]string{
		row("storage", t.Storage),
		row("login", t.Login),
	}
	for _, j := range t.Jobs {
		rows = append(rows, row("job", j))
	}
	return rows
}
