/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/Rfam/rfcloud/pkg/cluster"
)

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify the cluster permissions rfcloud needs",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "sweep",
				Usage: "Also check the permissions needed by sweep",
			},
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

			checks, checkErr := e.client.CheckPermissions(ctx, cmd.Bool("sweep"))
			if len(checks) == 0 && checkErr != nil {
				return checkErr
			}
			if err := ser.Serialize(ctx, permissionTable(checks)); err != nil {
				return err
			}
			return checkErr
		},
	}
}

// permissionTable lays out permission checks, one row per check.
type permissionTable []cluster.PermissionCheck

func (t permissionTable) Header() []string {
	return []string{"RESOURCE", "VERB", "NAMESPACE", "ALLOWED", "REASON"}
}

func (t permissionTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		resource := c.Resource
		if c.Subresource != "" {
			resource += "/" + c.Subresource
		}
		rows = append(rows, []string{resource, c.Verb, c.Namespace, strconv.FormatBool(c.Allowed), c.Reason})
	}
	return rows
}
