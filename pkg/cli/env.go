/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/config"
	"github.com/Rfam/rfcloud/pkg/identity"
	"github.com/Rfam/rfcloud/pkg/k8s/client"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/orchestrator"
	"github.com/Rfam/rfcloud/pkg/router"
)

// newClusterClient connects to the cluster named by cfg. Tests replace it
// with a client over a fake clientset.
var newClusterClient = func(cfg config.Config) (*cluster.KubeClient, error) {
	c, err := client.BuildKubeClient(cfg.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}
	return cluster.NewKubeClient(c.Clientset, cfg.Namespace,
		cluster.WithRestConfig(c.Config),
		cluster.WithCloser(c.Close)), nil
}

// env carries what a command needs to talk to the cluster.
type env struct {
	cfg      config.Config
	client   *cluster.KubeClient
	resolver identity.Resolver
	orch     *orchestrator.Orchestrator
}

// newEnv loads the configuration and connects to the cluster. The caller
// must Close the returned env.
func newEnv(ctx context.Context, cmd *cli.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	kc, err := newClusterClient(cfg)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.TemplaterOptions(), manifest.WithInvocationID(invocationID(ctx)))
	orch := orchestrator.New(kc,
		orchestrator.WithTemplater(manifest.NewTemplater(opts...)),
		orchestrator.WithPollInterval(cfg.PollInterval),
		orchestrator.WithDeadline(cfg.Deadline))

	slog.Debug("connected to cluster", "namespace", kc.Namespace(), "deadline", cfg.Deadline)

	return &env{
		cfg:      cfg,
		client:   kc,
		resolver: identity.Default(cmd.String("user")),
		orch:     orch,
	}, nil
}

// router returns a session router over the env. Interactive streams are
// the process terminal.
func (e *env) router() *router.Router {
	return router.New(e.orch, e.client, e.resolver,
		router.WithStorageSize(e.cfg.StorageSizeGi),
		router.WithJobMemory(e.cfg.JobMemory))
}

// user resolves the acting user.
func (e *env) user(ctx context.Context) (string, error) {
	return identity.Current(ctx, e.resolver)
}

// Close releases the cluster connection.
func (e *env) Close() {
	if err := e.client.Close(); err != nil {
		slog.Warn("failed to close cluster client", "error", err)
	}
}
