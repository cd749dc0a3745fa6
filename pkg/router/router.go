// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package router maps the rfcloud commands onto the orchestrator. Each
// operation resolves the current user exactly once.
package router

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/defaults"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/identity"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/orchestrator"
)

// Shell is the command started when attaching to a login session.
const Shell = "bash"

// Transfer moves data in and out of a pod.
type Transfer interface {
	Exec(ctx context.Context, opts cluster.ExecOptions) error
	CopyTo(ctx context.Context, pod, localPath, remoteDir string) error
	CopyFrom(ctx context.Context, pod, remotePath, localDir string) error
}

// Router maps user-facing operations onto the orchestrator.
type Router struct {
	orch      *orchestrator.Orchestrator
	transfer  Transfer
	resolver  identity.Resolver
	storageGi int
	jobMemory string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option is a functional option for configuring Router instances.
type Option func(*Router)

// WithStorageSize sets the claim size used when a session is started.
func WithStorageSize(gi int) Option {
	return func(r *Router) {
		r.storageGi = gi
	}
}

// WithJobMemory sets the memory request used when a job does not name one.
func WithJobMemory(memory string) Option {
	return func(r *Router) {
		r.jobMemory = memory
	}
}

// WithStreams sets the terminal streams used when attaching to a session.
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Router) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// New returns a Router.
func New(orch *orchestrator.Orchestrator, transfer Transfer, resolver identity.Resolver, opts ...Option) *Router {
	r := &Router{
		orch:      orch,
		transfer:  transfer,
		resolver:  resolver,
		storageGi: defaults.StorageSizeGi,
		jobMemory: defaults.JobMemory,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StartOptions controls session start.
type StartOptions struct {
	// Multi reuses a running session instead of rejecting it.
	Multi bool
	// Attach opens an interactive shell once the session is ready.
	Attach bool
}

// Start ensures the user's storage and login session and optionally
// attaches a shell to it.
func (r *Router) Start(ctx context.Context, opts StartOptions) (orchestrator.Session, error) {
	user, err := identity.Current(ctx, r.resolver)
	if err != nil {
		return orchestrator.Session{}, err
	}

	mode := orchestrator.ModeSingle
	if opts.Multi {
		mode = orchestrator.ModeMulti
	}

	session, err := r.orch.StartSession(ctx, user, r.storageGi, mode)
	if err != nil {
		return session, err
	}
	slog.Info("session ready", "user", user, "pod", session.Login.ID, "created", session.Login.Created)

	if !opts.Attach {
		return session, nil
	}

	err = r.transfer.Exec(ctx, cluster.ExecOptions{
		Pod:     session.Login.ID,
		Command: []string{Shell},
		Stdin:   r.stdin,
		Stdout:  r.stdout,
		Stderr:  r.stderr,
		TTY:     true,
	})
	return session, err
}

// CopyTo copies a local file or directory into the session workdir. The
// session must already be running.
func (r *Router) CopyTo(ctx context.Context, localPath string) error {
	user, pod, err := r.resolve(ctx)
	if err != nil {
		return err
	}
	slog.Debug("copying to session", "user", user, "pod", pod, "path", localPath)
	return r.transfer.CopyTo(ctx, pod, localPath, manifest.WorkdirPath)
}

// CopyFrom copies an item out of the session workdir into localDir. Paths
// outside the workdir are taken relative to it.
func (r *Router) CopyFrom(ctx context.Context, item, localDir string) error {
	remote, err := WorkdirPath(item)
	if err != nil {
		return err
	}
	user, pod, err := r.resolve(ctx)
	if err != nil {
		return err
	}
	slog.Debug("copying from session", "user", user, "pod", pod, "path", remote)
	return r.transfer.CopyFrom(ctx, pod, remote, localDir)
}

// WorkdirPath returns item as a path inside the workdir. Absolute paths
// already under the workdir are kept, any other path is taken relative to
// it. Items that climb out of the workdir are rejected.
func WorkdirPath(item string) (string, error) {
	c := path.Clean(item)
	if inWorkdir(c) {
		return c, nil
	}
	p := path.Join(manifest.WorkdirPath, strings.TrimPrefix(c, "/"))
	if !inWorkdir(p) {
		return "", rferrors.NewWithContext(rferrors.ErrCodeValidation,
			fmt.Sprintf("invalid item: %q is outside %s", item, manifest.WorkdirPath),
			map[string]any{"field": "item"})
	}
	return p, nil
}

func inWorkdir(p string) bool {
	return p == manifest.WorkdirPath || strings.HasPrefix(p, manifest.WorkdirPath+"/")
}

// JobRequest holds the user-facing job parameters.
type JobRequest struct {
	Command string
	// CPUs is the number of whole CPUs requested.
	CPUs  int64
	Index string
	// Memory is optional; the router default applies when empty.
	Memory string
}

// SubmitJob submits a batch job for the current user.
func (r *Router) SubmitJob(ctx context.Context, req JobRequest) (orchestrator.Result, error) {
	user, err := identity.Current(ctx, r.resolver)
	if err != nil {
		return orchestrator.Result{}, err
	}

	// bounded before the conversion to millicores so it cannot overflow
	if maxCPUs := int64(defaults.MaxCPUMillis / 1000); req.CPUs < 1 || req.CPUs > maxCPUs {
		return orchestrator.Result{}, rferrors.NewWithContext(rferrors.ErrCodeValidation,
			fmt.Sprintf("invalid cpus: must be between 1 and %d, got %d", maxCPUs, req.CPUs),
			map[string]any{"field": "cpus"})
	}

	memory := req.Memory
	if memory == "" {
		memory = r.jobMemory
	}

	return r.orch.SubmitJob(ctx, manifest.JobParams{
		User:      user,
		Index:     req.Index,
		Command:   req.Command,
		CPUMillis: req.CPUs * 1000,
		Memory:    memory,
	})
}

// Status reports what the current user owns.
func (r *Router) Status(ctx context.Context) (orchestrator.Status, error) {
	user, err := identity.Current(ctx, r.resolver)
	if err != nil {
		return orchestrator.Status{}, err
	}
	return r.orch.Status(ctx, user)
}

func (r *Router) resolve(ctx context.Context) (string, string, error) {
	user, err := identity.Current(ctx, r.resolver)
	if err != nil {
		return "", "", err
	}
	pod, err := r.orch.Resolve(ctx, user)
	if err != nil {
		return "", "", fmt.Errorf("no session to copy with: %w", err)
	}
	return user, pod, nil
}
