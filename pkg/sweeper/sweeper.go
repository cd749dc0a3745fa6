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

// Package sweeper reclaims batch jobs that have run to completion.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	batchv1 "k8s.io/api/batch/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/defaults"
	"github.com/Rfam/rfcloud/pkg/manifest"
)

var jobsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rfcloud_sweeper_jobs_deleted_total",
		Help: "Total number of completed jobs deleted by the sweeper",
	},
	[]string{"result"},
)

// JobStore lists and deletes batch jobs.
type JobStore interface {
	ListJobs(ctx context.Context, selector labels.Selector) ([]batchv1.Job, error)
	DeleteJob(ctx context.Context, name string) error
}

// type check
var _ JobStore = &cluster.KubeClient{}

// Report summarizes one sweep.
type Report struct {
	// Candidates are the completed jobs found, ordered by name.
	Candidates []string
	// Deleted are the jobs removed. Empty on a dry run.
	Deleted []string
	// Failed maps job names to their deletion error.
	Failed map[string]error
}

// Sweeper deletes completed batch jobs.
type Sweeper struct {
	store         JobStore
	limiter       *rate.Limiter
	concurrency   int
	deleteTimeout time.Duration
	dryRun        bool
	afterSweep    func(Report, error)
}

// Option is a functional option for configuring Sweeper instances.
type Option func(*Sweeper)

// WithRateLimit throttles deletions to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(s *Sweeper) {
		s.limiter = rate.NewLimiter(r, burst)
	}
}

// WithConcurrency bounds the number of in-flight deletions.
func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithDeleteTimeout bounds each delete request.
func WithDeleteTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.deleteTimeout = d
		}
	}
}

// WithDryRun reports candidates without deleting them.
func WithDryRun(dryRun bool) Option {
	return func(s *Sweeper) {
		s.dryRun = dryRun
	}
}

// WithAfterSweep registers fn to be called after every pass of Run.
func WithAfterSweep(fn func(Report, error)) Option {
	return func(s *Sweeper) {
		s.afterSweep = fn
	}
}

// New returns a Sweeper operating on store.
func New(store JobStore, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:         store,
		limiter:       rate.NewLimiter(rate.Limit(defaults.SweepDeleteRate), defaults.SweepDeleteBurst),
		concurrency:   defaults.SweepConcurrency,
		deleteTimeout: defaults.K8sCleanupTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep deletes every completed batch job of user, or of all users when
// user is empty. Individual deletion failures are collected in the report
// and joined into the returned error.
func (s *Sweeper) Sweep(ctx context.Context, user string) (Report, error) {
	jobs, err := s.store.ListJobs(ctx, manifest.UserJobsSelector(user))
	if err != nil {
		return Report{}, fmt.Errorf("failed to list jobs: %w", err)
	}

	report := Report{Failed: map[string]error{}}
	for i := range jobs {
		if cluster.JobCompleted(&jobs[i]) {
			report.Candidates = append(report.Candidates, jobs[i].Name)
		}
	}
	sort.Strings(report.Candidates)

	slog.Info("sweep found completed jobs", "user", user, "total", len(jobs), "completed", len(report.Candidates), "dry_run", s.dryRun)
	if s.dryRun || len(report.Candidates) == 0 {
		return report, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, name := range report.Candidates {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}

			dctx, cancel := context.WithTimeout(gctx, s.deleteTimeout)
			defer cancel()

			err := s.store.DeleteJob(dctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				jobsDeletedTotal.WithLabelValues("error").Inc()
				slog.Warn("failed to delete job", "job", name, "error", err)
				report.Failed[name] = err
				return nil
			}
			jobsDeletedTotal.WithLabelValues("deleted").Inc()
			slog.Debug("deleted job", "job", name)
			report.Deleted = append(report.Deleted, name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("sweep interrupted: %w", err)
	}
	sort.Strings(report.Deleted)

	if len(report.Failed) > 0 {
		errs := make([]error, 0, len(report.Failed))
		for _, name := range report.Candidates {
			if err, ok := report.Failed[name]; ok {
				errs = append(errs, fmt.Errorf("job %s: %w", name, err))
			}
		}
		return report, errors.Join(errs...)
	}

	return report, nil
}

// Run sweeps every interval until ctx is done. Sweep errors are logged and
// do not stop the loop.
func (s *Sweeper) Run(ctx context.Context, user string, interval time.Duration) {
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		report, err := s.Sweep(ctx, user)
		if err != nil {
			slog.Error("sweep failed", "error", err)
		}
		if s.afterSweep != nil {
			s.afterSweep(report, err)
		}
	}, interval)
}
