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

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/Rfam/rfcloud/pkg/cluster"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/probe"
)

// Ensure makes sure the requested resource exists and is usable.
//
// The parameters are validated and rendered before the cluster is contacted.
// A ready resource is returned as is, except that a ready login workload in
// ModeSingle is a DUPLICATE_SESSION error. An absent resource is created and
// then waited on, as is one that is already pending. The wait ends with the
// resource ready, PROVISIONING_FAILED, or PROVISIONING_TIMEOUT once the
// configured deadline passes.
//
// Probe errors are treated differently before and after the first probe.
// If the first probe fails, nothing is known about the resource and nothing
// has been submitted, so the transport error is returned unclassified and
// Create is never called. Once the wait loop has started, probe errors are
// logged and retried until the deadline.
func (o *Orchestrator) Ensure(ctx context.Context, req Request) (Result, error) {
	kind := req.Kind

	obj, err := o.templater.Render(kind, req.Params)
	if err != nil {
		ensureTotal.WithLabelValues(kind.String(), outcomeInvalid).Inc()
		return Result{}, err
	}
	name, user, selector, err := target(kind, req.Params)
	if err != nil {
		ensureTotal.WithLabelValues(kind.String(), outcomeInvalid).Inc()
		return Result{}, err
	}

	log := slog.With("kind", kind.String(), "user", user, "name", name)

	obs, err := o.probe(ctx, kind, selector)
	if err != nil {
		ensureTotal.WithLabelValues(kind.String(), outcomeAborted).Inc()
		return Result{}, fmt.Errorf("failed to probe %s %s: %w", kind, name, err)
	}
	log.Debug("probed resource", "state", obs.State.String(), "id", obs.ID, "phase", obs.Phase)

	created := false
	switch obs.State {
	case probe.StateReady:
		if kind == manifest.KindLoginWorkload && req.Mode == ModeSingle {
			ensureTotal.WithLabelValues(kind.String(), outcomeDuplicate).Inc()
			return Result{}, rferrors.NewWithContext(rferrors.ErrCodeDuplicateSession,
				fmt.Sprintf("a login session for %s is already running in pod %s", user, obs.ID),
				map[string]any{"user": user, "pod": obs.ID})
		}
		ensureTotal.WithLabelValues(kind.String(), outcomeExisting).Inc()
		return Result{Kind: kind, Name: name, ID: obs.ID}, nil

	case probe.StateFailed:
		ensureTotal.WithLabelValues(kind.String(), outcomeFailed).Inc()
		return Result{}, failed(kind, name, obs)

	case probe.StateAbsent:
		res, err := o.client.Create(ctx, obj)
		switch {
		case errors.Is(err, cluster.ErrAlreadyExists):
			log.Info("resource created concurrently, waiting for it")
		case err != nil:
			ensureTotal.WithLabelValues(kind.String(), outcomeRejected).Inc()
			return Result{}, rferrors.WrapWithContext(rferrors.ErrCodeSubmission,
				fmt.Sprintf("cluster rejected %s %s", kind, name), err,
				map[string]any{"kind": kind.String(), "name": name})
		case !res.Accepted:
			ensureTotal.WithLabelValues(kind.String(), outcomeRejected).Inc()
			return Result{}, rferrors.NewWithContext(rferrors.ErrCodeSubmission,
				fmt.Sprintf("cluster did not accept %s %s", kind, name),
				map[string]any{"kind": kind.String(), "name": name})
		default:
			created = true
			log.Info("resource submitted", "id", res.ID)
		}

	case probe.StatePending:
		log.Info("resource is pending, waiting for it", "phase", obs.Phase)
	}

	ready, err := o.waitReady(ctx, kind, name, selector)
	if err != nil {
		return Result{}, err
	}

	outcome := outcomeJoined
	if created {
		outcome = outcomeCreated
	}
	ensureTotal.WithLabelValues(kind.String(), outcome).Inc()
	log.Info("resource ready", "id", ready.ID, "phase", ready.Phase)

	return Result{Kind: kind, Name: name, ID: ready.ID, Created: created}, nil
}

// waitReady polls until the resource is Ready or Failed, or the deadline
// passes. Probe errors inside the loop are logged and retried.
func (o *Orchestrator) waitReady(ctx context.Context, kind manifest.Kind, name string, selector labels.Selector) (probe.Observation, error) {
	start := time.Now()
	defer func() {
		waitDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	}()

	var last probe.Observation
	var failure error

	err := wait.PollUntilContextTimeout(ctx, o.pollInterval, o.deadline, true,
		func(ctx context.Context) (bool, error) {
			obs, err := o.probe(ctx, kind, selector)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("probe failed, retrying", "kind", kind.String(), "name", name, "error", err)
				}
				return false, nil
			}
			last = obs

			switch obs.State {
			case probe.StateReady:
				return true, nil
			case probe.StateFailed:
				failure = failed(kind, name, obs)
				return false, failure
			default:
				// Absent right after creation is cache lag.
				return false, nil
			}
		},
	)

	switch {
	case err == nil:
		return last, nil
	case failure != nil:
		ensureTotal.WithLabelValues(kind.String(), outcomeFailed).Inc()
		return probe.Observation{}, failure
	case ctx.Err() != nil:
		ensureTotal.WithLabelValues(kind.String(), outcomeAborted).Inc()
		return probe.Observation{}, fmt.Errorf("wait for %s %s aborted: %w", kind, name, ctx.Err())
	default:
		ensureTotal.WithLabelValues(kind.String(), outcomeTimeout).Inc()
		return probe.Observation{}, rferrors.WrapWithContext(rferrors.ErrCodeProvisioningTimeout,
			fmt.Sprintf("%s %s not ready after %s", kind, name, o.deadline), err,
			map[string]any{"kind": kind.String(), "name": name, "state": last.State.String(), "phase": last.Phase})
	}
}

func (o *Orchestrator) probe(ctx context.Context, kind manifest.Kind, selector labels.Selector) (probe.Observation, error) {
	obs, err := o.prober.Probe(ctx, kind, selector)
	if err != nil {
		probesTotal.WithLabelValues(kind.String(), "error").Inc()
		return obs, err
	}
	probesTotal.WithLabelValues(kind.String(), obs.State.String()).Inc()
	return obs, nil
}

func failed(kind manifest.Kind, name string, obs probe.Observation) error {
	return rferrors.NewWithContext(rferrors.ErrCodeProvisioningFailed,
		fmt.Sprintf("%s %s failed with phase %q", kind, name, obs.Phase),
		map[string]any{"kind": kind.String(), "name": name, "id": obs.ID, "phase": obs.Phase})
}

// target returns the managed object name, the owning user and the selector
// that identifies the resource described by params.
func target(kind manifest.Kind, params any) (string, string, labels.Selector, error) {
	var user, index string
	switch p := params.(type) {
	case manifest.StorageClaimParams:
		user = p.User
	case manifest.LoginParams:
		user = p.User
	case manifest.JobParams:
		user, index = p.User, p.Index
	default:
		return "", "", nil, rferrors.NewWithContext(rferrors.ErrCodeValidation,
			fmt.Sprintf("unsupported parameters %T", params), map[string]any{"field": "params"})
	}

	selector, err := manifest.SelectorFor(kind, user, index)
	if err != nil {
		return "", "", nil, rferrors.WrapWithContext(rferrors.ErrCodeValidation,
			"unsupported kind", err, map[string]any{"field": "kind"})
	}

	var name string
	switch kind {
	case manifest.KindStorageClaim:
		name = manifest.ClaimName(user)
	case manifest.KindLoginWorkload:
		name = manifest.LoginName(user)
	case manifest.KindBatchJob:
		name = manifest.JobName(user, index)
	}
	return name, user, selector, nil
}

// objectName returns the name of a rendered object.
func objectName(obj any) string {
	m, err := meta.Accessor(obj)
	if err != nil {
		return ""
	}
	return m.GetName()
}
