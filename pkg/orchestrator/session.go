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
	"fmt"

	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/probe"
)

// Session is the pair of resources backing a login session.
type Session struct {
	Storage Result
	Login   Result
}

// StartSession ensures the user's storage claim and then their login
// workload. The claim is ready before the login workload is submitted.
func (o *Orchestrator) StartSession(ctx context.Context, user string, sizeGi int, mode Mode) (Session, error) {
	storage, err := o.Ensure(ctx, Request{
		Kind:   manifest.KindStorageClaim,
		Params: manifest.StorageClaimParams{User: user, SizeGi: sizeGi},
	})
	if err != nil {
		return Session{}, fmt.Errorf("failed to ensure storage: %w", err)
	}

	login, err := o.Ensure(ctx, Request{
		Kind:   manifest.KindLoginWorkload,
		Params: manifest.LoginParams{User: user},
		Mode:   mode,
	})
	if err != nil {
		return Session{Storage: storage}, fmt.Errorf("failed to ensure login session: %w", err)
	}

	return Session{Storage: storage, Login: login}, nil
}

// Resolve returns the pod name of the user's ready login session. It never
// creates anything; a missing or unready session is NOT_FOUND.
func (o *Orchestrator) Resolve(ctx context.Context, user string) (string, error) {
	if err := manifest.ValidateUser(user); err != nil {
		return "", err
	}

	obs, err := o.probe(ctx, manifest.KindLoginWorkload, manifest.LoginSelector(user))
	if err != nil {
		return "", fmt.Errorf("failed to probe login session: %w", err)
	}
	if obs.State != probe.StateReady {
		return "", rferrors.NewWithContext(rferrors.ErrCodeNotFound,
			fmt.Sprintf("no running login session for %s, run 'rfcloud start' first", user),
			map[string]any{"user": user, "state": obs.State.String(), "phase": obs.Phase})
	}
	return obs.ID, nil
}

// Status is a snapshot of everything a user owns.
type Status struct {
	User    string              `json:"user" yaml:"user"`
	Storage probe.Observation   `json:"storage" yaml:"storage"`
	Login   probe.Observation   `json:"login" yaml:"login"`
	Jobs    []probe.Observation `json:"jobs,omitempty" yaml:"jobs,omitempty"`
}

// Status observes the user's claim, login session and batch jobs.
func (o *Orchestrator) Status(ctx context.Context, user string) (Status, error) {
	if err := manifest.ValidateUser(user); err != nil {
		return Status{}, err
	}

	st := Status{User: user}
	var err error

	if st.Storage, err = o.probe(ctx, manifest.KindStorageClaim, manifest.StorageSelector(user)); err != nil {
		return Status{}, fmt.Errorf("failed to probe storage: %w", err)
	}
	if st.Login, err = o.probe(ctx, manifest.KindLoginWorkload, manifest.LoginSelector(user)); err != nil {
		return Status{}, fmt.Errorf("failed to probe login session: %w", err)
	}

	jobs, err := o.client.Query(ctx, manifest.KindBatchJob, manifest.UserJobsSelector(user))
	if err != nil {
		return Status{}, fmt.Errorf("failed to list jobs: %w", err)
	}
	for _, j := range jobs {
		st.Jobs = append(st.Jobs, probe.Observation{State: probe.Classify(j.Phase), ID: j.ID, Phase: j.Phase})
	}

	return st, nil
}
