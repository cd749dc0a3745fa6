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
	"time"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/defaults"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/probe"
)

// Mode selects how an existing ready login workload is treated.
type Mode int

const (
	// ModeSingle rejects a second login session for the same user.
	ModeSingle Mode = iota
	// ModeMulti reuses an existing login session.
	ModeMulti
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	if m == ModeMulti {
		return "multi"
	}
	return "single"
}

// Request asks for a resource to be present and usable.
type Request struct {
	Kind manifest.Kind
	// Params is the parameter record matching Kind: StorageClaimParams,
	// LoginParams or JobParams.
	Params any
	// Mode only applies to login workloads.
	Mode Mode
}

// Result identifies a ready resource.
type Result struct {
	Kind manifest.Kind
	// Name is the name of the object rfcloud manages.
	Name string
	// ID is the cluster-assigned identity. For login workloads it is the
	// Pod name; for claims and jobs it is the object name.
	ID string
	// Created is true when this call submitted the object.
	Created bool
}

// Orchestrator drives resources to a usable state.
type Orchestrator struct {
	client       cluster.Client
	prober       *probe.Prober
	templater    *manifest.Templater
	pollInterval time.Duration
	deadline     time.Duration
}

// Option is a functional option for configuring Orchestrator instances.
type Option func(*Orchestrator)

// WithPollInterval sets the wait loop interval. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithDeadline bounds how long Ensure waits for a resource. Non-positive
// values are ignored.
func WithDeadline(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.deadline = d
		}
	}
}

// WithTemplater sets the templater used to render manifests.
func WithTemplater(t *manifest.Templater) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.templater = t
		}
	}
}

// New creates an Orchestrator over client.
func New(client cluster.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		prober:       probe.New(client),
		templater:    manifest.NewTemplater(),
		pollInterval: defaults.ProvisionPollInterval,
		deadline:     defaults.ProvisionDeadline,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PollInterval returns the wait loop interval.
func (o *Orchestrator) PollInterval() time.Duration {
	return o.pollInterval
}

// Deadline returns the wait loop bound.
func (o *Orchestrator) Deadline() time.Duration {
	return o.deadline
}
