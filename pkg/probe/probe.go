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

// Package probe classifies the lifecycle state of cluster resources.
package probe

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/labels"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/manifest"
)

// State is the lifecycle state of a resource as seen by the prober.
type State string

const (
	StateAbsent  State = "Absent"
	StatePending State = "Pending"
	StateReady   State = "Ready"
	StateFailed  State = "Failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// phases that will become usable without intervention
var pendingPhases = map[string]bool{
	"Pending":           true,
	"Provisioning":      true,
	"ContainerCreating": true,
	"Submitted":         true,
}

// phases in which the resource can be used
var readyPhases = map[string]bool{
	"Bound":     true,
	"Running":   true,
	"Ready":     true,
	"Succeeded": true,
}

// Classify maps a reported phase to a State. Anything unrecognized,
// including an empty phase, is Failed.
func Classify(phase string) State {
	switch {
	case readyPhases[phase]:
		return StateReady
	case pendingPhases[phase]:
		return StatePending
	default:
		return StateFailed
	}
}

// Observation is the result of a single probe.
type Observation struct {
	State State `json:"state" yaml:"state"`
	// ID is the identifier of the observed object. Empty when Absent.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Phase is the raw phase that was classified.
	Phase string `json:"phase,omitempty" yaml:"phase,omitempty"`
}

// Prober classifies the state of cluster resources.
type Prober struct {
	client cluster.Client
}

// New returns a Prober that queries through client.
func New(client cluster.Client) *Prober {
	return &Prober{client: client}
}

// Probe performs one query for kind with selector and classifies the result.
//
// When several objects match, a Ready one is preferred over a Pending one,
// which is preferred over a Failed one. Among objects in the same state the
// first by name wins. A query failure is returned unchanged; an empty
// result is Absent, never an error.
func (p *Prober) Probe(ctx context.Context, kind manifest.Kind, selector labels.Selector) (Observation, error) {
	if !kind.IsValid() {
		return Observation{}, fmt.Errorf("unsupported kind %q", kind)
	}

	items, err := p.client.Query(ctx, kind, selector)
	if err != nil {
		return Observation{}, err
	}

	return Select(items), nil
}

// Select picks the observation that best represents items.
func Select(items []cluster.ResourceStatus) Observation {
	best := Observation{State: StateAbsent}
	for _, item := range items {
		obs := Observation{State: Classify(item.Phase), ID: item.ID, Phase: item.Phase}
		if rank(obs.State) > rank(best.State) ||
			(rank(obs.State) == rank(best.State) && obs.ID < best.ID) {
			best = obs
		}
	}
	return best
}

func rank(s State) int {
	switch s {
	case StateReady:
		return 3
	case StatePending:
		return 2
	case StateFailed:
		return 1
	default:
		return 0
	}
}
