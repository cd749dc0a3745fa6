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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ensureTotal.
const (
	outcomeExisting  = "existing"
	outcomeCreated   = "created"
	outcomeJoined    = "joined"
	outcomeDuplicate = "duplicate"
	outcomeTimeout   = "timeout"
	outcomeFailed    = "failed"
	outcomeRejected  = "rejected"
	outcomeInvalid   = "invalid"
	outcomeAborted   = "aborted"
)

var (
	ensureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfcloud_ensure_total",
			Help: "Total number of ensure calls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	waitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rfcloud_wait_duration_seconds",
			Help:    "Time spent waiting for a resource to become ready",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)

	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfcloud_probes_total",
			Help: "Total number of resource probes by kind and observed state",
		},
		[]string{"kind", "state"},
	)

	jobSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfcloud_job_submissions_total",
			Help: "Total number of batch job submissions by outcome",
		},
		[]string{"outcome"},
	)
)
