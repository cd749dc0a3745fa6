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

package defaults

import "time"

// Provisioning wait loop.
const (
	// ProvisionPollInterval is the fixed sleep between two state probes.
	ProvisionPollInterval = 2 * time.Second

	// ProvisionDeadline bounds how long a single ensure call waits for a
	// resource to become ready.
	ProvisionDeadline = 5 * time.Minute
)

// Kubernetes timeouts for K8s API operations.
const (
	// K8sRequestTimeout bounds a single API request issued outside a wait loop.
	K8sRequestTimeout = 30 * time.Second

	// K8sCleanupTimeout is the timeout for deletions issued by the sweeper.
	K8sCleanupTimeout = 30 * time.Second
)

// Sweeper throttling.
const (
	// SweepDeleteRate is the steady-state number of Job deletions per second.
	SweepDeleteRate = 5

	// SweepDeleteBurst is the number of deletions allowed back to back.
	SweepDeleteBurst = 10

	// SweepConcurrency bounds in-flight deletions.
	SweepConcurrency = 4
)

// Resource sizing.
const (
	// StorageSizeGi is the default per-user claim size.
	StorageSizeGi = 2

	// MaxCPUMillis is the per-job CPU request ceiling, matching the fixed limit.
	MaxCPUMillis = 8000

	// MaxJobMemory is the default cluster-wide memory request ceiling.
	MaxJobMemory = "64Gi"

	// JobMemory is the memory request used when none is given.
	JobMemory = "2Gi"
)

// Ops server used by long-running sweeps.
const (
	// ServerPort is the default port for /health, /ready and /metrics.
	ServerPort = 9090

	// ServerReadTimeout is the maximum duration for reading the entire request.
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout is the maximum duration before timing out writes.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum idle time for keep-alive connections.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout bounds graceful shutdown.
	ServerShutdownTimeout = 10 * time.Second
)
