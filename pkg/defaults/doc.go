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

// Package defaults provides centralized configuration constants for rfcloud.
//
// Timeouts, sweeper throttling and resource sizing live here so that the
// config layer, the orchestrator and the tests agree on a single value.
//
// # Usage
//
//	import "github.com/Rfam/rfcloud/pkg/defaults"
//
//	orch := orchestrator.New(client,
//	    orchestrator.WithPollInterval(defaults.ProvisionPollInterval),
//	    orchestrator.WithDeadline(defaults.ProvisionDeadline),
//	)
//
// # Guidelines
//
//   - The provisioning deadline is mandatory: every wait for a claim or login
//     pod is bounded.
//   - The poll interval is fixed (no backoff) and must leave room for several
//     probes before the deadline.
package defaults
