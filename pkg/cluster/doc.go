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

// Package cluster is the boundary between rfcloud and the Kubernetes API.
//
// The orchestrator only needs three calls, captured by Client:
//
//	Create(ctx, obj)             submit a rendered object
//	Query(ctx, kind, selector)   list matching objects with their phase
//	Close()                      release connections
//
// KubeClient implements Client over a client-go clientset scoped to one
// namespace and adds the primitives used around the core:
//
//   - Exec: run a command in a pod over SPDY, with raw terminal handling
//   - CopyTo / CopyFrom: tar streamed through Exec, like kubectl cp
//   - CheckPermissions: SelfSubjectAccessReview preflight
//   - ListJobs / DeleteJob / StreamJobLogs: batch job housekeeping
//
// # Phases
//
// Query reports a phase string per object. Claims report their native
// phase, with an unset phase reported as Pending. Login workloads are
// observed through their Pods; a running pod that is not yet ready reports
// ContainerCreating, and a pending pod stuck pulling its image or crash
// looping reports the waiting reason. Jobs report Submitted, Running,
// Succeeded or Failed derived from their status.
//
// # Conflicts
//
// Create wraps an AlreadyExists API error in ErrAlreadyExists so callers can
// tell a lost creation race from a rejected request:
//
//	if errors.Is(err, cluster.ErrAlreadyExists) {
//	    // another invocation created it first
//	}
package cluster
