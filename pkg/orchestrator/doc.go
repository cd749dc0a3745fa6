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

// Package orchestrator drives per-user cluster resources from absent to
// usable.
//
// Every resource moves through Absent, Pending and Ready, with Failed
// reachable from any state. Ensure walks that machine once per call:
//
//	probe ─┬─ Ready   ──▶ return identity (or DUPLICATE_SESSION for a
//	       │                single-session login)
//	       ├─ Failed  ──▶ PROVISIONING_FAILED
//	       ├─ Absent  ──▶ render, create ─┐
//	       └─ Pending ────────────────────┴─▶ wait loop
//
// The wait loop probes at a fixed interval until the resource is Ready or
// Failed, and gives up with PROVISIONING_TIMEOUT once the deadline passes.
// A create that loses a race with another invocation joins the wait loop.
//
// Usage:
//
//	o := orchestrator.New(client,
//	    orchestrator.WithPollInterval(2*time.Second),
//	    orchestrator.WithDeadline(5*time.Minute),
//	)
//	session, err := o.StartSession(ctx, "alice", 2, orchestrator.ModeSingle)
//
// SubmitJob is fire-and-forget: it validates, renders and creates a batch
// job and returns without waiting for it to run. The job command is passed
// to the container shell unmodified; running arbitrary commands is what a
// batch job is for, so callers are responsible for what they submit.
//
// Resolve and Status only read the cluster.
package orchestrator
