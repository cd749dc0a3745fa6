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

/*
Package manifest renders the per-user Kubernetes resources managed by rfcloud.

Three kinds are supported:

	StorageClaim   PersistentVolumeClaim rfam-pvc-<user>
	LoginWorkload  Deployment rfam-login-pod-<user> (one replica, stdin/tty)
	BatchJob       Job rfsearch-job-<user>-<index>

Rendering takes a typed parameter record and returns a typed object from
k8s.io/api. Parameters are validated first; a rejected record yields a
VALIDATION error from pkg/errors and no object at all.

	t := manifest.NewTemplater(manifest.WithStorageClass("gluster-heketi"))
	pvc, err := t.StorageClaim(manifest.StorageClaimParams{User: "alice", SizeGi: 2})

Mount paths and the reference data claim are package constants. Only the
batch command is passed through unchecked: it becomes the argument of
`sh -c` in the job container, and the caller is responsible for it.

Names and selectors derived from a user are exported (ClaimName, JobName,
LoginSelector, UserJobsSelector, ...) so the prober and the sweeper look
resources up the same way they were labelled.
*/
package manifest
