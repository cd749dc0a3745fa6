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

package manifest

import (
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/Rfam/rfcloud/pkg/defaults"
)

// Kind identifies one of the per-user resources rfcloud manages.
type Kind string

const (
	// KindStorageClaim is the per-user PersistentVolumeClaim.
	KindStorageClaim Kind = "StorageClaim"
	// KindLoginWorkload is the per-user interactive Deployment and its Pod.
	KindLoginWorkload Kind = "LoginWorkload"
	// KindBatchJob is a one-shot Job bound to the user's claim.
	KindBatchJob Kind = "BatchJob"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindStorageClaim, KindLoginWorkload, KindBatchJob:
		return true
	default:
		return false
	}
}

// SupportedKinds returns the kinds in provisioning order.
func SupportedKinds() []Kind {
	return []Kind{KindStorageClaim, KindLoginWorkload, KindBatchJob}
}

// Fixed mount layout. These are not user controlled so that no caller can
// inject paths into a workload's mount table.
const (
	// WorkdirPath is where the user's claim is mounted in every workload.
	WorkdirPath = "/workdir"
	// ReferencePath is where the shared reference data is mounted read-only.
	ReferencePath = "/Rfam/rfamseq"
	// ReferenceClaimName is the shared read-only reference data claim.
	ReferenceClaimName = "nfs-pvc"

	referenceVolumeName = "nfs-pv"
	loginPort           = 9876
	jobCPULimit         = "8000m"
)

const (
	// DefaultImage is the curation pipeline image used by login pods and jobs.
	DefaultImage = "ikalvari/rfam-cloud:kubes"
	// DefaultStorageClass is the storage class requested for user claims.
	DefaultStorageClass = "gluster-heketi"
)

// StorageClaimParams describes a user's persistent volume claim.
type StorageClaimParams struct {
	User   string
	SizeGi int
}

// LoginParams describes a user's interactive login workload.
type LoginParams struct {
	User string
}

// JobParams describes one batch job submission.
//
// Command is handed to the container as the argument of `sh -c` without
// inspection. Running arbitrary user code is the purpose of a batch job, so
// the caller is trusted to supply it.
type JobParams struct {
	User      string
	Index     string
	Command   string
	CPUMillis int64
	Memory    string
}

// Templater renders typed manifests. It performs no I/O.
type Templater struct {
	image        string
	storageClass string
	maxMemory    resource.Quantity
	invocationID string
}

// Option configures a Templater.
type Option func(*Templater)

// WithImage sets the container image for login pods and jobs.
func WithImage(image string) Option {
	return func(t *Templater) {
		if image != "" {
			t.image = image
		}
	}
}

// WithStorageClass sets the storage class requested by user claims.
func WithStorageClass(class string) Option {
	return func(t *Templater) {
		if class != "" {
			t.storageClass = class
		}
	}
}

// WithMaxMemory sets the cluster-wide ceiling for a job's memory request.
func WithMaxMemory(q resource.Quantity) Option {
	return func(t *Templater) {
		if !q.IsZero() {
			t.maxMemory = q
		}
	}
}

// WithInvocationID annotates every rendered object with the ID of the
// command invocation that produced it.
func WithInvocationID(id string) Option {
	return func(t *Templater) {
		t.invocationID = id
	}
}

// NewTemplater returns a Templater with the default image, storage class and
// memory ceiling, modified by opts.
func NewTemplater(opts ...Option) *Templater {
	t := &Templater{
		image:        DefaultImage,
		storageClass: DefaultStorageClass,
		maxMemory:    resource.MustParse(defaults.MaxJobMemory),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MaxMemory returns the configured memory ceiling.
func (t *Templater) MaxMemory() resource.Quantity {
	return t.maxMemory
}
