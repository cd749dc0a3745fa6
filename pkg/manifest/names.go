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
	"fmt"

	"k8s.io/apimachinery/pkg/labels"
)

// Label keys and values shared by the templater, the prober and the sweeper.
const (
	LabelUser      = "user"
	LabelTier      = "tier"
	LabelApp       = "app"
	LabelJobName   = "jobname"
	LabelManagedBy = "app.kubernetes.io/managed-by"

	TierStorage  = "storage"
	TierFrontend = "frontend"
	TierBackend  = "backend"

	// JobApp is the app label carried by every batch job.
	JobApp = "family-builder"

	// ManagedBy is the value of the managed-by label.
	ManagedBy = "rfcloud"

	// AnnotationInvocation records which command invocation created an object.
	AnnotationInvocation = "rfcloud.io/invocation"

	// annotationStorageClass is the legacy storage class annotation still
	// honored by the heketi provisioner.
	annotationStorageClass = "volume.beta.kubernetes.io/storage-class"
)

// ClaimName returns the name of the user's storage claim.
func ClaimName(user string) string {
	return fmt.Sprintf("rfam-pvc-%s", user)
}

// LoginName returns the name of the user's login Deployment.
func LoginName(user string) string {
	return fmt.Sprintf("rfam-login-pod-%s", user)
}

// LoginApp returns the app label of the user's login pods.
func LoginApp(user string) string {
	return fmt.Sprintf("rfam-family-builder-%s", user)
}

// JobName returns the deterministic name of a user's batch job.
func JobName(user, index string) string {
	return fmt.Sprintf("rfsearch-job-%s-%s", user, index)
}

func loginVolumeName(user string) string {
	return fmt.Sprintf("rfam-login-pod-storage-%s", user)
}

func jobVolumeName(user string) string {
	return fmt.Sprintf("rfam-pod-storage-%s", user)
}

// StorageSelector selects the user's storage claim.
func StorageSelector(user string) labels.Selector {
	return labels.SelectorFromSet(labels.Set{
		LabelUser: user,
		LabelTier: TierStorage,
	})
}

// LoginSelector selects the user's login pods.
func LoginSelector(user string) labels.Selector {
	return labels.SelectorFromSet(labels.Set{
		LabelUser: user,
		LabelTier: TierFrontend,
	})
}

// JobSelector selects one named batch job of a user.
func JobSelector(user, index string) labels.Selector {
	return labels.SelectorFromSet(labels.Set{
		LabelApp:     JobApp,
		LabelTier:    TierBackend,
		LabelUser:    user,
		LabelJobName: JobName(user, index),
	})
}

// UserJobsSelector selects every batch job of a user. An empty user selects
// the batch jobs of all users.
func UserJobsSelector(user string) labels.Selector {
	set := labels.Set{
		LabelApp:  JobApp,
		LabelTier: TierBackend,
	}
	if user != "" {
		set[LabelUser] = user
	}
	return labels.SelectorFromSet(set)
}

// SelectorFor returns the selector that identifies a single resource of the
// given kind. For batch jobs index names the job; it is ignored otherwise.
func SelectorFor(kind Kind, user, index string) (labels.Selector, error) {
	switch kind {
	case KindStorageClaim:
		return StorageSelector(user), nil
	case KindLoginWorkload:
		return LoginSelector(user), nil
	case KindBatchJob:
		return JobSelector(user, index), nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
}
