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

package cluster

import (
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
)

// Phases reported for objects that have no native phase string.
const (
	PhaseContainerCreating = "ContainerCreating"
	PhaseSubmitted         = "Submitted"
	PhaseSucceeded         = "Succeeded"
	PhaseFailed            = "Failed"
	PhaseRunning           = "Running"
	PhasePending           = "Pending"
)

// waiting reasons that will not resolve without intervention
var stuckReasons = map[string]bool{
	"ErrImagePull":               true,
	"ImagePullBackOff":           true,
	"CrashLoopBackOff":           true,
	"CreateContainerConfigError": true,
	"InvalidImageName":           true,
}

// ClaimPhase returns the claim's phase. A claim with no phase has not been
// processed by the controller yet and reports Pending.
func ClaimPhase(pvc *corev1.PersistentVolumeClaim) string {
	if pvc.Status.Phase == "" {
		return PhasePending
	}
	return string(pvc.Status.Phase)
}

// PodPhase returns the phase of a login pod. A running pod whose containers
// are not all ready reports ContainerCreating. A pending pod stuck on a
// terminal waiting reason reports that reason.
func PodPhase(pod *corev1.Pod) string {
	switch pod.Status.Phase {
	case corev1.PodRunning:
		if !podReady(pod) {
			return PhaseContainerCreating
		}
		return PhaseRunning
	case corev1.PodPending, "":
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.State.Waiting != nil && stuckReasons[cs.State.Waiting.Reason] {
				return cs.State.Waiting.Reason
			}
		}
		return PhasePending
	default:
		return string(pod.Status.Phase)
	}
}

func podReady(pod *corev1.Pod) bool {
	if len(pod.Status.ContainerStatuses) == 0 {
		return false
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if !cs.Ready {
			return false
		}
	}
	return true
}

// JobPhase derives a phase from the Job's conditions and counters.
func JobPhase(job *batchv1.Job) string {
	for _, c := range job.Status.Conditions {
		if c.Status != corev1.ConditionTrue {
			continue
		}
		switch c.Type {
		case batchv1.JobComplete:
			return PhaseSucceeded
		case batchv1.JobFailed:
			return PhaseFailed
		}
	}
	if job.Status.Active > 0 {
		return PhaseRunning
	}
	return PhaseSubmitted
}

// JobCompleted reports whether every completion of the Job has succeeded.
func JobCompleted(job *batchv1.Job) bool {
	completions := int32(1)
	if job.Spec.Completions != nil {
		completions = *job.Spec.Completions
	}
	return job.Status.Succeeded >= completions
}
