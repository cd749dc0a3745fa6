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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/cluster/fake"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/probe"
)

func TestStartSession(t *testing.T) {
	client := fake.New().
		Script(manifest.KindStorageClaim, fake.Empty(), fake.Items("rfam-pvc-alice", "Bound")).
		Script(manifest.KindLoginWorkload, fake.Empty(), fake.Items("rfam-login-pod-alice-x1", "Running"))

	s, err := newTestOrchestrator(client).StartSession(context.Background(), "alice", 2, ModeSingle)
	require.NoError(t, err)

	assert.Equal(t, "rfam-pvc-alice", s.Storage.ID)
	assert.Equal(t, "rfam-login-pod-alice-x1", s.Login.ID)

	created := client.Created()
	require.Len(t, created, 2)
	assert.IsType(t, &corev1.PersistentVolumeClaim{}, created[0], "claim must be created first")
	assert.IsType(t, &appsv1.Deployment{}, created[1])
}

func TestStartSession_StorageFailureStopsLogin(t *testing.T) {
	client := fake.New().Script(manifest.KindStorageClaim, fake.Items("rfam-pvc-alice", "Lost"))

	_, err := newTestOrchestrator(client).StartSession(context.Background(), "alice", 2, ModeSingle)
	require.Error(t, err)
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeProvisioningFailed))
	assert.Equal(t, 0, client.Queries(manifest.KindLoginWorkload))
}

func TestStartSession_Duplicate(t *testing.T) {
	client := fake.New().
		Script(manifest.KindStorageClaim, fake.Items("rfam-pvc-bob", "Bound")).
		Script(manifest.KindLoginWorkload, fake.Items("rfam-login-pod-bob-1", "Running"))

	s, err := newTestOrchestrator(client).StartSession(context.Background(), "bob", 2, ModeSingle)
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeDuplicateSession))
	assert.Equal(t, "rfam-pvc-bob", s.Storage.ID)
	assert.Empty(t, client.Created())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		response fake.Response
		want     string
		code     rferrors.ErrorCode
	}{
		{"ready", fake.Items("rfam-login-pod-alice-1", "Running"), "rfam-login-pod-alice-1", ""},
		{"absent", fake.Empty(), "", rferrors.ErrCodeNotFound},
		{"not ready", fake.Items("rfam-login-pod-alice-1", "ContainerCreating"), "", rferrors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := fake.New().Script(manifest.KindLoginWorkload, tt.response)
			got, err := newTestOrchestrator(client).Resolve(context.Background(), "alice")
			if tt.code != "" {
				assert.True(t, rferrors.IsCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, client.Created(), "resolve must never create")
		})
	}

	_, err := newTestOrchestrator(fake.New()).Resolve(context.Background(), "")
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeValidation))
}

func TestStatus(t *testing.T) {
	client := fake.New().
		Script(manifest.KindStorageClaim, fake.Items("rfam-pvc-carol", "Bound")).
		Script(manifest.KindBatchJob, fake.Response{Items: []cluster.ResourceStatus{
			{ID: "rfsearch-job-carol-1", Phase: "Succeeded"},
			{ID: "rfsearch-job-carol-2", Phase: "Running"},
			{ID: "rfsearch-job-carol-3", Phase: "Failed"},
		}})

	st, err := newTestOrchestrator(client).Status(context.Background(), "carol")
	require.NoError(t, err)

	assert.Equal(t, "carol", st.User)
	assert.Equal(t, probe.StateReady, st.Storage.State)
	assert.Equal(t, probe.StateAbsent, st.Login.State)
	require.Len(t, st.Jobs, 3)
	assert.Equal(t, probe.StateFailed, st.Jobs[2].State)
	assert.Equal(t, manifest.UserJobsSelector("carol").String(), client.Selectors(manifest.KindBatchJob)[0].String())
}
