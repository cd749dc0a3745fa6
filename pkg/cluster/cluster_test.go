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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/Rfam/rfcloud/pkg/manifest"
)

const testNamespace = "rfam"

func TestCreate(t *testing.T) {
	clientset := fake.NewClientset()
	k := NewKubeClient(clientset, testNamespace)
	tmpl := manifest.NewTemplater()
	ctx := context.Background()

	pvc, err := tmpl.StorageClaim(manifest.StorageClaimParams{User: "alice", SizeGi: 2})
	require.NoError(t, err)

	res, err := k.Create(ctx, pvc)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, "rfam-pvc-alice", res.ID)

	_, err = clientset.CoreV1().PersistentVolumeClaims(testNamespace).Get(ctx, "rfam-pvc-alice", metav1.GetOptions{})
	require.NoError(t, err)

	// same name again
	_, err = k.Create(ctx, pvc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.True(t, apierrors.IsAlreadyExists(err), "api error should stay in the chain")

	dep, err := tmpl.LoginWorkload(manifest.LoginParams{User: "alice"})
	require.NoError(t, err)
	res, err = k.Create(ctx, dep)
	require.NoError(t, err)
	assert.Equal(t, "rfam-login-pod-alice", res.ID)

	job, err := tmpl.BatchJob(manifest.JobParams{User: "alice", Index: "1", Command: "true", CPUMillis: 1000, Memory: "1Gi"})
	require.NoError(t, err)
	res, err = k.Create(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, "rfsearch-job-alice-1", res.ID)

	_, err = k.Create(ctx, &corev1.ConfigMap{})
	assert.Error(t, err)
}

func TestCreate_Rejected(t *testing.T) {
	clientset := fake.NewClientset()
	clientset.PrependReactor("create", "jobs", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewForbidden(schema.GroupResource{Group: "batch", Resource: "jobs"}, "x", errors.New("quota exceeded"))
	})
	k := NewKubeClient(clientset, testNamespace)

	job, err := manifest.NewTemplater().BatchJob(manifest.JobParams{User: "bob", Index: "1", Command: "true", CPUMillis: 1000, Memory: "1Gi"})
	require.NoError(t, err)

	res, err := k.Create(context.Background(), job)
	require.Error(t, err)
	assert.False(t, res.Accepted)
	assert.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestQuery(t *testing.T) {
	now := metav1.Now()
	clientset := fake.NewClientset(
		&corev1.PersistentVolumeClaim{
			ObjectMeta: metav1.ObjectMeta{Name: "rfam-pvc-alice", Namespace: testNamespace, Labels: map[string]string{
				manifest.LabelUser: "alice", manifest.LabelTier: manifest.TierStorage,
			}},
			Status: corev1.PersistentVolumeClaimStatus{Phase: corev1.ClaimBound},
		},
		&corev1.PersistentVolumeClaim{
			ObjectMeta: metav1.ObjectMeta{Name: "rfam-pvc-bob", Namespace: testNamespace, Labels: map[string]string{
				manifest.LabelUser: "bob", manifest.LabelTier: manifest.TierStorage,
			}},
		},
		loginPod("rfam-login-pod-alice-b", "alice", corev1.PodRunning, true),
		loginPod("rfam-login-pod-alice-a", "alice", corev1.PodRunning, false),
		func() *corev1.Pod {
			p := loginPod("rfam-login-pod-alice-old", "alice", corev1.PodRunning, true)
			p.DeletionTimestamp = &now
			p.Finalizers = []string{"rfcloud.io/test"}
			return p
		}(),
		&batchv1.Job{
			ObjectMeta: metav1.ObjectMeta{Name: "rfsearch-job-alice-1", Namespace: testNamespace, Labels: map[string]string{
				manifest.LabelUser: "alice", manifest.LabelTier: manifest.TierBackend,
				manifest.LabelApp: manifest.JobApp, manifest.LabelJobName: "rfsearch-job-alice-1",
			}},
			Status: batchv1.JobStatus{Active: 1},
		},
	)
	k := NewKubeClient(clientset, testNamespace)
	ctx := context.Background()

	got, err := k.Query(ctx, manifest.KindStorageClaim, manifest.StorageSelector("alice"))
	require.NoError(t, err)
	assert.Equal(t, []ResourceStatus{{ID: "rfam-pvc-alice", Phase: "Bound"}}, got)

	got, err = k.Query(ctx, manifest.KindStorageClaim, manifest.StorageSelector("bob"))
	require.NoError(t, err)
	assert.Equal(t, []ResourceStatus{{ID: "rfam-pvc-bob", Phase: PhasePending}}, got)

	got, err = k.Query(ctx, manifest.KindLoginWorkload, manifest.LoginSelector("alice"))
	require.NoError(t, err)
	assert.Equal(t, []ResourceStatus{
		{ID: "rfam-login-pod-alice-a", Phase: PhaseContainerCreating},
		{ID: "rfam-login-pod-alice-b", Phase: PhaseRunning},
	}, got)

	got, err = k.Query(ctx, manifest.KindBatchJob, manifest.JobSelector("alice", "1"))
	require.NoError(t, err)
	assert.Equal(t, []ResourceStatus{{ID: "rfsearch-job-alice-1", Phase: PhaseRunning}}, got)

	got, err = k.Query(ctx, manifest.KindLoginWorkload, manifest.LoginSelector("carol"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = k.Query(ctx, manifest.Kind("Secret"), manifest.StorageSelector("alice"))
	assert.Error(t, err)
}

func TestQuery_TransportError(t *testing.T) {
	clientset := fake.NewClientset()
	clientset.PrependReactor("list", "persistentvolumeclaims", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewServiceUnavailable("down")
	})
	k := NewKubeClient(clientset, testNamespace)

	_, err := k.Query(context.Background(), manifest.KindStorageClaim, manifest.StorageSelector("alice"))
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	assert.NoError(t, NewKubeClient(fake.NewClientset(), testNamespace).Close())

	called := 0
	k := NewKubeClient(fake.NewClientset(), testNamespace, WithCloser(func() error {
		called++
		return nil
	}))
	assert.NoError(t, k.Close())
	assert.Equal(t, 1, called)
}

func TestListAndDeleteJobs(t *testing.T) {
	job := func(name, user string) *batchv1.Job {
		return &batchv1.Job{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: testNamespace, Labels: map[string]string{
			manifest.LabelUser: user, manifest.LabelTier: manifest.TierBackend, manifest.LabelApp: manifest.JobApp,
		}}}
	}
	clientset := fake.NewClientset(
		job("rfsearch-job-bob-2", "bob"),
		job("rfsearch-job-alice-1", "alice"),
		job("rfsearch-job-bob-1", "bob"),
	)
	k := NewKubeClient(clientset, testNamespace)
	ctx := context.Background()

	all, err := k.ListJobs(ctx, manifest.UserJobsSelector(""))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "rfsearch-job-alice-1", all[0].Name)

	bobs, err := k.ListJobs(ctx, manifest.UserJobsSelector("bob"))
	require.NoError(t, err)
	assert.Len(t, bobs, 2)

	require.NoError(t, k.DeleteJob(ctx, "rfsearch-job-bob-1"))
	// already gone
	require.NoError(t, k.DeleteJob(ctx, "rfsearch-job-bob-1"))

	bobs, err = k.ListJobs(ctx, manifest.UserJobsSelector("bob"))
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}

func loginPod(name, user string, phase corev1.PodPhase, ready bool) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: testNamespace, Labels: map[string]string{
			manifest.LabelApp:  manifest.LoginApp(user),
			manifest.LabelUser: user,
			manifest.LabelTier: manifest.TierFrontend,
		}},
		Status: corev1.PodStatus{
			Phase:             phase,
			ContainerStatuses: []corev1.ContainerStatus{{Name: "rfam", Ready: ready}},
		},
	}
}
