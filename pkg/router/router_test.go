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

package router

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/cluster/fake"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/identity"
	"github.com/Rfam/rfcloud/pkg/manifest"
	"github.com/Rfam/rfcloud/pkg/orchestrator"
)

type call struct {
	op     string
	pod    string
	path   string
	target string
}

type fakeTransfer struct {
	calls []call
	exec  []cluster.ExecOptions
}

func (f *fakeTransfer) Exec(_ context.Context, opts cluster.ExecOptions) error {
	f.exec = append(f.exec, opts)
	return nil
}

func (f *fakeTransfer) CopyTo(_ context.Context, pod, localPath, remoteDir string) error {
	f.calls = append(f.calls, call{"to", pod, localPath, remoteDir})
	return nil
}

func (f *fakeTransfer) CopyFrom(_ context.Context, pod, remotePath, localDir string) error {
	f.calls = append(f.calls, call{"from", pod, remotePath, localDir})
	return nil
}

// countingResolver records how often identity is resolved.
type countingResolver struct {
	user  string
	calls int
}

func (c *countingResolver) Resolve(context.Context) (string, error) {
	c.calls++
	return c.user, nil
}

func newTestRouter(client cluster.Client, transfer Transfer, resolver identity.Resolver, opts ...Option) *Router {
	orch := orchestrator.New(client,
		orchestrator.WithPollInterval(time.Millisecond),
		orchestrator.WithDeadline(100*time.Millisecond))
	return New(orch, transfer, resolver, opts...)
}

func TestStart(t *testing.T) {
	client := fake.New().
		Script(manifest.KindStorageClaim, fake.Empty(), fake.Items("rfam-pvc-alice", "Bound")).
		Script(manifest.KindLoginWorkload, fake.Empty(), fake.Items("rfam-login-pod-alice-1", "Running"))
	transfer := &fakeTransfer{}
	resolver := &countingResolver{user: "alice"}

	var out bytes.Buffer
	r := newTestRouter(client, transfer, resolver, WithStorageSize(5), WithStreams(strings.NewReader(""), &out, &out))

	session, err := r.Start(context.Background(), StartOptions{Attach: true})
	require.NoError(t, err)
	assert.Equal(t, "rfam-login-pod-alice-1", session.Login.ID)
	assert.Equal(t, 1, resolver.calls)

	require.Len(t, transfer.exec, 1)
	assert.Equal(t, "rfam-login-pod-alice-1", transfer.exec[0].Pod)
	assert.Equal(t, []string{Shell}, transfer.exec[0].Command)
	assert.True(t, transfer.exec[0].TTY)

	pvc := client.Created()[0].(*corev1.PersistentVolumeClaim)
	size := pvc.Spec.Resources.Requests[corev1.ResourceStorage]
	assert.Equal(t, "5Gi", size.String())
}

func TestStart_SingleVersusMulti(t *testing.T) {
	script := func() *fake.Client {
		return fake.New().
			Script(manifest.KindStorageClaim, fake.Items("rfam-pvc-bob", "Bound")).
			Script(manifest.KindLoginWorkload, fake.Items("rfam-login-pod-bob-1", "Running"))
	}

	_, err := newTestRouter(script(), &fakeTransfer{}, identity.Static("bob")).Start(context.Background(), StartOptions{})
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeDuplicateSession), "got %v", err)

	transfer := &fakeTransfer{}
	session, err := newTestRouter(script(), transfer, identity.Static("bob")).Start(context.Background(), StartOptions{Multi: true, Attach: true})
	require.NoError(t, err)
	assert.Equal(t, "rfam-login-pod-bob-1", session.Login.ID)
	require.Len(t, transfer.exec, 1)
}

func TestStart_InvalidIdentity(t *testing.T) {
	client := fake.New()
	_, err := newTestRouter(client, &fakeTransfer{}, identity.Static("Bad_User")).Start(context.Background(), StartOptions{})
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeValidation), "got %v", err)
	assert.Equal(t, 0, client.TotalQueries())
}

func TestCopyTo(t *testing.T) {
	client := fake.New().Script(manifest.KindLoginWorkload, fake.Items("rfam-login-pod-alice-1", "Running"))
	transfer := &fakeTransfer{}
	resolver := &countingResolver{user: "alice"}

	err := newTestRouter(client, transfer, resolver).CopyTo(context.Background(), "SEED")
	require.NoError(t, err)
	assert.Equal(t, []call{{"to", "rfam-login-pod-alice-1", "SEED", manifest.WorkdirPath}}, transfer.calls)
	assert.Equal(t, 1, resolver.calls)
	assert.Empty(t, client.Created())
}

func TestCopy_NoSession(t *testing.T) {
	client := fake.New()
	transfer := &fakeTransfer{}
	r := newTestRouter(client, transfer, identity.Static("alice"))

	err := r.CopyTo(context.Background(), "SEED")
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeNotFound), "got %v", err)

	err = r.CopyFrom(context.Background(), "SEED", ".")
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeNotFound), "got %v", err)

	assert.Empty(t, transfer.calls)
	assert.Empty(t, client.Created(), "copy must not start a session")
}

func TestCopyFrom(t *testing.T) {
	client := fake.New().Script(manifest.KindLoginWorkload, fake.Items("rfam-login-pod-alice-1", "Running"))
	transfer := &fakeTransfer{}

	err := newTestRouter(client, transfer, identity.Static("alice")).CopyFrom(context.Background(), "results/outlist", "/home/alice")
	require.NoError(t, err)
	assert.Equal(t, []call{{"from", "rfam-login-pod-alice-1", "/workdir/results/outlist", "/home/alice"}}, transfer.calls)
}

func TestWorkdirPath(t *testing.T) {
	tests := map[string]string{
		"SEED":             "/workdir/SEED",
		"dir/file":         "/workdir/dir/file",
		"/workdir/SEED":    "/workdir/SEED",
		"/workdir/a/../b":  "/workdir/b",
		"/workdir":         "/workdir",
		"/tmp/x":           "/workdir/tmp/x",
		"/workdirectory/x": "/workdir/workdirectory/x",
		"a/../b":           "/workdir/b",
		"/workdir/../tmp":  "/workdir/tmp",
	}
	for in, want := range tests {
		got, err := WorkdirPath(in)
		require.NoError(t, err, "WorkdirPath(%q)", in)
		assert.Equal(t, want, got, "WorkdirPath(%q)", in)
	}

	for _, in := range []string{"..", "../etc", "a/../../etc", "./../workdir2"} {
		_, err := WorkdirPath(in)
		assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeValidation), "WorkdirPath(%q): got %v", in, err)
	}
}

func TestCopyFrom_OutsideWorkdir(t *testing.T) {
	client := fake.New().Script(manifest.KindLoginWorkload, fake.Items("rfam-login-pod-alice-1", "Running"))
	transfer := &fakeTransfer{}

	err := newTestRouter(client, transfer, identity.Static("alice")).CopyFrom(context.Background(), "../etc/passwd", ".")
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeValidation), "got %v", err)
	assert.Empty(t, transfer.calls)
}

func TestSubmitJob(t *testing.T) {
	client := fake.New()
	resolver := &countingResolver{user: "carol"}
	r := newTestRouter(client, &fakeTransfer{}, resolver, WithJobMemory("4Gi"))

	res, err := r.SubmitJob(context.Background(), JobRequest{Command: "rfsearch.pl", CPUs: 4, Index: "3"})
	require.NoError(t, err)
	assert.Equal(t, "rfsearch-job-carol-3", res.Name)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, 0, client.TotalQueries())

	job := client.Created()[0].(*batchv1.Job)
	c := job.Spec.Template.Spec.Containers[0]
	cpu := c.Resources.Requests[corev1.ResourceCPU]
	assert.Equal(t, int64(4000), cpu.MilliValue())
	mem := c.Resources.Requests[corev1.ResourceMemory]
	assert.Equal(t, "4Gi", mem.String())

	_, err = r.SubmitJob(context.Background(), JobRequest{Command: "rfsearch.pl", CPUs: 9, Index: "4", Memory: "8Gi"})
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeValidation), "got %v", err)
}

func TestSubmitJob_CPUBounds(t *testing.T) {
	tests := map[string]int64{
		"zero":      0,
		"negative":  -1,
		"above max": 9,
		// wraps to 8000 millicores when multiplied by 1000
		"overflow": 2305843009213693960,
	}
	for name, cpus := range tests {
		t.Run(name, func(t *testing.T) {
			client := fake.New()
			r := newTestRouter(client, &fakeTransfer{}, identity.Static("carol"))

			_, err := r.SubmitJob(context.Background(), JobRequest{Command: "rfsearch.pl", CPUs: cpus, Index: "1"})
			require.Error(t, err)
			assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeValidation), "got %v", err)
			assert.Empty(t, client.Created())
		})
	}
}

func TestStatus(t *testing.T) {
	client := fake.New().Script(manifest.KindStorageClaim, fake.Items("rfam-pvc-dave", "Bound"))
	st, err := newTestRouter(client, &fakeTransfer{}, identity.Static("dave")).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dave", st.User)
	assert.Equal(t, "rfam-pvc-dave", st.Storage.ID)
}
