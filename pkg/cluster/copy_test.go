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
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"
)

// fakePod executes tar commands against a local directory standing in for
// the container filesystem.
type fakePod struct {
	root     string
	commands [][]string
}

func (p *fakePod) exec(_ context.Context, opts ExecOptions) error {
	p.commands = append(p.commands, opts.Command)
	if len(opts.Command) < 5 || opts.Command[0] != "tar" {
		return fmt.Errorf("unexpected command %v", opts.Command)
	}
	dir := filepath.Join(p.root, opts.Command[4])

	switch opts.Command[1] {
	case "-xmf":
		return readTar(opts.Stdin, dir)
	case "-cf":
		src := filepath.Join(dir, opts.Command[5])
		if _, err := os.Stat(src); err != nil {
			fmt.Fprintf(opts.Stderr, "tar: %s: No such file or directory", opts.Command[5])
			return errors.New("command terminated with exit code 2")
		}
		return writeTar(opts.Stdout, src)
	}
	return fmt.Errorf("unexpected tar mode %s", opts.Command[1])
}

func TestCopyTo(t *testing.T) {
	local := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(local, "family", "seed"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(local, "family", "SEED"), []byte("seed"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(local, "family", "seed", "DESC"), []byte("desc"), 0o644))

	pod := &fakePod{root: t.TempDir()}
	require.NoError(t, os.MkdirAll(filepath.Join(pod.root, "workdir"), 0o755))

	k := NewKubeClient(fake.NewClientset(), testNamespace)
	k.exec = pod.exec

	err := k.CopyTo(context.Background(), "rfam-login-pod-alice-x", filepath.Join(local, "family"), "/workdir")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(pod.root, "workdir", "family", "seed", "DESC"))
	require.NoError(t, err)
	assert.Equal(t, "desc", string(got))
	assert.Equal(t, []string{"tar", "-xmf", "-", "-C", "/workdir"}, pod.commands[0][:5])
}

func TestCopyTo_MissingLocal(t *testing.T) {
	k := NewKubeClient(fake.NewClientset(), testNamespace)
	k.exec = func(context.Context, ExecOptions) error {
		t.Fatal("exec should not be called")
		return nil
	}
	err := k.CopyTo(context.Background(), "pod", filepath.Join(t.TempDir(), "nope"), "/workdir")
	assert.Error(t, err)
}

func TestCopyFrom(t *testing.T) {
	pod := &fakePod{root: t.TempDir()}
	require.NoError(t, os.MkdirAll(filepath.Join(pod.root, "workdir", "results"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pod.root, "workdir", "results", "outlist"), []byte("hits"), 0o644))

	k := NewKubeClient(fake.NewClientset(), testNamespace)
	k.exec = pod.exec

	local := t.TempDir()
	require.NoError(t, k.CopyFrom(context.Background(), "pod", "/workdir/results", local))

	got, err := os.ReadFile(filepath.Join(local, "results", "outlist"))
	require.NoError(t, err)
	assert.Equal(t, "hits", string(got))
	assert.Equal(t, []string{"tar", "-cf", "-", "-C", "/workdir/", "results"}, pod.commands[0])
}

func TestCopyFrom_RemoteMissing(t *testing.T) {
	pod := &fakePod{root: t.TempDir()}
	k := NewKubeClient(fake.NewClientset(), testNamespace)
	k.exec = pod.exec

	err := k.CopyFrom(context.Background(), "pod", "/workdir/nothing", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such file or directory")
}

func TestCopyFrom_InvalidPath(t *testing.T) {
	k := NewKubeClient(fake.NewClientset(), testNamespace)
	for _, p := range []string{"/", ".", ""} {
		assert.Error(t, k.CopyFrom(context.Background(), "pod", p, t.TempDir()), "path %q", p)
	}
}

func TestReadTar_RejectsTraversal(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	body := []byte("pwned")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../escape", Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	dest := filepath.Join(t.TempDir(), "dest")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err = readTar(&buf, dest)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escape"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadTar_SkipsLinks(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "passwd", Linkname: "/etc/passwd", Typeflag: tar.TypeSymlink}))
	require.NoError(t, tw.Close())

	dest := t.TempDir()
	require.NoError(t, readTar(io.Reader(&buf), dest))
	_, err := os.Lstat(filepath.Join(dest, "passwd"))
	assert.True(t, os.IsNotExist(err))
}

func TestExec_RequiresConfig(t *testing.T) {
	k := NewKubeClient(fake.NewClientset(), testNamespace)
	err := k.Exec(context.Background(), ExecOptions{Pod: "p", Command: []string{"bash"}})
	assert.Error(t, err)
}
