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
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/remotecommand"
)

// ExecOptions describes a command run inside a pod.
type ExecOptions struct {
	Pod       string
	Container string
	Command   []string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	// TTY allocates a terminal. When Stdin is the process's own terminal it
	// is switched to raw mode for the duration of the call.
	TTY bool
}

// Exec runs a command in a pod and streams its I/O.
func (k *KubeClient) Exec(ctx context.Context, opts ExecOptions) error {
	if k.exec != nil {
		return k.exec(ctx, opts)
	}
	return k.execSPDY(ctx, opts)
}

func (k *KubeClient) execSPDY(ctx context.Context, opts ExecOptions) error {
	if k.config == nil {
		return errors.New("exec requires a rest config")
	}
	if len(opts.Command) == 0 {
		return errors.New("exec requires a command")
	}

	req := k.clientset.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(k.namespace).
		Name(opts.Pod).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Container: opts.Container,
			Command:   opts.Command,
			Stdin:     opts.Stdin != nil,
			Stdout:    opts.Stdout != nil,
			Stderr:    opts.Stderr != nil && !opts.TTY,
			TTY:       opts.TTY,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(k.config, "POST", req.URL())
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}

	stream := remotecommand.StreamOptions{
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Tty:    opts.TTY,
	}
	if !opts.TTY {
		stream.Stderr = opts.Stderr
	}

	if opts.TTY {
		if f, ok := opts.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fd := int(f.Fd())
			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return fmt.Errorf("failed to set terminal raw mode: %w", err)
			}
			defer func() {
				if err := term.Restore(fd, oldState); err != nil {
					slog.Warn("failed to restore terminal", "error", err)
				}
			}()
			stream.TerminalSizeQueue = newSizeQueue(fd)
		}
	}

	slog.Debug("exec in pod", "pod", opts.Pod, "command", opts.Command, "tty", opts.TTY)

	if err := executor.StreamWithContext(ctx, stream); err != nil {
		return fmt.Errorf("exec in pod %s failed: %w", opts.Pod, err)
	}
	return nil
}

// sizeQueue reports the terminal size once so the remote shell starts with
// the right geometry.
type sizeQueue struct {
	fd   int
	sent bool
}

func newSizeQueue(fd int) *sizeQueue {
	return &sizeQueue{fd: fd}
}

func (q *sizeQueue) Next() *remotecommand.TerminalSize {
	if q.sent {
		return nil
	}
	q.sent = true

	width, height, err := term.GetSize(q.fd)
	if err != nil {
		return nil
	}
	return &remotecommand.TerminalSize{Width: uint16(width), Height: uint16(height)} //nolint:gosec // terminal sizes fit
}
