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
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// CopyTo copies a local file or directory into remoteDir inside the pod.
// The copy is a tar stream piped into tar running in the container.
func (k *KubeClient) CopyTo(ctx context.Context, pod, localPath, remoteDir string) error {
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("cannot copy %s: %w", localPath, err)
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(writeTar(pw, localPath))
	}()
	defer pr.Close()

	var stderr bytes.Buffer
	err := k.Exec(ctx, ExecOptions{
		Pod:     pod,
		Command: []string{"tar", "-xmf", "-", "-C", remoteDir},
		Stdin:   pr,
		Stderr:  &stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s to %s:%s: %w%s", localPath, pod, remoteDir, err, stderrSuffix(&stderr))
	}
	return nil
}

// CopyFrom copies remotePath out of the pod into localDir.
func (k *KubeClient) CopyFrom(ctx context.Context, pod, remotePath, localDir string) error {
	dir, base := path.Split(path.Clean(remotePath))
	if base == "" || base == "/" || base == "." {
		return fmt.Errorf("invalid remote path %q", remotePath)
	}
	if dir == "" {
		dir = "."
	}

	pr, pw := io.Pipe()
	var stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		err := k.Exec(ctx, ExecOptions{
			Pod:     pod,
			Command: []string{"tar", "-cf", "-", "-C", dir, base},
			Stdout:  pw,
			Stderr:  &stderr,
		})
		pw.CloseWithError(err)
		done <- err
	}()

	readErr := readTar(pr, localDir)
	pr.Close()
	execErr := <-done

	if readErr == nil {
		readErr = execErr
	}
	if readErr != nil {
		return fmt.Errorf("failed to copy %s:%s to %s: %w%s", pod, remotePath, localDir, readErr, stderrSuffix(&stderr))
	}
	return nil
}

func stderrSuffix(b *bytes.Buffer) string {
	s := strings.TrimSpace(b.String())
	if s == "" {
		return ""
	}
	return ": " + s
}

// writeTar archives src under its base name.
func writeTar(w io.Writer, src string) error {
	tw := tar.NewWriter(w)
	root := filepath.Dir(filepath.Clean(src))

	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(p); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return err
	}
	return tw.Close()
}

// readTar extracts an archive into dest. Entries that would land outside
// dest are rejected, and links are skipped.
func readTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	dest = filepath.Clean(dest)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dest, filepath.FromSlash(hdr.Name))
		rel, err := filepath.Rel(dest, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := extractFile(tr, target, fs.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		default:
			slog.Warn("skipping archive entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		}
	}
}

func extractFile(r io.Reader, target string, mode fs.FileMode) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
