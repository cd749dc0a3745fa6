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

// Package identity resolves which Rfam user a command acts for.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"

	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/manifest"
)

// EnvUser names the environment variable holding an explicit username.
const EnvUser = "RFCLOUD_USER"

// Resolver determines the current user.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static always resolves to a fixed username.
type Static string

// Resolve returns the fixed username, or an error when it is empty.
func (s Static) Resolve(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("no username configured")
	}
	return string(s), nil
}

// OSUser resolves to the login name of the process owner.
type OSUser struct {
	// Current defaults to os/user.Current.
	Current func() (*user.User, error)
}

// Resolve returns the current OS user's login name.
func (o OSUser) Resolve(context.Context) (string, error) {
	current := o.Current
	if current == nil {
		current = user.Current
	}
	u, err := current()
	if err != nil {
		return "", fmt.Errorf("failed to look up current user: %w", err)
	}
	return u.Username, nil
}

// loginPodPrefix is the name prefix of login pods, followed by the user and
// the two generated Deployment suffixes.
const loginPodPrefix = "rfam-login-pod-"

// Hostname derives the user from where the command runs.
//
// On cluster master and edge nodes the OS user is the Rfam user. Inside a
// login pod the hostname is the pod name, which embeds the user.
type Hostname struct {
	// Hostname defaults to os.Hostname.
	Hostname func() (string, error)
	// OSUser resolves the user on master and edge nodes.
	OSUser Resolver
}

// Resolve returns the user derived from the hostname.
func (h Hostname) Resolve(ctx context.Context) (string, error) {
	hostnameFn := h.Hostname
	if hostnameFn == nil {
		hostnameFn = os.Hostname
	}
	host, err := hostnameFn()
	if err != nil {
		return "", fmt.Errorf("failed to read hostname: %w", err)
	}

	switch {
	case strings.Contains(host, "master"), strings.Contains(host, "edge"):
		osUser := h.OSUser
		if osUser == nil {
			osUser = OSUser{}
		}
		return osUser.Resolve(ctx)
	case strings.Contains(host, "login"):
		return userFromPodName(host)
	default:
		return "", fmt.Errorf("cannot detect user from hostname %q: not a master, edge or login host", host)
	}
}

// userFromPodName extracts the user from a login pod name of the form
// rfam-login-pod-<user>-<replicaset hash>-<pod hash>.
func userFromPodName(pod string) (string, error) {
	if rest, ok := strings.CutPrefix(pod, loginPodPrefix); ok {
		parts := strings.Split(rest, "-")
		if len(parts) >= 3 {
			return strings.Join(parts[:len(parts)-2], "-"), nil
		}
	}

	// rfam-login-pod-<user>...: the fourth field
	parts := strings.Split(pod, "-")
	if len(parts) < 4 || parts[3] == "" {
		return "", fmt.Errorf("cannot detect user from login hostname %q", pod)
	}
	return parts[3], nil
}

// Chain tries each resolver in order and returns the first success.
type Chain []Resolver

// Resolve returns the first username resolved, or the joined errors of all
// resolvers.
func (c Chain) Resolve(ctx context.Context) (string, error) {
	var errs []error
	for _, r := range c {
		name, err := r.Resolve(ctx)
		if err == nil {
			return name, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", errors.New("no identity resolvers configured")
	}
	return "", errors.Join(errs...)
}

// Current resolves the user with r and validates the result as a
// cluster-safe name. Resolution failures are UNAUTHORIZED.
func Current(ctx context.Context, r Resolver) (string, error) {
	name, err := r.Resolve(ctx)
	if err != nil {
		return "", rferrors.Wrap(rferrors.ErrCodeUnauthorized, "username could not be detected", err)
	}
	if err := manifest.ValidateUser(name); err != nil {
		return "", err
	}
	return name, nil
}

// Default returns the resolver used by the CLI: an explicit username when
// one is given, otherwise the hostname rules.
func Default(explicit string) Resolver {
	if explicit != "" {
		return Static(explicit)
	}
	return Chain{Hostname{}}
}
