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

package identity

import (
	"context"
	"errors"
	"os/user"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rferrors "github.com/Rfam/rfcloud/pkg/errors"
)

func TestHostname(t *testing.T) {
	osUser := Static("edgeuser")

	tests := []struct {
		name    string
		host    string
		want    string
		wantErr bool
	}{
		{"master node", "k8s-master-0", "edgeuser", false},
		{"edge node", "rfam-edge-01", "edgeuser", false},
		{"login pod", "rfam-login-pod-alice-5d8f7c9b6-x2x7k", "alice", false},
		{"login pod hyphenated user", "rfam-login-pod-mary-jane-5d8f7c9b6-x2x7k", "mary-jane", false},
		{"other login host", "foo-login-pod-bob", "bob", false},
		{"login host too short", "login-host", "", true},
		{"unknown host", "laptop", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Hostname{
				Hostname: func() (string, error) { return tt.host, nil },
				OSUser:   osUser,
			}
			got, err := h.Resolve(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHostname_Error(t *testing.T) {
	h := Hostname{Hostname: func() (string, error) { return "", errors.New("uts unavailable") }}
	_, err := h.Resolve(context.Background())
	assert.Error(t, err)
}

func TestOSUser(t *testing.T) {
	r := OSUser{Current: func() (*user.User, error) { return &user.User{Username: "rfamprod"}, nil }}
	got, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rfamprod", got)

	r = OSUser{Current: func() (*user.User, error) { return nil, errors.New("no passwd entry") }}
	_, err = r.Resolve(context.Background())
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	failing := ResolverFunc(func(context.Context) (string, error) { return "", errors.New("nope") })

	got, err := Chain{failing, Static("carol"), Static("dave")}.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "carol", got)

	_, err = Chain{failing, Static("")}.Resolve(context.Background())
	assert.Error(t, err)

	_, err = Chain{}.Resolve(context.Background())
	assert.Error(t, err)
}

func TestCurrent(t *testing.T) {
	got, err := Current(context.Background(), Static("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	_, err = Current(context.Background(), Static("Alice_Smith"))
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeValidation), "got %v", err)

	_, err = Current(context.Background(), Static(""))
	assert.True(t, rferrors.IsCode(err, rferrors.ErrCodeUnauthorized), "got %v", err)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, Static("bob"), Default("bob"))
	assert.IsType(t, Chain{}, Default(""))
}
