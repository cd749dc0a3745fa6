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
	"fmt"
	"strings"

	authv1 "k8s.io/api/authorization/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	rferrors "github.com/Rfam/rfcloud/pkg/errors"
)

// PermissionCheck represents a single permission check result.
type PermissionCheck struct {
	Resource    string
	Subresource string
	Verb        string
	Namespace   string
	Allowed     bool
	Reason      string
}

type permission struct {
	resource    string
	subresource string
	verb        string
}

// Permissions needed to start sessions and submit jobs.
var sessionPermissions = []permission{
	{"persistentvolumeclaims", "", "create"},
	{"persistentvolumeclaims", "", "list"},
	{"deployments", "", "create"},
	{"pods", "", "list"},
	{"pods", "exec", "create"},
	{"jobs", "", "create"},
	{"jobs", "", "list"},
}

// Permissions needed by the sweeper.
var sweepPermissions = []permission{
	{"jobs", "", "list"},
	{"jobs", "", "delete"},
}

// CheckPermissions verifies the caller can manage sessions in the client's
// namespace. When sweep is true the job cleanup verbs are checked instead.
// Returns the individual checks and an UNAUTHORIZED error listing anything
// missing.
func (k *KubeClient) CheckPermissions(ctx context.Context, sweep bool) ([]PermissionCheck, error) {
	required := sessionPermissions
	if sweep {
		required = sweepPermissions
	}

	checks := make([]PermissionCheck, 0, len(required))
	var missing []string

	for _, p := range required {
		allowed, reason, err := k.checkPermission(ctx, p)
		if err != nil {
			return checks, fmt.Errorf("failed to check permission for %s %s: %w", p.verb, p.resource, err)
		}

		checks = append(checks, PermissionCheck{
			Resource:    p.resource,
			Subresource: p.subresource,
			Verb:        p.verb,
			Namespace:   k.namespace,
			Allowed:     allowed,
			Reason:      reason,
		})

		if !allowed {
			res := p.resource
			if p.subresource != "" {
				res += "/" + p.subresource
			}
			missing = append(missing, fmt.Sprintf("%s %s", p.verb, res))
		}
	}

	if len(missing) > 0 {
		return checks, rferrors.NewWithContext(rferrors.ErrCodeUnauthorized,
			fmt.Sprintf("missing required permissions in namespace %q:\n  - %s",
				k.namespace, strings.Join(missing, "\n  - ")),
			map[string]any{"namespace": k.namespace})
	}

	return checks, nil
}

func (k *KubeClient) checkPermission(ctx context.Context, p permission) (bool, string, error) {
	review := &authv1.SelfSubjectAccessReview{
		Spec: authv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authv1.ResourceAttributes{
				Verb:        p.verb,
				Resource:    p.resource,
				Subresource: p.subresource,
				Namespace:   k.namespace,
			},
		},
	}

	result, err := k.clientset.AuthorizationV1().SelfSubjectAccessReviews().Create(ctx, review, metav1.CreateOptions{})
	if err != nil {
		return false, "", err
	}

	return result.Status.Allowed, result.Status.Reason, nil
}
