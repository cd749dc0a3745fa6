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

// Package client builds Kubernetes clients for rfcloud.
//
// Every rfcloud command runs once and exits, so there is no shared client:
// each invocation builds one, uses it, and closes it on every exit path.
//
//	kc, err := client.BuildKubeClient(kubeconfig)
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//	defer kc.Close()
//
// # Authentication Modes
//
// In-cluster (login pods, edge nodes running as a Pod):
//   - Uses service account credentials from /var/run/secrets/kubernetes.io/serviceaccount/
//
// Out-of-cluster:
//   - Checks the explicit path, then KUBECONFIG, then ~/.kube/config
//
// # Testing
//
// Code that only needs the API should accept client.Interface so tests can
// pass k8s.io/client-go/kubernetes/fake clientsets.
package client
