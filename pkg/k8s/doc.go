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

// Package k8s groups the Kubernetes plumbing shared by rfcloud.
//
// # Sub-packages
//
// client: builds a clientset and REST config from a kubeconfig path or the
// in-cluster service account
//
//	kc, err := client.BuildKubeClient(kubeconfig)
//	if err != nil {
//	    return err
//	}
//	defer kc.Close()
//
// Typed operations on the per-user resources (claims, login Deployments,
// batch Jobs, exec streams) live in pkg/cluster, which wraps the clientset
// built here.
package k8s
