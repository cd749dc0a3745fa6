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

package client

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in tests.
// This enables using fake.NewClientset() which returns kubernetes.Interface.
type Interface = kubernetes.Interface

// Client bundles a clientset with the rest configuration it was built from
// and the HTTP client carrying its connections.
type Client struct {
	Clientset Interface
	Config    *rest.Config

	httpClient *http.Client
}

// Close releases idle connections held by the client. It is safe to call
// more than once and on a Client built without a transport.
func (c *Client) Close() error {
	if c == nil || c.httpClient == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// ResolveKubeconfig returns the kubeconfig path to use, or an empty string
// when the in-cluster configuration should be used.
//
// Resolution order:
//  1. the explicit path
//  2. KUBECONFIG environment variable
//  3. ~/.kube/config (if it exists)
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	path := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// BuildRestConfig loads the rest configuration from the given kubeconfig
// file, falling back to the in-cluster service account.
func BuildRestConfig(kubeconfig string) (*rest.Config, error) {
	kubeconfig = ResolveKubeconfig(kubeconfig)

	// Use InClusterConfig directly when no kubeconfig is available
	// This avoids the warning: "Neither --kubeconfig nor --master was specified"
	if kubeconfig == "" {
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
		return config, nil
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
	}
	return config, nil
}

// BuildKubeClient creates a Kubernetes client from the given kubeconfig file.
//
// Login pods and the rfcloud CLI run in the same cluster they manage, so an
// empty path normally resolves to the in-cluster service account. Callers
// must Close the returned client.
func BuildKubeClient(kubeconfig string) (*Client, error) {
	config, err := BuildRestConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	return NewForConfig(config)
}

// NewForConfig creates a client sharing one HTTP transport between the
// clientset and Close.
func NewForConfig(config *rest.Config) (*Client, error) {
	httpClient, err := rest.HTTPClientFor(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	clientset, err := kubernetes.NewForConfigAndClient(config, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return &Client{
		Clientset:  clientset,
		Config:     config,
		httpClient: httpClient,
	}, nil
}
