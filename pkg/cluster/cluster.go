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
	"sort"

	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/Rfam/rfcloud/pkg/manifest"
)

// ErrAlreadyExists is returned by Create when an object with the same name
// is already present. Concurrent invocations for the same user race on
// creation; the loser sees this error.
var ErrAlreadyExists = errors.New("resource already exists")

// CreateResult reports the outcome of a create request.
type CreateResult struct {
	// Accepted is true when the control plane persisted the object.
	Accepted bool
	// ID is the name of the created object.
	ID string
}

// ResourceStatus is a single object matched by a query.
type ResourceStatus struct {
	// ID is the cluster-assigned identifier, the object name. For login
	// workloads it is the Pod name, the handle used for exec and copy.
	ID string
	// Phase is the lifecycle status reported for the object.
	Phase string
}

// Client is the cluster surface consumed by the orchestrator.
type Client interface {
	// Create submits a rendered object.
	Create(ctx context.Context, obj runtime.Object) (CreateResult, error)
	// Query lists the objects of kind matching selector.
	Query(ctx context.Context, kind manifest.Kind, selector labels.Selector) ([]ResourceStatus, error)
	// Close releases the client's connections.
	Close() error
}

// KubeClient implements Client on top of client-go, scoped to one namespace.
type KubeClient struct {
	clientset kubernetes.Interface
	config    *rest.Config
	namespace string
	closer    func() error

	// exec replaces the SPDY executor in tests
	exec func(ctx context.Context, opts ExecOptions) error
}

// type check
var _ Client = &KubeClient{}

// Option configures a KubeClient.
type Option func(*KubeClient)

// WithRestConfig sets the rest configuration used for exec and copy.
func WithRestConfig(config *rest.Config) Option {
	return func(k *KubeClient) {
		k.config = config
	}
}

// WithCloser sets the function called by Close.
func WithCloser(closer func() error) Option {
	return func(k *KubeClient) {
		k.closer = closer
	}
}

// NewKubeClient returns a Client operating in namespace.
func NewKubeClient(clientset kubernetes.Interface, namespace string, opts ...Option) *KubeClient {
	k := &KubeClient{
		clientset: clientset,
		namespace: namespace,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Namespace returns the namespace the client operates in.
func (k *KubeClient) Namespace() string {
	return k.namespace
}

// Close releases the underlying connections.
func (k *KubeClient) Close() error {
	if k.closer == nil {
		return nil
	}
	return k.closer()
}

// Create submits a PersistentVolumeClaim, Deployment or Job.
func (k *KubeClient) Create(ctx context.Context, obj runtime.Object) (CreateResult, error) {
	var (
		name string
		err  error
	)

	switch o := obj.(type) {
	case *corev1.PersistentVolumeClaim:
		var created *corev1.PersistentVolumeClaim
		created, err = k.clientset.CoreV1().PersistentVolumeClaims(k.namespace).Create(ctx, o, metav1.CreateOptions{})
		if err == nil {
			name = created.Name
		}
	case *appsv1.Deployment:
		var created *appsv1.Deployment
		created, err = k.clientset.AppsV1().Deployments(k.namespace).Create(ctx, o, metav1.CreateOptions{})
		if err == nil {
			name = created.Name
		}
	case *batchv1.Job:
		var created *batchv1.Job
		created, err = k.clientset.BatchV1().Jobs(k.namespace).Create(ctx, o, metav1.CreateOptions{})
		if err == nil {
			name = created.Name
		}
	default:
		return CreateResult{}, fmt.Errorf("unsupported object type %T", obj)
	}

	if apierrors.IsAlreadyExists(err) {
		return CreateResult{}, fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{Accepted: true, ID: name}, nil
}

// Query lists the objects of kind matching selector, ordered by name.
// Login workloads are observed through their Pods.
func (k *KubeClient) Query(ctx context.Context, kind manifest.Kind, selector labels.Selector) ([]ResourceStatus, error) {
	opts := metav1.ListOptions{LabelSelector: selector.String()}
	var out []ResourceStatus

	switch kind {
	case manifest.KindStorageClaim:
		list, err := k.clientset.CoreV1().PersistentVolumeClaims(k.namespace).List(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list claims: %w", err)
		}
		for i := range list.Items {
			out = append(out, ResourceStatus{ID: list.Items[i].Name, Phase: ClaimPhase(&list.Items[i])})
		}
	case manifest.KindLoginWorkload:
		list, err := k.clientset.CoreV1().Pods(k.namespace).List(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pods: %w", err)
		}
		for i := range list.Items {
			pod := &list.Items[i]
			if pod.DeletionTimestamp != nil {
				continue
			}
			out = append(out, ResourceStatus{ID: pod.Name, Phase: PodPhase(pod)})
		}
	case manifest.KindBatchJob:
		list, err := k.clientset.BatchV1().Jobs(k.namespace).List(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}
		for i := range list.Items {
			out = append(out, ResourceStatus{ID: list.Items[i].Name, Phase: JobPhase(&list.Items[i])})
		}
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
