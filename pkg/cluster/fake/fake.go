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

// Package fake provides a scripted cluster.Client for tests.
package fake

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/Rfam/rfcloud/pkg/cluster"
	"github.com/Rfam/rfcloud/pkg/manifest"
)

// Response is one scripted answer to Query.
type Response struct {
	Items []cluster.ResourceStatus
	Err   error
}

// Items returns a Response holding a single object.
func Items(id, phase string) Response {
	return Response{Items: []cluster.ResourceStatus{{ID: id, Phase: phase}}}
}

// Empty returns a Response with no objects.
func Empty() Response {
	return Response{}
}

// Fail returns a Response carrying err.
func Fail(err error) Response {
	return Response{Err: err}
}

// Client answers queries from per-kind scripts. Each Query consumes the next
// response of its kind; the last one repeats once the script is exhausted.
// An unscripted kind reports no objects.
type Client struct {
	mu sync.Mutex

	scripts   map[manifest.Kind][]Response
	queries   map[manifest.Kind]int
	selectors map[manifest.Kind][]labels.Selector
	created   []runtime.Object
	closed    int

	// CreateFunc overrides the default create behavior, which accepts
	// every object and reports its name as the ID.
	CreateFunc func(obj runtime.Object) (cluster.CreateResult, error)
}

// type check
var _ cluster.Client = &Client{}

// New returns an empty Client.
func New() *Client {
	return &Client{
		scripts:   map[manifest.Kind][]Response{},
		queries:   map[manifest.Kind]int{},
		selectors: map[manifest.Kind][]labels.Selector{},
	}
}

// Script appends responses to the script for kind.
func (c *Client) Script(kind manifest.Kind, responses ...Response) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[kind] = append(c.scripts[kind], responses...)
	return c
}

// Create records obj and answers with CreateFunc or acceptance.
func (c *Client) Create(_ context.Context, obj runtime.Object) (cluster.CreateResult, error) {
	c.mu.Lock()
	c.created = append(c.created, obj)
	fn := c.CreateFunc
	c.mu.Unlock()

	if fn != nil {
		return fn(obj)
	}

	m, err := meta.Accessor(obj)
	if err != nil {
		return cluster.CreateResult{}, fmt.Errorf("object has no metadata: %w", err)
	}
	return cluster.CreateResult{Accepted: true, ID: m.GetName()}, nil
}

// Query returns the next scripted response for kind.
func (c *Client) Query(_ context.Context, kind manifest.Kind, selector labels.Selector) ([]cluster.ResourceStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectors[kind] = append(c.selectors[kind], selector)
	n := c.queries[kind]
	c.queries[kind]++

	script := c.scripts[kind]
	if len(script) == 0 {
		return nil, nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	return script[n].Items, script[n].Err
}

// Close counts calls.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

// Created returns the objects passed to Create, in order.
func (c *Client) Created() []runtime.Object {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]runtime.Object(nil), c.created...)
}

// Queries returns how many times kind was queried.
func (c *Client) Queries(kind manifest.Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queries[kind]
}

// Selectors returns the selectors used to query kind.
func (c *Client) Selectors(kind manifest.Kind) []labels.Selector {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]labels.Selector(nil), c.selectors[kind]...)
}

// TotalQueries returns the number of queries across all kinds.
func (c *Client) TotalQueries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.queries {
		total += n
	}
	return total
}

// Closed returns how many times Close was called.
func (c *Client) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
