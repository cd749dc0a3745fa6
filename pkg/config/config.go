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

// Package config holds the rfcloud settings shared by all commands.
//
// Settings start from the values in pkg/defaults, are overlaid by an
// optional YAML file and finally by command line flags:
//
//	namespace: rfam
//	image: ikalvari/rfam-cloud:kubes
//	storageClass: gluster-heketi
//	storageSizeGi: 2
//	maxJobMemory: 64Gi
//	jobMemory: 2Gi
//	pollInterval: 2s
//	deadline: 5m
//	kubeconfig: /home/alice/.kube/config
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/Rfam/rfcloud/pkg/defaults"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/manifest"
)

// FileName is the config file looked up in the home directory.
const FileName = ".rfcloud.yaml"

// DefaultNamespace is the namespace sessions are created in.
const DefaultNamespace = "default"

// Config is the effective rfcloud configuration.
type Config struct {
	Namespace     string        `yaml:"namespace" json:"namespace"`
	Image         string        `yaml:"image" json:"image"`
	StorageClass  string        `yaml:"storageClass" json:"storageClass"`
	StorageSizeGi int           `yaml:"storageSizeGi" json:"storageSizeGi"`
	MaxJobMemory  string        `yaml:"maxJobMemory" json:"maxJobMemory"`
	JobMemory     string        `yaml:"jobMemory" json:"jobMemory"`
	PollInterval  time.Duration `yaml:"pollInterval" json:"pollInterval"`
	Deadline      time.Duration `yaml:"deadline" json:"deadline"`
	Kubeconfig    string        `yaml:"kubeconfig" json:"kubeconfig"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Namespace:     DefaultNamespace,
		Image:         manifest.DefaultImage,
		StorageClass:  manifest.DefaultStorageClass,
		StorageSizeGi: defaults.StorageSizeGi,
		MaxJobMemory:  defaults.MaxJobMemory,
		JobMemory:     defaults.JobMemory,
		PollInterval:  defaults.ProvisionPollInterval,
		Deadline:      defaults.ProvisionDeadline,
	}
}

// DefaultPath returns the config file in the user's home directory, or an
// empty string when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load returns the defaults overlaid by the file at path. An explicit path
// must exist; when path is empty the file in the home directory is used if
// present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := cfg.Decode(f); err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays the YAML document read from r. Unknown keys are rejected
// and an empty document leaves cfg unchanged.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	fail := func(field, format string, args ...any) error {
		return rferrors.NewWithContext(rferrors.ErrCodeValidation,
			fmt.Sprintf("invalid %s: %s", field, fmt.Sprintf(format, args...)),
			map[string]any{"field": field})
	}

	if errs := validation.IsDNS1123Label(c.Namespace); len(errs) > 0 {
		return fail("namespace", "%q: %s", c.Namespace, errs[0])
	}
	if c.Image == "" {
		return fail("image", "must not be empty")
	}
	if c.StorageSizeGi < 1 {
		return fail("storageSizeGi", "must be at least 1, got %d", c.StorageSizeGi)
	}

	ceiling, err := resource.ParseQuantity(c.MaxJobMemory)
	if err != nil {
		return fail("maxJobMemory", "%q: %v", c.MaxJobMemory, err)
	}
	mem, err := resource.ParseQuantity(c.JobMemory)
	if err != nil {
		return fail("jobMemory", "%q: %v", c.JobMemory, err)
	}
	if mem.Cmp(ceiling) > 0 {
		return fail("jobMemory", "%s exceeds maxJobMemory %s", c.JobMemory, c.MaxJobMemory)
	}

	if c.PollInterval <= 0 {
		return fail("pollInterval", "must be positive, got %v", c.PollInterval)
	}
	if c.Deadline <= c.PollInterval {
		return fail("deadline", "%v must be longer than pollInterval %v", c.Deadline, c.PollInterval)
	}
	return nil
}

// TemplaterOptions returns the manifest options derived from the config.
// Validate must have succeeded.
func (c Config) TemplaterOptions() []manifest.Option {
	return []manifest.Option{
		manifest.WithImage(c.Image),
		manifest.WithStorageClass(c.StorageClass),
		manifest.WithMaxMemory(resource.MustParse(c.MaxJobMemory)),
	}
}
