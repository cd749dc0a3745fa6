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

package manifest

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/Rfam/rfcloud/pkg/defaults"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
)

// invalid builds a validation error naming the offending field.
func invalid(field, format string, args ...any) error {
	return rferrors.NewWithContext(rferrors.ErrCodeValidation,
		fmt.Sprintf("invalid %s: %s", field, fmt.Sprintf(format, args...)),
		map[string]any{"field": field})
}

// ValidateUser checks that user is a cluster-safe identifier short enough
// for every name and label derived from it.
func ValidateUser(user string) error {
	if user == "" {
		return invalid("user", "must not be empty")
	}
	if errs := validation.IsDNS1123Label(user); len(errs) > 0 {
		return invalid("user", "%q: %s", user, strings.Join(errs, "; "))
	}
	for _, name := range derivedNames(user) {
		if errs := validation.IsDNS1123Label(name); len(errs) > 0 {
			return invalid("user", "%q is too long: derived name %q: %s", user, name, strings.Join(errs, "; "))
		}
	}
	return nil
}

// derivedNames lists every object, container, volume and label value named
// after the user alone.
func derivedNames(user string) []string {
	return []string{
		ClaimName(user),
		LoginName(user),
		LoginApp(user),
		loginVolumeName(user),
		jobVolumeName(user),
	}
}

// Validate checks the storage claim parameters.
func (p StorageClaimParams) Validate() error {
	if err := ValidateUser(p.User); err != nil {
		return err
	}
	if p.SizeGi <= 0 {
		return invalid("size", "must be a positive number of GiB, got %d", p.SizeGi)
	}
	return nil
}

// Validate checks the login parameters.
func (p LoginParams) Validate() error {
	return ValidateUser(p.User)
}

// Validate checks the job parameters against the given memory ceiling.
func (p JobParams) Validate(maxMemory resource.Quantity) error {
	if err := ValidateUser(p.User); err != nil {
		return err
	}
	if p.Index == "" {
		return invalid("index", "must not be empty")
	}
	if errs := validation.IsDNS1123Label(p.Index); len(errs) > 0 {
		return invalid("index", "%q: %s", p.Index, strings.Join(errs, "; "))
	}
	if errs := validation.IsValidLabelValue(JobName(p.User, p.Index)); len(errs) > 0 {
		return invalid("index", "job name %q is too long", JobName(p.User, p.Index))
	}
	if strings.TrimSpace(p.Command) == "" {
		return invalid("command", "must not be empty")
	}
	if p.CPUMillis < 1 || p.CPUMillis > defaults.MaxCPUMillis {
		return invalid("cpu", "must be between 1 and %d millicores, got %d", defaults.MaxCPUMillis, p.CPUMillis)
	}
	if p.Memory == "" {
		return invalid("memory", "must not be empty")
	}
	mem, err := resource.ParseQuantity(p.Memory)
	if err != nil {
		return invalid("memory", "%q is not a quantity", p.Memory)
	}
	if mem.Sign() <= 0 {
		return invalid("memory", "must be positive, got %s", p.Memory)
	}
	if mem.Cmp(maxMemory) > 0 {
		return invalid("memory", "%s exceeds the cluster ceiling of %s", p.Memory, maxMemory.String())
	}
	return nil
}
