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

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Rfam/rfcloud/pkg/cluster"
	rferrors "github.com/Rfam/rfcloud/pkg/errors"
	"github.com/Rfam/rfcloud/pkg/manifest"
)

// SubmitJob renders and submits a batch job without waiting for it.
//
// Job names are derived from the caller's index, so a name that already
// exists is a SUBMISSION error rather than a reuse.
func (o *Orchestrator) SubmitJob(ctx context.Context, p manifest.JobParams) (Result, error) {
	job, err := o.templater.BatchJob(p)
	if err != nil {
		jobSubmissionsTotal.WithLabelValues(outcomeInvalid).Inc()
		return Result{}, err
	}
	name := objectName(job)

	res, err := o.client.Create(ctx, job)
	switch {
	case errors.Is(err, cluster.ErrAlreadyExists):
		jobSubmissionsTotal.WithLabelValues(outcomeDuplicate).Inc()
		return Result{}, rferrors.WrapWithContext(rferrors.ErrCodeSubmission,
			fmt.Sprintf("job %s already exists, choose another index", name), err,
			map[string]any{"name": name, "index": p.Index})
	case err != nil:
		jobSubmissionsTotal.WithLabelValues(outcomeRejected).Inc()
		return Result{}, rferrors.WrapWithContext(rferrors.ErrCodeSubmission,
			fmt.Sprintf("cluster rejected job %s", name), err,
			map[string]any{"name": name})
	case !res.Accepted:
		jobSubmissionsTotal.WithLabelValues(outcomeRejected).Inc()
		return Result{}, rferrors.NewWithContext(rferrors.ErrCodeSubmission,
			fmt.Sprintf("cluster did not accept job %s", name),
			map[string]any{"name": name})
	}

	jobSubmissionsTotal.WithLabelValues(outcomeCreated).Inc()
	slog.Info("job submitted", "user", p.User, "name", name, "cpu_millis", p.CPUMillis, "memory", p.Memory)

	return Result{Kind: manifest.KindBatchJob, Name: name, ID: res.ID, Created: true}, nil
}
