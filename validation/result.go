// Copyright 2026 Veldt Labs
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

package validation

import (
	"fmt"
	"time"

	"github.com/veldt/ragcore/core"
)

// Severity classifies a validation issue.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = map[Severity]string{
	SeverityInfo:    "INFO",
	SeverityWarning: "WARNING",
	SeverityError:   "ERROR",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Status is the overall outcome of a validation run.
type Status int

const (
	StatusPassed Status = iota
	StatusWarning
	StatusFailed
)

var statusNames = map[Status]string{
	StatusPassed:  "PASSED",
	StatusWarning: "WARNING",
	StatusFailed:  "FAILED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Issue is one finding from a validation check.
type Issue struct {
	Severity Severity
	Message  string
	TargetID string
}

// Result collects the issues of one validation run. It is mutable until
// Complete is called, after which any further AddIssue panics; validators
// hand out only completed results.
type Result struct {
	ID        string
	Type      string
	TargetID  string
	Status    Status
	Issues    []Issue
	Metadata  map[string]string
	CreatedAt time.Time

	completed bool
}

func newResult(validationType, targetID string) *Result {
	return &Result{
		ID:        core.NewID(),
		Type:      validationType,
		TargetID:  targetID,
		Metadata:  make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}
}

// AddIssue appends a finding. Calling it on a completed result is a
// programmer error and panics.
func (r *Result) AddIssue(severity Severity, targetID, format string, args ...any) {
	if r.completed {
		panic("validation: AddIssue on completed result")
	}
	r.Issues = append(r.Issues, Issue{
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		TargetID: targetID,
	})
}

// Complete derives the overall status and freezes the result.
// PASSED with no issues, FAILED if any issue is an error, WARNING otherwise.
func (r *Result) Complete() *Result {
	if r.completed {
		return r
	}

	r.Status = StatusPassed
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			r.Status = StatusFailed
		case SeverityWarning:
			if r.Status != StatusFailed {
				r.Status = StatusWarning
			}
		}
	}
	r.completed = true
	return r
}

// Passed reports whether the run produced no error-severity issues.
func (r *Result) Passed() bool {
	return r.Status != StatusFailed
}

// Count returns the number of issues at the given severity.
func (r *Result) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}
