/*
NaiveSystems Analyze - A tool for static code analysis
Copyright (C) 2023  Naive Systems Ltd.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package report

import (
	"fmt"

	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/atomic"
	"naive.systems/safeprofile/cruleslib/stats"
	"naive.systems/safeprofile/profile"
)

type jsonTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type jsonFinding struct {
	findings.Finding
	Path string `json:"path"`
}

// JSONReport is the layout of the --json output.
type JSONReport struct {
	RunID    string                `json:"runId"`
	Tool     jsonTool              `json:"tool"`
	Profile  string                `json:"profile"`
	Root     string                `json:"root"`
	Rules    []profile.Rule        `json:"rules"`
	Findings []jsonFinding         `json:"findings"`
	Failed   []findings.FailedFile `json:"failed"`
	Stats    *stats.Summary        `json:"stats"`
}

func newJSONReport(r *Run) *JSONReport {
	out := &JSONReport{
		RunID:    r.ID,
		Tool:     jsonTool{Name: ToolName, Version: Version},
		Profile:  r.Profile,
		Root:     r.Root,
		Rules:    r.Rules,
		Findings: make([]jsonFinding, 0, len(r.Findings)),
		Failed:   r.Failed,
		Stats:    r.Summary,
	}
	if out.Rules == nil {
		out.Rules = []profile.Rule{}
	}
	if out.Failed == nil {
		out.Failed = []findings.FailedFile{}
	}
	for _, f := range r.Findings {
		out.Findings = append(out.Findings, jsonFinding{Finding: f, Path: r.RelPath(f.File)})
	}
	return out
}

// WriteJSON writes the JSON report to path atomically.
func WriteJSON(path string, r *Run) error {
	if err := atomic.WriteJSON(path, newJSONReport(r)); err != nil {
		return fmt.Errorf("error writing JSON report: %w", err)
	}
	return nil
}
