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

// Package report renders the outcome of a run as SARIF, JSON, console text,
// HTML and an evidence directory.
package report

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/cruleslib/stats"
	"naive.systems/safeprofile/profile"
)

const (
	ToolName       = "Boost.SafeProfile"
	Version        = "0.0.1"
	InformationURI = "https://github.com/boost/safeprofile"
)

// Run is everything a report is rendered from.
type Run struct {
	ID       string
	Profile  string
	Root     string
	Rules    []profile.Rule
	Findings []findings.Finding
	Failed   []findings.FailedFile
	Summary  *stats.Summary
}

// NewRun gives the run a fresh id. A nil summary is replaced by one counted
// from list.
func NewRun(profileName, root string, rules []profile.Rule, list []findings.Finding, failed []findings.FailedFile, summary *stats.Summary) *Run {
	if summary == nil {
		summary = &stats.Summary{Profile: profileName, FilesFailed: len(failed)}
		summary.Count(list)
	}
	return &Run{
		ID:       uuid.NewString(),
		Profile:  profileName,
		Root:     root,
		Rules:    rules,
		Findings: list,
		Failed:   failed,
		Summary:  summary,
	}
}

// Level maps a severity to its SARIF level.
func Level(sev profile.Severity) string {
	switch sev {
	case profile.Blocker:
		return "error"
	case profile.Major:
		return "warning"
	case profile.Minor:
		return "note"
	case profile.Info:
		return "none"
	}
	return "warning"
}

// RelPath is file relative to the run root with forward slashes, or file
// itself when it lies outside the root.
func (r *Run) RelPath(file string) string {
	if r.Root == "" {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(r.Root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
