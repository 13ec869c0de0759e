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

package findings

import (
	"sort"

	"naive.systems/safeprofile/profile"
)

// Finding is one located occurrence of a rule violation.
type Finding struct {
	File     string           `json:"file"`
	Line     int              `json:"line"`
	Column   int              `json:"column"`
	Message  string           `json:"message"`
	RuleID   string           `json:"ruleId"`
	Severity profile.Severity `json:"severity"`
	Snippet  string           `json:"snippet"`
}

// FileAnalysisResult is the outcome of evaluating one rule against one file.
// When Success is false ErrorMessage is set and Findings is nil.
type FileAnalysisResult struct {
	File         string
	RuleID       string
	Success      bool
	ErrorMessage string
	Findings     []Finding
}

func Succeeded(file, ruleID string, found []Finding) FileAnalysisResult {
	if found == nil {
		found = []Finding{}
	}
	return FileAnalysisResult{File: file, RuleID: ruleID, Success: true, Findings: found}
}

func Failed(file, ruleID, message string) FileAnalysisResult {
	if message == "" {
		message = "analysis failed"
	}
	return FileAnalysisResult{File: file, RuleID: ruleID, ErrorMessage: message}
}

// FailedFile records a file that could not be analysed.
type FailedFile struct {
	File         string `json:"file"`
	ErrorMessage string `json:"errorMessage"`
}

// SortByPosition sorts findings by file, line, column and rule id. The
// runner never sorts; this is for display.
func SortByPosition(list []Finding) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(list []Finding) map[profile.Severity]int {
	counts := map[profile.Severity]int{}
	for _, f := range list {
		counts[f.Severity]++
	}
	return counts
}
