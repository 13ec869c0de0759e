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

package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang/glog"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/atomic"
)

const formatVersion = 1

// Entry identifies a known finding. Line is informational; matching uses
// the rule, the file relative to the analysis root and the snippet, so
// entries survive unrelated edits that shift lines.
type Entry struct {
	RuleID  string `json:"ruleId"`
	File    string `json:"file"`
	Snippet string `json:"snippet"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type Baseline struct {
	Version int     `json:"version"`
	Profile string  `json:"profile"`
	Entries Entries `json:"entries"`
}

type key struct {
	ruleID, file, snippet string
}

func relative(root, file string) string {
	if rel, err := filepath.Rel(root, file); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(file)
}

// Create records list as a baseline with paths relative to root.
func Create(list []findings.Finding, root, profileName string) *Baseline {
	b := &Baseline{Version: formatVersion, Profile: profileName, Entries: Entries{}}
	for _, f := range list {
		b.Entries = append(b.Entries, Entry{
			RuleID:  f.RuleID,
			File:    relative(root, f.File),
			Snippet: f.Snippet,
			Line:    f.Line,
			Message: f.Message,
		})
	}
	sort.Stable(b.Entries)
	return b
}

func Write(path string, b *Baseline) error {
	if err := atomic.WriteJSON(path, b); err != nil {
		return fmt.Errorf("cannot write baseline %s: %w", path, err)
	}
	return nil
}

func Load(path string) (*Baseline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read baseline: %w", err)
	}
	var b Baseline
	if err := json.Unmarshal(content, &b); err != nil {
		return nil, fmt.Errorf("cannot parse baseline %s: %w", path, err)
	}
	if b.Version != formatVersion {
		return nil, fmt.Errorf("baseline %s has version %d, want %d", path, b.Version, formatVersion)
	}
	return &b, nil
}

// Suppress drops findings recorded in b. Each entry suppresses at most one
// finding, so a newly duplicated construct is still reported.
func Suppress(list []findings.Finding, b *Baseline, root string) ([]findings.Finding, int) {
	budget := map[key]int{}
	for _, e := range b.Entries {
		budget[key{e.RuleID, e.File, e.Snippet}]++
	}
	kept := make([]findings.Finding, 0, len(list))
	suppressed := 0
	for _, f := range list {
		k := key{f.RuleID, relative(root, f.File), f.Snippet}
		if budget[k] > 0 {
			budget[k]--
			suppressed++
			continue
		}
		kept = append(kept, f)
	}
	glog.Infof("baseline suppressed %d findings", suppressed)
	return kept, suppressed
}
