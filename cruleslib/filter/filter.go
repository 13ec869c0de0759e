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

/*
This package should not import any packages of the analysis pipeline to
avoid recursive import.
*/
package filter

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/diff"
)

// IgnoreMatcher matches slash-separated paths relative to a root against
// doublestar patterns. A pattern that matches a directory also covers
// everything below it.
type IgnoreMatcher struct {
	patterns []string
}

func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, p := range patterns {
		p = strings.TrimSuffix(filepath.ToSlash(strings.TrimSpace(p)), "/")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			glog.Warningf("ignoring invalid pattern %q", p)
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Ignored reports whether relPath or one of its parent directories matches.
func (m *IgnoreMatcher) Ignored(relPath string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	relPath = filepath.ToSlash(filepath.Clean(relPath))
	for path := relPath; path != "." && path != "/" && path != ""; path = parent(path) {
		for _, p := range m.patterns {
			if ok, _ := doublestar.Match(p, path); ok {
				return true
			}
		}
	}
	return false
}

func parent(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// LimitReports keeps the first limit findings of each rule with a limit.
func LimitReports(list []findings.Finding, limits map[string]int) []findings.Finding {
	if len(limits) == 0 {
		return list
	}
	counts := make(map[string]int)
	out := make([]findings.Finding, 0, len(list))
	dropped := 0
	for _, f := range list {
		limit, exist := limits[f.RuleID]
		if !exist {
			out = append(out, f)
			continue
		}
		counts[f.RuleID]++
		if counts[f.RuleID] <= limit {
			out = append(out, f)
		} else {
			dropped++
		}
	}
	if dropped > 0 {
		glog.Infof("%d findings over max_reports dropped", dropped)
	}
	return out
}

// ChangedLinesOnly keeps findings whose line was added by patch. Finding
// paths are made relative to root before the lookup.
func ChangedLinesOnly(list []findings.Finding, patch *diff.Patch, root string) []findings.Finding {
	out := make([]findings.Finding, 0, len(list))
	for _, f := range list {
		rel := f.File
		if r, err := filepath.Rel(root, f.File); err == nil {
			rel = r
		}
		if patch.Changed(rel, f.Line) {
			out = append(out, f)
		}
	}
	glog.Infof("changed-lines filter kept %d of %d findings", len(out), len(list))
	return out
}
