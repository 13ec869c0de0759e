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

package stats

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/hhatto/gocloc"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/atomic"
	"naive.systems/safeprofile/profile"
)

const FileName = "stats.json"

var countLangs = []string{"C++", "C++ Header", "C Header", "C"}

type SeverityCount struct {
	Blocker int `json:"blocker"`
	Major   int `json:"major"`
	Minor   int `json:"minor"`
	Info    int `json:"info"`
}

func AccumulateBySeverity(cnt *SeverityCount, sev profile.Severity, ruleID string) {
	switch sev {
	case profile.Blocker:
		cnt.Blocker++
	case profile.Major:
		cnt.Major++
	case profile.Minor:
		cnt.Minor++
	case profile.Info:
		cnt.Info++
	default:
		glog.Warningf("undefined severity of finding for %s", ruleID)
	}
}

// Summary is the run overview shared by the console and the reports.
type Summary struct {
	Profile        string         `json:"profile"`
	StartedAt      time.Time      `json:"startedAt"`
	ElapsedSeconds float64        `json:"elapsedSeconds"`
	FilesTotal     int            `json:"filesTotal"`
	FilesAnalyzed  int            `json:"filesAnalyzed"`
	FilesFailed    int            `json:"filesFailed"`
	LinesOfCode    int            `json:"linesOfCode"`
	Findings       int            `json:"findings"`
	Suppressed     int            `json:"suppressed"`
	BySeverity     SeverityCount  `json:"bySeverity"`
	ByRule         map[string]int `json:"byRule"`
}

func (s *Summary) Elapsed() time.Duration {
	return time.Duration(s.ElapsedSeconds * float64(time.Second))
}

// Count fills the finding counters from list.
func (s *Summary) Count(list []findings.Finding) {
	s.Findings = len(list)
	s.BySeverity = SeverityCount{}
	s.ByRule = map[string]int{}
	for _, f := range list {
		AccumulateBySeverity(&s.BySeverity, f.Severity, f.RuleID)
		s.ByRule[f.RuleID]++
	}
}

// FilesWithFindings counts distinct files in list.
func FilesWithFindings(list []findings.Finding) int {
	seen := map[string]bool{}
	for _, f := range list {
		seen[f.File] = true
	}
	return len(seen)
}

// CountLines returns the lines of C and C++ code, headers included, in files.
func CountLines(files []string) (int, error) {
	if len(files) == 0 {
		return 0, nil
	}
	clocOpts := gocloc.NewClocOptions()
	languages := gocloc.NewDefinedLanguages()
	for _, lang := range countLangs {
		if _, exists := languages.Langs[lang]; exists {
			clocOpts.IncludeLangs[lang] = struct{}{}
		}
	}
	processor := gocloc.NewProcessor(languages, clocOpts)
	result, err := processor.Analyze(files)
	if err != nil {
		glog.Errorf("gocloc fail: %v", err)
		return 0, err
	}
	sum := 0
	for _, file := range result.Files {
		sum += int(file.Code)
	}
	return sum, nil
}

// Write stores the summary as dir/stats.json.
func Write(dir string, s *Summary) error {
	path := filepath.Join(dir, FileName)
	if err := atomic.WriteJSON(path, s); err != nil {
		return fmt.Errorf("failed to write to file %s: %v", path, err)
	}
	return nil
}
