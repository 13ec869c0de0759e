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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/profile"
)

func TestCount(t *testing.T) {
	var s Summary
	s.Count([]findings.Finding{
		{File: "a.cpp", RuleID: "SP-OWN-001", Severity: profile.Blocker},
		{File: "a.cpp", RuleID: "SP-OWN-001", Severity: profile.Blocker},
		{File: "b.cpp", RuleID: "SP-TYPE-001", Severity: profile.Major},
		{File: "b.cpp", RuleID: "X", Severity: profile.Info},
	})
	if diff := cmp.Diff(SeverityCount{Blocker: 2, Major: 1, Info: 1}, s.BySeverity); diff != "" {
		t.Errorf("severity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"SP-OWN-001": 2, "SP-TYPE-001": 1, "X": 1}, s.ByRule); diff != "" {
		t.Errorf("rule mismatch (-want +got):\n%s", diff)
	}
	if s.Findings != 4 {
		t.Errorf("findings = %d", s.Findings)
	}
}

func TestFilesWithFindings(t *testing.T) {
	if got := FilesWithFindings([]findings.Finding{{File: "a"}, {File: "b"}, {File: "a"}}); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.cpp")
	content := "// comment\n#include <vector>\n\nint main() {\n  return 0;\n}\n"
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := CountLines([]string{src})
	if err != nil {
		t.Fatal(err)
	}
	if got != 4 {
		t.Errorf("CountLines = %d, want 4", got)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	s := &Summary{Profile: "core-safety", FilesTotal: 3, ElapsedSeconds: 1.5}
	if err := Write(dir, s); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	var got Summary
	if err := json.Unmarshal(content, &got); err != nil {
		t.Fatal(err)
	}
	if got.FilesTotal != 3 || got.Elapsed().Milliseconds() != 1500 {
		t.Errorf("round trip = %+v", got)
	}
}
