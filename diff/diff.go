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

package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

type Hunk struct {
	OldPos, OldLines, NewPos, NewLines int
}

type File struct {
	NewName string
	OldName string
	Hunks   []*Hunk
	// Added holds the new-side line numbers of '+' lines.
	Added map[int]bool
}

type Patch struct {
	Files []*File
}

var hunkHeader = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// fileName strips the a/ or b/ prefix git adds and the timestamp diff -u
// appends after a tab.
func fileName(raw, prefix string) string {
	if i := strings.IndexByte(raw, '\t'); i >= 0 {
		raw = raw[:i]
	}
	if raw == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(raw, prefix)
}

func atoiOr(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

/*
Parse parses a unified diff into a patch struct.

It goes over the lines in the diff and maintains an implicit state machine.
Outside a hunk it only cares about lines that start with "--- ", "+++ ", or
"@@ -". Inside a hunk it counts context, removed and added lines so that the
new-side line number of every added line is known.

For a file addition OldName is empty; for a deletion NewName is empty.

	--- a/src/a.cpp
	+++ b/src/a.cpp
	@@ -2,3 +2,4 @@ void f() {
	   int* p = nullptr;
	-  delete p;
	+  std::unique_ptr<int> q;
	+  q.reset();
	 }
*/
func Parse(diff string) (*Patch, error) {
	lines := strings.Split(diff, "\n")
	var p Patch
	var f *File
	newLine, oldLeft, newLeft := 0, 0, 0
	for i, line := range lines {
		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(line, "+"):
				f.Added[newLine] = true
				newLine++
				newLeft--
				continue
			case strings.HasPrefix(line, "-"):
				oldLeft--
				continue
			case strings.HasPrefix(line, " "), line == "":
				newLine++
				oldLeft--
				newLeft--
				continue
			case strings.HasPrefix(line, `\`):
				// "\ No newline at end of file"
				continue
			}
			return nil, fmt.Errorf("hunk ended early at line %d '%s'", i+1, line)
		}
		switch {
		case strings.HasPrefix(line, "--- "):
			f = &File{OldName: fileName(strings.TrimPrefix(line, "--- "), "a/"), Added: map[int]bool{}}
			p.Files = append(p.Files, f)
		case strings.HasPrefix(line, "+++ "):
			if f == nil || len(f.Hunks) > 0 {
				return nil, fmt.Errorf("unexpected line %d '%s'", i+1, line)
			}
			f.NewName = fileName(strings.TrimPrefix(line, "+++ "), "b/")
		case strings.HasPrefix(line, "@@ -"):
			match := hunkHeader.FindStringSubmatch(line)
			if match == nil {
				return nil, fmt.Errorf("could not extract hunk info from line '%s'", line)
			}
			if f == nil {
				return nil, fmt.Errorf("hunk without file header at line %d", i+1)
			}
			h := &Hunk{}
			var err error
			if h.OldPos, err = strconv.Atoi(match[1]); err != nil {
				return nil, fmt.Errorf("bad old position in '%s': %v", line, err)
			}
			if h.OldLines, err = atoiOr(match[2], 1); err != nil {
				return nil, fmt.Errorf("bad old line count in '%s': %v", line, err)
			}
			if h.NewPos, err = strconv.Atoi(match[3]); err != nil {
				return nil, fmt.Errorf("bad new position in '%s': %v", line, err)
			}
			if h.NewLines, err = atoiOr(match[4], 1); err != nil {
				return nil, fmt.Errorf("bad new line count in '%s': %v", line, err)
			}
			f.Hunks = append(f.Hunks, h)
			newLine, oldLeft, newLeft = h.NewPos, h.OldLines, h.NewLines
		}
	}
	return &p, nil
}

// ParseFile reads and parses a diff file.
func ParseFile(path string) (*Patch, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content))
}

// Lookup finds the file whose new name equals relPath.
func (p *Patch) Lookup(relPath string) *File {
	relPath = filepath.ToSlash(filepath.Clean(relPath))
	for _, f := range p.Files {
		if f.NewName != "" && filepath.ToSlash(filepath.Clean(f.NewName)) == relPath {
			return f
		}
	}
	return nil
}

// Changed reports whether line of relPath was added by the patch.
func (p *Patch) Changed(relPath string, line int) bool {
	f := p.Lookup(relPath)
	return f != nil && f.Added[line]
}
