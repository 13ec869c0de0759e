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
	"io"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/text/message"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/cruleslib/basic"
	"naive.systems/safeprofile/cruleslib/stats"
)

// TextOptions controls the console listing.
type TextOptions struct {
	ShowCode bool
	Charset  string
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// WriteText prints the findings in position order followed by the failed
// files and a summary.
func WriteText(w io.Writer, r *Run, p *message.Printer, opts TextOptions) {
	list := append([]findings.Finding(nil), r.Findings...)
	findings.SortByPosition(list)

	for _, f := range list {
		fmt.Fprintf(w, "%s:%d:%d: %s [%s] %s\n", r.RelPath(f.File), f.Line, f.Column, f.Severity, f.RuleID, f.Message)
		if opts.ShowCode {
			code, err := GetCode(f.File, f.Line, opts.Charset)
			if err != nil {
				glog.Warningf("cannot show code of %s: %v", f.File, err)
			}
			if code != "" {
				fmt.Fprint(w, indent(code, "    "))
				continue
			}
		}
		fmt.Fprintf(w, "    %s\n", f.Snippet)
	}
	if len(list) > 0 {
		fmt.Fprintln(w)
	}

	if len(r.Failed) > 0 {
		fmt.Fprintln(w, p.Sprintf("%d file(s) could not be analyzed", len(r.Failed)))
		for _, failed := range r.Failed {
			fmt.Fprintf(w, "  %s: %s\n", r.RelPath(failed.File), failed.ErrorMessage)
		}
		fmt.Fprintln(w)
	}

	WriteSummary(w, r.Summary, len(list), stats.FilesWithFindings(list), p)
}

// WriteSummary prints the closing lines of a run.
func WriteSummary(w io.Writer, s *stats.Summary, found, files int, p *message.Printer) {
	if found == 0 {
		fmt.Fprintln(w, p.Sprintf("No violations found"))
	} else {
		fmt.Fprintln(w, p.Sprintf("Found %d violation(s) in %d file(s)", found, files))
	}
	if s == nil {
		return
	}
	if s.Suppressed > 0 {
		fmt.Fprintln(w, p.Sprintf("%d finding(s) suppressed by baseline", s.Suppressed))
	}
	if s.LinesOfCode > 0 {
		fmt.Fprintln(w, p.Sprintf("%d lines of C++ code", s.LinesOfCode))
	}
	fmt.Fprintln(w, p.Sprintf("Elapsed time: %s", basic.FormatTimeDuration(s.Elapsed())))
}
