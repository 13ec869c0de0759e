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

package matcher

import (
	"strings"

	"naive.systems/safeprofile/checker_integration/clangast"
)

const (
	maxSnippetLen      = 80
	snippetUnavailable = "<code unavailable>"
)

func truncateSnippet(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSnippetLen {
		return s
	}
	return string(runes[:maxSnippetLen-3]) + "..."
}

// extractSnippet returns the source text covered by r, whitespace runs
// collapsed, using expansion locations so macro uses show the call site.
func extractSnippet(src []byte, r clangast.Range, mainFile string, decode func([]byte) string) string {
	begin, end := r.Begin.Expansion(), r.End.Expansion()
	if !begin.Valid() || !end.Valid() || begin.File != mainFile || end.File != mainFile {
		return snippetUnavailable
	}
	stop := end.Offset + end.TokLen
	if begin.Offset < 0 || stop > len(src) || stop <= begin.Offset {
		return snippetUnavailable
	}
	text := strings.Join(strings.Fields(decode(src[begin.Offset:stop])), " ")
	if text == "" {
		return snippetUnavailable
	}
	return truncateSnippet(text)
}
