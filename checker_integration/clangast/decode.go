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

package clangast

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads a clang -ast-dump=json document and restores the file and
// line fields clang elides, so every valid location is self-contained.
func Decode(r io.Reader, mainFile string) (*TranslationUnit, error) {
	var root Node
	dec := json.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("decode clang AST: %w", err)
	}
	if root.Kind == "" {
		return nil, fmt.Errorf("decode clang AST: document has no root node")
	}
	resolveLocations(&root)
	return &TranslationUnit{MainFile: mainFile, Root: &root}, nil
}

// locationState tracks the last printed file and line, in the order clang
// printed them: node loc, range begin, range end, then children. Within a
// macro location the spelling half precedes the expansion half.
type locationState struct {
	file         string
	line         int
	includedFrom *IncludedFrom
}

func (s *locationState) fill(l *BareLocation) {
	if l == nil || !l.Valid() {
		return
	}
	if l.File != "" {
		s.file = l.File
		s.includedFrom = l.IncludedFrom
	} else {
		l.File = s.file
		if l.IncludedFrom == nil {
			l.IncludedFrom = s.includedFrom
		}
	}
	if l.Line != 0 {
		s.line = l.Line
	} else {
		l.Line = s.line
	}
}

func (s *locationState) fillLocation(l *Location) {
	if l.SpellingLoc != nil || l.ExpansionLoc != nil {
		s.fill(l.SpellingLoc)
		s.fill(l.ExpansionLoc)
		return
	}
	s.fill(&l.BareLocation)
}

func resolveLocations(root *Node) {
	state := &locationState{}
	Walk(root, func(n *Node) bool {
		state.fillLocation(&n.Loc)
		state.fillLocation(&n.Range.Begin)
		state.fillLocation(&n.Range.End)
		return true
	}, nil)
}
