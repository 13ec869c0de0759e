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

import "sync"

// FailedSet keeps one FailedFile per path. The first message recorded for a
// path wins and adding order is preserved. It is safe for concurrent use.
type FailedSet struct {
	mu     sync.Mutex
	list   []FailedFile
	stored map[string]struct{}
}

func NewFailedSet() *FailedSet {
	return &FailedSet{stored: make(map[string]struct{})}
}

// Add reports whether the file was newly recorded.
func (s *FailedSet) Add(file, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.stored[file]; seen {
		return false
	}
	s.stored[file] = struct{}{}
	s.list = append(s.list, FailedFile{File: file, ErrorMessage: message})
	return true
}

func (s *FailedSet) Contains(file string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stored[file]
	return ok
}

func (s *FailedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

// List returns a copy of the recorded failures in adding order.
func (s *FailedSet) List() []FailedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FailedFile, len(s.list))
	copy(out, s.list)
	return out
}
