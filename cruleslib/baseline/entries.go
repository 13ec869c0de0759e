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

// Entries sort by file, rule, then line.
type Entries []Entry

func (l Entries) Len() int {
	return len(l)
}

func (l Entries) Less(i, j int) bool {
	if l[i].File != l[j].File {
		return l[i].File < l[j].File
	}
	if l[i].RuleID != l[j].RuleID {
		return l[i].RuleID < l[j].RuleID
	}
	return l[i].Line < l[j].Line
}

func (l Entries) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}
