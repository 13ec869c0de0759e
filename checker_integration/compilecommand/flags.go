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

package compilecommand

import "strings"

const DefaultStandard = "c++20"

// Flags is the compilation environment used to parse one file. Values are
// shared read-only once produced; use Clone before modifying.
type Flags struct {
	IncludePaths     []string `json:"includePaths"`
	Defines          []string `json:"defines"`
	Standard         string   `json:"std"`
	WorkingDirectory string   `json:"workingDirectory"`
}

func (f Flags) Clone() Flags {
	c := f
	c.IncludePaths = append([]string(nil), f.IncludePaths...)
	c.Defines = append([]string(nil), f.Defines...)
	return c
}

// Args renders the flags as compiler arguments, standard first, then
// include paths and defines in their recorded order.
func (f Flags) Args() []string {
	std := f.Standard
	if std == "" {
		std = DefaultStandard
	}
	args := []string{"-std=" + std}
	for _, p := range f.IncludePaths {
		args = append(args, "-I"+p)
	}
	for _, d := range f.Defines {
		args = append(args, "-D"+d)
	}
	return args
}

// flagProcessor inspects args[0] (with args[1:] available as its parameter)
// and returns how many tokens it consumed, or 0 if the token is not its own.
type flagProcessor func(args []string, flags *Flags) int

var flagProcessors = []flagProcessor{
	collectSystemInclude,
	collectIncludePath,
	collectDefine,
	collectStandard,
}

// joinedOrSeparate handles both "-Xvalue" and "-X value".
func joinedOrSeparate(args []string, flag string) (value string, consumed int) {
	item := args[0]
	if item == flag {
		if len(args) > 1 {
			return args[1], 2
		}
		return "", 1
	}
	if strings.HasPrefix(item, flag) {
		return item[len(flag):], 1
	}
	return "", 0
}

func collectIncludePath(args []string, flags *Flags) int {
	value, consumed := joinedOrSeparate(args, "-I")
	if value != "" {
		flags.IncludePaths = append(flags.IncludePaths, value)
	}
	return consumed
}

func collectSystemInclude(args []string, flags *Flags) int {
	value, consumed := joinedOrSeparate(args, "-isystem")
	if value != "" {
		flags.IncludePaths = append(flags.IncludePaths, value)
	}
	return consumed
}

func collectDefine(args []string, flags *Flags) int {
	value, consumed := joinedOrSeparate(args, "-D")
	if value != "" {
		flags.Defines = append(flags.Defines, value)
	}
	return consumed
}

func collectStandard(args []string, flags *Flags) int {
	for _, prefix := range []string{"-std=", "--std="} {
		if strings.HasPrefix(args[0], prefix) {
			if v := args[0][len(prefix):]; v != "" {
				flags.Standard = v
			}
			return 1
		}
	}
	return 0
}

// ParseArguments extracts include paths, defines and the language standard
// from a compiler invocation. tokens[0] is the compiler and is skipped.
// Unrecognised tokens are ignored.
func ParseArguments(tokens []string) Flags {
	flags := Flags{}
	for it := 1; it < len(tokens); {
		consumed := 0
		for _, process := range flagProcessors {
			if consumed = process(tokens[it:], &flags); consumed > 0 {
				break
			}
		}
		if consumed == 0 {
			consumed = 1
		}
		it += consumed
	}
	return flags
}
