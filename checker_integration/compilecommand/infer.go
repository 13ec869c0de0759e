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

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"
)

const DefaultIncludeMarker = "boost/config.hpp"

var DefaultSystemPrefixes = []string{
	"/opt/homebrew/include",
	"/usr/local/include",
	"/usr/include",
	"~/.local/include",
}

// Inferred is the outcome of include-path inference for a target root.
type Inferred struct {
	IncludePaths []string
	// SystemRoot is the prefix where a marker header was found, if any.
	SystemRoot string
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, p[2:])
}

// publicHeaderRoot returns the directory to add for a conventional
// "<project>/include/<project>/..." layout, or "".
func publicHeaderRoot(root string) string {
	if filepath.Base(root) == "include" {
		return filepath.Dir(root)
	}
	for dir := filepath.Dir(root); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if filepath.Base(dir) == "include" {
			return dir
		}
	}
	return ""
}

// superProjectIncludes lists <prefix>/libs/*/include when the layout holds
// a marker under one of the libraries.
func superProjectIncludes(prefix string, markers []string) []string {
	dirs, err := filepath.Glob(filepath.Join(prefix, "libs", "*", "include"))
	if err != nil || len(dirs) == 0 {
		return nil
	}
	found := false
	for _, dir := range dirs {
		for _, marker := range markers {
			if exists(filepath.Join(dir, filepath.FromSlash(marker))) {
				found = true
			}
		}
	}
	if !found {
		return nil
	}
	var includes []string
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			includes = append(includes, dir)
		}
	}
	slices.Sort(includes)
	return includes
}

// InferIncludePaths guesses include paths for a project analysed without a
// compilation database entry. Only the first prefix holding a marker (or a
// super-project layout) is used.
func InferIncludePaths(root string, prefixes, markers []string) Inferred {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	if prefixes == nil {
		prefixes = DefaultSystemPrefixes
	}
	if len(markers) == 0 {
		markers = []string{DefaultIncludeMarker}
	}

	inferred := Inferred{IncludePaths: []string{root}}
	if dir := publicHeaderRoot(root); dir != "" {
		inferred.IncludePaths = append(inferred.IncludePaths, dir)
	}

	for _, prefix := range prefixes {
		prefix = expandHome(prefix)
		if prefix == "" {
			continue
		}
		for _, marker := range markers {
			if exists(filepath.Join(prefix, filepath.FromSlash(marker))) {
				inferred.SystemRoot = prefix
				break
			}
		}
		if inferred.SystemRoot != "" {
			inferred.IncludePaths = append(inferred.IncludePaths, prefix)
			break
		}
		if libs := superProjectIncludes(prefix, markers); len(libs) > 0 {
			inferred.SystemRoot = prefix
			inferred.IncludePaths = append(inferred.IncludePaths, libs...)
			break
		}
	}
	glog.V(1).Infof("inferred include paths for %s: %v", root, inferred.IncludePaths)
	return inferred
}
