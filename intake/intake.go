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

package intake

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"naive.systems/safeprofile/cruleslib/filter"
)

var (
	ErrTargetNotFound     = errors.New("target does not exist")
	ErrTargetNotDirectory = errors.New("target is neither a directory nor a C++ source file")
)

var cppExtensions = map[string]bool{
	".cpp": true,
	".cxx": true,
	".cc":  true,
	".c++": true,
	".hpp": true,
	".hxx": true,
	".hh":  true,
	".h++": true,
	".h":   true,
}

// IsCppSource reports whether path has a C++ source or header extension.
// The comparison ignores case.
func IsCppSource(path string) bool {
	return cppExtensions[strings.ToLower(filepath.Ext(path))]
}

// skipDir is true for hidden directories and build output directories
// ("build", "build-release", "build_debug").
func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	lower := strings.ToLower(name)
	return lower == "build" || strings.HasPrefix(lower, "build-") || strings.HasPrefix(lower, "build_")
}

// Discover returns the absolute paths of the C++ sources under target,
// sorted. A file target is returned as the only source. Paths matched by
// ignore, relative to the target, are left out.
func Discover(target string, ignore *filter.IgnoreMatcher) ([]string, error) {
	root, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
		}
		return nil, fmt.Errorf("stat %s: %v", target, err)
	}
	if info.Mode().IsRegular() {
		if !IsCppSource(root) {
			return nil, fmt.Errorf("%w: %s", ErrTargetNotDirectory, target)
		}
		return []string{root}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotDirectory, target)
	}

	var sources []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			glog.Warningf("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) || ignore.Ignored(rel) {
				glog.V(1).Infof("skipping directory %s", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsCppSource(path) {
			return nil
		}
		if ignore.Ignored(rel) {
			glog.V(1).Infof("ignoring %s", rel)
			return nil
		}
		sources = append(sources, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", target, err)
	}
	sort.Strings(sources)
	glog.Infof("discovered %d source file(s) under %s", len(sources), root)
	return sources, nil
}
