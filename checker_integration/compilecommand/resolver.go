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
	"sync"

	"github.com/golang/glog"
)

type ResolverOptions struct {
	// Root is the analysis target, used for inference and as the working
	// directory of files without a database entry.
	Root string
	// Standard replaces DefaultStandard for files the database does not
	// cover or whose entry has no -std.
	Standard       string
	SystemPrefixes []string
	IncludeMarkers []string
}

// Resolver produces the Flags for each file once and memoises them. The
// database is shared read-only; a nil database means inference only.
type Resolver struct {
	db   *Database
	opts ResolverOptions

	inferOnce sync.Once
	inferred  Inferred

	mu    sync.Mutex
	cache map[string]Flags
}

func NewResolver(db *Database, opts ResolverOptions) *Resolver {
	if opts.Standard == "" {
		opts.Standard = DefaultStandard
	}
	if abs, err := filepath.Abs(opts.Root); err == nil {
		opts.Root = abs
	}
	if info, err := os.Stat(opts.Root); err == nil && !info.IsDir() {
		opts.Root = filepath.Dir(opts.Root)
	}
	return &Resolver{db: db, opts: opts, cache: make(map[string]Flags)}
}

func (r *Resolver) Database() *Database {
	return r.db
}

// Inferred returns the include-path inference for the root, computing it on
// first use.
func (r *Resolver) Inferred() Inferred {
	r.inferOnce.Do(func() {
		r.inferred = InferIncludePaths(r.opts.Root, r.opts.SystemPrefixes, r.opts.IncludeMarkers)
	})
	return r.inferred
}

// Resolve never fails: files unknown to the database get inferred flags.
// The returned value is a private copy.
func (r *Resolver) Resolve(file string) Flags {
	key := NormalizePath(file)

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		glog.V(2).Infof("flags cache hit for %s", key)
		return cached.Clone()
	}

	flags, found := r.db.Lookup(key)
	if found {
		if flags.Standard == "" {
			flags.Standard = r.opts.Standard
		}
		glog.V(1).Infof("using compilation database flags for %s", key)
	} else {
		flags = Flags{
			IncludePaths:     append([]string(nil), r.Inferred().IncludePaths...),
			Standard:         r.opts.Standard,
			WorkingDirectory: r.opts.Root,
		}
	}

	r.mu.Lock()
	if prev, raced := r.cache[key]; raced {
		flags = prev
	} else {
		r.cache[key] = flags
	}
	r.mu.Unlock()
	return flags.Clone()
}
