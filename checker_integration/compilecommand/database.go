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

	"github.com/golang/glog"
)

// Database is a loaded compilation database indexed by normalised file path.
// It is read-only after loading and may be shared between goroutines.
type Database struct {
	path    string
	entries map[string]CompileCommand
}

// NormalizePath makes p absolute and resolves symlinks when p exists on
// disk. A path that does not exist keeps its cleaned absolute form.
func NormalizePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if _, err := os.Stat(abs); err != nil {
		return abs
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// LoadDatabase reads path, which may name the JSON file or a directory
// containing compile_commands.json. Invalid entries are skipped.
func LoadDatabase(path string) (*Database, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, CompileCommandsFile)
	}
	commands, err := ReadCompileCommandsFromFile(path)
	if err != nil {
		return nil, err
	}
	db := &Database{path: path, entries: make(map[string]CompileCommand, len(commands))}
	for i, cc := range commands {
		if err := cc.validate(); err != nil {
			glog.Warningf("%s: skipping entry %d: %v", path, i, err)
			continue
		}
		// Later entries for the same file replace earlier ones.
		db.entries[NormalizePath(cc.AbsFile())] = cc
	}
	glog.Infof("loaded %d compile command(s) from %s", len(db.entries), path)
	return db, nil
}

// OpenDatabase is LoadDatabase for callers that treat any problem as "no
// database": a missing file returns nil silently, a malformed one is logged.
func OpenDatabase(path string) *Database {
	if path == "" {
		return nil
	}
	db, err := LoadDatabase(path)
	if err != nil {
		if os.IsNotExist(err) {
			glog.V(1).Infof("no compilation database at %s", path)
		} else {
			glog.Warningf("ignoring compilation database: %v", err)
		}
		return nil
	}
	return db
}

func (db *Database) Path() string {
	if db == nil {
		return ""
	}
	return db.path
}

func (db *Database) Len() int {
	if db == nil {
		return 0
	}
	return len(db.entries)
}

// Lookup returns the flags recorded for file. A nil Database has no entries.
func (db *Database) Lookup(file string) (Flags, bool) {
	if db == nil {
		return Flags{}, false
	}
	cc, ok := db.entries[NormalizePath(file)]
	if !ok {
		return Flags{}, false
	}
	flags := ParseArguments(cc.Tokens())
	flags.WorkingDirectory = cc.Directory
	return flags, true
}
