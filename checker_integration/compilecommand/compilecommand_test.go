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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   Flags
	}{
		{
			name:   "joined and separate forms",
			tokens: []string{"clang++", "-Iinc", "-I", "inc", "-DFOO", "-D", "FOO"},
			want:   Flags{IncludePaths: []string{"inc", "inc"}, Defines: []string{"FOO", "FOO"}},
		},
		{
			name:   "standard and isystem",
			tokens: []string{"g++", "-std=c++17", "-isystem", "/opt/sys", "-isystem/opt/sys2", "-c", "a.cpp"},
			want:   Flags{IncludePaths: []string{"/opt/sys", "/opt/sys2"}, Standard: "c++17"},
		},
		{
			name:   "unknown tokens ignored",
			tokens: []string{"clang++", "-O2", "-Wall", "-o", "a.o", "-DX=1", "-fPIC"},
			want:   Flags{Defines: []string{"X=1"}},
		},
		{
			name:   "last std wins",
			tokens: []string{"clang++", "-std=c++11", "--std=c++14"},
			want:   Flags{Standard: "c++14"},
		},
		{
			name:   "dangling -I",
			tokens: []string{"clang++", "-I"},
			want:   Flags{},
		},
		{
			name:   "compiler token skipped",
			tokens: []string{"-Inot-a-flag"},
			want:   Flags{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseArguments(tt.tokens)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseArguments(%v) mismatch (-want +got):\n%s", tt.tokens, diff)
			}
		})
	}
}

func TestParseArgumentsReorderIndependentFlags(t *testing.T) {
	a := ParseArguments([]string{"cc", "-I", "x", "-DA", "-std=c++20", "-Iy", "-DB"})
	b := ParseArguments([]string{"cc", "-std=c++20", "-DA", "-Ix", "-DB", "-I", "y"})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("reordering independent flags changed the result:\n%s", diff)
	}
	again := ParseArguments([]string{"cc", "-I", "x", "-DA", "-std=c++20", "-Iy", "-DB"})
	if diff := cmp.Diff(a, again); diff != "" {
		t.Errorf("parse is not deterministic:\n%s", diff)
	}
}

func TestFlagsArgsAndClone(t *testing.T) {
	f := Flags{IncludePaths: []string{"a", "b"}, Defines: []string{"X"}}
	want := []string{"-std=c++20", "-Ia", "-Ib", "-DX"}
	if diff := cmp.Diff(want, f.Args()); diff != "" {
		t.Errorf("Args mismatch:\n%s", diff)
	}
	c := f.Clone()
	c.IncludePaths[0] = "changed"
	if f.IncludePaths[0] != "a" {
		t.Error("Clone shares backing array")
	}
}

func TestTokens(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "opts.rsp"), []byte(`-Irsp "-DMSG=hello world"`), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		cc   CompileCommand
		want []string
	}{
		{
			name: "command with quotes",
			cc:   CompileCommand{Command: `clang++ -DNAME="a b" -I inc a.cpp`, Directory: dir},
			want: []string{"clang++", "-DNAME=a b", "-I", "inc", "a.cpp"},
		},
		{
			name: "arguments",
			cc:   CompileCommand{Arguments: []string{"g++", "-Iinc", "a.cpp"}, Command: "ignored", Directory: dir},
			want: []string{"g++", "-Iinc", "a.cpp"},
		},
		{
			name: "response file",
			cc:   CompileCommand{Arguments: []string{"g++", "@opts.rsp", "a.cpp"}, Directory: dir},
			want: []string{"g++", "-Irsp", "-DMSG=hello world", "a.cpp"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.cc.Tokens()); diff != "" {
				t.Errorf("Tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDatabase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.cpp"), "")
	writeFile(t, filepath.Join(dir, CompileCommandsFile), `[
  {"directory": "`+dir+`", "file": "src/a.cpp", "command": "clang++ -Iinc -DA -std=c++17 -c src/a.cpp"},
  {"directory": "`+dir+`", "file": "src/b.cpp", "arguments": ["clang++", "-I", "other", "src/b.cpp"]},
  {"directory": "`+dir+`", "file": "src/c.cpp"},
  {"file": "src/d.cpp", "command": "cc d.cpp"}
]`)

	db, err := LoadDatabase(dir)
	if err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	if db.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (invalid entries skipped)", db.Len())
	}

	flags, ok := db.Lookup(filepath.Join(dir, "src", "..", "src", "a.cpp"))
	if !ok {
		t.Fatal("entry for a.cpp not found through a non-canonical path")
	}
	want := Flags{IncludePaths: []string{"inc"}, Defines: []string{"A"}, Standard: "c++17", WorkingDirectory: dir}
	if diff := cmp.Diff(want, flags); diff != "" {
		t.Errorf("Lookup(a.cpp) mismatch (-want +got):\n%s", diff)
	}

	// b.cpp does not exist on disk; the absolute form still matches.
	if flags, ok := db.Lookup(filepath.Join(dir, "src", "b.cpp")); !ok || flags.IncludePaths[0] != "other" {
		t.Errorf("Lookup(b.cpp) = %+v, %v", flags, ok)
	}
	if _, ok := db.Lookup(filepath.Join(dir, "src", "zzz.cpp")); ok {
		t.Error("unexpected entry for unknown file")
	}
}

func TestOpenDatabaseDegrades(t *testing.T) {
	dir := t.TempDir()
	if db := OpenDatabase(filepath.Join(dir, "missing.json")); db != nil {
		t.Error("missing database should be nil")
	}
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"not": "an array"`)
	db := OpenDatabase(bad)
	if db != nil {
		t.Fatal("malformed database should be nil")
	}
	if db.Len() != 0 {
		t.Error("nil database must report no entries")
	}
	if _, ok := db.Lookup("a.cpp"); ok {
		t.Error("nil database must not resolve")
	}
}

func TestNormalizePathSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.cpp")
	writeFile(t, real, "")
	link := filepath.Join(dir, "link.cpp")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if NormalizePath(link) != NormalizePath(real) {
		t.Errorf("NormalizePath(%s) = %s, want %s", link, NormalizePath(link), NormalizePath(real))
	}
	missing := filepath.Join(dir, "nope", "x.cpp")
	if got := NormalizePath(missing); got != missing {
		t.Errorf("NormalizePath(missing) = %s, want %s", got, missing)
	}
}

func TestInferIncludePaths(t *testing.T) {
	base := t.TempDir()
	project := filepath.Join(base, "json", "include")
	nested := filepath.Join(project, "boost", "json")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	sys := filepath.Join(base, "sys")
	writeFile(t, filepath.Join(sys, "boost", "config.hpp"), "")
	super := filepath.Join(base, "super")
	writeFile(t, filepath.Join(super, "libs", "config", "include", "boost", "config.hpp"), "")
	if err := os.MkdirAll(filepath.Join(super, "libs", "core", "include"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		root     string
		prefixes []string
		want     Inferred
	}{
		{
			name:     "root named include adds parent",
			root:     project,
			prefixes: []string{},
			want:     Inferred{IncludePaths: []string{project, filepath.Dir(project)}},
		},
		{
			name:     "nested root adds include ancestor",
			root:     nested,
			prefixes: []string{},
			want:     Inferred{IncludePaths: []string{nested, project}},
		},
		{
			name:     "first prefix with marker wins",
			root:     nested,
			prefixes: []string{filepath.Join(base, "empty"), sys, super},
			want:     Inferred{IncludePaths: []string{nested, project, sys}, SystemRoot: sys},
		},
		{
			name:     "super-project layout",
			root:     nested,
			prefixes: []string{super},
			want: Inferred{
				IncludePaths: []string{nested, project,
					filepath.Join(super, "libs", "config", "include"),
					filepath.Join(super, "libs", "core", "include")},
				SystemRoot: super,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferIncludePaths(tt.root, tt.prefixes, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("InferIncludePaths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cpp"), "")
	writeFile(t, filepath.Join(dir, "b.cpp"), "")
	writeFile(t, filepath.Join(dir, CompileCommandsFile), `[
  {"directory": "/build", "file": "`+filepath.Join(dir, "a.cpp")+`", "command": "clang++ -I/x -c a.cpp"}
]`)
	r := NewResolver(OpenDatabase(dir), ResolverOptions{Root: dir, Standard: "c++23", SystemPrefixes: []string{}})

	a := r.Resolve(filepath.Join(dir, "a.cpp"))
	wantA := Flags{IncludePaths: []string{"/x"}, Standard: "c++23", WorkingDirectory: "/build"}
	if diff := cmp.Diff(wantA, a); diff != "" {
		t.Errorf("Resolve(a.cpp) mismatch (-want +got):\n%s", diff)
	}

	b := r.Resolve(filepath.Join(dir, "b.cpp"))
	root, _ := filepath.Abs(dir)
	wantB := Flags{IncludePaths: []string{root}, Standard: "c++23", WorkingDirectory: root}
	if diff := cmp.Diff(wantB, b); diff != "" {
		t.Errorf("Resolve(b.cpp) mismatch (-want +got):\n%s", diff)
	}

	b.IncludePaths[0] = "mutated"
	if again := r.Resolve(filepath.Join(dir, "b.cpp")); again.IncludePaths[0] == "mutated" {
		t.Error("cached flags were mutated through a returned value")
	}
}
