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
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"naive.systems/safeprofile/checker_integration/compilecommand"
)

// A trimmed dump of:
//
//	#include "h.hpp"
//	#define MK new int
//	void f() {
//	  int* p = MK;
//	}
const astFixture = `{
  "id": "0x1", "kind": "TranslationUnitDecl", "loc": {}, "range": {"begin": {}, "end": {}},
  "inner": [
    {
      "id": "0x2", "kind": "VarDecl",
      "loc": {"offset": 4, "file": "/src/h.hpp", "line": 1, "col": 5, "tokLen": 1,
              "includedFrom": {"file": "/src/a.cpp"}},
      "range": {"begin": {"offset": 0, "col": 1, "tokLen": 3, "includedFrom": {"file": "/src/a.cpp"}},
                "end": {"offset": 4, "col": 5, "tokLen": 1, "includedFrom": {"file": "/src/a.cpp"}}},
      "name": "g", "type": {"qualType": "int"}
    },
    {
      "id": "0x3", "kind": "FunctionDecl",
      "loc": {"offset": 41, "file": "/src/a.cpp", "line": 3, "col": 6, "tokLen": 1},
      "range": {"begin": {"offset": 36, "col": 1, "tokLen": 4}, "end": {"offset": 66, "line": 5, "col": 1, "tokLen": 1}},
      "name": "f", "type": {"qualType": "void ()"},
      "inner": [
        {
          "id": "0x4", "kind": "CompoundStmt",
          "range": {"begin": {"offset": 45, "line": 3, "col": 10, "tokLen": 1}, "end": {"offset": 66, "line": 5, "col": 1, "tokLen": 1}},
          "inner": [
            {
              "id": "0x5", "kind": "CXXNewExpr",
              "range": {
                "begin": {"spellingLoc": {"offset": 28, "line": 2, "col": 12, "tokLen": 3},
                          "expansionLoc": {"offset": 58, "line": 4, "col": 12, "tokLen": 2}},
                "end": {"spellingLoc": {"offset": 32, "col": 16, "tokLen": 3},
                        "expansionLoc": {"offset": 58, "line": 4, "col": 12, "tokLen": 2}}
              },
              "type": {"qualType": "int *"}, "valueCategory": "prvalue"
            }
          ]
        }
      ]
    }
  ]
}`

func TestDecodeRestoresElidedFields(t *testing.T) {
	tu, err := Decode(strings.NewReader(astFixture), "/src/a.cpp")
	if err != nil {
		t.Fatal(err)
	}
	if tu.MainFile != "/src/a.cpp" {
		t.Errorf("MainFile = %q", tu.MainFile)
	}
	header := tu.Root.Inner[0]
	if got := header.Range.Begin.Expansion(); got.File != "/src/h.hpp" || got.Line != 1 || got.IncludedFrom == nil {
		t.Errorf("header begin = %+v, want file and line inherited from loc", got)
	}

	fn := tu.Root.Inner[1]
	if got := fn.Range.Begin.Expansion(); got.File != "/src/a.cpp" || got.Line != 3 || got.IncludedFrom != nil {
		t.Errorf("function begin = %+v", got)
	}

	newExpr := fn.Inner[0].Inner[0]
	tests := []struct {
		name string
		loc  BareLocation
		file string
		line int
	}{
		{"spelling begin", newExpr.Range.Begin.Spelling(), "/src/a.cpp", 2},
		{"expansion begin", newExpr.Range.Begin.Expansion(), "/src/a.cpp", 4},
		{"spelling end", newExpr.Range.End.Spelling(), "/src/a.cpp", 4},
		{"expansion end", newExpr.Range.End.Expansion(), "/src/a.cpp", 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.loc.File != tc.file || tc.loc.Line != tc.line {
				t.Errorf("got %s:%d, want %s:%d", tc.loc.File, tc.loc.Line, tc.file, tc.line)
			}
		})
	}
	if newExpr.Type.Canonical() != "int *" {
		t.Errorf("type = %q", newExpr.Type.Canonical())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not json", `{"id": "0x1"}`} {
		if _, err := Decode(strings.NewReader(input), "/a.cpp"); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", input)
		}
	}
}

func TestInvalidLocationsUntouched(t *testing.T) {
	tu, err := Decode(strings.NewReader(astFixture), "/src/a.cpp")
	if err != nil {
		t.Fatal(err)
	}
	if tu.Root.Loc.Valid() || tu.Root.Loc.File != "" {
		t.Errorf("root location = %+v, want invalid and empty", tu.Root.Loc)
	}
}

func TestWalkOrder(t *testing.T) {
	root := &Node{Kind: "a", Inner: []*Node{
		{Kind: "b", Inner: []*Node{{Kind: "c"}}},
		{Kind: "d"},
	}}
	var events []string
	Walk(root, func(n *Node) bool {
		events = append(events, "+"+n.Kind)
		return n.Kind != "b"
	}, func(n *Node) {
		events = append(events, "-"+n.Kind)
	})
	want := []string{"+a", "+b", "-b", "+d", "-d", "-a"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("walk mismatch (-want +got):\n%s", diff)
	}
}

const diagnosticsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple Computer//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<dict>
  <key>main-file</key>
  <string>/src/a.cpp</string>
  <key>dwarf-debug-flags</key>
  <string></string>
  <key>diagnostics</key>
  <array>
    <dict>
      <key>level</key><string>warning</string>
      <key>filename</key><string>/src/a.cpp</string>
      <key>line</key><integer>1</integer>
      <key>column</key><integer>3</integer>
      <key>message</key><string>unused variable</string>
    </dict>
    <dict>
      <key>level</key><string>error</string>
      <key>filename</key><string>/src/a.cpp</string>
      <key>line</key><integer>2</integer>
      <key>column</key><integer>10</integer>
      <key>message</key><string>'missing.hpp' file not found</string>
      <key>ID</key><integer>1234</integer>
    </dict>
  </array>
</dict>
`

func TestParseDiagnostics(t *testing.T) {
	diagnostics, err := ParseDiagnostics([]byte(diagnosticsFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(diagnostics))
	}
	first, ok := FirstError(diagnostics)
	if !ok {
		t.Fatal("no error diagnostic")
	}
	want := Diagnostic{
		Level:        "error",
		MainFilename: "/src/a.cpp",
		Filename:     "/src/a.cpp",
		Line:         2,
		Column:       10,
		Message:      "'missing.hpp' file not found",
		ID:           1234,
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("diagnostic mismatch (-want +got):\n%s", diff)
	}
	if got := first.String(); got != "/src/a.cpp:2:10: 'missing.hpp' file not found" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseDiagnosticsKeyOrder(t *testing.T) {
	blob := `<dict>
  <key>dwarf-debug-flags</key>
  <string>-g</string>
  <key>diagnostics</key>
  <array>
    <dict>
      <key>level</key><string>fatal error</string>
      <key>message</key><string>too many errors</string>
    </dict>
  </array>
  <key>main-file</key>
  <string>/src/b.cpp</string>
  <key>version</key>
  <string>clang 15</string>
</dict>`
	diagnostics, err := ParseDiagnostics([]byte(blob))
	if err != nil {
		t.Fatal(err)
	}
	want := []Diagnostic{{Level: "fatal error", MainFilename: "/src/b.cpp", Message: "too many errors"}}
	if diff := cmp.Diff(want, diagnostics); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestFailureDetail(t *testing.T) {
	dir := t.TempDir()
	withLog := filepath.Join(dir, "diag.xml")
	if err := os.WriteFile(withLog, []byte(diagnosticsFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	waitErr := errors.New("exit status 1")
	tests := []struct {
		name     string
		diagPath string
		stderr   string
		want     string
	}{
		{"diagnostics log wins", withLog, "a.cpp:9:9: error: other\n", "/src/a.cpp:2:10: 'missing.hpp' file not found"},
		{"stderr fallback", filepath.Join(dir, "absent.xml"), "In file included from x\na.cpp:1:1: error: unknown type name 'foo'\n", "a.cpp:1:1: error: unknown type name 'foo'"},
		{"plain error", filepath.Join(dir, "absent.xml"), "", "exit status 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := failureDetail(tc.diagPath, tc.stderr, waitErr); got != tc.want {
				t.Errorf("failureDetail() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClangParserArgs(t *testing.T) {
	p := NewClangParser("clang++", []string{"-fno-exceptions"})
	flags := compilecommand.Flags{IncludePaths: []string{"/inc"}, Defines: []string{"X=1"}, Standard: "c++17"}
	got := p.args("/src/a.cpp", flags)
	want := []string{"-x", "c++", "-std=c++17", "-I/inc", "-DX=1",
		"-fsyntax-only", "-Wno-everything", "-Xclang", "-ast-dump=json", "-fno-exceptions", "/src/a.cpp"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

// fakeClang writes a shell script standing in for the compiler.
func fakeClang(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh")
	}
	path := filepath.Join(t.TempDir(), "clang")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClangParserParse(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "ast.json")
	if err := os.WriteFile(fixture, []byte(astFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	source := filepath.Join(dir, "a.cpp")
	if err := os.WriteFile(source, []byte("int x;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("success", func(t *testing.T) {
		p := NewClangParser(fakeClang(t, "cat "+fixture+"\n"), nil)
		tu, err := p.Parse(context.Background(), source, compilecommand.Flags{WorkingDirectory: dir})
		if err != nil {
			t.Fatal(err)
		}
		if tu.MainFile != source || len(tu.Root.Inner) != 2 {
			t.Errorf("unexpected tree: main %q, %d children", tu.MainFile, len(tu.Root.Inner))
		}
	})

	t.Run("compile error", func(t *testing.T) {
		p := NewClangParser(fakeClang(t, "echo \"a.cpp:1:5: error: expected ';'\" >&2\nexit 1\n"), nil)
		_, err := p.Parse(context.Background(), source, compilecommand.Flags{})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("err = %v, want *ParseError", err)
		}
		if parseErr.Detail != "a.cpp:1:5: error: expected ';'" {
			t.Errorf("detail = %q", parseErr.Detail)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		p := NewClangParser(filepath.Join(dir, "no-such-clang"), nil)
		if _, err := p.Parse(context.Background(), source, compilecommand.Flags{}); err == nil {
			t.Error("Parse succeeded with a missing binary")
		}
	})

	t.Run("timed out", func(t *testing.T) {
		p := NewClangParser(fakeClang(t, "exec sleep 5\n"), nil)
		p.Timeout = 100 * time.Millisecond
		_, err := p.Parse(context.Background(), source, compilecommand.Flags{})
		if err == nil || err.Error() != "analysis timed out after 100ms" {
			t.Errorf("err = %v, want analysis timed out after 100ms", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		p := NewClangParser(fakeClang(t, "sleep 5\n"), nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Parse(ctx, source, compilecommand.Flags{})
		if err == nil || err.Error() != "analysis cancelled" {
			t.Errorf("err = %v, want analysis cancelled", err)
		}
	})
}

func TestResolveBinary(t *testing.T) {
	if _, err := ResolveBinary(filepath.Join(t.TempDir(), "missing", "clang")); err == nil {
		t.Error("ResolveBinary accepted a missing path")
	}
	if _, err := ResolveBinary("definitely-not-a-real-compiler-name"); err == nil {
		t.Error("ResolveBinary found a nonexistent program")
	}
}
