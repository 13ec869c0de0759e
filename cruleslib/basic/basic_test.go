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

package basic

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestGetPercentString(t *testing.T) {
	for _, tc := range []struct {
		v1, v2 int
		want   string
	}{
		{0, 4, "0%"},
		{1, 3, "33%"},
		{4, 4, "100%"},
		{0, 0, "100%"},
	} {
		if got := GetPercentString(tc.v1, tc.v2); got != tc.want {
			t.Errorf("GetPercentString(%d, %d) = %s, want %s", tc.v1, tc.v2, got, tc.want)
		}
	}
}

func TestFormatTimeDuration(t *testing.T) {
	for _, tc := range []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{3 * time.Second, "3s"},
		{1250 * time.Millisecond, "1.25s"},
		{2*time.Second + 5*time.Millisecond, "2.005s"},
		{90 * time.Second, "90s"},
	} {
		if got := FormatTimeDuration(tc.d); got != tc.want {
			t.Errorf("FormatTimeDuration(%v) = %s, want %s", tc.d, got, tc.want)
		}
	}
}

func TestConvertCharset(t *testing.T) {
	latin1 := []byte{'c', 'a', 'f', 0xe9}
	for _, tc := range []struct {
		name    string
		in      []byte
		charset string
		want    string
	}{
		{"utf8", []byte("naïve"), "utf8", "naïve"},
		{"empty charset", []byte("x"), "", "x"},
		{"latin1", latin1, "ISO-8859-1", "café"},
		{"unknown charset", []byte("abc"), "no-such-charset", "abc"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConvertCharset(tc.in, tc.charset); got != tc.want {
				t.Errorf("ConvertCharset = %q, want %q", got, tc.want)
			}
		})
	}
	if !ValidCharset("UTF-8") || !ValidCharset("ISO-8859-1") || ValidCharset("no-such-charset") {
		t.Error("ValidCharset gave an unexpected answer")
	}
}

func TestCheckingProcessPrinter(t *testing.T) {
	var buf bytes.Buffer
	old := Console
	Console = &buf
	defer func() { Console = old }()

	p := NewCheckingProcessPrinter(2, message.NewPrinter(language.English))
	p.StartFile("a.cpp")
	p.FinishFile("a.cpp")
	p.StartFile("50%d.cpp")
	p.FinishFile("50%d.cpp")
	out := buf.String()
	if strings.Contains(out, "%!") {
		t.Errorf("output has formatting errors:\n%s", out)
	}
	for _, want := range []string{
		"Start analyzing a.cpp (1/2)",
		"Analysis of a.cpp completed (50%, 1/2)",
		"Start analyzing 50%d.cpp (2/2)",
		"Analysis of 50%d.cpp completed (100%, 2/2)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestTarDirectory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "pack")
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{"a.txt": "A", "sub/b.txt": "BB"} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	archive := src + ".tar.gz"
	if err := TarDirectory(src, archive); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(archive)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)
	var names []string
	contents := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
		if hdr.Typeflag == tar.TypeReg {
			b, err := io.ReadAll(tr)
			if err != nil {
				t.Fatal(err)
			}
			contents[hdr.Name] = string(b)
		}
	}
	sort.Strings(names)
	if diff := cmp.Diff([]string{"pack", "pack/a.txt", "pack/sub", "pack/sub/b.txt"}, names); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if contents["pack/sub/b.txt"] != "BB" {
		t.Errorf("contents = %v", contents)
	}
}

func TestConvertRelativePathToAbsolute(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.json"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ConvertRelativePathToAbsolute(dir, "x.json")
	if err != nil || got != filepath.Join(dir, "x.json") {
		t.Errorf("got %q, %v", got, err)
	}
	if _, err := ConvertRelativePathToAbsolute(dir, "y.json"); err == nil {
		t.Error("expected an error for a missing file")
	}
	if got, _ := ConvertRelativePathToAbsolute(dir, "/abs/z.json"); got != "/abs/z.json" {
		t.Errorf("absolute path changed to %q", got)
	}
}
