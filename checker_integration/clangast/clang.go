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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"naive.systems/safeprofile/checker_integration/compilecommand"
)

// Parser turns a source file into a syntax tree. Any failure to produce a
// complete tree is reported as an error.
type Parser interface {
	Parse(ctx context.Context, file string, flags compilecommand.Flags) (*TranslationUnit, error)
}

// ParseError is a file that the parser could not understand. The three
// causes (syntax, unresolved include, type error) are not distinguished.
type ParseError struct {
	File   string
	Detail string
}

func (e *ParseError) Error() string {
	return e.Detail
}

// syntaxOnlyArgs keep clang from producing output other than the AST and
// from reporting warnings.
var syntaxOnlyArgs = []string{"-fsyntax-only", "-Wno-everything", "-Xclang", "-ast-dump=json"}

// ClangParser runs a clang binary per file and decodes its JSON AST dump.
type ClangParser struct {
	Binary    string
	ExtraArgs []string
	// Timeout bounds one clang run. Zero leaves it to the caller's context.
	Timeout time.Duration
}

func NewClangParser(binary string, extraArgs []string) *ClangParser {
	return &ClangParser{Binary: binary, ExtraArgs: extraArgs}
}

// ResolveBinary finds the clang executable on PATH unless name is a path.
func ResolveBinary(name string) (string, error) {
	if name == "" {
		name = "clang++"
	}
	if strings.ContainsRune(name, filepath.Separator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("clang binary %s: %w", name, err)
		}
		return name, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("cannot find %s in PATH: %w", name, err)
	}
	return path, nil
}

func (p *ClangParser) args(file string, flags compilecommand.Flags) []string {
	args := []string{"-x", "c++"}
	args = append(args, flags.Args()...)
	args = append(args, syntaxOnlyArgs...)
	args = append(args, p.ExtraArgs...)
	return append(args, file)
}

func (p *ClangParser) Parse(ctx context.Context, file string, flags compilecommand.Flags) (*TranslationUnit, error) {
	file, err := filepath.Abs(file)
	if err != nil {
		return nil, &ParseError{File: file, Detail: err.Error()}
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	diagFile, err := os.CreateTemp("", "safeprofile-diag-*.xml")
	if err != nil {
		return nil, fmt.Errorf("create diagnostics log: %w", err)
	}
	diagPath := diagFile.Name()
	diagFile.Close()
	defer os.Remove(diagPath)

	cmd := exec.CommandContext(ctx, p.Binary, p.args(file, flags)...)
	if info, err := os.Stat(flags.WorkingDirectory); err == nil && info.IsDir() {
		cmd.Dir = flags.WorkingDirectory
	}
	cmd.Env = append(os.Environ(), "CC_LOG_DIAGNOSTICS=1", "CC_LOG_DIAGNOSTICS_FILE="+diagPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	glog.V(1).Info("executing: ", cmd.String())
	if err := cmd.Start(); err != nil {
		if perr := p.contextFailure(ctx, file); perr != nil {
			return nil, perr
		}
		return nil, &ParseError{File: file, Detail: fmt.Sprintf("cannot run %s: %v", p.Binary, err)}
	}

	tu, decodeErr := Decode(bufio.NewReaderSize(stdout, 1<<20), file)
	// Drain so clang never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if perr := p.contextFailure(ctx, file); perr != nil {
		return nil, perr
	}
	if waitErr != nil {
		detail := failureDetail(diagPath, stderr.String(), waitErr)
		glog.Warningf("clang failed on %s: %s", file, detail)
		return nil, &ParseError{File: file, Detail: detail}
	}
	if decodeErr != nil {
		return nil, &ParseError{File: file, Detail: decodeErr.Error()}
	}
	return tu, nil
}

func (p *ClangParser) contextFailure(ctx context.Context, file string) *ParseError {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		if p.Timeout > 0 {
			return &ParseError{File: file, Detail: fmt.Sprintf("analysis timed out after %v", p.Timeout)}
		}
		return &ParseError{File: file, Detail: "analysis timed out"}
	default:
		return &ParseError{File: file, Detail: "analysis cancelled"}
	}
}

// failureDetail picks the most specific explanation available: the first
// logged error diagnostic, then the first "error:" line on stderr, then the
// exit status.
func failureDetail(diagPath, stderr string, waitErr error) string {
	if blob, err := os.ReadFile(diagPath); err == nil && len(blob) > 0 {
		diagnostics, err := ParseDiagnostics(blob)
		if err != nil {
			glog.Warningf("cannot parse clang diagnostics log: %v", err)
		} else if d, ok := FirstError(diagnostics); ok {
			return d.String()
		}
	}
	for _, line := range strings.Split(stderr, "\n") {
		if strings.Contains(line, "error:") {
			return strings.TrimSpace(line)
		}
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return fmt.Sprintf("clang exited with status %d", exitErr.ExitCode())
	}
	return waitErr.Error()
}
