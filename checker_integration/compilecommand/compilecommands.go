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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/google/shlex"
)

const CompileCommandsFile = "compile_commands.json"

// CompileCommand is one record of a JSON compilation database.
type CompileCommand struct {
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	File      string   `json:"file"`
	Directory string   `json:"directory"`
	Output    string   `json:"output,omitempty"`
}

func (cc CompileCommand) validate() error {
	if cc.File == "" {
		return fmt.Errorf("entry has no 'file'")
	}
	if cc.Directory == "" {
		return fmt.Errorf("entry for %s has no 'directory'", cc.File)
	}
	if cc.Command == "" && len(cc.Arguments) == 0 {
		return fmt.Errorf("entry for %s has neither 'command' nor 'arguments'", cc.File)
	}
	return nil
}

// AbsFile returns the entry's file joined to its directory when relative.
func (cc CompileCommand) AbsFile() string {
	if filepath.IsAbs(cc.File) {
		return cc.File
	}
	return filepath.Join(cc.Directory, cc.File)
}

// Tokens returns the compiler invocation as a token list, the compiler
// itself first. Response files (@file) are expanded in place.
func (cc CompileCommand) Tokens() []string {
	var command []string
	if len(cc.Arguments) > 0 {
		command = append(command, cc.Arguments...)
	} else {
		var err error
		command, err = shlex.Split(cc.Command)
		if err != nil {
			glog.Warningf("shlex.Split(%q): %v, falling back to whitespace split", cc.Command, err)
			command = strings.Fields(cc.Command)
		}
	}
	return expandResponseFiles(command, cc.Directory)
}

func expandResponseFiles(command []string, directory string) []string {
	var out []string
	for i, token := range command {
		if i == 0 || !strings.HasPrefix(token, "@") || len(token) == 1 {
			out = append(out, token)
			continue
		}
		responseFile := token[1:]
		if !filepath.IsAbs(responseFile) {
			responseFile = filepath.Join(directory, responseFile)
		}
		content, err := os.ReadFile(responseFile)
		if err != nil {
			glog.Warningf("unable to read response file: %v", err)
			continue
		}
		options, err := shlex.Split(string(content))
		if err != nil {
			glog.Warningf("shlex.Split(%s): %v", responseFile, err)
			continue
		}
		out = append(out, options...)
	}
	return out
}

func ReadCompileCommandsFromFile(compileCommandsPath string) ([]CompileCommand, error) {
	ccFile, err := os.Open(compileCommandsPath)
	if err != nil {
		return nil, err
	}
	defer ccFile.Close()

	byteContent, err := io.ReadAll(ccFile)
	if err != nil {
		return nil, err
	}

	commands := []CompileCommand{}
	err = json.Unmarshal(byteContent, &commands)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", compileCommandsPath, err)
	}
	return commands, nil
}
