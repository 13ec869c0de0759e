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

package options

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golang/glog"
	"gopkg.in/yaml.v2"
	"naive.systems/safeprofile/profile"
)

// FileConfig mirrors the long flags plus settings only the file can carry.
type FileConfig struct {
	Profile         string                      `yaml:"profile"`
	Sarif           string                      `yaml:"sarif"`
	JSON            string                      `yaml:"json"`
	Report          string                      `yaml:"report"`
	Evidence        string                      `yaml:"evidence"`
	CompileCommands string                      `yaml:"compile_commands"`
	Clang           string                      `yaml:"clang"`
	ClangArgs       []string                    `yaml:"clang_args"`
	Std             string                      `yaml:"std"`
	Jobs            int                         `yaml:"jobs"`
	Timeout         string                      `yaml:"timeout"`
	Ignore          []string                    `yaml:"ignore"`
	Diff            string                      `yaml:"diff"`
	Baseline        string                      `yaml:"baseline"`
	Lang            string                      `yaml:"lang"`
	Progress        *bool                       `yaml:"progress"`
	ShowCode        *bool                       `yaml:"show_code"`
	Offline         *bool                       `yaml:"offline"`
	Charset         string                      `yaml:"charset"`
	IncludeMarkers  []string                    `yaml:"include_markers"`
	SystemPrefixes  []string                    `yaml:"system_prefixes"`
	Rules           map[string]profile.Override `yaml:"rules"`
}

func knownKeys() map[string]bool {
	keys := map[string]bool{}
	t := reflect.TypeOf(FileConfig{})
	for i := 0; i < t.NumField(); i++ {
		keys[strings.Split(t.Field(i).Tag.Get("yaml"), ",")[0]] = true
	}
	return keys
}

// LoadConfigFile reads a YAML configuration. Unknown top-level keys are
// logged and ignored.
func LoadConfigFile(path string) (*FileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	known := knownKeys()
	for key := range raw {
		if !known[key] {
			glog.Warningf("%s: ignoring unknown key %q", path, key)
		}
	}
	cfg := &FileConfig{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
