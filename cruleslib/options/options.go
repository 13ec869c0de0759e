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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/pflag"
	"naive.systems/safeprofile/checker_integration/compilecommand"
	"naive.systems/safeprofile/cruleslib/basic"
	"naive.systems/safeprofile/cruleslib/i18n"
	"naive.systems/safeprofile/profile"
)

const (
	DefaultConfigFile = "boostsafe.yaml"
	DefaultClang      = "clang++"
	DefaultTimeout    = 5 * time.Minute
	DefaultCharset    = "utf8"
)

var ErrInvalidOption = errors.New("invalid option")

// Options is the resolved configuration of one run.
type Options struct {
	Target          string
	Profile         string
	ConfigPath      string
	SarifPath       string
	JSONPath        string
	ReportPath      string
	EvidenceDir     string
	CompileCommands string
	ClangBin        string
	Standard        string
	Jobs            int
	Timeout         time.Duration
	IgnorePatterns  []string
	DiffPath        string
	BaselinePath    string
	WriteBaseline   string
	Lang            string
	Progress        bool
	ShowCode        bool
	Offline         bool
	Charset         string
	ClangArgs       []string
	IncludeMarkers  []string
	SystemPrefixes  []string
	Overrides       map[string]profile.Override
}

// Mode is shown in the banner.
func (o *Options) Mode() string {
	if o.Offline {
		return "offline"
	}
	return "online"
}

// Root is the directory the target lives in, or the target itself.
func (o *Options) Root() string {
	if info, err := os.Stat(o.Target); err == nil && !info.IsDir() {
		return filepath.Dir(o.Target)
	}
	return o.Target
}

// Flags holds the raw command line values before the config file is merged.
type Flags struct {
	profile         string
	config          string
	sarif           string
	json            string
	report          string
	evidence        string
	compileCommands string
	clang           string
	std             string
	jobs            int
	timeout         time.Duration
	ignore          []string
	diff            string
	baseline        string
	writeBaseline   string
	lang            string
	progress        bool
	showCode        bool
	offline         bool
	online          bool
	charset         string
	clangArgs       []string

	fs *pflag.FlagSet
}

// RegisterFlags adds the analysis flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVarP(&f.profile, "profile", "p", profile.CoreSafety, "Safety profile to check: "+strings.Join(profile.Names(), ", "))
	fs.StringVarP(&f.config, "config", "c", "", "YAML configuration file (default <target>/"+DefaultConfigFile+" when present)")
	fs.StringVarP(&f.sarif, "sarif", "s", "", "Write a SARIF 2.1.0 report to this file")
	fs.StringVar(&f.json, "json", "", "Write a JSON report to this file")
	fs.StringVar(&f.report, "report", "", "Write an HTML report to this file")
	fs.StringVar(&f.evidence, "evidence", "", "Write every report and an archive into this directory")
	fs.StringVar(&f.compileCommands, "compile-commands", "", "Compilation database file or directory (default <target>/"+compilecommand.CompileCommandsFile+")")
	fs.StringVar(&f.clang, "clang", DefaultClang, "Clang executable used to parse sources")
	fs.StringVar(&f.std, "std", compilecommand.DefaultStandard, "Language standard when the compilation database has none")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "Number of files analyzed in parallel (0 means one per CPU)")
	fs.DurationVar(&f.timeout, "timeout", DefaultTimeout, "Time limit for analyzing one file (0 disables)")
	fs.StringArrayVar(&f.ignore, "ignore", nil, "Glob of paths to skip, relative to the target (repeatable)")
	fs.StringVar(&f.diff, "diff", "", "Unified diff; only report findings on changed lines")
	fs.StringVar(&f.baseline, "baseline", "", "Suppress findings recorded in this baseline file")
	fs.StringVar(&f.writeBaseline, "write-baseline", "", "Record the current findings as a baseline file")
	fs.StringVar(&f.lang, "lang", "en", "Language of console messages: "+strings.Join(i18n.Languages(), ", "))
	fs.BoolVar(&f.progress, "progress", false, "Print per-file progress")
	fs.BoolVar(&f.showCode, "show-code", false, "Show source lines under each console finding")
	fs.BoolVar(&f.offline, "offline", true, "Run without network access")
	fs.BoolVar(&f.online, "online", false, "Run in online mode")
	fs.StringVar(&f.charset, "charset", DefaultCharset, "Source file encoding")
	fs.StringArrayVar(&f.clangArgs, "clang-arg", nil, "Extra argument passed to clang (repeatable)")
	return f
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

func pick(flagValue string, flagSet bool, configValue string) string {
	if flagSet || configValue == "" {
		return flagValue
	}
	return configValue
}

// Resolve merges the flags with the configuration file found for target.
// Explicit flags win over the file, which wins over defaults.
func (f *Flags) Resolve(target string) (*Options, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: no target given", ErrInvalidOption)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	o := &Options{Target: absTarget}

	configPath := f.config
	if configPath == "" {
		candidate := filepath.Join(o.Root(), DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	cfg := &FileConfig{}
	if configPath != "" {
		cfg, err = LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		o.ConfigPath = configPath
		glog.Infof("using configuration %s", configPath)
	}

	o.Profile = pick(f.profile, f.changed("profile"), cfg.Profile)
	o.SarifPath = pick(f.sarif, f.changed("sarif"), cfg.Sarif)
	o.JSONPath = pick(f.json, f.changed("json"), cfg.JSON)
	o.ReportPath = pick(f.report, f.changed("report"), cfg.Report)
	o.EvidenceDir = pick(f.evidence, f.changed("evidence"), cfg.Evidence)
	o.CompileCommands = pick(f.compileCommands, f.changed("compile-commands"), cfg.CompileCommands)
	o.ClangBin = pick(f.clang, f.changed("clang"), cfg.Clang)
	o.Standard = pick(f.std, f.changed("std"), cfg.Std)
	o.DiffPath = pick(f.diff, f.changed("diff"), cfg.Diff)
	o.BaselinePath = pick(f.baseline, f.changed("baseline"), cfg.Baseline)
	o.WriteBaseline = f.writeBaseline
	o.Lang = pick(f.lang, f.changed("lang"), cfg.Lang)
	o.Charset = pick(f.charset, f.changed("charset"), cfg.Charset)

	o.Jobs = f.jobs
	if !f.changed("jobs") && cfg.Jobs != 0 {
		o.Jobs = cfg.Jobs
	}
	o.Timeout = f.timeout
	if !f.changed("timeout") && cfg.Timeout != "" {
		o.Timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: timeout %q in %s: %v", ErrInvalidOption, cfg.Timeout, configPath, err)
		}
	}
	o.Progress = f.progress
	if !f.changed("progress") && cfg.Progress != nil {
		o.Progress = *cfg.Progress
	}
	o.ShowCode = f.showCode
	if !f.changed("show-code") && cfg.ShowCode != nil {
		o.ShowCode = *cfg.ShowCode
	}
	o.Offline = f.offline && !f.online
	if !f.changed("offline") && !f.changed("online") && cfg.Offline != nil {
		o.Offline = *cfg.Offline
	}

	// Input files named in the configuration are relative to it.
	if configPath != "" {
		configDir := filepath.Dir(configPath)
		for _, in := range []struct {
			value *string
			flag  string
		}{
			{&o.CompileCommands, "compile-commands"},
			{&o.DiffPath, "diff"},
			{&o.BaselinePath, "baseline"},
		} {
			if *in.value == "" || f.changed(in.flag) {
				continue
			}
			if abs, err := basic.ConvertRelativePathToAbsolute(configDir, *in.value); err == nil {
				*in.value = abs
			}
		}
	}

	o.IgnorePatterns = append(append([]string(nil), cfg.Ignore...), f.ignore...)
	o.ClangArgs = append(append([]string(nil), cfg.ClangArgs...), f.clangArgs...)
	o.IncludeMarkers = cfg.IncludeMarkers
	o.SystemPrefixes = cfg.SystemPrefixes
	o.Overrides = cfg.Rules

	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) validate() error {
	if _, err := os.Stat(o.Target); err != nil {
		return fmt.Errorf("%w: target %s: %v", ErrInvalidOption, o.Target, err)
	}
	if _, err := profile.Load(o.Profile); err != nil {
		return err
	}
	if o.Jobs < 0 {
		return fmt.Errorf("%w: --jobs must not be negative", ErrInvalidOption)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("%w: --timeout must not be negative", ErrInvalidOption)
	}
	if !i18n.Supported(o.Lang) {
		return fmt.Errorf("%w: unsupported language %q (want one of %s)", ErrInvalidOption, o.Lang, strings.Join(i18n.Languages(), ", "))
	}
	if !basic.ValidCharset(o.Charset) {
		return fmt.Errorf("%w: unknown charset %q", ErrInvalidOption, o.Charset)
	}
	return nil
}
