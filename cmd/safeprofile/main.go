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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"
	"naive.systems/safeprofile/checker_integration/clangast"
	"naive.systems/safeprofile/checker_integration/compilecommand"
	"naive.systems/safeprofile/checker_integration/matcher"
	"naive.systems/safeprofile/cruleslib/baseline"
	"naive.systems/safeprofile/cruleslib/basic"
	"naive.systems/safeprofile/cruleslib/filter"
	"naive.systems/safeprofile/cruleslib/i18n"
	"naive.systems/safeprofile/cruleslib/options"
	"naive.systems/safeprofile/cruleslib/runner"
	"naive.systems/safeprofile/cruleslib/stats"
	"naive.systems/safeprofile/diff"
	"naive.systems/safeprofile/intake"
	"naive.systems/safeprofile/profile"
	"naive.systems/safeprofile/report"
)

// Process exit codes.
const (
	exitClean      = 0
	exitViolations = 1
	exitPartial    = 2
	exitFatal      = 3
)

func exitCode(s runner.Status) int {
	switch s {
	case runner.StatusViolations:
		return exitViolations
	case runner.StatusPartialFailure:
		return exitPartial
	}
	return exitClean
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "safeprofile [flags] <path>",
		Short:         "C++ Safety Profile conformance analysis",
		Long:          "safeprofile checks C++ sources against a Safety Profile by matching patterns in the clang AST.",
		Version:       report.Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  safeprofile ./my-project
  safeprofile --profile memory-safety --sarif out.sarif ./src
  safeprofile --evidence ./evidence --baseline safeprofile-baseline.json .`,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("safeprofile {{.Version}}\nC++ Safety Profile conformance analysis tool\n")
	cmd.CompletionOptions.DisableDefaultCmd = true
	flags := options.RegisterFlags(cmd.Flags())
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := flags.Resolve(args[0])
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		*code, err = run(ctx, opts, stdout)
		return err
	}
	return cmd
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	code := exitClean
	cmd := newRootCmd(stdout, stderr, &code)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	basic.Console = stdout
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		glog.Errorf("safeprofile: %v", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	return code
}

func run(ctx context.Context, opts *options.Options, stdout io.Writer) (int, error) {
	start := time.Now()
	p := i18n.GetPrinter(opts.Lang)
	root := opts.Root()
	fmt.Fprintln(stdout, p.Sprintf("Boost.SafeProfile %s (%s mode)", report.Version, p.Sprintf(opts.Mode())))

	rules, err := profile.Load(opts.Profile)
	if err != nil {
		return exitFatal, err
	}
	rules, err = profile.Apply(rules, opts.Overrides)
	if err != nil {
		return exitFatal, err
	}

	files, err := intake.Discover(opts.Target, filter.NewIgnoreMatcher(opts.IgnorePatterns))
	if err != nil {
		return exitFatal, err
	}
	if len(files) == 0 {
		fmt.Fprintln(stdout, p.Sprintf("No source files found in %s", opts.Target))
	}

	result, err := analyze(ctx, opts, root, files, rules, p, stdout)
	if err != nil {
		return exitFatal, err
	}

	list := filter.LimitReports(result.Findings, profile.ReportLimits(opts.Overrides))
	if opts.DiffPath != "" {
		patch, err := diff.ParseFile(opts.DiffPath)
		if err != nil {
			return exitFatal, err
		}
		list = filter.ChangedLinesOnly(list, patch, root)
	}
	if opts.WriteBaseline != "" {
		b := baseline.Create(list, root, opts.Profile)
		if err := baseline.Write(opts.WriteBaseline, b); err != nil {
			return exitFatal, err
		}
		fmt.Fprintln(stdout, p.Sprintf("Baseline with %d entries written to %s", len(b.Entries), opts.WriteBaseline))
	}
	suppressed := 0
	if opts.BaselinePath != "" {
		b, err := baseline.Load(opts.BaselinePath)
		if err != nil {
			return exitFatal, err
		}
		list, suppressed = baseline.Suppress(list, b, root)
	}

	shown := i18n.LocalizeFindings(list, opts.Lang)
	summary := &stats.Summary{
		Profile:       opts.Profile,
		StartedAt:     start,
		FilesTotal:    len(files),
		FilesAnalyzed: result.Analyzed,
		FilesFailed:   len(result.Failed),
		Suppressed:    suppressed,
	}
	summary.Count(list)
	if loc, err := stats.CountLines(files); err == nil {
		summary.LinesOfCode = loc
	}
	summary.ElapsedSeconds = time.Since(start).Seconds()

	r := report.NewRun(opts.Profile, root, i18n.LocalizeRules(rules, opts.Lang), shown, result.Failed, summary)
	report.WriteText(stdout, r, p, report.TextOptions{ShowCode: opts.ShowCode, Charset: opts.Charset})
	if err := writeReports(opts, r, p, stdout); err != nil {
		return exitFatal, err
	}

	final := runner.Result{Findings: list, Failed: result.Failed}
	glog.Infof("run finished: %s", final.Status())
	return exitCode(final.Status()), nil
}

func analyze(ctx context.Context, opts *options.Options, root string, files []string, rules []profile.Rule, p *message.Printer, stdout io.Writer) (*runner.Result, error) {
	if len(files) == 0 {
		return &runner.Result{}, nil
	}
	dbPath := opts.CompileCommands
	if dbPath == "" {
		dbPath = filepath.Join(root, compilecommand.CompileCommandsFile)
	}
	db := compilecommand.OpenDatabase(dbPath)
	resolver := compilecommand.NewResolver(db, compilecommand.ResolverOptions{
		Root:           root,
		Standard:       opts.Standard,
		SystemPrefixes: opts.SystemPrefixes,
		IncludeMarkers: opts.IncludeMarkers,
	})
	if db == nil {
		glog.Infof("no compilation database, inferred include paths: %v", resolver.Inferred().IncludePaths)
	}

	bin, err := clangast.ResolveBinary(opts.ClangBin)
	if err != nil {
		return nil, err
	}
	parser := clangast.NewClangParser(bin, opts.ClangArgs)
	parser.Timeout = opts.Timeout
	engine := matcher.NewEngine(parser, opts.Charset)

	fmt.Fprintln(stdout, p.Sprintf("Analyzing %d file(s) with profile %s", len(files), opts.Profile))

	return runner.Run(ctx, runner.Config{
		Files:    files,
		Rules:    rules,
		Resolver: resolver,
		Engine:   engine,
		Workers:  opts.Jobs,
		Timeout:  opts.Timeout,
		Progress: opts.Progress,
		Printer:  p,
	}), nil
}

func writeReports(opts *options.Options, r *report.Run, p *message.Printer, stdout io.Writer) error {
	if opts.SarifPath != "" {
		if err := report.WriteSarif(opts.SarifPath, r); err != nil {
			return err
		}
		fmt.Fprintln(stdout, p.Sprintf("SARIF report written to %s", opts.SarifPath))
	}
	if opts.JSONPath != "" {
		if err := report.WriteJSON(opts.JSONPath, r); err != nil {
			return err
		}
		fmt.Fprintln(stdout, p.Sprintf("JSON report written to %s", opts.JSONPath))
	}
	if opts.ReportPath != "" {
		if err := report.WriteHTML(opts.ReportPath, r); err != nil {
			return err
		}
		fmt.Fprintln(stdout, p.Sprintf("HTML report written to %s", opts.ReportPath))
	}
	if opts.EvidenceDir != "" {
		archive, err := report.WriteEvidence(opts.EvidenceDir, r, report.TextOptions{Charset: opts.Charset})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, p.Sprintf("Evidence written to %s", archive))
	}
	return nil
}

func main() {
	// glog complains when it logs before the Go flag set is parsed; cobra
	// parses its own copy of the flags.
	_ = flag.CommandLine.Parse([]string{})
	code := execute(os.Args[1:], os.Stdout, os.Stderr)
	glog.Flush()
	os.Exit(code)
}
