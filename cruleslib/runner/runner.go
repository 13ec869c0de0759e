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

package runner

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/text/message"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/checker_integration/compilecommand"
	"naive.systems/safeprofile/cruleslib/basic"
	"naive.systems/safeprofile/cruleslib/i18n"
	"naive.systems/safeprofile/profile"
)

const cancelledMessage = "analysis cancelled"

// FlagResolver supplies the compilation flags for a file.
type FlagResolver interface {
	Resolve(file string) compilecommand.Flags
}

// Analyzer evaluates rules against one file; matcher.Engine implements it.
type Analyzer interface {
	AnalyzeRules(ctx context.Context, file string, rules []profile.Rule, flags compilecommand.Flags) []findings.FileAnalysisResult
}

type Config struct {
	Files    []string
	Rules    []profile.Rule
	Resolver FlagResolver
	Engine   Analyzer
	// Workers defaults to the number of CPUs.
	Workers int
	// Timeout bounds the analysis of a single file. Zero means no limit.
	Timeout  time.Duration
	Progress bool
	Printer  *message.Printer
}

type Status int

const (
	StatusClean Status = iota
	StatusViolations
	StatusPartialFailure
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusViolations:
		return "violations"
	case StatusPartialFailure:
		return "partial failure"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

type Result struct {
	// Findings are in file order, then rule order within a file.
	Findings []findings.Finding
	// Failed holds each failed file once, with its first failure message.
	Failed   []findings.FailedFile
	Analyzed int
	Elapsed  time.Duration
}

// Status summarises the run. A failure outranks findings.
func (r *Result) Status() Status {
	switch {
	case len(r.Failed) > 0:
		return StatusPartialFailure
	case len(r.Findings) > 0:
		return StatusViolations
	}
	return StatusClean
}

// The task for the runner to run in parallel
type fileTask struct {
	id   int
	file string
}

type fileResult struct {
	id      int
	results []findings.FileAnalysisResult
}

// A goroutine workgroup to analyze files in parallel.
type paraTaskRunner struct {
	cfg            Config
	workerWg       sync.WaitGroup
	collectorWg    sync.WaitGroup
	jobsChan       chan fileTask
	resultsChan    chan fileResult
	collected      [][]findings.FileAnalysisResult
	dispatched     []bool
	processPrinter *basic.CheckingProcessPrinter
}

func (pt *paraTaskRunner) analyze(ctx context.Context, file string) []findings.FileAnalysisResult {
	if pt.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pt.cfg.Timeout)
		defer cancel()
	}
	flags := pt.cfg.Resolver.Resolve(file)
	return pt.cfg.Engine.AnalyzeRules(ctx, file, pt.cfg.Rules, flags)
}

func (pt *paraTaskRunner) worker(ctx context.Context) {
	defer pt.workerWg.Done()
	for j := range pt.jobsChan {
		if pt.processPrinter != nil {
			pt.processPrinter.StartFile(j.file)
		}
		func() {
			defer func() {
				// recover from possible panic
				if r := recover(); r != nil {
					glog.Error("Recovered in analyze: ", r, string(debug.Stack()))
					pt.resultsChan <- fileResult{id: j.id, results: []findings.FileAnalysisResult{
						findings.Failed(j.file, "", fmt.Sprintf("panic in analyze: %v", r)),
					}}
				}
			}()
			pt.resultsChan <- fileResult{id: j.id, results: pt.analyze(ctx, j.file)}
		}()
		if pt.processPrinter != nil {
			pt.processPrinter.FinishFile(j.file)
		}
	}
}

func newParaTaskRunner(ctx context.Context, cfg Config) *paraTaskRunner {
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
		if cfg.Progress {
			basic.PrintfWithTimeStamp("%s", cfg.Printer.Sprintf("Use %d CPU(s)", numWorkers))
		}
	}
	pt := &paraTaskRunner{
		cfg:         cfg,
		jobsChan:    make(chan fileTask, numWorkers),
		resultsChan: make(chan fileResult, numWorkers),
		collected:   make([][]findings.FileAnalysisResult, len(cfg.Files)),
		dispatched:  make([]bool, len(cfg.Files)),
	}
	if cfg.Progress {
		pt.processPrinter = basic.NewCheckingProcessPrinter(len(cfg.Files), cfg.Printer)
	}
	for w := 0; w < numWorkers; w++ {
		pt.workerWg.Add(1)
		go pt.worker(ctx)
	}
	pt.collectorWg.Add(1)
	go func() {
		defer pt.collectorWg.Done()
		for r := range pt.resultsChan {
			pt.collected[r.id] = r.results
		}
	}()
	return pt
}

// dispatch feeds files to the workers until all are sent or ctx is done.
func (pt *paraTaskRunner) dispatch(ctx context.Context) {
	defer close(pt.jobsChan)
	stop := func() {
		glog.Warning("analysis interrupted, remaining files are not dispatched")
		if pt.cfg.Progress {
			basic.PrintfWithTimeStamp("%s", pt.cfg.Printer.Sprintf("Ctrl C Pressed. Stop analysis"))
		}
	}
	for i, file := range pt.cfg.Files {
		if ctx.Err() != nil {
			stop()
			return
		}
		select {
		case <-ctx.Done():
			stop()
			return
		case pt.jobsChan <- fileTask{id: i, file: file}:
			pt.dispatched[i] = true
		}
	}
}

func (pt *paraTaskRunner) wait() {
	pt.workerWg.Wait()
	close(pt.resultsChan)
	pt.collectorWg.Wait()
}

// merge walks files in input order. A file with any failed rule keeps only
// its first failure and contributes no findings.
func (pt *paraTaskRunner) merge() *Result {
	failed := findings.NewFailedSet()
	res := &Result{Findings: []findings.Finding{}}
	for i, file := range pt.cfg.Files {
		if !pt.dispatched[i] {
			failed.Add(file, cancelledMessage)
			continue
		}
		var found []findings.Finding
		for _, r := range pt.collected[i] {
			if !r.Success {
				failed.Add(file, r.ErrorMessage)
				continue
			}
			found = append(found, r.Findings...)
		}
		if failed.Contains(file) {
			continue
		}
		res.Analyzed++
		res.Findings = append(res.Findings, found...)
	}
	res.Failed = failed.List()
	return res
}

// Run analyzes every file against every rule. Per-file problems are
// reported in the result; Run itself does not fail.
func Run(ctx context.Context, cfg Config) *Result {
	start := time.Now()
	if cfg.Printer == nil {
		cfg.Printer = i18n.GetPrinter("en")
	}
	pt := newParaTaskRunner(ctx, cfg)
	pt.dispatch(ctx)
	pt.wait()
	res := pt.merge()
	res.Elapsed = time.Since(start)
	glog.Infof("analyzed %d of %d files in %v: %d findings, %d failed",
		res.Analyzed, len(cfg.Files), res.Elapsed, len(res.Findings), len(res.Failed))
	return res
}
