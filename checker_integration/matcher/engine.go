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

package matcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/golang/glog"
	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/checker_integration/clangast"
	"naive.systems/safeprofile/checker_integration/compilecommand"
	"naive.systems/safeprofile/cruleslib/basic"
	"naive.systems/safeprofile/profile"
)

var ErrUnsupportedRule = errors.New("unsupported rule")

// Engine evaluates rules against parsed files. It keeps no state between
// calls and is safe for concurrent use if its Parser is.
type Engine struct {
	parser  clangast.Parser
	charset string
}

// NewEngine returns an engine reading sources in the given charset ("" or
// "utf8" for UTF-8).
func NewEngine(parser clangast.Parser, charset string) *Engine {
	return &Engine{parser: parser, charset: charset}
}

// Analyze evaluates a single rule. Rules without a registered pattern are
// reported as ErrUnsupportedRule; every other problem is carried in the
// result.
func (e *Engine) Analyze(ctx context.Context, file string, rule profile.Rule, flags compilecommand.Flags) (findings.FileAnalysisResult, error) {
	if !Supported(rule.ID) {
		return findings.FileAnalysisResult{}, fmt.Errorf("%w: %s", ErrUnsupportedRule, rule.ID)
	}
	return e.AnalyzeRules(ctx, file, []profile.Rule{rule}, flags)[0], nil
}

// AnalyzeRules parses file once and evaluates every supported rule against
// the tree, returning one result per supported rule in input order.
// Unsupported rules are skipped. When the file cannot be read or parsed,
// every result carries the same failure.
func (e *Engine) AnalyzeRules(ctx context.Context, file string, rules []profile.Rule, flags compilecommand.Flags) []findings.FileAnalysisResult {
	var supported []profile.Rule
	for _, rule := range rules {
		if Supported(rule.ID) {
			supported = append(supported, rule)
		} else {
			glog.V(1).Infof("skipping unsupported rule %s", rule.ID)
		}
	}
	if len(supported) == 0 {
		return nil
	}

	failAll := func(message string) []findings.FileAnalysisResult {
		results := make([]findings.FileAnalysisResult, len(supported))
		for i, rule := range supported {
			results[i] = findings.Failed(file, rule.ID, message)
		}
		return results
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return failAll(fmt.Sprintf("cannot read file: %v", err))
	}
	tu, err := e.parser.Parse(ctx, file, flags)
	if err != nil {
		glog.Errorf("analysis of %s failed: %v", file, err)
		return failAll(err.Error())
	}

	perRule := e.evaluate(tu, src, file, supported)
	results := make([]findings.FileAnalysisResult, len(supported))
	for i, rule := range supported {
		results[i] = findings.Succeeded(file, rule.ID, perRule[i])
	}
	return results
}

// spanKey identifies a match by where it expands and where it is spelled.
// Template instantiations repeat both; distinct constructs from one macro
// expansion share the former but not the latter.
type spanKey struct {
	begin, end           int
	spellFile            string
	spellBegin, spellEnd int
}

func keyOf(n *clangast.Node, begin clangast.BareLocation) spanKey {
	spellBegin, spellEnd := n.Range.Begin.Spelling(), n.Range.End.Spelling()
	return spanKey{
		begin:      begin.Offset,
		end:        n.Range.End.Expansion().Offset,
		spellFile:  spellBegin.File,
		spellBegin: spellBegin.Offset,
		spellEnd:   spellEnd.Offset,
	}
}

func (e *Engine) evaluate(tu *clangast.TranslationUnit, src []byte, file string, rules []profile.Rule) [][]findings.Finding {
	decode := func(b []byte) string { return basic.ConvertCharset(b, e.charset) }
	skip := headerOnly(tu)
	decls := buildDeclIndex(tu.Root, skip)

	type boundRule struct {
		rule profile.Rule
		kind matcherKind
		seen map[spanKey]bool
	}
	bound := make([]boundRule, len(rules))
	for i, rule := range rules {
		bound[i] = boundRule{rule: rule, kind: matcherKinds[ruleKinds[rule.ID]], seen: map[spanKey]bool{}}
	}

	out := make([][]findings.Finding, len(rules))
	clangast.Walk(tu.Root, func(n *clangast.Node) bool {
		if skip(n) {
			return false
		}
		for i := range bound {
			c, ok := bound[i].kind.match(n, decls)
			if !ok {
				continue
			}
			pos := position(n)
			if !pos.Valid() || pos.File != tu.MainFile {
				continue
			}
			// Template instantiations repeat the pattern's nodes.
			key := keyOf(n, pos)
			if bound[i].seen[key] {
				continue
			}
			bound[i].seen[key] = true
			out[i] = append(out[i], findings.Finding{
				File:     file,
				Line:     pos.Line,
				Column:   pos.Col,
				Message:  bound[i].kind.format(bound[i].rule.Description, c),
				RuleID:   bound[i].rule.ID,
				Severity: bound[i].rule.Severity,
				Snippet:  extractSnippet(src, n.Range, tu.MainFile, decode),
			})
		}
		return true
	}, nil)
	return out
}

// position is where a match is reported: the expansion point of the
// construct's first token, or of its name for declarations without a range.
func position(n *clangast.Node) clangast.BareLocation {
	if begin := n.Range.Begin.Expansion(); begin.Valid() {
		return begin
	}
	return n.Loc.Expansion()
}

// headerOnly returns a predicate selecting top-level declarations that lie
// entirely inside included files.
func headerOnly(tu *clangast.TranslationUnit) func(*clangast.Node) bool {
	topLevel := map[*clangast.Node]bool{}
	if tu.Root != nil {
		for _, child := range tu.Root.Inner {
			topLevel[child] = true
		}
	}
	return func(n *clangast.Node) bool {
		if !topLevel[n] {
			return false
		}
		begin, end := n.Range.Begin.Expansion(), n.Range.End.Expansion()
		return begin.Valid() && end.Valid() &&
			begin.IncludedFrom != nil && end.IncludedFrom != nil &&
			begin.File != tu.MainFile && end.File != tu.MainFile
	}
}
