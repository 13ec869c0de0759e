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

package report

import (
	"encoding/json"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"naive.systems/safeprofile/atomic"
)

// Sarif builds a SARIF 2.1.0 log with one run. Every profile rule is listed
// in the driver, including rules without results.
func Sarif(r *Run) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}
	run := sarif.NewRunWithInformationURI(ToolName, InformationURI)
	version := Version
	run.Tool.Driver.Version = &version
	run.Tool.Driver.SemanticVersion = &version

	for _, rule := range r.Rules {
		descriptor := run.AddRule(rule.ID).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: Level(rule.Severity)})
		descriptor.ShortDescription = sarif.NewMultiformatMessageString(rule.Title)
		descriptor.FullDescription = sarif.NewMultiformatMessageString(rule.Description)
	}

	for _, f := range r.Findings {
		region := sarif.NewRegion().WithStartLine(f.Line).WithStartColumn(f.Column)
		snippet := f.Snippet
		region.Snippet = &sarif.ArtifactContent{Text: &snippet}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(r.RelPath(f.File))).
				WithRegion(region),
		)
		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(Level(f.Severity)).
			WithLocations([]*sarif.Location{location})
		result.PropertyBag = *sarif.NewPropertyBag()
		result.Properties["runId"] = r.ID
		result.Properties["severity"] = f.Severity.String()
		run.AddResult(result)
	}
	report.AddRun(run)
	return report, nil
}

// WriteSarif writes the SARIF log to path atomically.
func WriteSarif(path string, r *Run) error {
	report, err := Sarif(r)
	if err != nil {
		return err
	}
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal SARIF report: %w", err)
	}
	if err := atomic.Write(path, append(content, '\n')); err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	return nil
}
