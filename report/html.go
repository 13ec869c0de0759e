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
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"naive.systems/safeprofile/analyzer/findings"
	"naive.systems/safeprofile/atomic"
)

//go:embed templates/report.html
var templates embed.FS

// add adds two integers and returns the result.
// helper function for html template
func add(a, b int) int {
	return a + b
}

// ordinalDate returns a string with the ordinal number of the day
func ordinalDate(day int) string {
	suffix := "th"
	switch day {
	case 1, 21, 31:
		suffix = "st"
	case 2, 22:
		suffix = "nd"
	case 3, 23:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

func formatDateTime(t time.Time) string {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %s %d %d:%02d:%02d %s", ordinalDate(t.Day()), t.Month(), t.Year(), hour, t.Minute(), t.Second(), t.Format("pm"))
}

func newTemplate(r *Run) (*template.Template, error) {
	return template.New("report.html").
		Funcs(template.FuncMap{
			"add":            add,
			"formatDateTime": formatDateTime,
			"level":          Level,
			"relPath":        r.RelPath,
		}).
		ParseFS(templates, "templates/report.html")
}

type htmlData struct {
	Title     string
	Tool      string
	Version   string
	Generated time.Time
	Run       *Run
	Findings  []findings.Finding
	ByRule    map[string]int
}

// HTML renders the run as a standalone page.
func HTML(r *Run) ([]byte, error) {
	if r.Summary == nil {
		id := r.ID
		r = NewRun(r.Profile, r.Root, r.Rules, r.Findings, r.Failed, nil)
		r.ID = id
	}
	tmpl, err := newTemplate(r)
	if err != nil {
		return nil, err
	}
	list := append([]findings.Finding(nil), r.Findings...)
	findings.SortByPosition(list)
	byRule := map[string]int{}
	for _, rule := range r.Rules {
		byRule[rule.ID] = 0
	}
	for _, f := range list {
		byRule[f.RuleID]++
	}
	data := htmlData{
		Title:     fmt.Sprintf("%s report", ToolName),
		Tool:      ToolName,
		Version:   Version,
		Generated: time.Now(),
		Run:       r,
		Findings:  list,
		ByRule:    byRule,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHTML writes the HTML report to path atomically.
func WriteHTML(path string, r *Run) error {
	content, err := HTML(r)
	if err != nil {
		return fmt.Errorf("error rendering HTML report: %w", err)
	}
	if err := atomic.Write(path, content); err != nil {
		return fmt.Errorf("error writing HTML report: %w", err)
	}
	return nil
}
