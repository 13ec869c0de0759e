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

package profile

import (
	"fmt"

	"github.com/golang/glog"
)

// Override customises one rule of a loaded profile. It is read from the
// `rules:` section of the configuration file.
type Override struct {
	Severity   string `yaml:"severity"`
	Disabled   bool   `yaml:"disabled"`
	MaxReports int    `yaml:"max_reports"`
}

// Apply returns a new rule list with severity changes and disabled rules
// applied. Overrides naming rules outside the profile are logged and ignored.
func Apply(rules []Rule, overrides map[string]Override) ([]Rule, error) {
	known := make(map[string]bool, len(rules))
	for _, r := range rules {
		known[r.ID] = true
	}
	for id := range overrides {
		if !known[id] {
			glog.Warningf("configuration overrides unknown rule %s, ignored", id)
		}
	}

	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		o, ok := overrides[r.ID]
		if !ok {
			out = append(out, r)
			continue
		}
		if o.Disabled {
			glog.Infof("rule %s disabled by configuration", r.ID)
			continue
		}
		if o.Severity != "" {
			sev, err := ParseSeverity(o.Severity)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.ID, err)
			}
			r.Severity = sev
		}
		out = append(out, r)
	}
	return out, nil
}

// ReportLimits extracts the positive max_reports values keyed by rule id.
func ReportLimits(overrides map[string]Override) map[string]int {
	limits := map[string]int{}
	for id, o := range overrides {
		if o.MaxReports > 0 {
			limits[id] = o.MaxReports
		}
	}
	return limits
}
