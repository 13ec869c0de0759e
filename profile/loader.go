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
	"errors"
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"
)

const (
	CoreSafety   = "core-safety"
	MemorySafety = "memory-safety"
)

const (
	NakedNew        = "SP-OWN-001"
	NakedDelete     = "SP-OWN-002"
	CStyleArray     = "SP-BOUNDS-001"
	CStyleCast      = "SP-TYPE-001"
	ReturnLocalAddr = "SP-LIFE-003"
)

var ErrUnknownProfile = errors.New("unknown profile")

func coreSafetyRules() []Rule {
	return []Rule{
		{
			ID:    NakedNew,
			Title: "Naked new expression",
			Description: "Direct use of 'new' expression without RAII wrapper. " +
				"Prefer std::make_unique, std::make_shared, or container allocation.",
			Severity: Blocker,
		},
		{
			ID:          NakedDelete,
			Title:       "Naked delete expression",
			Description: "Direct use of 'delete' expression",
			Severity:    Blocker,
		},
		{
			ID:          CStyleArray,
			Title:       "C-style array declaration",
			Description: "C-style array lacks bounds checking.",
			Severity:    Major,
		},
		{
			ID:          CStyleCast,
			Title:       "C-style cast",
			Description: "C-style cast bypasses type safety.",
			Severity:    Major,
		},
		{
			ID:          ReturnLocalAddr,
			Title:       "Return reference to local",
			Description: "Returning reference to local variable.",
			Severity:    Blocker,
		},
	}
}

var profiles = map[string]func() []Rule{
	CoreSafety:   coreSafetyRules,
	MemorySafety: coreSafetyRules,
}

// Names returns the known profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Load returns a fresh copy of the named profile's rules.
func Load(name string) ([]Rule, error) {
	build, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %v)", ErrUnknownProfile, name, Names())
	}
	rules := build()
	glog.V(1).Infof("loaded profile %s with %d rule(s)", name, len(rules))
	return rules, nil
}
