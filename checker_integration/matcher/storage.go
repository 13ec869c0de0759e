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
	"strings"

	"naive.systems/safeprofile/checker_integration/clangast"
)

type capability uint8

const (
	capLocal capability = 1 << iota
	capParameter
	capStaticDuration
	capThreadDuration
	capReference
)

// declInfo is what the dangling-return rule needs to know about a variable.
type declInfo struct {
	name string
	caps capability
}

type declFilter func(declInfo) bool

func has(c capability) declFilter {
	return func(d declInfo) bool { return d.caps&c != 0 }
}

func lacks(c capability) declFilter {
	return func(d declInfo) bool { return d.caps&c == 0 }
}

func allOf(filters ...declFilter) declFilter {
	return func(d declInfo) bool {
		for _, f := range filters {
			if !f(d) {
				return false
			}
		}
		return true
	}
}

// automaticLocal accepts variables whose lifetime ends with the enclosing
// call. Parameters are excluded: returning a reference to one is valid
// when the caller supplied it by reference.
var automaticLocal = allOf(
	has(capLocal),
	lacks(capParameter),
	lacks(capStaticDuration),
	lacks(capThreadDuration),
	lacks(capReference),
)

func isFunctionScope(kind string) bool {
	switch kind {
	case "FunctionDecl", "CXXMethodDecl", "CXXConstructorDecl", "CXXDestructorDecl",
		"CXXConversionDecl", "CXXDeductionGuideDecl", "BlockDecl", "LambdaExpr":
		return true
	}
	return false
}

// isReferenceType reports whether a printed type is an lvalue or rvalue
// reference, including references to arrays such as "int (&)[3]".
func isReferenceType(qualType string) bool {
	t := strings.TrimSpace(qualType)
	return strings.HasSuffix(t, "&") || strings.Contains(t, "(&)") || strings.Contains(t, "(&&)")
}

func varCapabilities(n *clangast.Node, local bool) capability {
	var caps capability
	if local {
		caps |= capLocal
	}
	if n.Kind == "ParmVarDecl" {
		caps |= capParameter
	}
	switch n.StorageClass {
	case "static", "extern":
		caps |= capStaticDuration
	}
	if !local {
		caps |= capStaticDuration
	}
	if n.TLS != "" {
		caps |= capThreadDuration
	}
	if n.Type != nil && isReferenceType(n.Type.QualType) {
		caps |= capReference
	}
	return caps
}

// declIndex maps declaration ids to variable facts for the whole tree.
type declIndex map[string]declInfo

func buildDeclIndex(root *clangast.Node, skip func(*clangast.Node) bool) declIndex {
	index := declIndex{}
	depth := 0
	clangast.Walk(root, func(n *clangast.Node) bool {
		if skip(n) {
			return false
		}
		switch n.Kind {
		case "VarDecl", "ParmVarDecl":
			index[n.ID] = declInfo{name: n.Name, caps: varCapabilities(n, depth > 0)}
		}
		if isFunctionScope(n.Kind) {
			depth++
		}
		return true
	}, func(n *clangast.Node) {
		if isFunctionScope(n.Kind) && !skip(n) {
			depth--
		}
	})
	return index
}
