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
	"fmt"
	"strings"

	"naive.systems/safeprofile/checker_integration/clangast"
	"naive.systems/safeprofile/profile"
)

// Kind is a structural pattern a rule can be bound to.
type Kind int

const (
	Allocation Kind = iota
	Deallocation
	ArrayDeclaration
	UncheckedCast
	DanglingReturn
)

func (k Kind) String() string {
	switch k {
	case Allocation:
		return "allocation"
	case Deallocation:
		return "deallocation"
	case ArrayDeclaration:
		return "array-declaration"
	case UncheckedCast:
		return "unchecked-cast"
	case DanglingReturn:
		return "dangling-return"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// capture holds what a predicate extracted from a matched node.
type capture struct {
	arrayForm bool
	extents   []string
	fromType  string
	toType    string
	varName   string
}

type predicate func(n *clangast.Node, decls declIndex) (capture, bool)

type formatter func(description string, c capture) string

type matcherKind struct {
	match  predicate
	format formatter
}

var matcherKinds = map[Kind]matcherKind{
	Allocation:       {matchAllocation, formatDescription},
	Deallocation:     {matchDeallocation, formatDeallocation},
	ArrayDeclaration: {matchArrayDeclaration, formatArrayDeclaration},
	UncheckedCast:    {matchCast, formatCast},
	DanglingReturn:   {matchDanglingReturn, formatDanglingReturn},
}

var ruleKinds = map[string]Kind{
	profile.NakedNew:        Allocation,
	profile.NakedDelete:     Deallocation,
	profile.CStyleArray:     ArrayDeclaration,
	profile.CStyleCast:      UncheckedCast,
	profile.ReturnLocalAddr: DanglingReturn,
}

// KindOf returns the pattern bound to a rule id.
func KindOf(ruleID string) (Kind, bool) {
	k, ok := ruleKinds[ruleID]
	return k, ok
}

func Supported(ruleID string) bool {
	_, ok := ruleKinds[ruleID]
	return ok
}

func formatDescription(description string, _ capture) string {
	return description
}

func matchAllocation(n *clangast.Node, _ declIndex) (capture, bool) {
	if n.Kind != "CXXNewExpr" || n.IsPlacement {
		return capture{}, false
	}
	return capture{arrayForm: n.IsArray}, true
}

func matchDeallocation(n *clangast.Node, _ declIndex) (capture, bool) {
	if n.Kind != "CXXDeleteExpr" {
		return capture{}, false
	}
	return capture{arrayForm: n.IsArray || n.IsArrayAsWritten}, true
}

func formatDeallocation(description string, c capture) string {
	if c.arrayForm {
		return description + " (array form)"
	}
	return description
}

func matchArrayDeclaration(n *clangast.Node, _ declIndex) (capture, bool) {
	if n.Kind != "VarDecl" || n.IsImplicit || n.Type == nil {
		return capture{}, false
	}
	extents, ok := arrayExtents(n.Type.Canonical())
	if !ok {
		return capture{}, false
	}
	return capture{extents: extents}, true
}

// Clang prints unnamed records and closures as parenthesized names, e.g.
// "struct (unnamed struct at a.cpp:1:1)".
var opaqueGroups = []string{"(unnamed ", "(anonymous ", "(lambda at "}

func opaqueGroupEnd(s string) int {
	for _, prefix := range opaqueGroups {
		if strings.HasPrefix(s, prefix) {
			return matchingParen(s)
		}
	}
	return -1
}

// matchingParen returns the index of the ')' closing s[0], or -1.
func matchingParen(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// arrayExtents splits "int[5][4]" into ["5", "4"]. A parenthesized
// declarator group is an array only when its extents come right after the
// pointer or reference: "void (*[3])(int)" is, "int (*)[5]" is not.
func arrayExtents(qualType string) ([]string, bool) {
	depth := 0
	for i := 0; i < len(qualType); i++ {
		switch qualType[i] {
		case '<':
			depth++
		case '>':
			depth--
		case '(':
			if depth != 0 {
				continue
			}
			if end := opaqueGroupEnd(qualType[i:]); end >= 0 {
				i += end
				continue
			}
			return groupExtents(qualType[i:])
		case '[':
			if depth == 0 {
				return parseExtents(qualType[i:])
			}
		}
	}
	return nil, false
}

func groupExtents(group string) ([]string, bool) {
	end := matchingParen(group)
	if end < 0 {
		return nil, false
	}
	inner := strings.TrimLeft(group[1:end], " ")
	declarator := false
	for {
		trimmed := strings.TrimLeft(inner, "*& ")
		for _, qualifier := range []string{"const", "volatile", "__restrict", "restrict"} {
			trimmed = strings.TrimLeft(strings.TrimPrefix(trimmed, qualifier), " ")
		}
		if trimmed == inner {
			break
		}
		declarator = true
		inner = trimmed
	}
	if !declarator || !strings.HasPrefix(inner, "[") {
		return nil, false
	}
	return parseExtents(inner)
}

func parseExtents(rest string) ([]string, bool) {
	var extents []string
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, false
		}
		extents = append(extents, strings.TrimSpace(rest[1:end]))
		rest = strings.TrimSpace(rest[end+1:])
	}
	return extents, len(extents) > 0
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// formatArrayDeclaration names std::array with the element count when every
// extent is a constant, nesting one std::array per dimension.
func formatArrayDeclaration(description string, c capture) string {
	for _, e := range c.extents {
		if !isDecimal(e) {
			return description + " Consider std::vector<T>."
		}
	}
	shape := "T"
	for i := len(c.extents) - 1; i >= 0; i-- {
		shape = fmt.Sprintf("std::array<%s, %s>", shape, c.extents[i])
	}
	return description + " Consider " + shape + "."
}

func matchCast(n *clangast.Node, _ declIndex) (capture, bool) {
	if n.Kind != "CStyleCastExpr" {
		return capture{}, false
	}
	c := capture{}
	if n.Type != nil {
		c.toType = n.Type.QualType
	}
	if sub := n.FirstChild(); sub != nil && sub.Type != nil {
		c.fromType = sub.Type.QualType
	}
	return c, true
}

func formatCast(description string, c capture) string {
	return fmt.Sprintf("%s Casting from '%s' to '%s'.", description, c.fromType, c.toType)
}

// Casts that keep an lvalue designating the same object.
var lvaluePreservingCasts = map[string]bool{
	"NoOp":                   true,
	"DerivedToBase":          true,
	"UncheckedDerivedToBase": true,
}

var transparentWrappers = map[string]bool{
	"ParenExpr":        true,
	"ExprWithCleanups": true,
	"ConstantExpr":     true,
}

func skipWrappers(n *clangast.Node) *clangast.Node {
	for n != nil && transparentWrappers[n.Kind] {
		n = n.FirstChild()
	}
	return n
}

// addressedDecl handles "return &x;" and "return arr;" (array decay).
func addressedDecl(expr *clangast.Node) *clangast.Node {
	decayed := false
	n := skipWrappers(expr)
	for n != nil && n.Kind == "ImplicitCastExpr" {
		if n.CastKind == "ArrayToPointerDecay" {
			decayed = true
		}
		n = skipWrappers(n.FirstChild())
	}
	if n == nil {
		return nil
	}
	if decayed && n.Kind == "DeclRefExpr" {
		return n
	}
	if n.Kind == "UnaryOperator" && n.Opcode == "&" {
		operand := skipWrappers(n.FirstChild())
		for operand != nil && operand.Kind == "ImplicitCastExpr" && lvaluePreservingCasts[operand.CastKind] {
			operand = skipWrappers(operand.FirstChild())
		}
		if operand != nil && operand.Kind == "DeclRefExpr" {
			return operand
		}
	}
	return nil
}

// referencedDecl handles "return x;" from a function returning a reference:
// the returned expression stays an lvalue down to the variable.
func referencedDecl(expr *clangast.Node) *clangast.Node {
	n := skipWrappers(expr)
	if !n.IsLValue() {
		return nil
	}
	for n != nil && n.Kind == "ImplicitCastExpr" && lvaluePreservingCasts[n.CastKind] {
		n = skipWrappers(n.FirstChild())
	}
	if n != nil && n.Kind == "DeclRefExpr" && n.IsLValue() {
		return n
	}
	return nil
}

func matchDanglingReturn(n *clangast.Node, decls declIndex) (capture, bool) {
	if n.Kind != "ReturnStmt" {
		return capture{}, false
	}
	expr := n.FirstChild()
	if expr == nil {
		return capture{}, false
	}
	ref := addressedDecl(expr)
	if ref == nil {
		ref = referencedDecl(expr)
	}
	if ref == nil || ref.ReferencedDecl == nil {
		return capture{}, false
	}
	info, ok := decls[ref.ReferencedDecl.ID]
	if !ok || !automaticLocal(info) {
		return capture{}, false
	}
	name := info.name
	if name == "" {
		name = ref.ReferencedDecl.Name
	}
	return capture{varName: name}, true
}

func formatDanglingReturn(description string, c capture) string {
	return fmt.Sprintf("%s Variable '%s' has automatic storage duration and is destroyed when the function returns.",
		description, c.varName)
}
