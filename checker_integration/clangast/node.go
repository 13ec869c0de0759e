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

package clangast

// Node mirrors one object of clang's -ast-dump=json output. Only the
// attributes the matchers read are decoded.
type Node struct {
	ID    string   `json:"id"`
	Kind  string   `json:"kind"`
	Loc   Location `json:"loc"`
	Range Range    `json:"range"`

	Name          string `json:"name,omitempty"`
	Type          *Type  `json:"type,omitempty"`
	ValueCategory string `json:"valueCategory,omitempty"`

	// Expressions.
	Opcode           string   `json:"opcode,omitempty"`
	CastKind         string   `json:"castKind,omitempty"`
	IsArray          bool     `json:"isArray,omitempty"`
	IsArrayAsWritten bool     `json:"isArrayAsWritten,omitempty"`
	IsPlacement      bool     `json:"isPlacement,omitempty"`
	ReferencedDecl   *DeclRef `json:"referencedDecl,omitempty"`

	// Declarations.
	StorageClass string `json:"storageClass,omitempty"`
	TLS          string `json:"tls,omitempty"`
	IsImplicit   bool   `json:"isImplicit,omitempty"`

	Inner []*Node `json:"inner,omitempty"`
}

type Type struct {
	QualType          string `json:"qualType"`
	DesugaredQualType string `json:"desugaredQualType,omitempty"`
}

// Canonical prefers the desugared spelling.
func (t *Type) Canonical() string {
	if t == nil {
		return ""
	}
	if t.DesugaredQualType != "" {
		return t.DesugaredQualType
	}
	return t.QualType
}

// DeclRef is the summary clang prints for the declaration a DeclRefExpr
// names.
type DeclRef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
	Type *Type  `json:"type,omitempty"`
}

type IncludedFrom struct {
	File string `json:"file"`
}

// BareLocation is a single point in a file. Clang omits File and Line when
// they equal the previously printed location; Decode fills them back in.
type BareLocation struct {
	Offset              int           `json:"offset"`
	File                string        `json:"file,omitempty"`
	Line                int           `json:"line,omitempty"`
	Col                 int           `json:"col,omitempty"`
	TokLen              int           `json:"tokLen,omitempty"`
	IncludedFrom        *IncludedFrom `json:"includedFrom,omitempty"`
	IsMacroArgExpansion bool          `json:"isMacroArgExpansion,omitempty"`
}

func (l BareLocation) Valid() bool {
	return l.Col > 0
}

// Location is either a bare location or, inside macros, a spelling and
// expansion pair.
type Location struct {
	BareLocation
	SpellingLoc  *BareLocation `json:"spellingLoc,omitempty"`
	ExpansionLoc *BareLocation `json:"expansionLoc,omitempty"`
}

func (l Location) Expansion() BareLocation {
	if l.ExpansionLoc != nil {
		return *l.ExpansionLoc
	}
	return l.BareLocation
}

func (l Location) Spelling() BareLocation {
	if l.SpellingLoc != nil {
		return *l.SpellingLoc
	}
	return l.BareLocation
}

type Range struct {
	Begin Location `json:"begin"`
	End   Location `json:"end"`
}

// TranslationUnit is a parsed file. MainFile is the path exactly as it was
// handed to the parser; locations in the main file carry the same string.
type TranslationUnit struct {
	MainFile string
	Root     *Node
}

// Walk visits n and its descendants in pre-order. Returning false from
// enter skips the node's children; leave runs after the children.
func Walk(n *Node, enter func(*Node) bool, leave func(*Node)) {
	if n == nil {
		return
	}
	if enter(n) {
		for _, child := range n.Inner {
			Walk(child, enter, leave)
		}
	}
	if leave != nil {
		leave(n)
	}
}

// FirstChild returns the first inner node, or nil.
func (n *Node) FirstChild() *Node {
	if n == nil || len(n.Inner) == 0 {
		return nil
	}
	return n.Inner[0]
}

// IsLValue reports whether an expression node is an lvalue.
func (n *Node) IsLValue() bool {
	return n != nil && n.ValueCategory == "lvalue"
}
