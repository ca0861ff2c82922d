package ast

// Domain says whether a filter clause constrains concepts or descriptions.
// DomainAny is an unprefixed clause whose domain comes from its group.
type Domain int

const (
	DomainAny Domain = iota
	DomainConcept
	DomainDescription
)

func (d Domain) String() string {
	switch d {
	case DomainConcept:
		return "concept"
	case DomainDescription:
		return "description"
	}
	return ""
}

// TermMode selects how a term filter compares text.
type TermMode int

const (
	Match TermMode = iota
	Exact
	Regex
)

func (m TermMode) String() string {
	switch m {
	case Match:
		return "match"
	case Exact:
		return "exact"
	case Regex:
		return "regex"
	}
	return "?"
}

// FilterGroup is the content of {{ ... }}. Root is nil for an empty group.
type FilterGroup struct {
	Root FilterExpr
	Pos  Pos
}

// TermFilter matches description text.
type TermFilter struct {
	Domain        Domain
	Mode          TermMode
	Value         string
	CaseSensitive bool
	Pos           Pos
}

// ActiveFilter matches on the active flag.
type ActiveFilter struct {
	Domain Domain
	Active bool
	Pos    Pos
}

// ModuleFilter matches on module.
type ModuleFilter struct {
	Domain Domain
	Module *ConceptRef
	Pos    Pos
}

// TypeFilter matches on description type.
type TypeFilter struct {
	Domain Domain
	Type   *ConceptRef
	Pos    Pos
}

// LanguageCodeFilter matches on the description language.
type LanguageCodeFilter struct {
	Domain Domain
	Code   string
	Pos    Pos
}

// LanguageRefSetFilter matches descriptions in a language reference set.
type LanguageRefSetFilter struct {
	Domain Domain
	RefSet *ConceptRef
	Pos    Pos
}

// AcceptableInFilter matches descriptions acceptable in a language reference set.
type AcceptableInFilter struct {
	Domain Domain
	RefSet *ConceptRef
	Pos    Pos
}

// PreferredInFilter matches descriptions preferred in a language reference set.
type PreferredInFilter struct {
	Domain Domain
	RefSet *ConceptRef
	Pos    Pos
}

// CaseSignificanceFilter matches on description case significance.
type CaseSignificanceFilter struct {
	Domain           Domain
	CaseSignificance *ConceptRef
	Pos              Pos
}

// FilterBool combines two filter expressions.
type FilterBool struct {
	Op    BoolOp
	Left  FilterExpr
	Right FilterExpr
	Pos   Pos
}

// FilterGrouping is a parenthesised filter expression.
type FilterGrouping struct {
	Expr FilterExpr
	Pos  Pos
}

func (*TermFilter) filterNode()             {}
func (*ActiveFilter) filterNode()           {}
func (*ModuleFilter) filterNode()           {}
func (*TypeFilter) filterNode()             {}
func (*LanguageCodeFilter) filterNode()     {}
func (*LanguageRefSetFilter) filterNode()   {}
func (*AcceptableInFilter) filterNode()     {}
func (*PreferredInFilter) filterNode()      {}
func (*CaseSignificanceFilter) filterNode() {}
func (*FilterBool) filterNode()             {}
func (*FilterGrouping) filterNode()         {}

func (f *TermFilter) Position() Pos             { return f.Pos }
func (f *ActiveFilter) Position() Pos           { return f.Pos }
func (f *ModuleFilter) Position() Pos           { return f.Pos }
func (f *TypeFilter) Position() Pos             { return f.Pos }
func (f *LanguageCodeFilter) Position() Pos     { return f.Pos }
func (f *LanguageRefSetFilter) Position() Pos   { return f.Pos }
func (f *AcceptableInFilter) Position() Pos     { return f.Pos }
func (f *PreferredInFilter) Position() Pos      { return f.Pos }
func (f *CaseSignificanceFilter) Position() Pos { return f.Pos }
func (f *FilterBool) Position() Pos             { return f.Pos }
func (f *FilterGrouping) Position() Pos         { return f.Pos }

// DescriptionOnly reports whether clauses of this kind can only describe
// descriptions, never concepts.
func DescriptionOnly(f FilterExpr) bool {
	switch f.(type) {
	case *TermFilter, *TypeFilter, *LanguageCodeFilter, *LanguageRefSetFilter,
		*AcceptableInFilter, *PreferredInFilter, *CaseSignificanceFilter:
		return true
	}
	return false
}

// ClauseDomain returns the explicit domain prefix of a leaf clause.
func ClauseDomain(f FilterExpr) Domain {
	switch c := f.(type) {
	case *TermFilter:
		return c.Domain
	case *ActiveFilter:
		return c.Domain
	case *ModuleFilter:
		return c.Domain
	case *TypeFilter:
		return c.Domain
	case *LanguageCodeFilter:
		return c.Domain
	case *LanguageRefSetFilter:
		return c.Domain
	case *AcceptableInFilter:
		return c.Domain
	case *PreferredInFilter:
		return c.Domain
	case *CaseSignificanceFilter:
		return c.Domain
	}
	return DomainAny
}

// Leaves returns the leaf clauses of a filter expression in source order.
func Leaves(f FilterExpr) []FilterExpr {
	var out []FilterExpr
	var walk func(FilterExpr)
	walk = func(f FilterExpr) {
		switch n := f.(type) {
		case nil:
		case *FilterBool:
			walk(n.Left)
			walk(n.Right)
		case *FilterGrouping:
			walk(n.Expr)
		default:
			out = append(out, n)
		}
	}
	walk(f)
	return out
}

// GroupDomain resolves the domain of a filter group: description when any
// clause is description-only or pinned to description, concept otherwise.
// A group whose clauses disagree is rejected by the validator before this
// matters to the compiler.
func GroupDomain(g *FilterGroup) Domain {
	if g == nil {
		return DomainConcept
	}
	for _, leaf := range Leaves(g.Root) {
		if DescriptionOnly(leaf) || ClauseDomain(leaf) == DomainDescription {
			return DomainDescription
		}
	}
	return DomainConcept
}
