package queryir

// Predicate represents a set of concepts in the QueryIR.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backends.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Direction is the traversal direction of a Closure.
type Direction string

const (
	Descendants Direction = "descendants"
	Ancestors   Direction = "ancestors"
)

// MatchMode selects how TermMatches compares description text.
type MatchMode string

const (
	// MatchWords requires every whitespace-separated word of Value to be a
	// prefix of some word in the term.
	MatchWords MatchMode = "match"
	// MatchExact requires the whole term to equal Value.
	MatchExact MatchMode = "exact"
	// MatchRegex requires the term to match Value as a regular expression.
	MatchRegex MatchMode = "regex"
)

// Count bounds the number of matching occurrences. Max is ignored when
// Unbounded. A nil *Count means "at least one".
type Count struct {
	Min       int
	Max       int
	Unbounded bool
}

// MatchAll is every concept.
type MatchAll struct{}

// MatchNone is the empty set.
type MatchNone struct{}

// ConceptIs is the single concept ID.
type ConceptIs struct {
	ID string
}

// Intersection is the concepts matched by every predicate.
type Intersection struct {
	Predicates []Predicate
}

// Union is the concepts matched by any predicate.
type Union struct {
	Predicates []Predicate
}

// Difference is Left minus Right. It is never simplified: the backend sees
// exactly the operands the query named.
type Difference struct {
	Left  Predicate
	Right Predicate
}

// Complement is every concept not matched by Predicate.
type Complement struct {
	Predicate Predicate
}

// Closure asks the collaborator for hierarchy traversal from every concept
// in Focus.
//
//	<<  Descendants, IncludeSelf
//	<   Descendants
//	<!  Descendants, DirectOnly
//	>>  Ancestors, IncludeSelf
//	>   Ancestors
//	>!  Ancestors, DirectOnly
type Closure struct {
	Direction   Direction
	IncludeSelf bool
	DirectOnly  bool
	Focus       Predicate
}

// Member is the referenced components of every reference set in RefSet.
type Member struct {
	RefSet Predicate
}

// Described is the concepts having descriptions that satisfy Filter.
// With a nil Count one matching description suffices.
type Described struct {
	Filter Predicate
	Count  *Count
}

// Counted holds for a concept when the number of times Predicate matches
// it lies within Count. A concept matches Predicate at most once, so
// [0..*] accepts every concept and [0..0] only those Predicate rejects.
type Counted struct {
	Predicate Predicate
	Count     *Count
}

// TermMatches constrains description text.
type TermMatches struct {
	Mode          MatchMode
	Value         string
	CaseSensitive bool
}

// IsActive constrains the active flag of the concept, or of the
// description inside Described.
type IsActive struct {
	Active bool
}

// HasModule constrains the module of the concept, or of the description
// inside Described.
type HasModule struct {
	Module string
}

// HasType constrains the description type.
type HasType struct {
	Type string
}

// HasLanguageCode constrains the description language.
type HasLanguageCode struct {
	Code string
}

// InLanguageRefSet requires the description to be a member of the language
// reference set with any acceptability.
type InLanguageRefSet struct {
	RefSet string
}

// IsAcceptableIn requires acceptable acceptability in the reference set.
type IsAcceptableIn struct {
	RefSet string
}

// IsPreferredIn requires preferred acceptability in the reference set.
type IsPreferredIn struct {
	RefSet string
}

// HasCaseSignificance constrains the description case significance.
type HasCaseSignificance struct {
	CaseSignificance string
}

// Attribute is the concepts with relationships whose type is in Type and
// whose destination is in Value. Reversed swaps source and destination, so
// the result is the destinations of relationships from Value. Negated
// inverts the value comparison ('!='). Concrete replaces Value with a
// literal comparison.
type Attribute struct {
	Type     Predicate
	Value    Predicate
	Reversed bool
	Negated  bool
	Count    *Count
	Concrete *ConcreteValue
}

// ConcreteKind is the literal type of a concrete value.
type ConcreteKind string

const (
	ConcreteString  ConcreteKind = "string"
	ConcreteInteger ConcreteKind = "integer"
	ConcreteDecimal ConcreteKind = "decimal"
)

// ConcreteValue is a literal attribute comparison. Value is kept as text so
// decimals stay exact.
type ConcreteValue struct {
	Op    string // one of = != < <= > >=
	Kind  ConcreteKind
	Value string
}

// Grouped requires Refinement to hold within a single relationship group.
type Grouped struct {
	Refinement Predicate
	Count      *Count
}

// AttributeValues is the destinations of relationships whose type is in
// Type from any concept in Focus.
type AttributeValues struct {
	Focus Predicate
	Type  Predicate
}

// Marker methods. Only pointers implement Predicate.
func (*MatchAll) predicateNode()            {}
func (*MatchNone) predicateNode()           {}
func (*ConceptIs) predicateNode()           {}
func (*Intersection) predicateNode()        {}
func (*Union) predicateNode()               {}
func (*Difference) predicateNode()          {}
func (*Complement) predicateNode()          {}
func (*Closure) predicateNode()             {}
func (*Member) predicateNode()              {}
func (*Described) predicateNode()           {}
func (*Counted) predicateNode()             {}
func (*TermMatches) predicateNode()         {}
func (*IsActive) predicateNode()            {}
func (*HasModule) predicateNode()           {}
func (*HasType) predicateNode()             {}
func (*HasLanguageCode) predicateNode()     {}
func (*InLanguageRefSet) predicateNode()    {}
func (*IsAcceptableIn) predicateNode()      {}
func (*IsPreferredIn) predicateNode()       {}
func (*HasCaseSignificance) predicateNode() {}
func (*Attribute) predicateNode()           {}
func (*Grouped) predicateNode()             {}
func (*AttributeValues) predicateNode()     {}

// IsDescriptionLeaf reports whether p constrains a single description and
// is therefore only valid inside Described.
func IsDescriptionLeaf(p Predicate) bool {
	switch p.(type) {
	case *TermMatches, *HasType, *HasLanguageCode, *InLanguageRefSet,
		*IsAcceptableIn, *IsPreferredIn, *HasCaseSignificance:
		return true
	}
	return false
}
