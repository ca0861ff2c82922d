package store

// Well-known metadata concepts.
const (
	CoreModuleID         = "900000000000207008"
	FSNTypeID            = "900000000000003001"
	SynonymTypeID        = "900000000000013009"
	DefinitionTypeID     = "900000000000550004"
	CaseInsensitiveID    = "900000000000448009"
	CaseSensitiveID      = "900000000000017005"
	InitialCaseSensitive = "900000000000020002"
	USEnglishRefSetID    = "900000000000509007"
	GBEnglishRefSetID    = "900000000000508004"
	DefaultLanguageCode  = "en"
)

// Concept is a terminology concept.
type Concept struct {
	ID       string
	Active   bool
	ModuleID string
}

// Description is a term attached to a concept.
type Description struct {
	ID                 string
	ConceptID          string
	Active             bool
	ModuleID           string
	TypeID             string
	LanguageCode       string
	Term               string
	CaseSignificanceID string
}

// LanguageMember records the acceptability of a description in a
// language reference set.
type LanguageMember struct {
	RefSetID        string
	DescriptionID   string
	AcceptabilityID string
	Active          bool
}

// Relationship is a typed edge between two concepts. Group 0 means the
// relationship is not grouped.
type Relationship struct {
	ID            string
	SourceID      string
	TypeID        string
	DestinationID string
	Group         int
	Active        bool
}

// ConcreteValue is a literal attribute value. Kind is "string",
// "integer" or "decimal"; Value holds the literal text.
type ConcreteValue struct {
	ID       string
	SourceID string
	TypeID   string
	Value    string
	Kind     string
	Group    int
	Active   bool
}

// RefSetMember records membership of a component in a simple reference set.
type RefSetMember struct {
	RefSetID              string
	ReferencedComponentID string
	Active                bool
}
