package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/termql/internal/querysql"
)

// Fixture is a compact YAML description of a terminology slice.
//
//	concepts:
//	  - id: "404684003"
//	    parents: ["138875005"]
//	    terms:
//	      - term: Clinical finding (finding)
//	        type: fsn
//	        acceptability: {"900000000000509007": preferred}
//	    attributes:
//	      - {type: "363698007", value: "39057004", group: 1}
//	    concrete:
//	      - {type: "1142135004", value: "#250"}
//	refsets:
//	  "734138000": ["404684003"]
type Fixture struct {
	Concepts []FixtureConcept    `yaml:"concepts"`
	RefSets  map[string][]string `yaml:"refsets,omitempty"`
}

// FixtureConcept is a concept with its descriptions and outgoing edges.
// Active defaults to true and Module to the core module.
type FixtureConcept struct {
	ID         string             `yaml:"id"`
	Active     *bool              `yaml:"active,omitempty"`
	Module     string             `yaml:"module,omitempty"`
	Parents    []string           `yaml:"parents,omitempty"`
	Terms      []FixtureTerm      `yaml:"terms,omitempty"`
	Attributes []FixtureAttribute `yaml:"attributes,omitempty"`
	Concrete   []FixtureConcrete  `yaml:"concrete,omitempty"`
}

// FixtureTerm is a description. Type accepts fsn, synonym, definition or
// an id; Case accepts insensitive, sensitive, initial or an id.
// Acceptability maps a language refset id to preferred or acceptable.
type FixtureTerm struct {
	ID            string            `yaml:"id,omitempty"`
	Term          string            `yaml:"term"`
	Type          string            `yaml:"type,omitempty"`
	Lang          string            `yaml:"lang,omitempty"`
	Case          string            `yaml:"case,omitempty"`
	Active        *bool             `yaml:"active,omitempty"`
	Module        string            `yaml:"module,omitempty"`
	Acceptability map[string]string `yaml:"acceptability,omitempty"`
}

// FixtureAttribute is an outgoing relationship.
type FixtureAttribute struct {
	Type   string `yaml:"type"`
	Value  string `yaml:"value"`
	Group  int    `yaml:"group,omitempty"`
	Active *bool  `yaml:"active,omitempty"`
}

// FixtureConcrete is a literal attribute value. A value starting with #
// is numeric; anything else is a string.
type FixtureConcrete struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
	Group int    `yaml:"group,omitempty"`
}

var typeAliases = map[string]string{
	"":           SynonymTypeID,
	"synonym":    SynonymTypeID,
	"fsn":        FSNTypeID,
	"definition": DefinitionTypeID,
}

var caseAliases = map[string]string{
	"":            CaseInsensitiveID,
	"insensitive": CaseInsensitiveID,
	"sensitive":   CaseSensitiveID,
	"initial":     InitialCaseSensitive,
}

var acceptabilityAliases = map[string]string{
	"preferred":  querysql.PreferredID,
	"acceptable": querysql.AcceptableID,
}

// ParseFixture decodes a YAML fixture, rejecting unknown fields.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// LoadFixture parses a YAML fixture and writes it in one transaction.
func (s *Store) LoadFixture(ctx context.Context, r io.Reader) error {
	f, err := ParseFixture(r)
	if err != nil {
		return err
	}
	return s.WriteFixture(ctx, f)
}

// WriteFixture writes every record of f in one transaction. Concepts are
// written before the descriptions that reference them.
func (s *Store) WriteFixture(ctx context.Context, f *Fixture) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write fixture: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, c := range f.Concepts {
		if c.ID == "" {
			return fmt.Errorf("write fixture: concept without id")
		}
		module := orDefault(c.Module, CoreModuleID)
		if err := writeConcept(ctx, tx, Concept{ID: c.ID, Active: orTrue(c.Active), ModuleID: module}); err != nil {
			return fmt.Errorf("write fixture: %w", err)
		}
	}

	for _, c := range f.Concepts {
		if err := writeFixtureConcept(ctx, tx, c); err != nil {
			return fmt.Errorf("write fixture: %w", err)
		}
	}

	for _, refset := range sortedKeys(f.RefSets) {
		for _, m := range f.RefSets[refset] {
			if err := writeRefSetMember(ctx, tx, RefSetMember{RefSetID: refset, ReferencedComponentID: m, Active: true}); err != nil {
				return fmt.Errorf("write fixture: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write fixture: commit: %w", err)
	}
	return nil
}

func writeFixtureConcept(ctx context.Context, db execer, c FixtureConcept) error {
	module := orDefault(c.Module, CoreModuleID)

	for i, t := range c.Terms {
		d, err := fixtureDescription(c.ID, module, i, t)
		if err != nil {
			return err
		}
		if err := writeDescription(ctx, db, d); err != nil {
			return err
		}
		for _, refset := range sortedKeys(t.Acceptability) {
			acc, ok := acceptabilityAliases[t.Acceptability[refset]]
			if !ok {
				acc = t.Acceptability[refset]
			}
			if err := writeLanguageMember(ctx, db, LanguageMember{RefSetID: refset, DescriptionID: d.ID, AcceptabilityID: acc, Active: true}); err != nil {
				return err
			}
		}
	}

	for _, p := range c.Parents {
		if err := writeRelationship(ctx, db, newRelationship(c.ID, querysql.IsA, p, 0, true)); err != nil {
			return err
		}
	}
	for _, a := range c.Attributes {
		if err := writeRelationship(ctx, db, newRelationship(c.ID, a.Type, a.Value, a.Group, orTrue(a.Active))); err != nil {
			return err
		}
	}
	for i, v := range c.Concrete {
		cv, err := fixtureConcrete(c.ID, i, v)
		if err != nil {
			return err
		}
		if err := writeConcreteValue(ctx, db, cv); err != nil {
			return err
		}
	}
	return nil
}

func fixtureDescription(conceptID, module string, i int, t FixtureTerm) (Description, error) {
	if t.Term == "" {
		return Description{}, fmt.Errorf("concept %s: term %d is empty", conceptID, i)
	}
	typ, ok := typeAliases[t.Type]
	if !ok {
		typ = t.Type
	}
	cs, ok := caseAliases[t.Case]
	if !ok {
		cs = t.Case
	}
	return Description{
		ID:                 orDefault(t.ID, fmt.Sprintf("%s-d%d", conceptID, i)),
		ConceptID:          conceptID,
		Active:             orTrue(t.Active),
		ModuleID:           orDefault(t.Module, module),
		TypeID:             typ,
		LanguageCode:       strings.ToLower(orDefault(t.Lang, DefaultLanguageCode)),
		Term:               t.Term,
		CaseSignificanceID: cs,
	}, nil
}

func fixtureConcrete(conceptID string, i int, v FixtureConcrete) (ConcreteValue, error) {
	cv := ConcreteValue{
		ID:       fmt.Sprintf("%s-v%d", conceptID, i),
		SourceID: conceptID,
		TypeID:   v.Type,
		Value:    v.Value,
		Kind:     "string",
		Group:    v.Group,
		Active:   true,
	}
	num, ok := strings.CutPrefix(v.Value, "#")
	if !ok {
		return cv, nil
	}
	if _, err := strconv.ParseInt(num, 10, 64); err == nil {
		cv.Value, cv.Kind = num, "integer"
		return cv, nil
	}
	if _, err := strconv.ParseFloat(num, 64); err == nil {
		cv.Value, cv.Kind = num, "decimal"
		return cv, nil
	}
	return ConcreteValue{}, fmt.Errorf("concept %s: concrete value %q is not a number", conceptID, v.Value)
}

// newRelationship derives a stable id from the edge itself.
func newRelationship(source, typ, dest string, group int, active bool) Relationship {
	return Relationship{
		ID:            fmt.Sprintf("%s-%s-%s-%d", source, typ, dest, group),
		SourceID:      source,
		TypeID:        typ,
		DestinationID: dest,
		Group:         group,
		Active:        active,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orTrue(b *bool) bool {
	return b == nil || *b
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
