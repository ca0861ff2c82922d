package store_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/store"
	"github.com/roach88/termql/internal/testutil"
)

func TestParseFixtureRejectsUnknownFields(t *testing.T) {
	_, err := store.ParseFixture(strings.NewReader(`
concepts:
  - id: "404684003"
    parent: ["138875005"]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field parent not found")
}

func TestParseFixtureEmpty(t *testing.T) {
	f, err := store.ParseFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Concepts)
}

func TestLoadFixtureDefaults(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	descs, err := s.Descriptions(ctx, "73211009")
	require.NoError(t, err)
	require.Len(t, descs, 4)

	assert.Equal(t, store.Description{
		ID:                 "73211009-d0",
		ConceptID:          "73211009",
		Active:             true,
		ModuleID:           store.CoreModuleID,
		TypeID:             store.FSNTypeID,
		LanguageCode:       "en",
		Term:               "Diabetes mellitus (disorder)",
		CaseSignificanceID: store.CaseInsensitiveID,
	}, descs[0])
	assert.Equal(t, store.CaseSensitiveID, descs[2].CaseSignificanceID)
	assert.Equal(t, store.DefinitionTypeID, descs[3].TypeID)
}

func TestLoadFixtureModuleAndActive(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	c, found, err := s.GetConcept(ctx, "322236009")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "999000021000000109", c.ModuleID)

	c, found, err = s.GetConcept(ctx, "195967001")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, c.Active)
}

func TestLoadFixtureTwiceIsNoOp(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.LoadFixture(ctx, bytes.NewReader(testutil.Terminology())))

	descs, err := s.Descriptions(ctx, "22298006")
	require.NoError(t, err)
	assert.Len(t, descs, 3)
}

func TestLoadFixtureRejectsBadConcrete(t *testing.T) {
	s := testutil.NewEmptyStore(t)

	err := s.LoadFixture(context.Background(), strings.NewReader(`
concepts:
  - id: "322236009"
    concrete:
      - {type: "1142135004", value: "#five"}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `concrete value "#five" is not a number`)

	_, found, err := s.GetConcept(context.Background(), "322236009")
	require.NoError(t, err)
	assert.False(t, found, "failed fixture must roll back")
}

func TestLoadFixtureRejectsEmptyTerm(t *testing.T) {
	s := testutil.NewEmptyStore(t)

	err := s.LoadFixture(context.Background(), strings.NewReader(`
concepts:
  - id: "404684003"
    terms:
      - {type: fsn}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "term 0 is empty")
}

func TestLabelPrefersFSN(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	label, err := s.Label(ctx, "22298006")
	require.NoError(t, err)
	assert.Equal(t, "Myocardial infarction (disorder)", label)

	label, err = s.Label(ctx, "195967001")
	require.NoError(t, err)
	assert.Equal(t, "", label, "inactive descriptions are not labels")

	label, err = s.Label(ctx, "999999999")
	require.NoError(t, err)
	assert.Equal(t, "", label)
}

func TestIsMember(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	ok, err := s.IsMember(ctx, "723264001", "39057004")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsMember(ctx, "723264001", "80891009")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetConceptMissing(t *testing.T) {
	s := testutil.NewStore(t)

	_, found, err := s.GetConcept(context.Background(), "999999999")
	require.NoError(t, err)
	assert.False(t, found)
}
