package testutil

import (
	"bytes"
	"context"
	_ "embed"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/termql/internal/store"
)

//go:embed testdata/terminology.yaml
var terminology []byte

// Terminology returns the shared test terminology as YAML.
func Terminology() []byte {
	return bytes.Clone(terminology)
}

// NewStore opens a store in a temporary directory and loads the shared
// test terminology into it. The store is closed when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s := NewEmptyStore(t)
	require.NoError(t, s.LoadFixture(context.Background(), bytes.NewReader(terminology)))
	return s
}

// NewEmptyStore opens a store with the schema applied and no data.
func NewEmptyStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "terminology.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
