package element

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElement(t *testing.T) {
	e := New(7, "Apple")
	assert.Equal(t, 7, e.ID())
	assert.Equal(t, "Apple", e.Name())
	assert.Equal(t, "Apple", e.String())
	assert.Equal(t, "Apple", fmt.Sprint(e))
}

func TestParseYAML(t *testing.T) {
	elements, err := Parse([]byte(`
- id: 1
  name: Apple
- id: 2
  name: Apricot
- id: 3
  name: Banana
`))
	require.NoError(t, err)
	assert.Equal(t, []Element{New(1, "Apple"), New(2, "Apricot"), New(3, "Banana")}, elements)
}

func TestParseJSON(t *testing.T) {
	elements, err := Parse([]byte(`[{"id": 1, "name": "Only"}]`))
	require.NoError(t, err)
	assert.Equal(t, []Element{New(1, "Only")}, elements)
}

func TestParseEmpty(t *testing.T) {
	elements, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, elements)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("- id: 1\n  name: A\n- id: 1\n  name: B\n"))
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = Parse([]byte("- id: 1\n  name: '  '\n"))
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = Parse([]byte("id: 1\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: 4\n  name: Cherry\n"), 0600))

	elements, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Element{New(4, "Cherry")}, elements)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: 1\n  name: ''\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.ErrorIs(t, err, ErrEmptyName)
}
