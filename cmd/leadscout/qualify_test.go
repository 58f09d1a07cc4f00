package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/leadscout/internal/types"
)

func writeLeadsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLeadsFile(t *testing.T) {
	path := writeLeadsFile(t, `[
		{"id": "l1", "name": "Ada", "title": "CTO", "company": "Acme"},
		{"id": "l2", "name": "Grace", "title": "VP Eng", "company": "Acme"}
	]`)

	leads, err := loadLeadsFile(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "l1", leads[0].ID)
	assert.Equal(t, "VP Eng", leads[1].Title)
}

func TestLoadLeadsFile_Empty(t *testing.T) {
	path := writeLeadsFile(t, `[]`)
	_, err := loadLeadsFile(path)
	assert.Error(t, err)
}

func TestLoadLeadsFile_InvalidJSON(t *testing.T) {
	path := writeLeadsFile(t, `{not json`)
	_, err := loadLeadsFile(path)
	assert.Error(t, err)
}

func TestLoadLeadsFile_Missing(t *testing.T) {
	_, err := loadLeadsFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestGroupLeads_PreservesCompanyOrder(t *testing.T) {
	leads := []types.Lead{
		{ID: "a", Company: "Globex"},
		{ID: "b", Company: "Acme"},
		{ID: "c", Company: "Globex"},
	}

	groups := groupLeads(leads)
	require.Len(t, groups, 2)
	assert.Equal(t, "Globex", groups[0].company)
	assert.Len(t, groups[0].leads, 2)
	assert.Equal(t, "Acme", groups[1].company)
	assert.Len(t, groups[1].leads, 1)
}
