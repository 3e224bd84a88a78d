package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/profdiff/internal/engine"
)

func TestRender_NoComparison(t *testing.T) {
	m := NewComparisonModel(context.Background(), newFakeService())
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPlain(&buf, m, RenderOptions{}), ErrNoComparison)
	assert.ErrorIs(t, RenderStyled(&buf, m, RenderOptions{}), ErrNoComparison)
	assert.ErrorIs(t, RenderJSON(&buf, m, RenderOptions{}), ErrNoComparison)
}

func TestRenderPlain(t *testing.T) {
	m := loadedModel(t, newFakeService())
	m.ResolveDetail(context.Background(), engine.CategoryObjects, "Account")

	var buf bytes.Buffer
	require.NoError(t, RenderPlain(&buf, m, RenderOptions{}))
	out := buf.String()

	assert.Contains(t, out, "System Administrator (Salesforce) vs Standard User (Salesforce) (filter: All)")
	assert.Contains(t, out, "Object Settings: 2 of 3 different")
	assert.Contains(t, out, "Account.Rating")
	assert.Contains(t, out, "Apex Classes: 0 of 0 different")
	assert.Contains(t, out, msgNoRows)
	assert.NotContains(t, out, "\x1b[")

	buf.Reset()
	m.SetFilterMode(FilterDifferencesOnly)
	require.NoError(t, RenderPlain(&buf, m, RenderOptions{Categories: []engine.Category{engine.CategoryObjects}}))
	out = buf.String()
	assert.Contains(t, out, "Lead")
	assert.NotContains(t, out, "Contact")
	assert.NotContains(t, out, "Account.Industry")
	assert.NotContains(t, out, "Assigned Apps")
}

func TestRenderStyled(t *testing.T) {
	m := loadedModel(t, newFakeService())

	var buf bytes.Buffer
	require.NoError(t, RenderStyled(&buf, m, RenderOptions{Width: 120}))
	out := buf.String()
	assert.Contains(t, out, "Object Settings (2)")
	assert.Contains(t, out, "Service")
	assert.Contains(t, out, "Visible (Default)")
}

func TestRenderJSON(t *testing.T) {
	m := loadedModel(t, newFakeService())
	m.ResolveDetail(context.Background(), engine.CategoryObjects, "Account")
	m.SetFilterMode(FilterDifferencesOnly)

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, m, RenderOptions{Categories: []engine.Category{engine.CategoryObjects}}))

	var doc struct {
		Filter     string                    `json:"filter"`
		Summary    map[string]map[string]int `json:"summary"`
		Categories map[string][]struct {
			Key        string `json:"key"`
			Class      string `json:"class"`
			Expandable bool   `json:"expandable"`
			Details    []struct {
				Key string `json:"key"`
			} `json:"details"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "differences", doc.Filter)
	assert.Equal(t, 3, doc.Summary["objects"]["total"])
	require.Len(t, doc.Categories["objects"], 2)
	account := doc.Categories["objects"][0]
	assert.Equal(t, "Account", account.Key)
	assert.Equal(t, "highlight", account.Class)
	assert.True(t, account.Expandable)
	require.Len(t, account.Details, 1)
	assert.Equal(t, "Account.Rating", account.Details[0].Key)
	assert.NotContains(t, doc.Categories, "apps")
}
