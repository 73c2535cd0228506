package protocol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTemplate(t *testing.T) {
	m, _, _ := newTestManager(t)
	old := addItems(t, m, "Old item")
	require.NoError(t, m.LogItem(old[0].ID))

	items, err := m.ApplyTemplate("longevity essentials")
	require.NoError(t, err)
	require.Len(t, items, 8)

	seen := map[string]bool{}
	for _, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.True(t, item.IsActive)
		assert.False(t, seen[item.ID])
		seen[item.ID] = true
	}
	assert.Equal(t, items, m.Items())
	assert.Empty(t, m.Today().Completed)

	again, err := m.ApplyTemplate("Longevity Essentials")
	require.NoError(t, err)
	assert.NotEqual(t, items[0].ID, again[0].ID)
}

func TestApplyUnknownTemplate(t *testing.T) {
	m, _, _ := newTestManager(t)
	addItems(t, m, "Keep me")

	_, err := m.ApplyTemplate("Couch to 5k")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.Len(t, m.Items(), 1)
}

func TestBuiltinTemplatesAreValid(t *testing.T) {
	for _, tmpl := range BuiltinTemplates {
		for _, item := range tmpl.Items {
			assert.NoError(t, item.Validate(), "%s: %s", tmpl.Name, item.Name)
		}
	}
}

func TestLoadTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `templates:
  - name: Cold and heat
    items:
      - name: Sauna
        category: therapy
        time_of_day: evening
      - name: Cold plunge
        category: therapy
        frequency: weekly
        notes: 3 min
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	templates, err := LoadTemplates(path)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Cold and heat", templates[0].Name)
	require.Len(t, templates[0].Items, 2)
	assert.Equal(t, Daily, templates[0].Items[0].Frequency)
	assert.Equal(t, Evening, templates[0].Items[0].TimeOfDay)
	assert.Equal(t, Weekly, templates[0].Items[1].Frequency)

	m, _, _ := newTestManager(t, WithTemplates(templates...))
	assert.Len(t, m.Templates(), len(BuiltinTemplates)+1)
	items, err := m.ApplyTemplate("Cold and heat")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestLoadTemplatesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	badCategory := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badCategory, []byte("templates:\n  - name: X\n    items:\n      - name: Y\n        category: spa\n"), 0644))
	_, err := LoadTemplates(badCategory)
	assert.Error(t, err)

	_, err = LoadTemplates(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.yaml")
	require.NoError(t, os.WriteFile(garbage, []byte("templates: [\n"), 0644))
	_, err = LoadTemplates(garbage)
	assert.Error(t, err)
}
