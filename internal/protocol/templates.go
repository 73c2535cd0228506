package protocol

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"longevity/internal/storage"
)

// Template is a named starter checklist
type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Items       []Item `yaml:"items"`
}

// BuiltinTemplates are the protocols shipped with the tracker
var BuiltinTemplates = []Template{
	{
		Name:        "Bryan Johnson Blueprint",
		Description: "Strict daily routine around sleep, early eating and supplements",
		Items: []Item{
			{Name: "Wake at same time", Category: CategorySleep, Frequency: Daily, TimeOfDay: Morning},
			{Name: "Morning light exposure (10-30 min)", Category: CategorySleep, Frequency: Daily, TimeOfDay: Morning},
			{Name: "Exercise", Category: CategoryExercise, Frequency: Daily, TimeOfDay: Morning},
			{Name: "Olive oil (30ml)", Category: CategoryNutrition, Frequency: Daily, TimeOfDay: Morning, Dosage: "30ml"},
			{Name: "Last meal by 11am", Category: CategoryNutrition, Frequency: Daily, TimeOfDay: Morning},
			{Name: "Vitamin D3", Category: CategorySupplement, Frequency: Daily, TimeOfDay: Morning, Dosage: "2000 IU"},
			{Name: "Omega-3", Category: CategorySupplement, Frequency: Daily, TimeOfDay: Morning, Dosage: "1g EPA + DHA"},
			{Name: "Creatine", Category: CategorySupplement, Frequency: Daily, TimeOfDay: Morning, Dosage: "5g"},
			{Name: "Wind down routine", Category: CategorySleep, Frequency: Daily, TimeOfDay: Evening},
			{Name: "Bed by 8:30pm", Category: CategorySleep, Frequency: Daily, TimeOfDay: Evening},
		},
	},
	{
		Name:        "Peter Attia Framework",
		Description: "Training-first plan built on zone 2, strength and stability",
		Items: []Item{
			{Name: "Zone 2 cardio (45-60 min)", Category: CategoryExercise, Frequency: Daily, TimeOfDay: Morning, Notes: "4x per week"},
			{Name: "Strength training", Category: CategoryExercise, Frequency: Daily, TimeOfDay: Anytime, Notes: "3x per week"},
			{Name: "VO2 max training (4x4)", Category: CategoryExercise, Frequency: Weekly, TimeOfDay: Anytime, Notes: "1x per week"},
			{Name: "Stability/mobility work", Category: CategoryExercise, Frequency: Daily, TimeOfDay: Morning},
			{Name: "Protein target (1.6-2.2g/kg)", Category: CategoryNutrition, Frequency: Daily, TimeOfDay: Anytime},
			{Name: "7-9 hours sleep", Category: CategorySleep, Frequency: Daily, TimeOfDay: Evening},
			{Name: "CGM glucose monitoring", Category: CategoryNutrition, Frequency: Daily, TimeOfDay: Anytime},
		},
	},
	{
		Name:        "Longevity Essentials",
		Description: "A short evidence-backed baseline",
		Items: []Item{
			{Name: "Vitamin D3", Category: CategorySupplement, Frequency: Daily, TimeOfDay: Morning, Dosage: "4000-6000 IU"},
			{Name: "Omega-3 (EPA+DHA)", Category: CategorySupplement, Frequency: Daily, TimeOfDay: Morning, Dosage: "2-4g"},
			{Name: "Magnesium", Category: CategorySupplement, Frequency: Daily, TimeOfDay: Evening, Dosage: "300-400mg"},
			{Name: "Creatine", Category: CategorySupplement, Frequency: Daily, TimeOfDay: Morning, Dosage: "5g"},
			{Name: "Time-restricted eating (16:8)", Category: CategoryNutrition, Frequency: Daily, TimeOfDay: Anytime},
			{Name: "Zone 2 cardio", Category: CategoryExercise, Frequency: Daily, TimeOfDay: Anytime, Notes: "3-4 hours/week total"},
			{Name: "Resistance training", Category: CategoryExercise, Frequency: Daily, TimeOfDay: Anytime, Notes: "2-3x per week"},
			{Name: "Sleep 7-9 hours", Category: CategorySleep, Frequency: Daily, TimeOfDay: Evening},
		},
	},
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadTemplates reads user templates from a YAML file of the form
//
//	templates:
//	  - name: Morning stack
//	    items:
//	      - name: Vitamin D3
//	        category: supplement
//	        time_of_day: morning
func LoadTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	for i, t := range f.Templates {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("template %d: name is required", i+1)
		}
		for j := range t.Items {
			if t.Items[j].Frequency == "" {
				t.Items[j].Frequency = Daily
			}
			if err := t.Items[j].Validate(); err != nil {
				return nil, fmt.Errorf("template %q item %d: %w", t.Name, j+1, err)
			}
		}
	}
	return f.Templates, nil
}

// Templates lists the available templates, built-in first
func (m *Manager) Templates() []Template {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Template, len(m.templates))
	copy(out, m.templates)
	return out
}

// ApplyTemplate replaces the checklist with the named template's items.
// Names match case-insensitively. Today's completions are cleared since
// every item gets a fresh id.
func (m *Manager) ApplyTemplate(name string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tmpl *Template
	for i := range m.templates {
		if strings.EqualFold(m.templates[i].Name, name) {
			tmpl = &m.templates[i]
			break
		}
	}
	if tmpl == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownTemplate)
	}

	items := make([]Item, len(tmpl.Items))
	for i, item := range tmpl.Items {
		item.ID = newID()
		item.IsActive = true
		items[i] = item
	}
	m.items = items
	m.saveItemsLocked()

	m.today = todayDoc{Date: m.today.Date, CompletedIDs: []string{}}
	m.rollover(m.now())
	m.store.Save(storage.KeyProtocolToday, m.today)

	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}
