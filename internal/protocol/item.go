package protocol

import "fmt"

// Category groups protocol items. The set is closed.
type Category string

const (
	CategorySupplement  Category = "supplement"
	CategoryExercise    Category = "exercise"
	CategoryNutrition   Category = "nutrition"
	CategorySleep       Category = "sleep"
	CategoryMindfulness Category = "mindfulness"
	CategoryTherapy     Category = "therapy"
)

// Categories lists every category in display order
var Categories = []Category{
	CategorySupplement,
	CategoryExercise,
	CategoryNutrition,
	CategorySleep,
	CategoryMindfulness,
	CategoryTherapy,
}

// CategoryInfo is the display metadata of a category
type CategoryInfo struct {
	Icon  string
	Label string
	Color string // lipgloss ANSI 256 color
}

// Info returns the display metadata of c
func (c Category) Info() (CategoryInfo, error) {
	switch c {
	case CategorySupplement:
		return CategoryInfo{Icon: "💊", Label: "Supplement", Color: "135"}, nil
	case CategoryExercise:
		return CategoryInfo{Icon: "🏋", Label: "Exercise", Color: "208"}, nil
	case CategoryNutrition:
		return CategoryInfo{Icon: "🍎", Label: "Nutrition", Color: "78"}, nil
	case CategorySleep:
		return CategoryInfo{Icon: "🌙", Label: "Sleep", Color: "75"}, nil
	case CategoryMindfulness:
		return CategoryInfo{Icon: "🧠", Label: "Mindfulness", Color: "205"}, nil
	case CategoryTherapy:
		return CategoryInfo{Icon: "🌡", Label: "Therapy", Color: "44"}, nil
	}
	return CategoryInfo{}, fmt.Errorf("unknown category %q", string(c))
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	_, err := c.Info()
	return err == nil
}

// TimeOfDay is when an item is scheduled
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Anytime   TimeOfDay = "anytime"
)

// TimesOfDay lists the slots in checklist order
var TimesOfDay = []TimeOfDay{Morning, Afternoon, Evening, Anytime}

func (t TimeOfDay) Valid() bool {
	switch t {
	case Morning, Afternoon, Evening, Anytime:
		return true
	}
	return false
}

// Frequency is how often an item repeats
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// Item is one entry of the user's protocol checklist
type Item struct {
	ID        string    `json:"id" yaml:"-"`
	Name      string    `json:"name" yaml:"name"`
	Category  Category  `json:"category" yaml:"category"`
	Frequency Frequency `json:"frequency" yaml:"frequency"`
	TimeOfDay TimeOfDay `json:"timeOfDay,omitempty" yaml:"time_of_day"`
	Dosage    string    `json:"dosage,omitempty" yaml:"dosage"`
	Notes     string    `json:"notes,omitempty" yaml:"notes"`
	IsActive  bool      `json:"isActive" yaml:"-"`
}

// Slot returns the item's time of day, defaulting to anytime
func (i Item) Slot() TimeOfDay {
	if i.TimeOfDay == "" {
		return Anytime
	}
	return i.TimeOfDay
}

// Validate checks the item's enums and name
func (i Item) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if !i.Category.Valid() {
		return fmt.Errorf("invalid category %q", i.Category)
	}
	if i.Frequency != "" && !i.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q", i.Frequency)
	}
	if i.TimeOfDay != "" && !i.TimeOfDay.Valid() {
		return fmt.Errorf("invalid time of day %q", i.TimeOfDay)
	}
	return nil
}
