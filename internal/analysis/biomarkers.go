package analysis

import (
	"math"
	"sort"
)

// MetricStatus grades a value against its reference ranges
type MetricStatus string

const (
	StatusOptimal   MetricStatus = "optimal"
	StatusModerate  MetricStatus = "moderate"
	StatusAttention MetricStatus = "attention"
)

// Range is an inclusive [Low, High] interval
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether v lies in the range
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// GetMetricStatus returns optimal inside the optimal range, moderate inside
// the normal range, attention otherwise. A zero normal range is ignored.
func GetMetricStatus(value float64, optimal, normal Range) MetricStatus {
	if optimal.Contains(value) {
		return StatusOptimal
	}
	if normal != (Range{}) && normal.Contains(value) {
		return StatusModerate
	}
	return StatusAttention
}

// BiomarkerCategory groups lab markers
type BiomarkerCategory string

const (
	BiomarkerMetabolic    BiomarkerCategory = "metabolic"
	BiomarkerLipids       BiomarkerCategory = "lipids"
	BiomarkerInflammation BiomarkerCategory = "inflammation"
	BiomarkerHormones     BiomarkerCategory = "hormones"
	BiomarkerNutrients    BiomarkerCategory = "nutrients"
)

// BiomarkerDefinition describes a lab marker and its reference ranges
type BiomarkerDefinition struct {
	Key         string
	Name        string
	Unit        string
	Normal      Range
	Optimal     Range
	Description string
	Category    BiomarkerCategory
}

// BiomarkerDefinitions are the markers with longevity reference ranges
var BiomarkerDefinitions = []BiomarkerDefinition{
	{"hba1c", "HbA1c", "%", Range{4.0, 5.7}, Range{4.8, 5.2}, "Glucose control, glycation", BiomarkerMetabolic},
	{"fastingGlucose", "Fasting Glucose", "mg/dL", Range{70, 100}, Range{70, 85}, "Metabolic health", BiomarkerMetabolic},
	{"hsCrp", "hs-CRP", "mg/L", Range{0, 3}, Range{0, 1}, "Inflammation marker", BiomarkerInflammation},
	{"homocysteine", "Homocysteine", "µmol/L", Range{0, 15}, Range{0, 10}, "Cardiovascular risk", BiomarkerInflammation},
	{"apoB", "ApoB", "mg/dL", Range{0, 130}, Range{0, 90}, "Atherosclerosis risk", BiomarkerLipids},
	{"vitaminD", "Vitamin D", "ng/mL", Range{30, 100}, Range{50, 80}, "Immune, bone, mood", BiomarkerNutrients},
	{"triglycerides", "Triglycerides", "mg/dL", Range{0, 150}, Range{0, 100}, "Metabolic health", BiomarkerLipids},
	{"ldlC", "LDL-C", "mg/dL", Range{0, 100}, Range{0, 70}, "Cardiovascular risk", BiomarkerLipids},
}

// LookupBiomarker finds a definition by key
func LookupBiomarker(key string) (BiomarkerDefinition, bool) {
	for _, d := range BiomarkerDefinitions {
		if d.Key == key {
			return d, true
		}
	}
	return BiomarkerDefinition{}, false
}

// BiomarkerResult is one graded marker
type BiomarkerResult struct {
	Definition BiomarkerDefinition
	Value      float64
	Status     MetricStatus
}

// GradeBiomarkers grades every known marker in values, ordered by key.
// Unknown keys are ignored.
func GradeBiomarkers(values map[string]float64) []BiomarkerResult {
	var results []BiomarkerResult
	for key, v := range values {
		def, ok := LookupBiomarker(key)
		if !ok {
			continue
		}
		results = append(results, BiomarkerResult{
			Definition: def,
			Value:      v,
			Status:     GetMetricStatus(v, def.Optimal, def.Normal),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Definition.Key < results[j].Definition.Key
	})
	return results
}

// BiomarkerScore averages status points over the known markers present:
// optimal 100, moderate 70, attention 40. Nil when none are known.
func BiomarkerScore(values map[string]float64) *int {
	results := GradeBiomarkers(values)
	if len(results) == 0 {
		return nil
	}

	var sum float64
	for _, r := range results {
		switch r.Status {
		case StatusOptimal:
			sum += 100
		case StatusModerate:
			sum += 70
		default:
			sum += 40
		}
	}

	s := int(math.Round(sum / float64(len(results))))
	return &s
}
