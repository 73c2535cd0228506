package analysis

import "math"

// ScoreBaseline is the component score treated as "aging at chronological rate"
const ScoreBaseline = 75.0

// ComponentScores holds the per-domain scores; nil means no data
type ComponentScores struct {
	Sleep     *int `json:"sleep_score,omitempty"`
	Activity  *int `json:"activity_score,omitempty"`
	Recovery  *int `json:"recovery_score,omitempty"`
	Nutrition *int `json:"nutrition_score,omitempty"`
	Biomarker *int `json:"biomarker_score,omitempty"`
	Adherence *int `json:"adherence_score,omitempty"`
}

type weighted struct {
	score  *int
	weight float64
}

// AgeEstimate is a biological-age estimate
type AgeEstimate struct {
	ChronologicalAge float64 `json:"chronological_age"`
	BiologicalAge    float64 `json:"biological_age"`
	AgeDifference    float64 `json:"age_difference"` // biological - chronological
}

// BiologicalAge adjusts chronological age by weighted deviations of each
// present score from the baseline of 75.
// bioAge = age + Σ weight_i × (75 − score_i)
// Scores above baseline make the subject younger, below baseline older.
func BiologicalAge(chronologicalAge float64, c ComponentScores) AgeEstimate {
	impacts := []weighted{
		{c.Sleep, 0.08},
		{c.Activity, 0.10},
		{c.Recovery, 0.06},
		{c.Nutrition, 0.06},
		{c.Biomarker, 0.12},
	}

	bio := chronologicalAge
	for _, w := range impacts {
		if w.score == nil {
			continue
		}
		bio += (ScoreBaseline - float64(*w.score)) * w.weight
	}

	return AgeEstimate{
		ChronologicalAge: chronologicalAge,
		BiologicalAge:    roundTo(bio, 1),
		AgeDifference:    roundTo(bio-chronologicalAge, 1),
	}
}

// OverallScore is the weighted average of the present components, with the
// weights renormalized so missing components do not drag the score down.
// Returns 0 when no component is present.
func OverallScore(c ComponentScores) int {
	parts := []weighted{
		{c.Sleep, 0.25},
		{c.Activity, 0.25},
		{c.Recovery, 0.20},
		{c.Nutrition, 0.15},
		{c.Adherence, 0.15},
	}

	var sum, totalWeight float64
	for _, p := range parts {
		if p.score == nil {
			continue
		}
		sum += float64(*p.score) * p.weight
		totalWeight += p.weight
	}

	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(sum / totalWeight))
}

// HealthScoreSet is the derived score bundle for one day
type HealthScoreSet struct {
	Date       string          `json:"date"`
	Components ComponentScores `json:"components"`
	Overall    int             `json:"overall_score"`
	Age        *AgeEstimate    `json:"age,omitempty"` // nil without a chronological age
}

// ScoreInputs carries everything needed to derive a HealthScoreSet
type ScoreInputs struct {
	Date      string
	Sleep     *int
	Activity  *int
	Recovery  *int
	Nutrition *int
	Biomarker *int
	Adherence *int
	Age       float64 // chronological age in years; <= 0 when unknown
}

// ComputeScoreSet derives overall score and biological age from components
func ComputeScoreSet(in ScoreInputs) HealthScoreSet {
	c := ComponentScores{
		Sleep:     in.Sleep,
		Activity:  in.Activity,
		Recovery:  in.Recovery,
		Nutrition: in.Nutrition,
		Biomarker: in.Biomarker,
		Adherence: in.Adherence,
	}

	set := HealthScoreSet{
		Date:       in.Date,
		Components: c,
		Overall:    OverallScore(c),
	}
	if in.Age > 0 {
		age := BiologicalAge(in.Age, c)
		set.Age = &age
	}
	return set
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
