// Package compatibility scores how well two numerology profiles fit together.
//
// The score is a weighted sum of eight factors normalised to [0,1] and scaled
// to an integer between 0 and 100. Every factor is symmetric, so swapping the
// two people never changes the score; only the narrative mentions them by name.
package compatibility

import (
	"fmt"
	"math"

	"github.com/vanshika/astronum/backend/internal/numerology"
)

// Category buckets a score.
type Category string

const (
	Excellent   Category = "Excellent"
	Good        Category = "Good"
	Average     Category = "Average"
	Challenging Category = "Challenging"
)

// Factor names, in breakdown order.
const (
	FactorLifePath      = "life_path"
	FactorExpression    = "expression"
	FactorSoulUrge      = "soul_urge"
	FactorPersonality   = "personality"
	FactorBirthday      = "birthday"
	FactorHiddenPassion = "hidden_passion"
	FactorLoShu         = "lo_shu"
	FactorCycles        = "cycles"
)

const (
	weightLifePath      = 0.25
	weightExpression    = 0.15
	weightSoulUrge      = 0.15
	weightPersonality   = 0.15
	weightBirthday      = 0.10
	weightHiddenPassion = 0.10
	weightLoShu         = 0.05

	equalityBonus   = 0.1
	completionBonus = 0.05
	pinnacleStep    = 0.025
	challengeStep   = 0.0125
	numberSpread    = 8.0
	loShuDigitCount = 9.0
	excellentFloor  = 80
	goodFloor       = 65
	averageFloor    = 50
)

// Person is one side of a comparison.
type Person struct {
	Name    string
	Date    numerology.BirthDate
	Profile numerology.Profile
}

// NewPerson computes the profile for name and date.
func NewPerson(name string, date numerology.BirthDate) Person {
	return Person{Name: name, Date: date, Profile: numerology.Calculate(name, date)}
}

// Factor is one weighted component of the score.
type Factor struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail"`
}

// Result is the outcome of a comparison.
type Result struct {
	Score     int      `json:"score"`
	Category  Category `json:"category"`
	Factors   []Factor `json:"factors"`
	Narrative string   `json:"narrative"`
}

// Score compares a and b.
func Score(a, b Person) Result {
	pa, pb := a.Profile, b.Profile

	lifePath := numberSimilarity(pa.LifePath, pb.LifePath, true)
	expression := numberSimilarity(pa.Expression, pb.Expression, true)
	soulUrge := numberSimilarity(pa.SoulUrge, pb.SoulUrge, true)
	personality := numberSimilarity(pa.Personality, pb.Personality, true)
	birthday := numberSimilarity(pa.Birthday, pb.Birthday, false)

	passionA, passionB := numerology.HiddenPassion(a.Name), numerology.HiddenPassion(b.Name)
	passion := passionSimilarity(passionA, passionB)

	setA := numerology.DigitSet(numerology.LoShuDigits(a.Date, pa.Birthday, pa.LifePath))
	setB := numerology.DigitSet(numerology.LoShuDigits(b.Date, pb.Birthday, pb.LifePath))
	loShu, shared, completes := loShuSimilarity(setA, setB)

	pinnacleMatches := matchingPositions(pa.Pinnacles, pb.Pinnacles)
	challengeMatches := matchingPositions(pa.Challenges, pb.Challenges)
	pinnacleBonus := float64(pinnacleMatches) * pinnacleStep
	challengePenalty := float64(challengeMatches) * challengeStep
	cycles := pinnacleBonus - challengePenalty

	total := weightLifePath*lifePath +
		weightExpression*expression +
		weightSoulUrge*soulUrge +
		weightPersonality*personality +
		weightBirthday*birthday +
		weightHiddenPassion*passion +
		weightLoShu*loShu +
		cycles

	score := int(math.Round(clamp01(total) * 100))

	factors := []Factor{
		{Name: FactorLifePath, Value: lifePath, Weight: weightLifePath, Detail: numberDetail("Life Path", pa.LifePath, pb.LifePath)},
		{Name: FactorExpression, Value: expression, Weight: weightExpression, Detail: numberDetail("Expression", pa.Expression, pb.Expression)},
		{Name: FactorSoulUrge, Value: soulUrge, Weight: weightSoulUrge, Detail: numberDetail("Soul Urge", pa.SoulUrge, pb.SoulUrge)},
		{Name: FactorPersonality, Value: personality, Weight: weightPersonality, Detail: numberDetail("Personality", pa.Personality, pb.Personality)},
		{Name: FactorBirthday, Value: birthday, Weight: weightBirthday, Detail: numberDetail("Birthday", pa.Birthday, pb.Birthday)},
		{Name: FactorHiddenPassion, Value: passion, Weight: weightHiddenPassion, Detail: numberDetail("Hidden Passion", passionA, passionB)},
		{Name: FactorLoShu, Value: loShu, Weight: weightLoShu, Detail: loShuDetail(shared, completes)},
		{Name: FactorCycles, Value: cycles, Weight: 1, Detail: fmt.Sprintf("%d of 4 pinnacles align (+%.4f), %d of 4 challenges repeat (-%.4f)", pinnacleMatches, pinnacleBonus, challengeMatches, challengePenalty)},
	}

	result := Result{
		Score:    score,
		Category: Categorize(score),
		Factors:  factors,
	}
	result.Narrative = Narrative(a.Name, b.Name, result)
	return result
}

// Categorize maps a 0..100 score onto its band. Lower bounds are inclusive.
func Categorize(score int) Category {
	switch {
	case score >= excellentFloor:
		return Excellent
	case score >= goodFloor:
		return Good
	case score >= averageFloor:
		return Average
	default:
		return Challenging
	}
}

// Narrative is the default plain-text summary of a result.
func Narrative(nameA, nameB string, r Result) string {
	var tone string
	switch r.Category {
	case Excellent:
		tone = "share an unusually harmonious numerological blueprint"
	case Good:
		tone = "complement each other well, with a few areas that need attention"
	case Average:
		tone = "have a workable match that rewards patience and communication"
	default:
		tone = "face contrasting rhythms that call for conscious effort"
	}
	strongest := strongestFactor(r.Factors)
	return fmt.Sprintf("%s and %s %s (score %d, %s). Strongest link: %s.", nameA, nameB, tone, r.Score, r.Category, strongest.Detail)
}

func strongestFactor(factors []Factor) Factor {
	var best Factor
	bestWeighted := math.Inf(-1)
	for _, f := range factors {
		if f.Name == FactorCycles {
			continue
		}
		if w := f.Value * f.Weight; w > bestWeighted {
			best, bestWeighted = f, w
		}
	}
	return best
}

func numberSimilarity(a, b int, withBonus bool) float64 {
	sim := math.Max(0, 1-math.Abs(float64(a-b))/numberSpread)
	if withBonus && a == b {
		sim += equalityBonus
	}
	return sim
}

func passionSimilarity(a, b int) float64 {
	if a == b {
		return 1
	}
	return math.Max(0, 1-math.Abs(float64(a-b))/numberSpread)
}

// loShuSimilarity returns the overlap ratio plus the completion bonus, the
// shared digit count and whether the two sets complete each other.
func loShuSimilarity(a, b [10]bool) (float64, int, bool) {
	shared := 0
	aOnly, bOnly := false, false
	for d := 1; d <= 9; d++ {
		switch {
		case a[d] && b[d]:
			shared++
		case a[d]:
			aOnly = true
		case b[d]:
			bOnly = true
		}
	}
	sim := float64(shared) / loShuDigitCount
	completes := aOnly && bOnly
	if completes {
		sim += completionBonus
	}
	return sim, shared, completes
}

func matchingPositions(a, b [4]int) int {
	n := 0
	for i := range a {
		if a[i] == b[i] {
			n++
		}
	}
	return n
}

func numberDetail(label string, a, b int) string {
	if a == b {
		return fmt.Sprintf("%s %d shared by both", label, a)
	}
	return fmt.Sprintf("%s %d and %d differ by %d", label, a, b, absInt(a-b))
}

func loShuDetail(shared int, completes bool) string {
	if completes {
		return fmt.Sprintf("%d of 9 Lo Shu digits shared; each fills a gap in the other's grid", shared)
	}
	return fmt.Sprintf("%d of 9 Lo Shu digits shared", shared)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
