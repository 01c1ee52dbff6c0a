package compatibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/astronum/backend/internal/numerology"
)

func TestCategorizeBoundaries(t *testing.T) {
	cases := map[int]Category{
		100: Excellent,
		80:  Excellent,
		79:  Good,
		65:  Good,
		64:  Average,
		50:  Average,
		49:  Challenging,
		0:   Challenging,
	}
	for score, want := range cases {
		assert.Equal(t, want, Categorize(score), "score %d", score)
	}
}

func TestScoreIdenticalPeople(t *testing.T) {
	date := numerology.BirthDate{Day: 15, Month: 5, Year: 1990}
	a := NewPerson("John Smith", date)
	b := NewPerson("John Smith", date)

	res := Score(a, b)
	assert.GreaterOrEqual(t, res.Score, 95)
	assert.Equal(t, Excellent, res.Category)
	require.Len(t, res.Factors, 8)

	names := make([]string, 0, len(res.Factors))
	for _, f := range res.Factors {
		names = append(names, f.Name)
		assert.NotEmpty(t, f.Detail)
	}
	assert.Equal(t, []string{
		FactorLifePath, FactorExpression, FactorSoulUrge, FactorPersonality,
		FactorBirthday, FactorHiddenPassion, FactorLoShu, FactorCycles,
	}, names)
	assert.InDelta(t, 1.1, res.Factors[0].Value, 1e-9)
	assert.InDelta(t, 1.0, res.Factors[4].Value, 1e-9, "birthday gets no equality bonus")
	assert.InDelta(t, 0.05, res.Factors[7].Value, 1e-9, "four pinnacles minus four challenges")
	assert.Contains(t, res.Narrative, "John Smith")
}

func TestScoreSymmetric(t *testing.T) {
	people := []Person{
		NewPerson("John Smith", numerology.BirthDate{Day: 15, Month: 5, Year: 1990}),
		NewPerson("Maria Garcia", numerology.BirthDate{Day: 29, Month: 11, Year: 1984}),
		NewPerson("Li Wei", numerology.BirthDate{Day: 2, Month: 2, Year: 2002}),
		NewPerson("Ana", numerology.BirthDate{Day: 22, Month: 7, Year: 1975}),
		NewPerson("", numerology.BirthDate{Day: 1, Month: 1, Year: 2000}),
	}
	for i := range people {
		for j := range people {
			ab := Score(people[i], people[j])
			ba := Score(people[j], people[i])
			require.Equal(t, ab.Score, ba.Score, "%q vs %q", people[i].Name, people[j].Name)
			require.Equal(t, ab.Category, ba.Category)
			require.GreaterOrEqual(t, ab.Score, 0)
			require.LessOrEqual(t, ab.Score, 100)
			for k := range ab.Factors {
				require.InDelta(t, ab.Factors[k].Value, ba.Factors[k].Value, 1e-12)
			}
		}
	}
}

func TestNumberSimilarity(t *testing.T) {
	assert.InDelta(t, 1.1, numberSimilarity(4, 4, true), 1e-12)
	assert.InDelta(t, 1.0, numberSimilarity(4, 4, false), 1e-12)
	assert.InDelta(t, 0.5, numberSimilarity(1, 5, true), 1e-12)
	assert.InDelta(t, 0.0, numberSimilarity(1, 33, true), 1e-12, "master spreads clamp at zero")
	assert.InDelta(t, 1.0, passionSimilarity(7, 7), 1e-12)
	assert.InDelta(t, 0.75, passionSimilarity(7, 9), 1e-12)
}

func TestLoShuSimilarity(t *testing.T) {
	var a, b [10]bool
	for _, d := range []int{1, 2, 3} {
		a[d] = true
	}
	for _, d := range []int{2, 3, 4} {
		b[d] = true
	}
	sim, shared, completes := loShuSimilarity(a, b)
	assert.Equal(t, 2, shared)
	assert.True(t, completes)
	assert.InDelta(t, 2.0/9+0.05, sim, 1e-12)

	b[1] = true // b now covers a
	sim, shared, completes = loShuSimilarity(a, b)
	assert.Equal(t, 3, shared)
	assert.False(t, completes)
	assert.InDelta(t, 3.0/9, sim, 1e-12)
}

func TestMatchingPositions(t *testing.T) {
	assert.Equal(t, 2, matchingPositions([4]int{1, 2, 3, 4}, [4]int{1, 9, 3, 8}))
	assert.Equal(t, 0, matchingPositions([4]int{1, 2, 3, 4}, [4]int{4, 3, 2, 1}))
}
