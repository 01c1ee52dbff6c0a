package domain

import (
	"time"

	"github.com/vanshika/astronum/backend/internal/compatibility"
	"github.com/vanshika/astronum/backend/internal/ephemeris"
	"github.com/vanshika/astronum/backend/internal/insight"
	"github.com/vanshika/astronum/backend/internal/numerology"
)

// Confidence says how much of a reading could be computed.
type Confidence string

const (
	ConfidenceFull    Confidence = "full"
	ConfidenceReduced Confidence = "reduced"
)

// Location is a birthplace.
type Location struct {
	Place     string  `json:"place,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reading is a stored numerology profile plus optional chart and insight.
type Reading struct {
	ID            string               `json:"id"`
	FullName      string               `json:"fullName"`
	BirthDate     numerology.BirthDate `json:"birthDate"`
	BirthTime     string               `json:"birthTime,omitempty"`
	Location      *Location            `json:"location,omitempty"`
	Timezone      string               `json:"timezone,omitempty"`
	Profile       numerology.Profile   `json:"profile"`
	PersonalYear  int                  `json:"personalYear"`
	Chart         *ephemeris.Chart     `json:"chart,omitempty"`
	ChartError    string               `json:"chartError,omitempty"`
	Confidence    Confidence           `json:"confidence"`
	Insight       string               `json:"insight"`
	InsightSource insight.Source       `json:"insightSource"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// ReadingSummary is the lightweight list view of a reading.
type ReadingSummary struct {
	ID         string               `json:"id"`
	FullName   string               `json:"fullName"`
	BirthDate  numerology.BirthDate `json:"birthDate"`
	LifePath   int                  `json:"lifePathNumber"`
	Expression int                  `json:"expressionNumber"`
	Confidence Confidence           `json:"confidence"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// Summary projects r onto its list view.
func (r Reading) Summary() ReadingSummary {
	return ReadingSummary{
		ID:         r.ID,
		FullName:   r.FullName,
		BirthDate:  r.BirthDate,
		LifePath:   r.Profile.LifePath,
		Expression: r.Profile.Expression,
		Confidence: r.Confidence,
		CreatedAt:  r.CreatedAt,
	}
}

// InsightContext converts r to the insight layer's input.
func (r Reading) InsightContext() insight.ReadingContext {
	return insight.ReadingContext{
		Name:         r.FullName,
		Date:         r.BirthDate,
		Profile:      r.Profile,
		Chart:        r.Chart,
		PersonalYear: r.PersonalYear,
	}
}

// PersonRef names one side of a compatibility report.
type PersonRef struct {
	ReadingID string               `json:"readingId,omitempty"`
	Name      string               `json:"name"`
	BirthDate numerology.BirthDate `json:"birthDate"`
}

// CompatibilityReport is a stored compatibility comparison.
type CompatibilityReport struct {
	ID            string               `json:"id"`
	PersonA       PersonRef            `json:"personA"`
	PersonB       PersonRef            `json:"personB"`
	Result        compatibility.Result `json:"result"`
	Insight       string               `json:"insight"`
	InsightSource insight.Source       `json:"insightSource"`
	CreatedAt     time.Time            `json:"createdAt"`
}
