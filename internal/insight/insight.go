// Package insight turns computed profiles, charts and compatibility results
// into prose. Text comes either from an embedded template catalog or from a
// Gemini model, with the catalog as the fallback.
package insight

import (
	"context"

	"github.com/vanshika/astronum/backend/internal/compatibility"
	"github.com/vanshika/astronum/backend/internal/ephemeris"
	"github.com/vanshika/astronum/backend/internal/numerology"
)

// Source identifies which generator produced a Text.
type Source string

const (
	SourceTemplate Source = "template"
	SourceGenAI    Source = "genai"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Text is generated commentary.
type Text struct {
	Body   string `json:"body"`
	Source Source `json:"source"`
}

// ReadingContext is everything known about one person.
type ReadingContext struct {
	Name         string
	Date         numerology.BirthDate
	Profile      numerology.Profile
	Chart        *ephemeris.Chart
	PersonalYear int
}

// CompatibilityContext describes a scored pair.
type CompatibilityContext struct {
	NameA  string
	NameB  string
	Result compatibility.Result
}

// Message is one turn of a chat history.
type Message struct {
	Role    string
	Content string
}

// ChatContext is the input for a chat reply. Reading may be nil for sessions
// that are not tied to a stored reading.
type ChatContext struct {
	Reading  *ReadingContext
	History  []Message
	Question string
}

// Generator produces commentary.
type Generator interface {
	ReadingInsight(ctx context.Context, rc ReadingContext) (Text, error)
	CompatibilityInsight(ctx context.Context, cc CompatibilityContext) (Text, error)
	Reply(ctx context.Context, chat ChatContext) (Text, error)
}
