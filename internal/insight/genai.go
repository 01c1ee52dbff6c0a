package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

const systemInstruction = `You are a warm, grounded numerology and Vedic astrology guide.
Only use the numbers and placements provided; never invent additional chart factors.
The planetary positions are simplified approximations, so speak in tendencies rather than certainties.
Keep answers under 200 words and avoid medical, legal or financial advice.`

// contentModels is the subset of *genai.Models used here.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIGenerator asks a Gemini model for commentary.
type GenAIGenerator struct {
	models  contentModels
	model   string
	timeout time.Duration
}

// NewGenAIGenerator creates a Gemini client for apiKey.
func NewGenAIGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("genai api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGenAIGenerator(client.Models, model, timeout), nil
}

func newGenAIGenerator(models contentModels, model string, timeout time.Duration) *GenAIGenerator {
	if model == "" {
		model = defaultModel
	}
	return &GenAIGenerator{models: models, model: model, timeout: timeout}
}

// ReadingInsight writes an interpretation of the reading.
func (g *GenAIGenerator) ReadingInsight(ctx context.Context, rc ReadingContext) (Text, error) {
	facts, err := readingFacts(rc)
	if err != nil {
		return Text{}, err
	}
	prompt := "Write a personal reading of three short paragraphs (numerology, chart, the year ahead) for this person.\n" + facts
	return g.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)})
}

// CompatibilityInsight writes a relationship summary.
func (g *GenAIGenerator) CompatibilityInsight(ctx context.Context, cc CompatibilityContext) (Text, error) {
	payload, err := json.Marshal(cc.Result)
	if err != nil {
		return Text{}, fmt.Errorf("encode compatibility: %w", err)
	}
	prompt := fmt.Sprintf("Summarise the numerology compatibility between %s and %s in two paragraphs. Mention the strongest and weakest factors.\n%s",
		cc.NameA, cc.NameB, payload)
	return g.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)})
}

// Reply continues a chat. The reading goes first as context, then the
// history as alternating user/model turns, then the new question.
func (g *GenAIGenerator) Reply(ctx context.Context, chat ChatContext) (Text, error) {
	contents := make([]*genai.Content, 0, len(chat.History)+3)
	if chat.Reading != nil {
		facts, err := readingFacts(*chat.Reading)
		if err != nil {
			return Text{}, err
		}
		contents = append(contents,
			genai.NewContentFromText("Here is my reading:\n"+facts, genai.RoleUser),
			genai.NewContentFromText("Thank you, I have your reading. What would you like to know?", genai.RoleModel),
		)
	}
	for _, m := range chat.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(chat.Question, genai.RoleUser))
	return g.generate(ctx, contents)
}

func (g *GenAIGenerator) generate(ctx context.Context, contents []*genai.Content) (Text, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		return Text{}, fmt.Errorf("genai generate: %w", err)
	}
	body := strings.TrimSpace(resp.Text())
	if body == "" {
		return Text{}, errors.New("genai generate: empty response")
	}
	return Text{Body: body, Source: SourceGenAI}, nil
}

type promptFacts struct {
	Name         string `json:"name"`
	BirthDate    string `json:"birthDate"`
	PersonalYear int    `json:"personalYear,omitempty"`
	Profile      any    `json:"numerology"`
	Ascendant    string `json:"ascendant,omitempty"`
	Placements   any    `json:"placements,omitempty"`
	Dasha        any    `json:"currentDasha,omitempty"`
}

func readingFacts(rc ReadingContext) (string, error) {
	facts := promptFacts{
		Name:         displayName(rc.Name),
		BirthDate:    rc.Date.String(),
		PersonalYear: rc.PersonalYear,
		Profile:      rc.Profile,
	}
	if c := rc.Chart; c != nil {
		facts.Ascendant = c.Ascendant.SignName
		placements := make(map[string]string, len(c.Planets))
		for p, pos := range c.Planets {
			placements[string(p)] = fmt.Sprintf("%s %.1f° (%s pada %d)", pos.SignName, pos.Degree, pos.NakshatraName, pos.Pada)
		}
		facts.Placements = placements
		if c.Dasha.Current != nil {
			facts.Dasha = c.Dasha.Current
		}
	}
	data, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode reading facts: %w", err)
	}
	return string(data), nil
}
