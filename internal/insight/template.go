package insight

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/astronum/backend/internal/compatibility"
	"github.com/vanshika/astronum/backend/internal/ephemeris"
)

// TemplateGenerator renders commentary from the catalog. It never calls out
// and only fails on a cancelled context.
type TemplateGenerator struct {
	catalog *Catalog
}

// NewTemplateGenerator returns a generator backed by catalog.
func NewTemplateGenerator(catalog *Catalog) *TemplateGenerator {
	return &TemplateGenerator{catalog: catalog}
}

// ReadingInsight builds the numerology and chart sections concurrently and
// joins them.
func (g *TemplateGenerator) ReadingInsight(ctx context.Context, rc ReadingContext) (Text, error) {
	var numerologySection, chartSection string

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		numerologySection = g.numerologySection(rc)
		return nil
	})
	if rc.Chart != nil {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			chartSection = g.chartSection(rc.Chart)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Text{}, err
	}

	body := numerologySection
	if chartSection != "" {
		body += "\n\n" + chartSection
	} else {
		body += "\n\nNo birth time or location was usable, so this reading is based on numerology alone."
	}
	return Text{Body: body, Source: SourceTemplate}, nil
}

// CompatibilityInsight expands the category narrative.
func (g *TemplateGenerator) CompatibilityInsight(ctx context.Context, cc CompatibilityContext) (Text, error) {
	if err := ctx.Err(); err != nil {
		return Text{}, err
	}
	var b strings.Builder
	b.WriteString(compatibility.Narrative(cc.NameA, cc.NameB, cc.Result))
	if text, ok := g.catalog.Categories[string(cc.Result.Category)]; ok {
		b.WriteString(" ")
		b.WriteString(text)
	}
	return Text{Body: b.String(), Source: SourceTemplate}, nil
}

// Reply answers from the reading by matching topics in the question.
func (g *TemplateGenerator) Reply(ctx context.Context, chat ChatContext) (Text, error) {
	if err := ctx.Err(); err != nil {
		return Text{}, err
	}
	q := strings.ToLower(chat.Question)
	rc := chat.Reading

	if rc == nil {
		if len(chat.History) == 0 {
			return Text{Body: g.catalog.Chat.Greeting, Source: SourceTemplate}, nil
		}
		return Text{Body: g.catalog.Chat.Unknown, Source: SourceTemplate}, nil
	}

	p := rc.Profile
	var parts []string
	switch {
	case strings.Contains(q, "life path") || strings.Contains(q, "purpose"):
		parts = append(parts, g.describe("Life Path", p.LifePath))
	case strings.Contains(q, "expression") || strings.Contains(q, "career") || strings.Contains(q, "work"):
		parts = append(parts, g.describe("Expression", p.Expression))
		m := g.catalog.Number(p.Expression)
		parts = append(parts, fmt.Sprintf("At work, lean on %s.", m.Strengths))
	case strings.Contains(q, "soul") || strings.Contains(q, "love") || strings.Contains(q, "relationship"):
		parts = append(parts, g.describe("Soul Urge", p.SoulUrge))
		if rc.Chart != nil {
			venus := rc.Chart.Planets[ephemeris.Venus]
			parts = append(parts, fmt.Sprintf("Venus sits in %s, so you love in a way that is %s.", venus.SignName, g.catalog.Signs[venus.SignName]))
		}
	case strings.Contains(q, "year") || strings.Contains(q, "future") || strings.Contains(q, "next"):
		parts = append(parts, g.describe("Personal Year", rc.PersonalYear))
	case strings.Contains(q, "dasha") || strings.Contains(q, "period") || strings.Contains(q, "phase"):
		if rc.Chart != nil && rc.Chart.Dasha.Current != nil {
			parts = append(parts, g.dashaSentence(rc.Chart.Dasha.Current))
		} else {
			parts = append(parts, "Your current planetary period needs a birth time and place to calculate.")
		}
	case strings.Contains(q, "moon") || strings.Contains(q, "nakshatra") || strings.Contains(q, "emotion"):
		if rc.Chart != nil {
			moon := rc.Chart.Planets[ephemeris.Moon]
			parts = append(parts, fmt.Sprintf("Your Moon is in %s in %s, pointing to %s.", moon.SignName, moon.NakshatraName, g.catalog.Nakshatras[moon.NakshatraName]))
		} else {
			parts = append(parts, "Your Moon placement needs a birth time and place to calculate.")
		}
	default:
		parts = append(parts, g.catalog.Chat.Unknown)
	}
	return Text{Body: strings.Join(parts, " "), Source: SourceTemplate}, nil
}

func (g *TemplateGenerator) numerologySection(rc ReadingContext) string {
	p := rc.Profile
	lines := []string{
		fmt.Sprintf("%s, born %s.", displayName(rc.Name), rc.Date),
		g.describe("Life Path", p.LifePath),
		g.describe("Expression", p.Expression),
		g.describe("Soul Urge", p.SoulUrge),
		g.describe("Personality", p.Personality),
		fmt.Sprintf("Your Birthday number %d and Maturity number %d round out the picture.", p.Birthday, p.Maturity),
	}
	if p.HiddenPassion > 0 {
		lines = append(lines, fmt.Sprintf("Hidden Passion %d: a recurring pull toward %s.", p.HiddenPassion, g.catalog.Number(p.HiddenPassion).Strengths))
	}
	if len(p.MissingNumbers) > 0 {
		missing := make([]string, len(p.MissingNumbers))
		for i, n := range p.MissingNumbers {
			missing[i] = fmt.Sprint(n)
		}
		lines = append(lines, fmt.Sprintf("Your Lo Shu grid is missing %s; these are qualities to develop consciously.", strings.Join(missing, ", ")))
	}
	if rc.PersonalYear > 0 {
		lines = append(lines, g.describe("Personal Year", rc.PersonalYear))
	}
	return strings.Join(lines, " ")
}

func (g *TemplateGenerator) chartSection(c *ephemeris.Chart) string {
	asc := c.Ascendant
	sun := c.Planets[ephemeris.Sun]
	moon := c.Planets[ephemeris.Moon]
	lines := []string{
		fmt.Sprintf("Your ascendant is %s: you come across as %s.", asc.SignName, g.catalog.Signs[asc.SignName]),
		fmt.Sprintf("The Sun in %s makes your core self %s.", sun.SignName, g.catalog.Signs[sun.SignName]),
		fmt.Sprintf("The Moon in %s, nakshatra %s pada %d, speaks of %s.", moon.SignName, moon.NakshatraName, moon.Pada, g.catalog.Nakshatras[moon.NakshatraName]),
	}
	var retro []string
	for _, p := range ephemeris.AllPlanets {
		if p == ephemeris.Rahu || p == ephemeris.Ketu {
			continue
		}
		if c.Planets[p].Retrograde {
			retro = append(retro, string(p))
		}
	}
	if len(retro) > 0 {
		lines = append(lines, fmt.Sprintf("Retrograde: %s.", strings.Join(retro, ", ")))
	}
	if c.Dasha.Current != nil {
		lines = append(lines, g.dashaSentence(c.Dasha.Current))
	}
	return strings.Join(lines, " ")
}

func (g *TemplateGenerator) dashaSentence(cur *ephemeris.CurrentDasha) string {
	return fmt.Sprintf("You are in %s mahadasha (%s) with a %s sub-period until %s, emphasising %s.",
		cur.Maha, g.catalog.Planets[string(cur.Maha)], cur.Sub, cur.SubEnd.Format("January 2006"), g.catalog.Planets[string(cur.Sub)])
}

func (g *TemplateGenerator) describe(label string, n int) string {
	m := g.catalog.Number(n)
	return fmt.Sprintf("%s %d, %s: %s", label, n, m.Title, m.Summary)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Friend"
	}
	return name
}
