package insight

import (
	"context"
	"log/slog"
)

// FallbackGenerator tries Primary first and answers from Fallback when it
// is missing or fails.
type FallbackGenerator struct {
	Primary  Generator
	Fallback Generator
	Logger   *slog.Logger
}

// NewFallbackGenerator wires primary in front of fallback. primary may be nil.
func NewFallbackGenerator(primary, fallback Generator, logger *slog.Logger) *FallbackGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackGenerator{Primary: primary, Fallback: fallback, Logger: logger.With("component", "insight")}
}

func (g *FallbackGenerator) ReadingInsight(ctx context.Context, rc ReadingContext) (Text, error) {
	return g.try(ctx, "reading", func(gen Generator) (Text, error) { return gen.ReadingInsight(ctx, rc) })
}

func (g *FallbackGenerator) CompatibilityInsight(ctx context.Context, cc CompatibilityContext) (Text, error) {
	return g.try(ctx, "compatibility", func(gen Generator) (Text, error) { return gen.CompatibilityInsight(ctx, cc) })
}

func (g *FallbackGenerator) Reply(ctx context.Context, chat ChatContext) (Text, error) {
	return g.try(ctx, "chat", func(gen Generator) (Text, error) { return gen.Reply(ctx, chat) })
}

func (g *FallbackGenerator) try(ctx context.Context, kind string, call func(Generator) (Text, error)) (Text, error) {
	if g.Primary != nil {
		text, err := call(g.Primary)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return Text{}, ctx.Err()
		}
		g.Logger.Warn("primary insight generator failed, using templates", "kind", kind, "error", err)
	}
	return call(g.Fallback)
}
