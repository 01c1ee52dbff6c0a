package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanshika/astronum/backend/internal/service"
)

// Dataset contains the generated reading requests and comparisons.
type Dataset struct {
	Readings    []service.ReadingInput       `json:"readings"`
	Comparisons []service.CompatibilityInput `json:"comparisons"`
}

// Generator produces synthetic people with plausible birth data. The same
// seed always yields the same dataset.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumPeople <= 0 {
		cfg.NumPeople = def.NumPeople
	}
	if cfg.NumComparisons < 0 {
		cfg.NumComparisons = 0
	}
	cfg.BirthTimeChance = clamp(cfg.BirthTimeChance)
	cfg.OffsetChance = clamp(cfg.OffsetChance)
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
	}
}

// Generate synthesises people and comparison pairs. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	readings := make([]service.ReadingInput, g.cfg.NumPeople)
	for i := range readings {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		readings[i] = g.randomReading()
	}

	var comparisons []service.CompatibilityInput
	if len(readings) > 1 {
		comparisons = make([]service.CompatibilityInput, g.cfg.NumComparisons)
		for i := range comparisons {
			if err := ctx.Err(); err != nil {
				return Dataset{}, err
			}
			a := g.rand.Intn(len(readings))
			b := g.rand.Intn(len(readings))
			if a == b {
				b = (b + 1) % len(readings)
			}
			comparisons[i] = service.CompatibilityInput{
				PersonA: personOf(readings[a]),
				PersonB: personOf(readings[b]),
			}
		}
	}

	return Dataset{Readings: readings, Comparisons: comparisons}, nil
}

func (g *Generator) randomReading() service.ReadingInput {
	in := service.ReadingInput{
		FullName:  g.randomFullName(),
		BirthDate: g.randomBirthDate(),
	}
	if g.rand.Float64() >= g.cfg.BirthTimeChance {
		return in
	}

	city := g.fragments.cities[g.rand.Intn(len(g.fragments.cities))]
	in.BirthTime = fmt.Sprintf("%02d:%02d", g.rand.Intn(24), g.rand.Intn(60))
	in.Location = &service.LocationInput{
		Place:     city.name,
		Latitude:  city.lat,
		Longitude: city.lon,
	}
	if g.rand.Float64() < g.cfg.OffsetChance {
		offset := city.offset
		in.UTCOffset = &offset
	} else {
		in.Timezone = city.zone
	}
	return in
}

func (g *Generator) randomFullName() string {
	first := g.fragments.first[g.rand.Intn(len(g.fragments.first))]
	last := g.fragments.last[g.rand.Intn(len(g.fragments.last))]
	if g.rand.Intn(4) == 0 {
		middle := g.fragments.first[g.rand.Intn(len(g.fragments.first))]
		return fmt.Sprintf("%s %s %s", first, middle, last)
	}
	return fmt.Sprintf("%s %s", first, last)
}

func (g *Generator) randomBirthDate() string {
	year := 1950 + g.rand.Intn(56)
	month := 1 + g.rand.Intn(12)
	day := 1 + g.rand.Intn(28)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func personOf(in service.ReadingInput) service.PersonInput {
	return service.PersonInput{FullName: in.FullName, BirthDate: in.BirthDate}
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

type city struct {
	name   string
	lat    float64
	lon    float64
	zone   string
	offset float64
}

type nameFragments struct {
	first  []string
	last   []string
	cities []city
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first: []string{"Jane", "John", "Alex", "Priya", "Liu", "María", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Zoë", "Ava", "Ethan", "Zara", "Arjun", "Chloé", "Kenji"},
		last:  []string{"Doe", "Smith", "Chen", "Patel", "García", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee", "Müller", "Sharma"},
		cities: []city{
			{name: "London", lat: 51.5074, lon: -0.1278, zone: "Europe/London", offset: 0},
			{name: "New York", lat: 40.7128, lon: -74.0060, zone: "America/New_York", offset: -5},
			{name: "Mumbai", lat: 19.0760, lon: 72.8777, zone: "Asia/Kolkata", offset: 5.5},
			{name: "Delhi", lat: 28.6139, lon: 77.2090, zone: "Asia/Kolkata", offset: 5.5},
			{name: "Tokyo", lat: 35.6762, lon: 139.6503, zone: "Asia/Tokyo", offset: 9},
			{name: "Sydney", lat: -33.8688, lon: 151.2093, zone: "Australia/Sydney", offset: 10},
			{name: "São Paulo", lat: -23.5505, lon: -46.6333, zone: "America/Sao_Paulo", offset: -3},
			{name: "Berlin", lat: 52.5200, lon: 13.4050, zone: "Europe/Berlin", offset: 1},
			{name: "Kathmandu", lat: 27.7172, lon: 85.3240, zone: "Asia/Kathmandu", offset: 5.75},
			{name: "San Francisco", lat: 37.7749, lon: -122.4194, zone: "America/Los_Angeles", offset: -8},
		},
	}
}
