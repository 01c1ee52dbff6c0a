package generator

// Config drives the synthetic data generator.
type Config struct {
	NumPeople       int
	NumComparisons  int
	BirthTimeChance float64
	OffsetChance    float64
	Seed            int64
}

// DefaultConfig returns baseline settings for a demo dataset.
func DefaultConfig() Config {
	return Config{
		NumPeople:       500,
		NumComparisons:  1000,
		BirthTimeChance: 0.7,
		OffsetChance:    0.2,
		Seed:            42,
	}
}
