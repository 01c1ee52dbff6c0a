package numerology

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BirthDate is a calendar date of birth.
type BirthDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ErrInvalidDate reports a day/month/year triple that is not a calendar date.
var ErrInvalidDate = errors.New("invalid birth date")

// Validate checks that the date exists in the Gregorian calendar.
func (d BirthDate) Validate() error {
	if d.Year < 1 || d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, d.Year, d.Month, d.Day)
	}
	t := d.Time()
	if t.Day() != d.Day || int(t.Month()) != d.Month || t.Year() != d.Year {
		return fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, d.Year, d.Month, d.Day)
	}
	return nil
}

// Time returns midnight UTC of the date.
func (d BirthDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d BirthDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseBirthDate parses an ISO date (YYYY-MM-DD).
func ParseBirthDate(value string) (BirthDate, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return BirthDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return BirthDate{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}, nil
}

// Profile holds every number derived from a name and a birth date.
type Profile struct {
	LifePath       int       `json:"lifePathNumber"`
	Expression     int       `json:"expressionNumber"`
	SoulUrge       int       `json:"soulUrgeNumber"`
	Personality    int       `json:"personalityNumber"`
	Birthday       int       `json:"birthdayNumber"`
	Maturity       int       `json:"maturityNumber"`
	HiddenPassion  int       `json:"hiddenPassionNumber"`
	LoShuGrid      LoShuGrid `json:"loShuGrid"`
	MissingNumbers []int     `json:"missingNumbers"`
	Pinnacles      [4]int    `json:"pinnacles"`
	Challenges     [4]int    `json:"challenges"`
}

// Calculate derives the numerology profile of fullName born on date. The date
// must already be valid.
func Calculate(fullName string, date BirthDate) Profile {
	lifePath := LifePath(date)
	expression := Expression(fullName)
	birthday := Reduce(date.Day)

	grid := BuildLoShu(LoShuDigits(date, birthday, lifePath))

	return Profile{
		LifePath:       lifePath,
		Expression:     expression,
		SoulUrge:       Reduce(NameNumber(fullName, VowelsOnly)),
		Personality:    Reduce(NameNumber(fullName, ConsonantsOnly)),
		Birthday:       birthday,
		Maturity:       ReduceNoMaster(lifePath + expression),
		HiddenPassion:  HiddenPassion(fullName),
		LoShuGrid:      grid,
		MissingNumbers: grid.Missing(),
		Pinnacles:      Pinnacles(date),
		Challenges:     Challenges(date),
	}
}

// LifePath reduces day, month and year separately and then their sum.
func LifePath(date BirthDate) int {
	return Reduce(Reduce(date.Day) + Reduce(date.Month) + Reduce(date.Year))
}

// Expression reduces each name token on its own before reducing the total.
func Expression(fullName string) int {
	total := 0
	for _, token := range strings.Fields(NormalizeName(fullName)) {
		total += Reduce(NameNumber(token, AllLetters))
	}
	return Reduce(total)
}

// PersonalYear is the cycle number the person is in during calendar year.
func PersonalYear(date BirthDate, year int) int {
	return Reduce(Reduce(date.Day) + Reduce(date.Month) + Reduce(year))
}

// Pinnacles returns the four life-period pinnacle numbers.
func Pinnacles(date BirthDate) [4]int {
	m, d, y := Reduce(date.Month), Reduce(date.Day), Reduce(date.Year)
	first := Reduce(m + d)
	second := Reduce(d + y)
	return [4]int{
		first,
		second,
		Reduce(first + second),
		Reduce(m + y),
	}
}

// Challenges returns the four challenge numbers. Master numbers never survive.
func Challenges(date BirthDate) [4]int {
	m, d, y := ReduceNoMaster(date.Month), ReduceNoMaster(date.Day), ReduceNoMaster(date.Year)
	first := ReduceNoMaster(absDiff(m, d))
	second := ReduceNoMaster(absDiff(d, y))
	return [4]int{
		first,
		second,
		ReduceNoMaster(absDiff(first, second)),
		ReduceNoMaster(absDiff(m, y)),
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
