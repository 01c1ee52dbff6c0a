// Package ephemeris builds a simplified sidereal natal chart.
//
// Planet positions come from truncated mean-element formulas; the outer
// planets use heliocentric mean longitudes and the Moon a single periodic
// term. Results are reproducible approximations suitable for interpretation,
// not for astronomical use.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"
)

// ErrChartUnavailable reports birth data a chart cannot be built from.
var ErrChartUnavailable = errors.New("chart unavailable")

// BirthMoment is the input to Generate. Zone, when set, is an IANA name and
// takes precedence over TZOffset (hours east of UTC).
type BirthMoment struct {
	Year      int
	Month     int
	Day       int
	Time      string
	Zone      string
	TZOffset  float64
	Latitude  float64
	Longitude float64
}

// Position is a sidereal placement.
type Position struct {
	Longitude     float64 `json:"longitude"`
	Sign          int     `json:"sign"`
	SignName      string  `json:"signName"`
	Degree        float64 `json:"degree"`
	Nakshatra     int     `json:"nakshatra"`
	NakshatraName string  `json:"nakshatraName"`
	Pada          int     `json:"pada"`
	Retrograde    bool    `json:"retrograde"`
}

// House is an equal-house cusp.
type House struct {
	Number        int     `json:"number"`
	Sign          int     `json:"sign"`
	SignName      string  `json:"signName"`
	CuspLongitude float64 `json:"cuspLongitude"`
}

// Chart is a natal chart.
type Chart struct {
	JulianDay     float64                   `json:"julianDay"`
	SiderealTime  float64                   `json:"siderealTime"`
	Ayanamsa      float64                   `json:"ayanamsa"`
	Ascendant     Position                  `json:"ascendant"`
	Houses        [12]House                 `json:"houses"`
	Planets       map[Planet]Position       `json:"planets"`
	MoonNakshatra int                       `json:"moonNakshatra"`
	MoonPada      int                       `json:"moonPada"`
	Vargas        map[string]map[Planet]int `json:"vargas"`
	Dasha         Dasha                     `json:"dasha"`
}

// Generate computes the chart for m. now selects the running dasha.
func Generate(m BirthMoment, now time.Time) (Chart, error) {
	birth, err := m.Instant()
	if err != nil {
		return Chart{}, err
	}
	if m.Latitude < -90 || m.Latitude > 90 || math.IsNaN(m.Latitude) {
		return Chart{}, fmt.Errorf("%w: latitude %v out of range", ErrChartUnavailable, m.Latitude)
	}
	if m.Longitude < -180 || m.Longitude > 180 || math.IsNaN(m.Longitude) {
		return Chart{}, fmt.Errorf("%w: longitude %v out of range", ErrChartUnavailable, m.Longitude)
	}

	ut := birth.UTC()
	hours := float64(ut.Hour()) + float64(ut.Minute())/60 + float64(ut.Second())/3600
	jd := JulianDay(ut.Year(), int(ut.Month()), ut.Day(), hours)
	t := Centuries(jd)
	ayan := Ayanamsa(t)

	planets := make(map[Planet]Position, len(AllPlanets))
	for _, p := range FormulaPlanets {
		pos := place(tropicalLongitude(p, t) - ayan)
		pos.Retrograde = p == Rahu || dailyMotion(p, t) < 0
		planets[p] = pos
	}
	rahu := planets[Rahu]
	ketu := place(rahu.Longitude + 180)
	ketu.Sign = (rahu.Sign + 6) % 12
	ketu.SignName = SignNames[ketu.Sign]
	ketu.Retrograde = true
	planets[Ketu] = ketu

	lst := SiderealTime(jd, m.Longitude)
	asc := place(tropicalAscendant(lst, m.Latitude) - ayan)

	var houses [12]House
	for i := range houses {
		sign := (asc.Sign + i) % 12
		houses[i] = House{
			Number:        i + 1,
			Sign:          sign,
			SignName:      SignNames[sign],
			CuspLongitude: norm360(asc.Longitude + 30*float64(i)),
		}
	}

	vargas := make(map[string]map[Planet]int, len(Divisions))
	for _, n := range Divisions {
		signs := make(map[Planet]int, len(planets))
		for p, pos := range planets {
			signs[p] = VargaSign(pos.Longitude, n)
		}
		vargas[VargaName(n)] = signs
	}

	moon := planets[Moon]
	return Chart{
		JulianDay:     jd,
		SiderealTime:  lst / 15,
		Ayanamsa:      ayan,
		Ascendant:     asc,
		Houses:        houses,
		Planets:       planets,
		MoonNakshatra: moon.Nakshatra,
		MoonPada:      moon.Pada,
		Vargas:        vargas,
		Dasha:         ComputeDasha(moon.Longitude, ut, now),
	}, nil
}

// Instant resolves the birth date, clock time and zone to an absolute time.
func (m BirthMoment) Instant() (time.Time, error) {
	clock := strings.TrimSpace(m.Time)
	if clock == "" {
		return time.Time{}, fmt.Errorf("%w: birth time missing", ErrChartUnavailable)
	}
	tod, err := parseClock(clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birth time %q: %v", ErrChartUnavailable, clock, err)
	}

	var loc *time.Location
	if m.Zone != "" {
		loc, err = time.LoadLocation(m.Zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: zone %q: %v", ErrChartUnavailable, m.Zone, err)
		}
	} else {
		if m.TZOffset < -14 || m.TZOffset > 14 {
			return time.Time{}, fmt.Errorf("%w: utc offset %v out of range", ErrChartUnavailable, m.TZOffset)
		}
		loc = time.FixedZone("", int(math.Round(m.TZOffset*3600)))
	}

	if m.Month < 1 || m.Month > 12 || m.Day < 1 || m.Day > 31 {
		return time.Time{}, fmt.Errorf("%w: invalid date", ErrChartUnavailable)
	}
	local := time.Date(m.Year, time.Month(m.Month), m.Day, tod.Hour(), tod.Minute(), tod.Second(), 0, loc)
	if local.Day() != m.Day {
		return time.Time{}, fmt.Errorf("%w: invalid date", ErrChartUnavailable)
	}
	return local, nil
}

func parseClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("want HH:MM or HH:MM:SS")
}

func place(longitude float64) Position {
	lon := norm360(longitude)
	sign := SignOf(lon)
	nak, pada := NakshatraOf(lon)
	return Position{
		Longitude:     lon,
		Sign:          sign,
		SignName:      SignNames[sign],
		Degree:        DegreeInSign(lon),
		Nakshatra:     nak,
		NakshatraName: NakshatraNames[nak],
		Pada:          pada,
	}
}
