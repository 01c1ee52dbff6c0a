package ephemeris

import "math"

// Planet names a graha.
type Planet string

const (
	Sun     Planet = "Sun"
	Moon    Planet = "Moon"
	Mercury Planet = "Mercury"
	Venus   Planet = "Venus"
	Mars    Planet = "Mars"
	Jupiter Planet = "Jupiter"
	Saturn  Planet = "Saturn"
	Rahu    Planet = "Rahu"
	Ketu    Planet = "Ketu"
)

// FormulaPlanets have their own longitude formula. Ketu is derived from Rahu.
var FormulaPlanets = []Planet{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Rahu}

// AllPlanets lists every planet placed in a chart, in display order.
var AllPlanets = []Planet{Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu}

// SignNames indexes the twelve zodiac signs from Aries.
var SignNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// tropicalLongitude evaluates the truncated mean-element formula of p at t
// Julian centuries from J2000. These are mean (and for the outer planets,
// heliocentric) elements: an approximation, not an ephemeris.
func tropicalLongitude(p Planet, t float64) float64 {
	switch p {
	case Sun:
		l0 := 280.46646 + 36000.76983*t + 0.0003032*t*t
		m := deg2rad(357.52911 + 35999.05029*t)
		return norm360(l0 + 1.914602*math.Sin(m) + 0.019993*math.Sin(2*m))
	case Moon:
		l := 218.3164477 + 481267.88123421*t
		mPrime := deg2rad(134.9633964 + 477198.8675055*t)
		return norm360(l + 6.289*math.Sin(mPrime))
	case Mercury:
		return norm360(252.250906 + 149472.6746358*t)
	case Venus:
		return norm360(181.979801 + 58517.8156760*t)
	case Mars:
		return norm360(355.433 + 19140.2993039*t)
	case Jupiter:
		return norm360(34.351519 + 3034.9056606*t)
	case Saturn:
		return norm360(50.077444 + 1222.1138488*t)
	case Rahu:
		return norm360(125.0445550 - 1934.1361849*t + 0.0020762*t*t)
	}
	return 0
}

// dailyMotion is the change in tropical longitude over one day at t.
func dailyMotion(p Planet, t float64) float64 {
	return signed180(tropicalLongitude(p, t+1/daysPerCentury) - tropicalLongitude(p, t))
}

// SignOf returns the zodiac sign index (0 = Aries) of a longitude.
func SignOf(longitude float64) int {
	s := int(norm360(longitude) / 30)
	if s > 11 {
		s = 11
	}
	return s
}

// DegreeInSign returns the offset of a longitude within its sign.
func DegreeInSign(longitude float64) float64 {
	return math.Mod(norm360(longitude), 30)
}
