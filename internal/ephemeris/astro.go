package ephemeris

import "math"

// j2000 is the Julian day of 2000-01-01 12:00 TT.
const j2000 = 2451545.0

const daysPerCentury = 36525.0

// obliquity is the mean obliquity of the ecliptic, held constant.
const obliquity = 23.4393

// JulianDay converts a Gregorian calendar date and a UT time of day in hours
// to a Julian day number (Meeus, Astronomical Algorithms ch. 7). utHours may
// fall outside [0,24); the result stays continuous.
func JulianDay(year, month, day int, utHours float64) float64 {
	y, m := year, month
	if m <= 2 {
		y--
		m += 12
	}
	a := math.Floor(float64(y) / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*float64(y+4716)) +
		math.Floor(30.6001*float64(m+1)) +
		float64(day) + b - 1524.5 + utHours/24
}

// Centuries returns Julian centuries elapsed since J2000 at jd.
func Centuries(jd float64) float64 {
	return (jd - j2000) / daysPerCentury
}

// Ayanamsa is a linear Lahiri-style precession offset in degrees.
func Ayanamsa(t float64) float64 {
	return 23.85 + 1.3969*t
}

// SiderealTime returns local mean sidereal time in degrees for an east
// longitude in degrees.
func SiderealTime(jd, eastLongitude float64) float64 {
	t := Centuries(jd)
	gmst := 280.46061837 +
		360.98564736629*(jd-j2000) +
		0.000387933*t*t -
		t*t*t/38710000
	return norm360(gmst + eastLongitude)
}

// tropicalAscendant returns the ecliptic longitude rising on the eastern
// horizon for a local sidereal time (the RAMC) and geographic latitude.
func tropicalAscendant(ramc, latitude float64) float64 {
	r := deg2rad(ramc)
	e := deg2rad(obliquity)
	phi := deg2rad(latitude)
	asc := math.Atan2(math.Cos(r), -(math.Sin(r)*math.Cos(e) + math.Tan(phi)*math.Sin(e)))
	return norm360(rad2deg(asc))
}

func norm360(x float64) float64 {
	r := math.Mod(x, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r -= 360
	}
	return r
}

// signed180 maps an angle difference into (-180, 180].
func signed180(x float64) float64 {
	r := norm360(x)
	if r > 180 {
		r -= 360
	}
	return r
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rad2deg(r float64) float64 { return r * 180 / math.Pi }
