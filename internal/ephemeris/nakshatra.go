package ephemeris

import "math"

const (
	nakshatraSpan = 40.0 / 3
	padaSpan      = 10.0 / 3
)

// NakshatraNames indexes the 27 lunar mansions from 0° sidereal.
var NakshatraNames = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni",
	"Hasta", "Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha",
	"Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha",
	"Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// NakshatraOf returns the mansion index (0..26) and pada (1..4) of a
// sidereal longitude.
func NakshatraOf(longitude float64) (int, int) {
	lon := norm360(longitude)
	idx := int(math.Floor(lon / nakshatraSpan))
	if idx > 26 {
		idx = 26
	}
	pada := int(math.Floor(math.Mod(lon, nakshatraSpan)/padaSpan)) + 1
	if pada > 4 {
		pada = 4
	}
	return idx, pada
}

// NakshatraLord is the Vimshottari ruler of a mansion.
func NakshatraLord(idx int) Planet {
	return vimshottari[idx%len(vimshottari)].Planet
}

// traversed is the fraction of its mansion a longitude has already covered.
func traversed(longitude float64) float64 {
	return math.Mod(norm360(longitude), nakshatraSpan) / nakshatraSpan
}
