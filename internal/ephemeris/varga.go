package ephemeris

import (
	"fmt"
	"math"
)

// Divisional charts computed for every reading.
var Divisions = []int{9, 10, 12}

// VargaName labels a division, e.g. "D9".
func VargaName(division int) string {
	return fmt.Sprintf("D%d", division)
}

// VargaSign places a sidereal longitude in the D-n chart: the sign is split
// into n equal parts and counting starts from sign*n.
func VargaSign(longitude float64, division int) int {
	sign := SignOf(longitude)
	part := int(math.Floor(DegreeInSign(longitude) / (30 / float64(division))))
	if part >= division {
		part = division - 1
	}
	return (sign*division + part) % 12
}
