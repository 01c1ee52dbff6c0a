package numerology

// LoShuLayout is the fixed magic-square arrangement of the grid, top row first.
var LoShuLayout = [3][3]int{
	{4, 9, 2},
	{3, 5, 7},
	{8, 1, 6},
}

// LoShuGrid shows a layout number in each cell whose digit is present, 0 otherwise.
type LoShuGrid [3][3]int

// LoShuDigits collects the digit pool used for the grid: every decimal digit
// of day, month and year followed by those of the birthday and life path numbers.
func LoShuDigits(date BirthDate, birthday, lifePath int) []int {
	var pool []int
	for _, n := range []int{date.Day, date.Month, date.Year, birthday, lifePath} {
		pool = append(pool, digits(n)...)
	}
	return pool
}

// DigitSet returns the presence set of digits 1..9 in pool. Index 0 is unused.
func DigitSet(pool []int) [10]bool {
	var set [10]bool
	for _, d := range pool {
		if d >= 1 && d <= 9 {
			set[d] = true
		}
	}
	return set
}

// BuildLoShu places the digits of pool onto the fixed layout.
func BuildLoShu(pool []int) LoShuGrid {
	present := DigitSet(pool)
	var grid LoShuGrid
	for r, row := range LoShuLayout {
		for c, n := range row {
			if present[n] {
				grid[r][c] = n
			}
		}
	}
	return grid
}

// Present returns the presence set encoded by the grid.
func (g LoShuGrid) Present() [10]bool {
	var set [10]bool
	for _, row := range g {
		for _, n := range row {
			if n > 0 {
				set[n] = true
			}
		}
	}
	return set
}

// Missing lists the absent digits in ascending order.
func (g LoShuGrid) Missing() []int {
	present := g.Present()
	missing := []int{}
	for d := 1; d <= 9; d++ {
		if !present[d] {
			missing = append(missing, d)
		}
	}
	return missing
}
