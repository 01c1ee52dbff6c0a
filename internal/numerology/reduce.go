package numerology

// Reduce sums the decimal digits of n until a single digit remains, stopping
// early on the master numbers 11, 22 and 33.
func Reduce(n int) int {
	return reduce(n, true)
}

// ReduceNoMaster sums the decimal digits of n until a single digit remains.
// Master numbers are reduced like any other value.
func ReduceNoMaster(n int) int {
	return reduce(n, false)
}

// IsMaster reports whether n is one of the master numbers.
func IsMaster(n int) bool {
	return n == 11 || n == 22 || n == 33
}

func reduce(n int, keepMaster bool) int {
	if n < 0 {
		n = -n
	}
	for n > 9 {
		if keepMaster && IsMaster(n) {
			return n
		}
		n = digitSum(n)
	}
	return n
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

// digits returns the decimal digits of n, most significant first. Zero yields
// a single 0 digit.
func digits(n int) []int {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return []int{0}
	}
	var out []int
	for n > 0 {
		out = append([]int{n % 10}, out...)
		n /= 10
	}
	return out
}
