package numerology

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	cases := []struct {
		in         int
		want       int
		wantNoMast int
	}{
		{0, 0, 0},
		{7, 7, 7},
		{10, 1, 1},
		{11, 11, 2},
		{19, 1, 1},
		{22, 22, 4},
		{29, 11, 2},
		{33, 33, 6},
		{1990, 1, 1},
		{1984, 22, 4},
		{-15, 6, 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Reduce(tc.in), "Reduce(%d)", tc.in)
		assert.Equal(t, tc.wantNoMast, ReduceNoMaster(tc.in), "ReduceNoMaster(%d)", tc.in)
	}
}

func TestReduceRange(t *testing.T) {
	allowed := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true, 11: true, 22: true, 33: true}
	for n := 1; n <= 20000; n++ {
		got := Reduce(n)
		require.True(t, allowed[got], "Reduce(%d) = %d", n, got)
		plain := ReduceNoMaster(n)
		require.True(t, plain >= 1 && plain <= 9, "ReduceNoMaster(%d) = %d", n, plain)
	}
}

func TestNameNumber(t *testing.T) {
	assert.Equal(t, 44, NameNumber("John Smith", AllLetters))
	assert.Equal(t, 15, NameNumber("John Smith", VowelsOnly))
	assert.Equal(t, 29, NameNumber("John Smith", ConsonantsOnly))
	assert.Equal(t, 0, NameNumber("", AllLetters))
	assert.Equal(t, 0, NameNumber("123 -- !!", AllLetters))
	assert.Equal(t, NameNumber("JOSE", AllLetters), NameNumber("josé", AllLetters))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "ANNE MARIE ONEIL", NormalizeName("Anne\tMarie O'Neil"))
	assert.Equal(t, "RENEE", NormalizeName("Renée"))
}

func TestHiddenPassion(t *testing.T) {
	// J1 O6 H8 N5 S1 M4 I9 T2 H8: 1 and 8 both appear twice.
	assert.Equal(t, 1, HiddenPassion("John Smith"))
	assert.Equal(t, 5, HiddenPassion("Eve"))
	assert.Equal(t, 0, HiddenPassion(""))
}

func TestCalculateJohnSmith(t *testing.T) {
	got := Calculate("John Smith", BirthDate{Day: 15, Month: 5, Year: 1990})

	want := Profile{
		LifePath:      3,
		Expression:    8,
		SoulUrge:      6,
		Personality:   11,
		Birthday:      6,
		Maturity:      2,
		HiddenPassion: 1,
		LoShuGrid: LoShuGrid{
			{0, 9, 0},
			{3, 5, 0},
			{0, 1, 6},
		},
		MissingNumbers: []int{2, 4, 7, 8},
		Pinnacles:      [4]int{11, 7, 9, 6},
		Challenges:     [4]int{1, 5, 4, 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestLifePathRange(t *testing.T) {
	allowed := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true, 11: true, 22: true, 33: true}
	for year := 1900; year <= 2030; year += 7 {
		for month := 1; month <= 12; month++ {
			for day := 1; day <= 28; day++ {
				lp := LifePath(BirthDate{Day: day, Month: month, Year: year})
				require.True(t, allowed[lp], "life path %d for %d-%d-%d", lp, year, month, day)
			}
		}
	}
}

func TestLoShuCellsMatchLayout(t *testing.T) {
	for year := 1950; year <= 2010; year += 3 {
		for month := 1; month <= 12; month++ {
			date := BirthDate{Day: month + 10, Month: month, Year: year}
			p := Calculate("Alex Doe", date)
			for r := range p.LoShuGrid {
				for c, v := range p.LoShuGrid[r] {
					require.Contains(t, []int{0, LoShuLayout[r][c]}, v)
				}
			}
		}
	}
}

func TestChallengesNeverMaster(t *testing.T) {
	for day := 1; day <= 31; day++ {
		for _, c := range Challenges(BirthDate{Day: day, Month: 11, Year: 1999}) {
			require.True(t, c >= 0 && c <= 8, "challenge %d", c)
		}
	}
}

func TestBirthDateValidate(t *testing.T) {
	require.NoError(t, BirthDate{Day: 29, Month: 2, Year: 2000}.Validate())
	require.ErrorIs(t, BirthDate{Day: 29, Month: 2, Year: 2001}.Validate(), ErrInvalidDate)
	require.ErrorIs(t, BirthDate{Day: 31, Month: 4, Year: 2001}.Validate(), ErrInvalidDate)
	require.ErrorIs(t, BirthDate{Day: 1, Month: 13, Year: 2001}.Validate(), ErrInvalidDate)

	d, err := ParseBirthDate("1990-05-15")
	require.NoError(t, err)
	assert.Equal(t, BirthDate{Day: 15, Month: 5, Year: 1990}, d)
	assert.Equal(t, "1990-05-15", d.String())

	_, err = ParseBirthDate("15/05/1990")
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestPersonalYear(t *testing.T) {
	// 6 + 5 + reduce(2026)=1 -> 12 -> 3
	assert.Equal(t, 3, PersonalYear(BirthDate{Day: 15, Month: 5, Year: 1990}, 2026))
}
