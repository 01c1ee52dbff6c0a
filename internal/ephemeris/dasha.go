package ephemeris

import "time"

// DashaSpan is one lord of the Vimshottari cycle and its length in years.
type DashaSpan struct {
	Planet Planet  `json:"planet"`
	Years  float64 `json:"years"`
}

var vimshottari = []DashaSpan{
	{Ketu, 7}, {Venus, 20}, {Sun, 6}, {Moon, 10}, {Mars, 7},
	{Rahu, 18}, {Jupiter, 16}, {Saturn, 19}, {Mercury, 17},
}

// CycleYears is the length of a full Vimshottari cycle.
const CycleYears = 120.0

const yearDays = 365.25

// VimshottariSequence returns the nine lords starting from start.
func VimshottariSequence(start Planet) []DashaSpan {
	i := lordIndex(start)
	out := make([]DashaSpan, len(vimshottari))
	for k := range vimshottari {
		out[k] = vimshottari[(i+k)%len(vimshottari)]
	}
	return out
}

// DashaPeriod is a span ruled by one planet. Maha periods carry their
// antardashas in SubPeriods.
type DashaPeriod struct {
	Planet     Planet        `json:"planet"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	SubPeriods []DashaPeriod `json:"subPeriods,omitempty"`
}

// Contains reports whether t falls in [Start, End).
func (p DashaPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// CurrentDasha is the maha/antar pair running at a given instant.
type CurrentDasha struct {
	Maha      Planet    `json:"maha"`
	Sub       Planet    `json:"sub"`
	MahaStart time.Time `json:"mahaStart"`
	MahaEnd   time.Time `json:"mahaEnd"`
	SubStart  time.Time `json:"subStart"`
	SubEnd    time.Time `json:"subEnd"`
}

// Dasha is a Vimshottari timeline anchored at the birth instant.
type Dasha struct {
	StartLord    Planet        `json:"startLord"`
	BalanceYears float64       `json:"balanceYears"`
	Sequence     []DashaSpan   `json:"sequence"`
	Periods      []DashaPeriod `json:"periods"`
	Current      *CurrentDasha `json:"current,omitempty"`
}

// ComputeDasha derives the timeline from the Moon's sidereal longitude. The
// first maha period began before birth; its Start is back-dated by the
// portion of the mansion the Moon had already traversed, so only
// BalanceYears of it remain at birth.
func ComputeDasha(moonLongitude float64, birth, now time.Time) Dasha {
	nak, _ := NakshatraOf(moonLongitude)
	start := NakshatraLord(nak)
	seq := VimshottariSequence(start)

	done := traversed(moonLongitude)
	balance := (1 - done) * seq[0].Years

	cursor := birth.Add(-yearsToDuration(done * seq[0].Years))
	periods := make([]DashaPeriod, 0, len(seq))
	for k := 0; k < 2*len(seq); k++ {
		if k >= len(seq) && now.Before(cursor) {
			break
		}
		span := seq[k%len(seq)]
		end := cursor.Add(yearsToDuration(span.Years))
		periods = append(periods, DashaPeriod{
			Planet:     span.Planet,
			Start:      cursor,
			End:        end,
			SubPeriods: antardashas(span, cursor),
		})
		cursor = end
	}

	d := Dasha{
		StartLord:    start,
		BalanceYears: balance,
		Sequence:     seq,
		Periods:      periods,
	}
	if !now.Before(birth) {
		d.Current = currentAt(periods, now)
	}
	return d
}

func antardashas(maha DashaSpan, start time.Time) []DashaPeriod {
	subs := VimshottariSequence(maha.Planet)
	out := make([]DashaPeriod, 0, len(subs))
	cursor := start
	for _, sub := range subs {
		end := cursor.Add(yearsToDuration(maha.Years * sub.Years / CycleYears))
		out = append(out, DashaPeriod{Planet: sub.Planet, Start: cursor, End: end})
		cursor = end
	}
	return out
}

func currentAt(periods []DashaPeriod, now time.Time) *CurrentDasha {
	for _, p := range periods {
		if !p.Contains(now) {
			continue
		}
		cur := &CurrentDasha{Maha: p.Planet, MahaStart: p.Start, MahaEnd: p.End}
		for _, s := range p.SubPeriods {
			if s.Contains(now) {
				cur.Sub, cur.SubStart, cur.SubEnd = s.Planet, s.Start, s.End
				return cur
			}
		}
		// rounding can leave a sliver after the last antardasha
		last := p.SubPeriods[len(p.SubPeriods)-1]
		cur.Sub, cur.SubStart, cur.SubEnd = last.Planet, last.Start, p.End
		return cur
	}
	return nil
}

func lordIndex(p Planet) int {
	for i, s := range vimshottari {
		if s.Planet == p {
			return i
		}
	}
	return 0
}

func yearsToDuration(years float64) time.Duration {
	return time.Duration(years * yearDays * 24 * float64(time.Hour))
}
