package server

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/ephemeris"
)

var readingCSVHeader = []string{
	"id", "fullName", "birthDate", "birthTime", "place", "latitude", "longitude", "timezone",
	"lifePath", "expression", "soulUrge", "personality", "birthday", "maturity", "personalYear",
	"confidence", "ascendant", "moonSign", "moonNakshatra", "createdAt",
}

func exportFormat(r *http.Request) (string, bool) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "", "json":
		return "json", true
	case "csv":
		return "csv", true
	default:
		return "", false
	}
}

func (h *APIHandlers) exportReadings(w http.ResponseWriter, r *http.Request) {
	format, ok := exportFormat(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}

	var readings []domain.Reading
	if err := h.readings.ExportReadings(r.Context(), func(rd domain.Reading) error {
		readings = append(readings, rd)
		return nil
	}); err != nil {
		h.writeServiceError(w, err, "failed to export readings")
		return
	}

	if format == "json" {
		w.Header().Set("Content-Disposition", `attachment; filename="readings.json"`)
		if readings == nil {
			readings = []domain.Reading{}
		}
		respondJSON(w, http.StatusOK, readings)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.csv"`)
	w.WriteHeader(http.StatusOK)
	cw := csv.NewWriter(w)
	_ = cw.Write(readingCSVHeader)
	for _, rd := range readings {
		_ = cw.Write(readingCSVRow(rd))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write readings csv", "error", err)
	}
}

func readingCSVRow(r domain.Reading) []string {
	var place, lat, lon string
	if r.Location != nil {
		place = r.Location.Place
		lat = strconv.FormatFloat(r.Location.Latitude, 'f', 4, 64)
		lon = strconv.FormatFloat(r.Location.Longitude, 'f', 4, 64)
	}
	var asc, moonSign, moonNak string
	if r.Chart != nil {
		asc = r.Chart.Ascendant.SignName
		moon := r.Chart.Planets[ephemeris.Moon]
		moonSign = moon.SignName
		moonNak = moon.NakshatraName
	}
	p := r.Profile
	return []string{
		r.ID,
		r.FullName,
		r.BirthDate.String(),
		r.BirthTime,
		place,
		lat,
		lon,
		r.Timezone,
		strconv.Itoa(p.LifePath),
		strconv.Itoa(p.Expression),
		strconv.Itoa(p.SoulUrge),
		strconv.Itoa(p.Personality),
		strconv.Itoa(p.Birthday),
		strconv.Itoa(p.Maturity),
		strconv.Itoa(r.PersonalYear),
		string(r.Confidence),
		asc,
		moonSign,
		moonNak,
		formatTime(r.CreatedAt),
	}
}

func (h *APIHandlers) exportPeople(w http.ResponseWriter, r *http.Request) {
	format, ok := exportFormat(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}
	people, err := h.readings.ExportPeople(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "failed to export people")
		return
	}

	if format == "json" {
		w.Header().Set("Content-Disposition", `attachment; filename="people.json"`)
		if people == nil {
			people = []domain.PersonNode{}
		}
		body, err := json.Marshal(people)
		if err != nil {
			h.logger.Error("failed to encode people export", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to export people")
			return
		}
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="people.csv"`)
	w.WriteHeader(http.StatusOK)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"readingId", "name", "birthDate", "numbers", "createdAt"})
	for _, p := range people {
		_ = cw.Write([]string{p.ReadingID, p.Name, p.BirthDate, formatNumbers(p.Numbers), formatTime(p.CreatedAt)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write people csv", "error", err)
	}
}

// formatNumbers renders kind=value pairs sorted by kind.
func formatNumbers(numbers map[string]int) string {
	kinds := make([]string, 0, len(numbers))
	for k := range numbers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k + "=" + strconv.Itoa(numbers[k])
	}
	return strings.Join(parts, ";")
}
