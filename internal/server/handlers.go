package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/metrics"
	"github.com/vanshika/astronum/backend/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger   *slog.Logger
	readings *service.ReadingService
	chat     *service.ChatService
	cache    *ResponseCache
	metrics  *metrics.Metrics
}

// NewAPIHandlers constructs an APIHandlers instance. cache and m may be nil.
func NewAPIHandlers(logger *slog.Logger, readings *service.ReadingService, chat *service.ChatService, cache *ResponseCache, m *metrics.Metrics) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		readings: readings,
		chat:     chat,
		cache:    cache,
		metrics:  m,
	}
}

func (h *APIHandlers) createReading(w http.ResponseWriter, r *http.Request) {
	var payload readingRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := payload.toServiceInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reading, err := h.readings.CreateReading(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err, "failed to create reading")
		return
	}
	respondJSON(w, http.StatusCreated, reading)
}

func (h *APIHandlers) getReading(w http.ResponseWriter, r *http.Request) {
	reading, err := h.readings.GetReading(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch reading")
		return
	}
	respondJSON(w, http.StatusOK, reading)
}

func (h *APIHandlers) listReadings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lifePath, err := parseOptionalInt(query.Get("lifePath"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lifePath must be an integer")
		return
	}

	result, err := h.readings.ListReadings(r.Context(), service.ListReadingsParams{
		Page:     parseInt(query.Get("page"), 1),
		PageSize: parseInt(query.Get("pageSize"), 50),
		Search:   query.Get("search"),
		LifePath: lifePath,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to list readings")
		return
	}

	items := result.Items
	if items == nil {
		items = []domain.ReadingSummary{}
	}
	respondJSON(w, http.StatusOK, listReadingsResponse{
		Items:      items,
		Pagination: toPaginationResponse(result.Pagination),
	})
}

func (h *APIHandlers) compatibility(w http.ResponseWriter, r *http.Request) {
	var payload compatibilityRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := payload.fingerprint()
	if body, status, ok := h.cache.Get(key); ok {
		h.metrics.CacheLookup(true)
		w.Header().Set("X-Cache", "HIT")
		writeRawJSON(w, status, body)
		return
	}
	if h.cache.Enabled() {
		h.metrics.CacheLookup(false)
	}

	report, err := h.readings.Compatibility(r.Context(), payload.toServiceInput())
	if err != nil {
		h.writeServiceError(w, err, "failed to score compatibility")
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		h.logger.Error("failed to encode compatibility report", "error", err, "reportId", report.ID)
		writeError(w, http.StatusInternalServerError, "failed to encode compatibility report")
		return
	}
	h.cache.Set(key, http.StatusCreated, body)
	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusCreated, body)
}

func (h *APIHandlers) getCompatibilityReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.readings.GetCompatibilityReport(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch compatibility report")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *APIHandlers) listPeople(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := h.readings.ListPeople(r.Context(), service.ListPeopleParams{
		Page:     parseInt(query.Get("page"), 1),
		PageSize: parseInt(query.Get("pageSize"), 50),
		Search:   query.Get("search"),
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to list people")
		return
	}
	items := result.Items
	if items == nil {
		items = []domain.PersonNode{}
	}
	respondJSON(w, http.StatusOK, listPeopleResponse{
		Items:      items,
		Pagination: toPaginationResponse(result.Pagination),
	})
}

func (h *APIHandlers) personConnections(w http.ResponseWriter, r *http.Request) {
	readingID := r.PathValue("readingId")
	conn, err := h.readings.PersonConnections(r.Context(), readingID)
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch person connections")
		return
	}
	respondJSON(w, http.StatusOK, conn)
}

func (h *APIHandlers) topMatches(w http.ResponseWriter, r *http.Request) {
	readingID := r.PathValue("readingId")
	matches, err := h.readings.TopMatches(r.Context(), readingID, parseInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch matches")
		return
	}
	if matches == nil {
		matches = []domain.Match{}
	}
	respondJSON(w, http.StatusOK, matchesResponse{ReadingID: readingID, Matches: matches})
}

func (h *APIHandlers) startChatSession(w http.ResponseWriter, r *http.Request) {
	var payload chatSessionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.chat.StartSession(r.Context(), payload.ReadingID, payload.Title)
	if err != nil {
		h.writeServiceError(w, err, "failed to start chat session")
		return
	}
	session.Messages = []domain.ChatMessage{}
	respondJSON(w, http.StatusCreated, session)
}

func (h *APIHandlers) getChatSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chat.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch chat session")
		return
	}
	if session.Messages == nil {
		session.Messages = []domain.ChatMessage{}
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *APIHandlers) sendChatMessage(w http.ResponseWriter, r *http.Request) {
	var payload chatMessageRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	exchange, err := h.chat.SendMessage(r.Context(), r.PathValue("id"), payload.Content)
	if err != nil {
		h.writeServiceError(w, err, "failed to send chat message")
		return
	}
	respondJSON(w, http.StatusCreated, exchange)
}

// writeServiceError maps service errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 with a generic message.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, err error, msg string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, service.ErrReadingNotFound),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrGraphDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// --- Request & Response DTOs ---

type readingRequest struct {
	FullName  string   `json:"fullName"`
	BirthDate string   `json:"birthDate"`
	BirthTime string   `json:"birthTime"`
	Place     string   `json:"place"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`
	UTCOffset *float64 `json:"utcOffset"`
}

type personRequest struct {
	ReadingID string `json:"readingId"`
	FullName  string `json:"fullName"`
	BirthDate string `json:"birthDate"`
}

type compatibilityRequest struct {
	PersonA personRequest `json:"personA"`
	PersonB personRequest `json:"personB"`
}

type chatSessionRequest struct {
	ReadingID string `json:"readingId"`
	Title     string `json:"title"`
}

type chatMessageRequest struct {
	Content string `json:"content"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type listReadingsResponse struct {
	Items      []domain.ReadingSummary `json:"items"`
	Pagination paginationResponse      `json:"pagination"`
}

type listPeopleResponse struct {
	Items      []domain.PersonNode `json:"items"`
	Pagination paginationResponse  `json:"pagination"`
}

type matchesResponse struct {
	ReadingID string         `json:"readingId"`
	Matches   []domain.Match `json:"matches"`
}

// --- Helpers ---

func (req readingRequest) toServiceInput() (service.ReadingInput, error) {
	input := service.ReadingInput{
		FullName:  req.FullName,
		BirthDate: req.BirthDate,
		BirthTime: req.BirthTime,
		Timezone:  req.Timezone,
		UTCOffset: req.UTCOffset,
	}
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		input.Location = &service.LocationInput{
			Place:     req.Place,
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		}
	case req.Latitude != nil || req.Longitude != nil:
		return service.ReadingInput{}, errors.New("latitude and longitude must be provided together")
	}
	return input, nil
}

func (req personRequest) toServiceInput() service.PersonInput {
	return service.PersonInput{
		ReadingID: req.ReadingID,
		FullName:  req.FullName,
		BirthDate: req.BirthDate,
	}
}

func (req compatibilityRequest) toServiceInput() service.CompatibilityInput {
	return service.CompatibilityInput{
		PersonA: req.PersonA.toServiceInput(),
		PersonB: req.PersonB.toServiceInput(),
	}
}

// fingerprint keys the response cache. Names are whitespace-collapsed the
// same way the service sanitizes them, so a hit returns what a fresh
// computation would.
func (req compatibilityRequest) fingerprint() uint64 {
	return Fingerprint(
		req.PersonA.ReadingID, strings.Join(strings.Fields(req.PersonA.FullName), " "), req.PersonA.BirthDate,
		req.PersonB.ReadingID, strings.Join(strings.Fields(req.PersonB.FullName), " "), req.PersonB.BirthDate,
	)
}

func toPaginationResponse(p service.PaginationMeta) paginationResponse {
	return paginationResponse{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func parseOptionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
