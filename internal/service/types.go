package service

import (
	"github.com/vanshika/astronum/backend/internal/domain"
)

// LocationInput is a birthplace as supplied by a client.
type LocationInput struct {
	Place     string  `json:"place,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ReadingInput is the inbound payload for a new reading. BirthDate is an ISO
// date (YYYY-MM-DD); BirthTime is HH:MM or HH:MM:SS local time. Timezone is
// an IANA name and wins over UTCOffset when both are present.
type ReadingInput struct {
	FullName  string         `json:"fullName"`
	BirthDate string         `json:"birthDate"`
	BirthTime string         `json:"birthTime,omitempty"`
	Location  *LocationInput `json:"location,omitempty"`
	Timezone  string         `json:"timezone,omitempty"`
	UTCOffset *float64       `json:"utcOffset,omitempty"`
}

// PersonInput identifies one side of a comparison, either by stored reading
// or inline by name and birth date.
type PersonInput struct {
	ReadingID string `json:"readingId,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// CompatibilityInput is the inbound payload for a comparison.
type CompatibilityInput struct {
	PersonA PersonInput `json:"personA"`
	PersonB PersonInput `json:"personB"`
}

// ListReadingsParams defines filters for listing readings.
type ListReadingsParams struct {
	Page     int
	PageSize int
	Search   string
	LifePath int
}

// ListPeopleParams defines filters for listing graph people.
type ListPeopleParams struct {
	Page     int
	PageSize int
	Search   string
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// ReadingsPage represents paginated readings with metadata.
type ReadingsPage struct {
	Items      []domain.ReadingSummary
	Pagination PaginationMeta
}

// PeoplePage represents paginated graph people with metadata.
type PeoplePage struct {
	Items      []domain.PersonNode
	Pagination PaginationMeta
}

// ChatExchange is the pair of messages produced by one SendMessage call.
type ChatExchange struct {
	SessionID string             `json:"sessionId"`
	User      domain.ChatMessage `json:"user"`
	Assistant domain.ChatMessage `json:"assistant"`
}
