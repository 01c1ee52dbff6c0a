package domain

import "time"

// Number kinds linked in the people graph.
const (
	NumberLifePath    = "life_path"
	NumberExpression  = "expression"
	NumberSoulUrge    = "soul_urge"
	NumberPersonality = "personality"
	NumberBirthday    = "birthday"
)

// PersonNode is a reading projected into the people graph.
type PersonNode struct {
	ReadingID string         `json:"readingId"`
	Name      string         `json:"name"`
	BirthDate string         `json:"birthDate"`
	Numbers   map[string]int `json:"numbers"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NumbersOf lists the graph-linked numbers of a reading.
func NumbersOf(r Reading) map[string]int {
	return map[string]int{
		NumberLifePath:    r.Profile.LifePath,
		NumberExpression:  r.Profile.Expression,
		NumberSoulUrge:    r.Profile.SoulUrge,
		NumberPersonality: r.Profile.Personality,
		NumberBirthday:    r.Profile.Birthday,
	}
}

// PersonNodeOf projects r.
func PersonNodeOf(r Reading) PersonNode {
	return PersonNode{
		ReadingID: r.ID,
		Name:      r.FullName,
		BirthDate: r.BirthDate.String(),
		Numbers:   NumbersOf(r),
		CreatedAt: r.CreatedAt,
	}
}

// PersonRefLink identifies a connected person.
type PersonRefLink struct {
	ReadingID string `json:"readingId"`
	Name      string `json:"name"`
}

// SharedNumberLink groups people who share one number.
type SharedNumberLink struct {
	Kind   string          `json:"kind"`
	Value  int             `json:"value"`
	People []PersonRefLink `json:"people"`
}

// CompatibilityLink is a scored COMPATIBLE_WITH edge.
type CompatibilityLink struct {
	ReadingID string     `json:"readingId"`
	Name      string     `json:"name"`
	Score     int        `json:"score"`
	Category  string     `json:"category"`
	ReportID  string     `json:"reportId,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// PersonConnections is every graph relationship of one reading.
type PersonConnections struct {
	ReadingID       string              `json:"readingId"`
	SharedNumbers   []SharedNumberLink  `json:"sharedNumbers"`
	Compatibilities []CompatibilityLink `json:"compatibilities"`
}

// Match ranks another person by how many numbers they share, breaking ties
// by any recorded compatibility score.
type Match struct {
	ReadingID   string   `json:"readingId"`
	Name        string   `json:"name"`
	SharedCount int      `json:"sharedCount"`
	SharedKinds []string `json:"sharedKinds"`
	Score       *int     `json:"score,omitempty"`
}
