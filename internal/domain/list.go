package domain

// ReadingFilter narrows a reading listing.
type ReadingFilter struct {
	Search   string
	LifePath int
}

// ReadingListResult captures paginated reading list results.
type ReadingListResult struct {
	Items []ReadingSummary
	Total int64
}

// PersonListResult captures paginated graph person results.
type PersonListResult struct {
	Items []PersonNode
	Total int64
}
