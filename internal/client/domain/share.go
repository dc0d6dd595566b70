package domain

// Share is a savings share (account) of the member. Amounts are in cents.
type Share struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Balance  int64  `json:"balance"`
	Dividend int64  `json:"dividendRate"` // basis points
}

// ShareFilter narrows the shares listing.
type ShareFilter struct {
	Kind string // empty for all
}
