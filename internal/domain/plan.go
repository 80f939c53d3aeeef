package domain

import "time"

// Plan is an opaque billing plan reference. Pricing semantics live with
// the external billing provider; only the identifier matters here.
type Plan struct {
	ID              string
	Name            string
	ExternalPriceID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
