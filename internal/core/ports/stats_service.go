package ports

import "context"

// Stats summarises the marketplace for administrators.
type Stats struct {
	Accounts       int64 `json:"accounts"`
	Admins         int64 `json:"admins"`
	Items          int64 `json:"items"`
	AvailableItems int64 `json:"availableItems"`
}

type StatsService interface {
	Stats(ctx context.Context) (*Stats, error)
}
