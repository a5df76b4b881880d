package domain

import "time"

// Department is an organizational unit that can survey, or be surveyed by, other departments.
type Department struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
