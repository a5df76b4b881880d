package domain

import "time"

// User is an account provisioned outside this service.
//
// Department holds a department name, not an id; eligibility joins on it.
type User struct {
	ID             int64
	Username       string
	Name           string
	Email          string
	Department     string
	HashedPassword string
	Role           string
	CreatedAt      time.Time
}
