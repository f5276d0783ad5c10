package domain

import "time"

type Owner struct {
	ID           OwnerID
	Email        string
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
}

// Principal is the authenticated caller as seen by the application layer.
type Principal struct {
	OwnerID OwnerID
	Email   string
}
