package model

import "github.com/google/uuid"

// NewID returns a fresh entity id. Ids are only ever minted by the backend.
func NewID() string {
	return uuid.New().String()
}
