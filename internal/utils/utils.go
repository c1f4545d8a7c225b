package utils

import (
	"github.com/google/uuid"
)

// GenerateRunID creates the random identifier that tags one collection
// run's log entries
func GenerateRunID() string {
	return uuid.New().String()
}
