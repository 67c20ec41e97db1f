package redis

import (
	"fmt"

	"github.com/google/uuid"
)

// Key prefix for all sync-related data
const keyPrefix = "gendersync"

// profileKey returns the Redis key holding a player's profile document
func profileKey(playerID uuid.UUID) string {
	return fmt.Sprintf("%s:profile:%s", keyPrefix, playerID)
}

// profileIndexKey returns the Redis key for the SET of synced player IDs
func profileIndexKey() string {
	return fmt.Sprintf("%s:idx:profiles", keyPrefix)
}
