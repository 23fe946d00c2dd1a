package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
)

const keyPrefix = "taskboard:"

// UserGenerationKey holds the user's cache generation counter.
func UserGenerationKey(userID uuid.UUID) string {
	return keyPrefix + "user:" + userID.String() + ":gen"
}

// TaskListKey addresses one cached task listing. filterKey is hashed so
// arbitrary search text never ends up in a key.
func TaskListKey(userID uuid.UUID, gen int64, filterKey string) string {
	sum := sha256.Sum256([]byte(filterKey))
	return keyPrefix + "user:" + userID.String() + ":gen:" + strconv.FormatInt(gen, 10) +
		":tasks:" + hex.EncodeToString(sum[:16])
}

// TaskStatsKey addresses the user's cached statistics.
func TaskStatsKey(userID uuid.UUID, gen int64) string {
	return keyPrefix + "user:" + userID.String() + ":gen:" + strconv.FormatInt(gen, 10) + ":stats"
}

// RevokedSessionKey marks every token of one login session as revoked.
func RevokedSessionKey(sessionID string) string {
	return keyPrefix + "revoked-session:" + sessionID
}

// RevokedTokenKey marks an access token ID as revoked.
func RevokedTokenKey(jti string) string {
	return keyPrefix + "revoked:" + jti
}
