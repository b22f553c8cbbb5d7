// api/model/meta.go
package model

import "time"

// CacheMeta is the grant resolver's version marker. GenerationID changes
// whenever the asynchronous grant computation republishes a user's
// permissions; response-cache keys embed it, so a generation change
// invalidates every cached view regardless of remaining TTL.
type CacheMeta struct {
	GenerationID string    `json:"generation_id"`
	RefreshedAt  time.Time `json:"refreshed_at"`
}
