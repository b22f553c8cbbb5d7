// api/audit/model.go
package audit

import "time"

// DecisionLog records one permission point-query outcome, or a cache sweep
// triggered by the refresh policy.
type DecisionLog struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	AssetID   string    `json:"asset_id,omitempty"`
	AccountID string    `json:"account_id,omitempty"`
	Action    string    `json:"action"`
	Granted   bool      `json:"granted"`
	Bitmask   uint32    `json:"bitmask,omitempty"`
}
