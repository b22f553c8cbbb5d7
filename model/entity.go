// api/model/entity.go
package model

// User is the permission subject. Only identity matters to this service;
// profile management lives elsewhere.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Asset is a managed host reachable through one or more accounts.
type Asset struct {
	ID       string `json:"id"`
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
	Port     int    `json:"port,omitempty"`
	Platform string `json:"platform,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// Account is a credential/login through which an asset is reached
// (a "system user" in older deployments).
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Protocol string `json:"protocol,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// Node groups assets in a hierarchy. Key is the colon-delimited ancestry
// path ("1:2:5"); Value is the display label.
type Node struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Sentinel nodes injected into every node listing. They are display-only
// and never exist in entity storage.
const (
	UngroupedNodeID     = "00000000-0000-0000-0000-000000000001"
	UngroupedNodeValue  = "ungrouped"
	DefaultUngroupedKey = "1:-1"

	EmptyNodeID    = "00000000-0000-0000-0000-000000000002"
	EmptyNodeKey   = "1:-2"
	EmptyNodeValue = "empty"
)
