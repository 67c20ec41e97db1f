package request

// SyncRequest is the request body for pushing a profile.
// Payload is base64-encoded opaque mod data; the server never interprets it.
type SyncRequest struct {
	BaseVersion int64  `json:"base_version"`
	Payload     []byte `json:"payload"`
	DeviceHint  string `json:"device_hint,omitempty"`
}

// BulkQueryRequest is the request body for querying multiple players at
// once: a plain JSON array of player UUIDs
type BulkQueryRequest []string
