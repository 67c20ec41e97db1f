package sync

// Decision is the outcome of comparing a client's claimed base version
// against the store's current version
type Decision int

const (
	// Proceed means the client's view was current and the push may commit
	Proceed Decision = iota
	// Conflict means the client is behind and must re-base on the current
	// snapshot before retrying
	Conflict
	// Invalid means the client claimed a version ahead of the store, which
	// indicates a bug or tampering
	Invalid
)

// Decide applies the optimistic-concurrency policy. The client must echo
// back the version it last observed; a push against anything but the current
// version is rejected rather than silently overwriting another device's
// changes. The server never merges payloads, since it cannot interpret them.
func Decide(claimedBase, storeVersion int64) Decision {
	switch {
	case claimedBase == storeVersion:
		return Proceed
	case claimedBase < storeVersion:
		return Conflict
	default:
		return Invalid
	}
}
