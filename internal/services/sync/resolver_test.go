package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name         string
		claimedBase  int64
		storeVersion int64
		want         Decision
	}{
		{"first sync against empty store", 0, 0, Proceed},
		{"current view", 4, 4, Proceed},
		{"one behind", 3, 4, Conflict},
		{"far behind", 0, 100, Conflict},
		{"one ahead", 5, 4, Invalid},
		{"claims version against empty store", 1, 0, Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.claimedBase, tt.storeVersion))
		})
	}
}
