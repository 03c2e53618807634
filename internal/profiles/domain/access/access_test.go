package access_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/access"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
)

func TestCanModifyProfile(t *testing.T) {
	profile := models.User{ID: 42} //nolint:exhaustruct

	tests := []struct {
		name     string
		callerID int64
		safe     bool
		want     bool
	}{
		{"owner mutation", 42, false, true},
		{"other user mutation", 7, false, false},
		{"anonymous mutation", 0, false, false},
		{"owner read", 42, true, true},
		{"other user read", 7, true, true},
		{"anonymous read", 0, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, access.CanModifyProfile(tt.callerID, profile, tt.safe))
		})
	}
}

func TestCanModifyFeedItem(t *testing.T) {
	item := models.FeedItem{ID: 1, UserID: 42} //nolint:exhaustruct

	tests := []struct {
		name     string
		callerID int64
		safe     bool
		want     bool
	}{
		{"owner mutation", 42, false, true},
		{"other user mutation", 7, false, false},
		{"anonymous mutation", 0, false, false},
		{"anonymous read", 0, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, access.CanModifyFeedItem(tt.callerID, item, tt.safe))
		})
	}
}
