// Package access holds the per-object authorization policies.
// Policies are pure functions over the caller identity and the target
// object, so they can be checked without any request machinery.
package access

import (
	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
)

// CanModifyProfile allows safe requests unconditionally and mutations
// only when the target profile belongs to the caller.
func CanModifyProfile(callerID int64, target models.User, safe bool) bool {
	if safe {
		return true
	}

	return callerID != 0 && target.ID == callerID
}

// CanModifyFeedItem allows safe requests unconditionally and mutations
// only when the feed item is owned by the caller.
func CanModifyFeedItem(callerID int64, target models.FeedItem, safe bool) bool {
	if safe {
		return true
	}

	return callerID != 0 && target.UserID == callerID
}
