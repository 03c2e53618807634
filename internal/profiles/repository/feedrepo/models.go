package feedrepo

import "errors"

var ErrNotFound = errors.New("feed item not found")

type ListFeedItemsRequest struct {
	UserID int64
	Offset int
	Limit  int
}
