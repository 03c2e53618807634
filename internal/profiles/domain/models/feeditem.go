package models

import (
	"time"
)

type FeedItem struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user"`
	StatusText string    `json:"status_text"` //nolint:tagliatelle
	CreatedOn  time.Time `json:"created_on"`  //nolint:tagliatelle
}
