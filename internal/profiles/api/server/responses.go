package server

import (
	"time"

	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
)

// ProfileResponse is the read shape of a user. There is no password
// field on the type, so the hash can never leak into a response.
type ProfileResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toProfileResponse(u models.User) ProfileResponse {
	return ProfileResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

func toProfileResponses(users []models.User) []ProfileResponse {
	resp := make([]ProfileResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toProfileResponse(u))
	}

	return resp
}

type FeedItemResponse struct {
	ID         int64     `json:"id"`
	User       int64     `json:"user"`
	StatusText string    `json:"status_text"` //nolint:tagliatelle
	CreatedOn  time.Time `json:"created_on"`  //nolint:tagliatelle
}

func toFeedItemResponse(item models.FeedItem) FeedItemResponse {
	return FeedItemResponse{
		ID:         item.ID,
		User:       item.UserID,
		StatusText: item.StatusText,
		CreatedOn:  item.CreatedOn,
	}
}

func toFeedItemResponses(items []models.FeedItem) []FeedItemResponse {
	resp := make([]FeedItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toFeedItemResponse(item))
	}

	return resp
}

type TokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HelloListResponse struct {
	Message   string   `json:"message"`
	AnAPIView []string `json:"an_apiview"` //nolint:tagliatelle
}

type HelloViewSetListResponse struct {
	Message  string   `json:"message"`
	AViewSet []string `json:"a_viewset"` //nolint:tagliatelle
}

type MethodResponse struct {
	Method string `json:"method"`
}

type HTTPMethodResponse struct {
	HTTPMethod string `json:"http_method"` //nolint:tagliatelle
}
