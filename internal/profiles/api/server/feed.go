package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vkazmin/profiles_api/internal/profiles/domain/access"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/models"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/feedrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/services/feedservice"
)

func (s *Server) listFeed(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req feedrepo.ListFeedItemsRequest

	if v := r.URL.Query().Get("user"); v != "" {
		req.UserID, _ = strconv.ParseInt(v, 10, 64)
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}

	items, err := s.feedService.List(r.Context(), req)
	if err != nil {
		handleError(w, fmt.Errorf("list feed error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toFeedItemResponses(items)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) createFeedItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req FeedItemRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	u, _ := caller(r)

	item, err := s.feedService.Create(r.Context(), u.ID, req.StatusText)
	if err != nil {
		handleError(w, fmt.Errorf("create feed item error: %w", err), http.StatusInternalServerError)

		return
	}

	bts, err := json.Marshal(toFeedItemResponse(item))
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write(bts) //nolint:errcheck
}

func (s *Server) getFeedItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	id, err := pathID(r)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	item, err := s.feedService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, feedservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("get feed item error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toFeedItemResponse(item)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) updateFeedItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	target, ok := s.mutableFeedItem(w, r)
	if !ok {
		return
	}

	var req FeedItemRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	item, err := s.feedService.Update(r.Context(), target.ID, req.StatusText)
	if err != nil {
		if errors.Is(err, feedservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("update feed item error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toFeedItemResponse(item)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) patchFeedItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	target, ok := s.mutableFeedItem(w, r)
	if !ok {
		return
	}

	var req PatchFeedItemRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	statusText := target.StatusText
	if req.StatusText != nil {
		statusText = *req.StatusText
	}

	item, err := s.feedService.Update(r.Context(), target.ID, statusText)
	if err != nil {
		if errors.Is(err, feedservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("update feed item error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toFeedItemResponse(item)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) deleteFeedItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	target, ok := s.mutableFeedItem(w, r)
	if !ok {
		return
	}

	if err := s.feedService.Delete(r.Context(), target.ID); err != nil {
		if errors.Is(err, feedservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("delete feed item error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// mutableFeedItem resolves the target of a feed mutation and checks the
// ownership policy. On failure the response is already written.
func (s *Server) mutableFeedItem(w http.ResponseWriter, r *http.Request) (models.FeedItem, bool) {
	id, err := pathID(r)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)

		return models.FeedItem{}, false
	}

	item, err := s.feedService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, feedservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return models.FeedItem{}, false
		}

		handleError(w, fmt.Errorf("get feed item error: %w", err), http.StatusInternalServerError)

		return models.FeedItem{}, false
	}

	u, _ := caller(r)
	if !access.CanModifyFeedItem(u.ID, item, false) {
		w.WriteHeader(http.StatusForbidden)

		return models.FeedItem{}, false
	}

	return item, true
}
