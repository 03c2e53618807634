package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vkazmin/profiles_api/internal/profiles/domain/access"
	"github.com/vkazmin/profiles_api/internal/profiles/repository/userrepo"
	"github.com/vkazmin/profiles_api/internal/profiles/services/authservice"
	"github.com/vkazmin/profiles_api/internal/profiles/services/userservice"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id error: %w", err)
	}

	return id, nil
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req userrepo.ListUsersRequest

	req.Search = r.URL.Query().Get("search")

	if v := r.URL.Query().Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}

	users, err := s.userService.List(r.Context(), req)
	if err != nil {
		handleError(w, fmt.Errorf("list profiles error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toProfileResponses(users)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req CreateProfileRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	u, err := s.userService.Create(r.Context(), userservice.CreateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, userservice.ErrEmailExists) {
			fe := make(FieldErrors)
			fe.Add("email", userservice.ErrEmailExists.Error())
			handleFieldErrors(w, fe)

			return
		}

		handleError(w, fmt.Errorf("create profile error: %w", err), http.StatusInternalServerError)

		return
	}

	bts, err := json.Marshal(toProfileResponse(u))
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write(bts) //nolint:errcheck
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	id, err := pathID(r)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	u, err := s.userService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, userservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("get profile error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toProfileResponse(u)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	target, ok := s.mutableProfile(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	u, err := s.userService.Update(r.Context(), target, userservice.UpdateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		s.handleProfileUpdateError(w, err)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toProfileResponse(u)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) patchProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	target, ok := s.mutableProfile(w, r)
	if !ok {
		return
	}

	var req PatchProfileRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	u, err := s.userService.Patch(r.Context(), target, userservice.PatchUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		s.handleProfileUpdateError(w, err)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toProfileResponse(u)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	target, ok := s.mutableProfile(w, r)
	if !ok {
		return
	}

	if err := s.userService.Delete(r.Context(), target); err != nil {
		if errors.Is(err, userservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("delete profile error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// mutableProfile resolves the target profile of a mutation and runs the
// ownership policy against the authenticated caller. On failure the
// response is already written.
func (s *Server) mutableProfile(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)

		return 0, false
	}

	target, err := s.userService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, userservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return 0, false
		}

		handleError(w, fmt.Errorf("get profile error: %w", err), http.StatusInternalServerError)

		return 0, false
	}

	u, _ := caller(r)
	if !access.CanModifyProfile(u.ID, target, false) {
		w.WriteHeader(http.StatusForbidden)

		return 0, false
	}

	return id, true
}

func (s *Server) handleProfileUpdateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userservice.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, userservice.ErrEmailExists):
		fe := make(FieldErrors)
		fe.Add("email", userservice.ErrEmailExists.Error())
		handleFieldErrors(w, fe)
	case errors.Is(err, userservice.ErrEmailRequired):
		fe := make(FieldErrors)
		fe.Add("email", reasonRequired)
		handleFieldErrors(w, fe)
	default:
		handleError(w, fmt.Errorf("update profile error: %w", err), http.StatusInternalServerError)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req LoginRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) || errors.Is(err, authservice.ErrInactiveUser) {
			handleError(w, err, http.StatusBadRequest)

			return
		}

		handleError(w, fmt.Errorf("login error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(TokenResponse{Token: token}); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if err := s.authService.Logout(r.Context(), bearerToken(r)); err != nil {
		handleError(w, fmt.Errorf("logout error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
