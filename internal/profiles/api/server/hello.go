package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Demonstration endpoints. They persist nothing and exist to show the
// two handler styles side by side.

func (s *Server) helloList(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	resp := HelloListResponse{
		Message: "Hello!",
		AnAPIView: []string{
			"uses HTTP methods as function (get,post,put,patch,delete)",
			"is similar to traditional Django view",
			"gives you the most control over your application logic",
			"is mapped manually to urls",
		},
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(resp); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) helloCreate(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req HelloRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	resp := MessageResponse{Message: "Hello " + req.Name}

	enc := json.NewEncoder(w)

	if err := enc.Encode(resp); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) helloMethodStub(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Content-Type", "application/json")

		enc := json.NewEncoder(w)

		if err := enc.Encode(MethodResponse{Method: method}); err != nil {
			handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

			return
		}
	}
}

func (s *Server) helloViewSetList(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	resp := HelloViewSetListResponse{
		Message: "Hello!",
		AViewSet: []string{
			"uses actions (list, create, retrieve, update, partial_update, destroy)",
			"automatically maps to URLs using routers",
			"provides more functionality with less code",
		},
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(resp); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) helloViewSetCreate(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req HelloRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if fe := req.Validate(); !fe.Empty() {
		handleFieldErrors(w, fe)

		return
	}

	resp := MessageResponse{Message: "Hello " + req.Name + "!"}

	enc := json.NewEncoder(w)

	if err := enc.Encode(resp); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func (s *Server) helloViewSetStub(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Add("Content-Type", "application/json")

		enc := json.NewEncoder(w)

		if err := enc.Encode(HTTPMethodResponse{HTTPMethod: method}); err != nil {
			handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

			return
		}
	}
}
