package server

import (
	"encoding/json"
	"net/http"
)

type Error struct {
	Err string `json:"error"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		se.Err = err.Error()

		b, err := json.Marshal(se)
		if err != nil {
			return []byte(`{
				"error": "marshal error"
			  }`)
		}

		return b
	}

	return b
}

// FieldErrors is a validation error payload: field name to the list of
// reasons the field was rejected.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, reason string) {
	fe[field] = append(fe[field], reason)
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

func (fe FieldErrors) ToJSON() []byte {
	b, err := json.Marshal(fe)
	if err != nil {
		return Error{err.Error()}.ToJSON()
	}

	return b
}

func handleError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}

func handleFieldErrors(w http.ResponseWriter, fe FieldErrors) {
	w.WriteHeader(http.StatusBadRequest)

	w.Write(fe.ToJSON()) //nolint:errcheck
}
