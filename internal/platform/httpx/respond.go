// Package httpx provides JSON envelope response utilities.
package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskward/taskward/internal/shared"
)

// Envelope is the uniform response body: {success, data?, error?, count?,
// pages?, currentPage?}.
type Envelope struct {
	Success     bool   `json:"success"`
	Data        any    `json:"data,omitempty"`
	Error       string `json:"error,omitempty"`
	Count       *int   `json:"count,omitempty"`
	Pages       *int   `json:"pages,omitempty"`
	CurrentPage *int   `json:"currentPage,omitempty"`
}

// JSON sends an arbitrary body with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends a 200 envelope wrapping data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a 201 envelope wrapping data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// OKCount sends a 200 envelope with a total count alongside data.
func OKCount(w http.ResponseWriter, data any, count int) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// OKPage sends a 200 envelope with pagination metadata.
func OKPage(w http.ResponseWriter, data any, count, pages, currentPage int) {
	JSON(w, http.StatusOK, Envelope{
		Success:     true,
		Data:        data,
		Count:       &count,
		Pages:       &pages,
		CurrentPage: &currentPage,
	})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// IDParam extracts the {id} chi URL parameter as an int64.
func IDParam(r *http.Request) (int64, error) {
	return NamedIDParam(r, "id")
}

// NamedIDParam extracts an int64 chi URL parameter by name.
func NamedIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", shared.ErrValidation, name, raw)
	}
	return id, nil
}
