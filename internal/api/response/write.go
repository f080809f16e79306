package response

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json"

// OK writes data as a 200 JSON body
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, data)
}

// Created writes data as a 201 JSON body
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, data)
}

// NoContent writes an empty 204, used for deletions
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	// Headers are already sent, so an encode failure has nowhere to go
	_ = json.NewEncoder(w).Encode(data)
}
