package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfman30/medspa-frontdesk/internal/frontdesk"
	"github.com/wolfman30/medspa-frontdesk/internal/records"
)

const maxBodyBytes = 64 << 10

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	Field         string `json:"field,omitempty"`
	ConflictingID string `json:"conflictingId,omitempty"` // existing patient a duplicate collides with
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeError maps an operation error to its status code and message.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: frontdesk.Describe(err)}
	status := http.StatusInternalServerError
	var (
		verr *records.ValidationError
		derr *records.DuplicateRecordError
	)
	switch {
	case errors.As(err, &verr):
		status, resp.Code, resp.Field = http.StatusBadRequest, "validation_error", verr.Field
	case errors.As(err, &derr):
		status, resp.Code, resp.Field = http.StatusConflict, "duplicate_record", derr.Field
		resp.ConflictingID = derr.ConflictingID
	case errors.Is(err, records.ErrSlotConflict):
		status, resp.Code, resp.Field = http.StatusConflict, "slot_conflict", "time"
	case errors.Is(err, records.ErrPastDate):
		status, resp.Code, resp.Field = http.StatusUnprocessableEntity, "past_date", "date"
	case errors.Is(err, records.ErrNotFound):
		status, resp.Code = http.StatusNotFound, "not_found"
	case errors.Is(err, frontdesk.ErrArchiveDisabled):
		status, resp.Code = http.StatusServiceUnavailable, "archive_disabled"
	default:
		resp.Code = "internal_error"
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}
