package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error string `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("missing request body")
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := WriteJSON(w, status, errorResponse{Error: message}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("Failed to write error response")
	}
}

// WriteHandlerError writes a HandlerError found in err's chain, falling back
// to a generic 500 for anything else.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		WriteError(w, r, handlerErr.Status, handlerErr.Message)
		return
	}
	WriteError(w, r, http.StatusInternalServerError, "Internal Server Error")
}
