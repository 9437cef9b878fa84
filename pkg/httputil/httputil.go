package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"

	"github.com/petspot/petspot-backend/pkg/errors"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody represents an error in the response
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta contains list metadata
type Meta struct {
	Total int `json:"total"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	writeResponse(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	})
}

// JSONWithMeta sends a JSON response with metadata
func JSONWithMeta(w http.ResponseWriter, statusCode int, data interface{}, meta *Meta) {
	writeResponse(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
		Meta:    meta,
	})
}

// Error sends an error response
func Error(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		writeResponse(w, appErr.StatusCode, Response{
			Success: false,
			Error: &ErrorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
		})
		return
	}

	// Default to internal server error
	writeResponse(w, http.StatusInternalServerError, Response{
		Success: false,
		Error: &ErrorBody{
			Code:    errors.CodeInternal,
			Message: "an unexpected error occurred",
		},
	})
}

func writeResponse(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// DecodeJSON decodes the request body into the provided struct
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.BadRequest("invalid JSON body")
	}
	return nil
}

var unknownFieldPattern = regexp.MustCompile(`json: unknown field "([^"]+)"`)

// DecodeJSONStrict decodes the body and rejects unknown top-level fields,
// naming the first offending field in the error.
func DecodeJSONStrict(r *http.Request, v interface{}) error {
	return DecodeStrict(r.Body, v)
}

// DecodeStrict is DecodeJSONStrict over an arbitrary reader
func DecodeStrict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if m := unknownFieldPattern.FindStringSubmatch(err.Error()); m != nil {
			return errors.FieldInvalid(m[1], "unknown field")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return errors.FieldInvalid(typeErr.Field, "must be of type "+typeErr.Type.String())
		}
		return errors.BadRequest("invalid JSON body")
	}
	return nil
}
