// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/docmark/internal/convert"
	"github.com/pdiddy/docmark/internal/deliver"
	"github.com/pdiddy/docmark/internal/jobs"
	"github.com/pdiddy/docmark/internal/ocrmerge"
)

// APIResponse is the envelope for all API responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapError translates pipeline errors to HTTP status codes and error codes.
func MapError(err error) (status int, code, msg string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, convert.ErrUnsupported):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, jpeg, png, docx, pptx, xls, xlsx"
	case errors.Is(err, deliver.ErrBadName):
		return http.StatusBadRequest, "INVALID_NAME", err.Error()
	case errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound, "JOB_NOT_FOUND", "job not found"
	case errors.Is(err, ocrmerge.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, ocrmerge.ErrEmptyIndex):
		return http.StatusUnprocessableEntity, "EMPTY_OCR_RESULT", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// handleError maps err and sends the error response. Internal errors are
// logged with the request ID rather than returned to the client.
func handleError(c *gin.Context, err error) {
	status, code, msg := MapError(err)
	if status >= 500 {
		requestID, _ := c.Get(ctxRequestID)
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	respondError(c, status, code, msg)
}
