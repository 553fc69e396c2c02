package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
)

// ErrorBody is the JSON contract for every failed request.
type ErrorBody struct {
	Error  string                 `json:"error"`
	Code   string                 `json:"code"`
	Errors []appErrors.FieldError `json:"errors,omitempty"`
}

// Pagination describes a page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for the given window.
func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// JSON sends a success payload as-is.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
// Internal failures never leak their cause to the client.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	body := ErrorBody{Error: appErr.Message, Code: appErr.Code, Errors: appErr.Details}
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		body = ErrorBody{Error: appErrors.ErrInternal.Message, Code: appErrors.ErrInternal.Code}
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, body)
}

// Attachment streams a downloadable file.
func Attachment(c *gin.Context, filename, contentType string, payload []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
