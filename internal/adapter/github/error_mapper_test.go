package github

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apihttp "github.com/bkyoung/tidy-review/internal/adapter/api/http"
)

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantType  apihttp.ErrorType
		retryable bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantType: apihttp.ErrTypeAuthentication, retryable: false},
		{name: "forbidden", status: http.StatusForbidden, wantType: apihttp.ErrTypeForbidden, retryable: false},
		{name: "not found", status: http.StatusNotFound, wantType: apihttp.ErrTypeNotFound, retryable: false},
		{name: "rate limit", status: http.StatusTooManyRequests, wantType: apihttp.ErrTypeRateLimit, retryable: true},
		{name: "validation", status: http.StatusUnprocessableEntity, wantType: apihttp.ErrTypeValidation, retryable: false},
		{name: "server error", status: http.StatusInternalServerError, wantType: apihttp.ErrTypeServiceUnavailable, retryable: true},
		{name: "bad gateway", status: http.StatusBadGateway, wantType: apihttp.ErrTypeServiceUnavailable, retryable: true},
		{name: "teapot", status: http.StatusTeapot, wantType: apihttp.ErrTypeUnknown, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(tt.status, nil)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, "github", err.Service)
		})
	}
}

func TestParseErrorMessageFromJSON(t *testing.T) {
	body := []byte(`{"message": "Validation Failed", "errors": [{"resource": "PullRequestReview", "field": "comments", "code": "custom", "message": "line must be part of the diff"}]}`)

	err := MapHTTPError(http.StatusUnprocessableEntity, body)
	assert.Contains(t, err.Message, "Validation Failed")
	assert.Contains(t, err.Message, "line must be part of the diff")
}

func TestParseErrorMessageNonJSON(t *testing.T) {
	err := MapHTTPError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	assert.Contains(t, err.Message, "502")
	assert.Contains(t, err.Message, "bad gateway")
}

func TestParseErrorMessageEmptyBody(t *testing.T) {
	err := MapHTTPError(http.StatusNotFound, nil)
	assert.Equal(t, "HTTP 404", err.Message)
}
