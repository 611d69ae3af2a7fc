// Package testutils provides custom assertions for testing
package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")

	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	err := json.Unmarshal(rec.Body.Bytes(), target)
	require.NoError(ha.t, err, "Response should be valid JSON")
}

// ErrorResponse asserts that the response carries an API error with code
func (ha *HTTPAssertions) ErrorResponse(rec *httptest.ResponseRecorder, expectedCode string) {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	ha.JSONResponse(rec, &body)
	assert.Equal(ha.t, expectedCode, body.Error.Code)
	assert.NotEmpty(ha.t, body.Error.Message)
}

// HTMLResponse asserts an HTML body containing every fragment
func (ha *HTTPAssertions) HTMLResponse(rec *httptest.ResponseRecorder, fragments ...string) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Contains(ha.t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	for _, f := range fragments {
		assert.Contains(ha.t, body, f)
	}
}

// Header asserts that a header exists with expected value
func (ha *HTTPAssertions) Header(rec *httptest.ResponseRecorder, headerName, expectedValue string, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedValue, rec.Header().Get(headerName), msgAndArgs...)
}

// HasHeader asserts that a header exists
func (ha *HTTPAssertions) HasHeader(rec *httptest.ResponseRecorder, headerName string, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	_, exists := rec.Header()[http.CanonicalHeaderKey(headerName)]
	assert.True(ha.t, exists, "Response should have header %s", headerName)
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	securityHeaders := []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Referrer-Policy",
		"Content-Security-Policy",
	}

	for _, header := range securityHeaders {
		ha.HasHeader(rec, header)
	}
}

// MeasureTime measures the execution time of a function
func MeasureTime(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}
