// Package testing holds shared helpers for the controller test suites.
package testing

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// PerformRequest runs one request through the e-voting router and captures
// the response. A non-nil body is sent as JSON; headers (typically the
// Authorization bearer token) are set on top of the content type.
func PerformRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	payload := &bytes.Buffer{}
	if body != nil {
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			panic("failed to encode request body: " + err.Error())
		}
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}
