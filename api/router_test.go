package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRouterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter()
	router.GET("/health", health())

	testCases := []struct {
		name           string
		method         string
		expectedStatus int
		expectedBody   string
	}{
		{name: "Health", method: http.MethodGet, expectedStatus: http.StatusOK, expectedBody: "OK"},
		{name: "Preflight", method: http.MethodOptions, expectedStatus: http.StatusNoContent},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := httptest.NewRecorder()
			req, err := http.NewRequest(testCase.method, "/health", nil)
			assert.NoError(err)

			router.ServeHTTP(w, req)

			assert.Equal(testCase.expectedStatus, w.Code)
			assert.Equal(testCase.expectedBody, w.Body.String())
			assert.Equal("POST, OPTIONS, GET", w.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}
