// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/fuzzyfind/db/kvdb"
	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/meghashyamc/fuzzyfind/services/search"
	"github.com/meghashyamc/fuzzyfind/services/variants"
	"github.com/meghashyamc/fuzzyfind/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testFiles = map[string]string{
	"cat.txt":           "nothing here",
	"notes/bat_list.md": "a hat\nthe cat sat",
	"other.txt":         "dog",
}

var testVocabulary = []string{"bat", "cat", "dog", "hat"}

var testDefaults = Defaults{
	SearchContents: true,
	Threshold:      1,
	MaxResults:     50,
	SortEntries:    true,
}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse map[string]any
}

func setupTestServer(t *testing.T, assert *require.Assertions) (*gin.Engine, string) {
	root := t.TempDir()
	for relPath, content := range testFiles {
		fullPath := filepath.Join(root, relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test sub-directory")
		err = os.WriteFile(fullPath, []byte(content), 0644)
		assert.NoError(err, "could not write test file")
	}

	testLogger := logger.NewDiscard()

	kvDB, err := kvdb.New(testLogger, filepath.Join(t.TempDir(), "requests.db"), search.RequestsBucket, search.ResultsBucket)
	assert.NoError(err, "could not create kv database")
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	ctx, cancel := context.WithCancel(context.Background())
	service := search.New(ctx, testLogger, variants.NewVocabulary(testVocabulary), 2, kvDB)

	t.Cleanup(func() {
		cancel()
		// Let an in-flight search finish writing before the store goes away.
		time.Sleep(20 * time.Millisecond)
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, service, validator, testDefaults)
	SetupVariants(router, testLogger, service, validator, testDefaults)

	return router, root
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]any, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}

	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err := json.Marshal(requestBodyMap)
		assert.NoError(err)
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
		assert.NoError(err)
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
		assert.NoError(err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &body), "could not decode response body")
	return body
}

// assertContainsSubset checks that every key in expected is present in actual with a matching value.
func assertContainsSubset(assert *require.Assertions, expected map[string]any, actual map[string]any) {
	for key, expectedValue := range expected {
		actualValue, ok := actual[key]
		assert.True(ok, "missing key %q", key)

		expectedMap, isMap := expectedValue.(map[string]any)
		if !isMap {
			assert.Equal(expectedValue, actualValue, "unexpected value for %q", key)
			continue
		}
		actualMap, ok := actualValue.(map[string]any)
		assert.True(ok, "expected %q to be an object", key)
		assertContainsSubset(assert, expectedMap, actualMap)
	}
}
