package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/forkcast/backend/internal/service"
)

func stubVisionService(t *testing.T, handler http.HandlerFunc) *service.VisionService {
	t.Helper()
	provider := httptest.NewServer(handler)
	t.Cleanup(provider.Close)
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	return service.NewVisionServiceWithTokenSource(provider.URL, tokens, nil)
}

func TestDetectObject(t *testing.T) {
	vision := stubVisionService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Egg, Tomato,  carrot"}]}}]}`))
	})
	router, _ := setupTestRouter(t, testConfig(""), vision)

	w := performUpload(router, "/api/external/detect-object", "image", "fridge.jpg", []byte("fake-image"))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, []interface{}{"egg", "tomato", "carrot"}, body["ingredients"])
}

func TestDetectObjectNoFile(t *testing.T) {
	vision := stubVisionService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider should not be called without an upload")
	})
	router, _ := setupTestRouter(t, testConfig(""), vision)

	w := performJSON(router, http.MethodPost, "/api/external/detect-object", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No image uploaded", decodeBody(t, w)["error"])
}

func TestDetectObjectNotConfigured(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig(""), nil)

	w := performUpload(router, "/api/external/detect-object", "image", "fridge.jpg", []byte("fake-image"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDetectObjectNothingDetected(t *testing.T) {
	vision := stubVisionService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	router, _ := setupTestRouter(t, testConfig(""), vision)

	w := performUpload(router, "/api/external/detect-object", "image", "fridge.jpg", []byte("fake-image"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "No ingredients detected", decodeBody(t, w)["error"])
}

func TestDetectObjectWrongField(t *testing.T) {
	vision := stubVisionService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider should not be called without an upload")
	})
	router, _ := setupTestRouter(t, testConfig(""), vision)

	w := performUpload(router, "/api/external/detect-object", "photo", "fridge.jpg", []byte("fake-image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
