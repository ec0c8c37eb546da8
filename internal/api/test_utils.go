package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkcast/backend/config"
	"github.com/forkcast/backend/internal/service"
	"github.com/forkcast/backend/internal/testhelpers"
)

// testConfig returns a config pointing the recipe provider at the given
// stub URL. Chat and vision stay unconfigured unless the test overrides.
func testConfig(mealdbURL string) *config.Config {
	return &config.Config{
		JWTSecret:    "test-secret",
		MealDBAPIURL: mealdbURL,
	}
}

// setupTestRouter builds the full API surface against an in-memory
// database, with no redis and the given optional vision service.
func setupTestRouter(t *testing.T, cfg *config.Config, vision *service.VisionService) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	router := gin.New()
	SetupAPI(router, Deps{
		DB:     db,
		Config: cfg,
		Vision: vision,
	})
	return router, db
}

func performJSON(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performUpload(router *gin.Engine, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile(field, filename)
	_, _ = part.Write(content)
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// signupUser creates an account through the API and returns its token
func signupUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := performJSON(router, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	token, ok := body["token"].(string)
	require.True(t, ok, "signup response should carry a token")
	return token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": fmt.Sprintf("Bearer %s", token)}
}
