package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestParseIngredientList(t *testing.T) {
	// Trim, lower-case, drop empties.
	assert.Equal(t,
		[]string{"egg", "tomato", "carrot"},
		ParseIngredientList("Egg, Tomato,  carrot"))
	assert.Equal(t,
		[]string{"onion"},
		ParseIngredientList(" ,Onion,, "))
	assert.Nil(t, ParseIngredientList("  , ,"))
	assert.Nil(t, ParseIngredientList(""))
}

func visionReply(text string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return body
}

// mintCounter mints a distinct token per call so the refresh path is
// observable.
type mintCounter struct {
	calls int32
}

func (m *mintCounter) Token() (*oauth2.Token, error) {
	n := atomic.AddInt32(&m.calls, 1)
	return &oauth2.Token{AccessToken: fmt.Sprintf("token-%d", n)}, nil
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, fmt.Errorf("metadata server unreachable")
}

func TestDetectIngredients(t *testing.T) {
	var gotAuth string
	var gotBody visionRequest
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write(visionReply("Egg, Tomato,  carrot"))
	}))
	defer provider.Close()

	svc := NewVisionServiceWithTokenSource(provider.URL, &mintCounter{}, nil)
	ingredients, err := svc.DetectIngredients(context.Background(), []byte("fake-image"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, []string{"egg", "tomato", "carrot"}, ingredients)
	assert.Equal(t, "Bearer token-1", gotAuth)

	// The fixed instruction plus the encoded image go out together.
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, detectionPrompt, gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, "image/png", gotBody.Contents[0].Parts[1].InlineData.MimeType)
	assert.NotEmpty(t, gotBody.Contents[0].Parts[1].InlineData.Data)
}

func TestDetectIngredientsCachesToken(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(visionReply("egg"))
	}))
	defer provider.Close()

	minter := &mintCounter{}
	svc := NewVisionServiceWithTokenSource(provider.URL, minter, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.DetectIngredients(context.Background(), []byte("img"), "")
		require.NoError(t, err)
	}

	// One mint serves all three detections.
	assert.Equal(t, int32(1), atomic.LoadInt32(&minter.calls))
}

func TestDetectIngredientsRefreshesRejectedToken(t *testing.T) {
	var requests int32
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			http.Error(w, "expired token", http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer token-2", r.Header.Get("Authorization"))
		_, _ = w.Write(visionReply("egg"))
	}))
	defer provider.Close()

	minter := &mintCounter{}
	svc := NewVisionServiceWithTokenSource(provider.URL, minter, nil)

	ingredients, err := svc.DetectIngredients(context.Background(), []byte("img"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"egg"}, ingredients)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, int32(2), atomic.LoadInt32(&minter.calls))
}

func TestDetectIngredientsCredentialFailure(t *testing.T) {
	svc := NewVisionServiceWithTokenSource("http://unused.invalid", failingSource{}, nil)
	_, err := svc.DetectIngredients(context.Background(), []byte("img"), "")
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestDetectIngredientsNoTextInResponse(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer provider.Close()

	svc := NewVisionServiceWithTokenSource(provider.URL, &mintCounter{}, nil)
	_, err := svc.DetectIngredients(context.Background(), []byte("img"), "")
	assert.ErrorIs(t, err, ErrNoIngredientsDetected)
}

func TestDetectIngredientsEmptyTextInResponse(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(visionReply("  ,  "))
	}))
	defer provider.Close()

	svc := NewVisionServiceWithTokenSource(provider.URL, &mintCounter{}, nil)
	_, err := svc.DetectIngredients(context.Background(), []byte("img"), "")
	assert.ErrorIs(t, err, ErrNoIngredientsDetected)
}

func TestDetectIngredientsNotConfigured(t *testing.T) {
	svc := NewVisionServiceWithTokenSource("", &mintCounter{}, nil)
	_, err := svc.DetectIngredients(context.Background(), []byte("img"), "")
	assert.ErrorIs(t, err, ErrVisionNotConfigured)
}

func TestDetectIngredientsProviderError(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer provider.Close()

	svc := NewVisionServiceWithTokenSource(provider.URL, &mintCounter{}, nil)
	_, err := svc.DetectIngredients(context.Background(), []byte("img"), "")
	require.Error(t, err)
	// The provider's error text is echoed for diagnosis.
	assert.Contains(t, err.Error(), "quota exceeded")
}
