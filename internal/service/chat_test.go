package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkcast/backend/config"
	"github.com/forkcast/backend/internal/types"
)

func newChatService(key, url string) *ChatService {
	return NewChatService(&config.Config{TogetherAPIKey: key, TogetherAPIURL: url})
}

func chatReply(content string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return body
}

func TestRecipeReply(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write(chatReply("Simmer it for ten minutes."))
	}))
	defer provider.Close()

	svc := newChatService("test-key", provider.URL)
	reply, err := svc.RecipeReply(context.Background(), types.ChatRecipeContext{
		Name:         "Shakshuka",
		Ingredients:  []string{"egg", "tomato"},
		Instructions: "Crack eggs into the sauce.",
	}, "How long should it simmer?")
	require.NoError(t, err)

	assert.Equal(t, "Simmer it for ten minutes.", reply)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, chatModel, gotBody.Model)

	// One system turn carrying the recipe, one user turn. Prior turns are
	// never resent.
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Contains(t, gotBody.Messages[0].Content, `"Shakshuka"`)
	assert.Contains(t, gotBody.Messages[0].Content, "egg, tomato")
	assert.Contains(t, gotBody.Messages[0].Content, "Crack eggs into the sauce.")
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Equal(t, "How long should it simmer?", gotBody.Messages[1].Content)
}

func TestRecipeReplyMissingContextFields(t *testing.T) {
	var gotBody chatCompletionRequest
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write(chatReply("ok"))
	}))
	defer provider.Close()

	svc := newChatService("test-key", provider.URL)
	_, err := svc.RecipeReply(context.Background(), types.ChatRecipeContext{}, "hi")
	require.NoError(t, err)

	assert.Contains(t, gotBody.Messages[0].Content, `"Unknown"`)
	assert.Contains(t, gotBody.Messages[0].Content, "Ingredients: Not available")
	assert.Contains(t, gotBody.Messages[0].Content, "Instructions: Not available")
}

func TestRecipeReplyEmptyChoicesFallsBack(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer provider.Close()

	svc := newChatService("test-key", provider.URL)
	reply, err := svc.RecipeReply(context.Background(), types.ChatRecipeContext{Name: "Soup"}, "hi")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
}

func TestRecipeReplyNotConfigured(t *testing.T) {
	svc := newChatService("", "http://unused.invalid")
	_, err := svc.RecipeReply(context.Background(), types.ChatRecipeContext{}, "hi")
	assert.ErrorIs(t, err, ErrChatNotConfigured)
}

func TestRecipeReplyProviderError(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer provider.Close()

	svc := newChatService("test-key", provider.URL)
	_, err := svc.RecipeReply(context.Background(), types.ChatRecipeContext{}, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}
