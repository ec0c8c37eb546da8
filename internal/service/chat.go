package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forkcast/backend/config"
	"github.com/forkcast/backend/internal/types"
)

// ErrChatNotConfigured is returned when no chat provider key is set
var ErrChatNotConfigured = errors.New("chat provider is not configured")

const chatModel = "mistralai/Mixtral-8x7B-Instruct-v0.1"

// fallbackReply is returned when the model produces no usable choice
const fallbackReply = "I'm not sure how to answer that."

// ChatService handles interactions with the hosted chat completion API
type ChatService struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewChatService creates a new ChatService instance
func NewChatService(cfg *config.Config) *ChatService {
	return &ChatService{
		apiKey: cfg.TogetherAPIKey,
		apiURL: cfg.TogetherAPIURL,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Message represents a message in the chat exchange
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the request body for the chat provider
type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// RecipeReply answers a single question about a recipe. The exchange is
// stateless per turn: the model sees the recipe context and the latest
// user message only; prior turns are not resent.
func (s *ChatService) RecipeReply(ctx context.Context, recipe types.ChatRecipeContext, message string) (string, error) {
	if s.apiKey == "" {
		return "", ErrChatNotConfigured
	}

	messages := []Message{
		{Role: "system", Content: buildRecipeContext(recipe)},
		{Role: "user", Content: message},
	}

	reqBody := chatCompletionRequest{
		Model:    chatModel,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return fallbackReply, nil
	}

	return result.Choices[0].Message.Content, nil
}

// buildRecipeContext composes the fixed system instruction embedding the
// recipe snapshot the request carried.
func buildRecipeContext(recipe types.ChatRecipeContext) string {
	name := recipe.Name
	if name == "" {
		name = "Unknown"
	}

	ingredients := "Not available"
	if len(recipe.Ingredients) > 0 {
		ingredients = strings.Join(recipe.Ingredients, ", ")
	}

	instructions := recipe.Instructions
	if instructions == "" {
		instructions = "Not available"
	}

	return fmt.Sprintf(`You are a helpful cooking assistant. The user is asking about a recipe called %q.

Here are the recipe details:
- Ingredients: %s
- Instructions: %s

Avoid long explanations or unnecessary details.
Give short, clear, and useful answers (2-3 sentences max).
When answering, refer specifically to this recipe and give clear, easy to understand, practical cooking advice.`,
		name, ingredients, instructions)
}
