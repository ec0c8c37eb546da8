package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/forkcast/backend/config"
)

var (
	ErrVisionNotConfigured   = errors.New("vision endpoint is not configured")
	ErrMissingCredential     = errors.New("failed to obtain vision credential")
	ErrNoIngredientsDetected = errors.New("no ingredients detected")
)

// detectionPrompt is the fixed instruction sent with every image
const detectionPrompt = "Detect all food ingredients in this image and return ONLY their names as a comma-separated list, nothing else. Example: 'egg, tomato, carrot'."

var visionScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/generative-language",
}

// VisionService relays uploaded images to the image-understanding
// endpoint and normalizes its free-text answer into an ingredient list.
type VisionService struct {
	endpoint string
	client   *http.Client
	storage  *config.S3Config

	// base mints capability tokens; cached wraps it with expiry-aware
	// reuse and is dropped when the provider rejects a token.
	base   oauth2.TokenSource
	mu     sync.Mutex
	cached oauth2.TokenSource
}

// NewVisionService creates a new VisionService instance using the
// platform's default service identity. The storage config is optional;
// when present, detection uploads are archived best-effort.
func NewVisionService(ctx context.Context, cfg *config.Config, storage *config.S3Config) (*VisionService, error) {
	creds, err := google.FindDefaultCredentials(ctx, visionScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform credentials: %w", err)
	}
	return newVisionService(cfg.VisionEndpoint, creds.TokenSource, storage), nil
}

// NewVisionServiceWithTokenSource creates a VisionService with an
// explicit token source
func NewVisionServiceWithTokenSource(endpoint string, tokens oauth2.TokenSource, storage *config.S3Config) *VisionService {
	return newVisionService(endpoint, tokens, storage)
}

func newVisionService(endpoint string, tokens oauth2.TokenSource, storage *config.S3Config) *VisionService {
	return &VisionService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		storage:  storage,
		base:     tokens,
	}
}

type visionInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type visionPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *visionInlineData `json:"inline_data,omitempty"`
}

type visionContent struct {
	Role  string       `json:"role"`
	Parts []visionPart `json:"parts"`
}

type visionRequest struct {
	Contents []visionContent `json:"contents"`
}

type visionResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// DetectIngredients submits an image to the vision provider and returns
// the normalized ingredient list.
func (s *VisionService) DetectIngredients(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	if s.endpoint == "" {
		return nil, ErrVisionNotConfigured
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	s.archiveUpload(ctx, image, mimeType)

	token, err := s.token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingCredential, err)
	}

	payload := visionRequest{
		Contents: []visionContent{
			{
				Role: "user",
				Parts: []visionPart{
					{Text: detectionPrompt},
					{InlineData: &visionInlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(image),
					}},
				},
			},
		},
	}

	body, status, err := s.post(ctx, payload, token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		// Token was rejected; drop the cache and retry once with a
		// freshly minted credential.
		s.invalidate()
		token, err = s.token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredential, err)
		}
		body, status, err = s.post(ctx, payload, token)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("vision provider returned status %d: %s", status, string(body))
	}

	var result visionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode vision response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoIngredientsDetected
	}

	text := result.Candidates[0].Content.Parts[0].Text
	ingredients := ParseIngredientList(text)
	if len(ingredients) == 0 {
		return nil, ErrNoIngredientsDetected
	}

	return ingredients, nil
}

func (s *VisionService) post(ctx context.Context, payload visionRequest, token string) ([]byte, int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reach vision provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read vision response: %w", err)
	}

	return body, resp.StatusCode, nil
}

func (s *VisionService) token() (string, error) {
	s.mu.Lock()
	if s.cached == nil {
		s.cached = oauth2.ReuseTokenSource(nil, s.base)
	}
	source := s.cached
	s.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (s *VisionService) invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// archiveUpload stores the raw upload in S3. This is best-effort: any
// failure is logged and never fails the detection request.
func (s *VisionService) archiveUpload(ctx context.Context, image []byte, mimeType string) {
	if s.storage == nil {
		return
	}

	ext := "jpg"
	if parts := strings.SplitN(mimeType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	key := fmt.Sprintf("detection-uploads/%s.%s", uuid.New().String(), ext)

	_, err := s.storage.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.storage.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		log.Printf("[VisionService] Failed to archive upload: %v", err)
		return
	}
	log.Printf("[VisionService] Archived detection upload as %s", key)
}

// ParseIngredientList splits the provider's free-text answer on commas,
// trimming, lower-casing and dropping empty segments.
func ParseIngredientList(text string) []string {
	var ingredients []string
	for _, part := range strings.Split(text, ",") {
		if item := strings.ToLower(strings.TrimSpace(part)); item != "" {
			ingredients = append(ingredients, item)
		}
	}
	return ingredients
}
