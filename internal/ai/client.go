// Package ai asks Anthropic's Messages API for bookmark metadata.
package ai

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

	"github.com/nikbrunner/marks/internal/model"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-haiku-4-5-20251001"

	apiVersion = "2023-06-01"
	betaHeader = "structured-outputs-2025-11-13"
)

var (
	ErrNoAPIKey        = errors.New("ANTHROPIC_API_KEY environment variable not set")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Options configure a Client. Zero fields take defaults.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client handles communication with the Anthropic API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a client. An empty APIKey yields ErrNoAPIKey.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
	}, nil
}

// Suggest proposes a title, collection and tags for url.
func (c *Client) Suggest(ctx context.Context, url string, library string) (*Suggestion, error) {
	var result Suggestion
	if err := c.complete(ctx, buildPrompt(url, library), suggestionSchema, &result); err != nil {
		return nil, err
	}
	result.Title = strings.TrimSpace(result.Title)
	result.Collection = strings.TrimSpace(result.Collection)
	return &result, nil
}

// Organize proposes a collection and tags for an existing bookmark.
func (c *Client) Organize(ctx context.Context, b model.Bookmark, collection string, tags []string, library string) (*OrganizeSuggestion, error) {
	var result OrganizeSuggestion
	if err := c.complete(ctx, buildOrganizePrompt(b, collection, tags, library), organizeSchema, &result); err != nil {
		return nil, err
	}
	result.Collection = strings.TrimSpace(result.Collection)
	return &result, nil
}

// complete sends prompt with a structured output schema and decodes the
// model's JSON answer into out.
func (c *Client) complete(ctx context.Context, prompt string, schema jsonSchema, out any) error {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: 256,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
		OutputFormat: &outputFormat{Type: "json_schema", Schema: schema},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", betaHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Content) == 0 || apiResp.Content[0].Type != "text" {
		return ErrInvalidResponse
	}

	if err := json.Unmarshal([]byte(apiResp.Content[0].Text), out); err != nil {
		return fmt.Errorf("unmarshal AI response: %w", err)
	}
	return nil
}

func buildPrompt(url string, library string) string {
	return fmt.Sprintf(`Analyze this URL and suggest a title, collection, and tags for bookmarking.

URL: %s

%s

Instructions:
- Suggest a concise, descriptive title for this bookmark
- Choose the most appropriate collection from the available collections
- Only suggest a new collection if nothing existing fits; set isNewCollection=true then
- Suggest 1-3 relevant tags, preferring existing tags when they fit
- If suggesting new tags, keep them lowercase and concise`, url, library)
}

func buildOrganizePrompt(b model.Bookmark, collection string, tags []string, library string) string {
	if collection == "" {
		collection = "(none)"
	}
	tagsStr := ""
	if len(tags) > 0 {
		tagsStr = fmt.Sprintf("\n- Current tags: %s", strings.Join(tags, ", "))
	}
	descStr := ""
	if b.Description != "" {
		descStr = fmt.Sprintf("\n- Description: %s", b.Description)
	}

	return fmt.Sprintf(`Analyze this bookmark and suggest the best organization.

Item:
- Title: %s
- URL: %s%s
- Current collection: %s%s

%s

Instructions:
- Prefer existing collections when they fit well
- Only suggest a new collection if nothing existing is appropriate
- Set isNewCollection=true only when suggesting a collection that doesn't exist
- If the current collection is already optimal, return its name exactly
- Suggest 1-3 relevant tags, preferring existing tags; return current tags as-is if optimal
- Keep tags lowercase and concise
- Confidence: "high" if clear match, "medium" if reasonable, "low" if uncertain`,
		b.Title, b.URL, descStr, collection, tagsStr, library)
}
