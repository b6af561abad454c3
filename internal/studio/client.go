package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/otpstudio/studio-server-go/internal/service"
)

const apiRequestTimeout = 120 * time.Second

// APIClient talks to the studio server's privileged proxy routes with a
// bearer token.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: apiRequestTimeout,
		},
	}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

// Login exchanges the passcode for a bearer token.
func (c *APIClient) Login(ctx context.Context, passcode string) (string, error) {
	resp, err := c.post(ctx, "/api/auth/login", "", map[string]string{"passcode": passcode})
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// DeletePost calls the privileged delete route. A non-success body or
// transport failure comes back as an error.
func (c *APIClient) DeletePost(ctx context.Context, token string, target DeleteTarget) error {
	body := map[string]any{}
	if target.ID != nil {
		body["id"] = *target.ID
	}
	if target.Slug != nil {
		body["slug"] = *target.Slug
	}

	_, err := c.post(ctx, "/api/admin/delete-post", token, body)
	return err
}

// Generate proxies an AI content generation request.
func (c *APIClient) Generate(ctx context.Context, token string, params service.GenerateParams) (*service.GeneratedContent, error) {
	resp, err := c.post(ctx, "/api/ai/generate", token, map[string]string{
		"provider":  params.Provider,
		"prompt":    params.Prompt,
		"title":     params.Title,
		"archetype": params.Archetype,
		"model":     params.Model,
	})
	if err != nil {
		return nil, err
	}

	var content service.GeneratedContent
	if err := json.Unmarshal(resp.Data, &content); err != nil {
		return nil, fmt.Errorf("decode generated content: %w", err)
	}
	return &content, nil
}

func (c *APIClient) post(ctx context.Context, path, token string, body any) (*apiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 || !resp.Success {
		message := resp.Message
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", httpResp.StatusCode)
		}
		return nil, fmt.Errorf("%s", message)
	}

	return &resp, nil
}
