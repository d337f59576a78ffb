package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/turtacn/urban-dds/pkg/errors"
)

// Backend submits a payload and returns the raw generated text.
type Backend interface {
	Name() string
	// Available reports whether the backend has the credentials it needs.
	Available() bool
	Generate(ctx context.Context, payload Payload) (string, error)
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// firstText returns candidates[0].content.parts[0].text or "".
func firstText(body io.Reader) (string, error) {
	var resp generateResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeNarrativeGenerationFailed, "undecodable generation response")
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	if t := resp.Candidates[0].Content.Parts[0].Text; t != nil {
		return *t, nil
	}
	return "", nil
}

func postJSON(ctx context.Context, hc *http.Client, endpoint string, payload interface{}, header http.Header) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "marshal generation payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeNarrativeGenerationFailed, "build generation request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeNarrativeGenerationFailed, "generation request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", errors.Newf(errors.ErrCodeNarrativeGenerationFailed, "generation request returned %d", resp.StatusCode)
	}
	return firstText(resp.Body)
}

// ─────────────────────────────────────────────────────────────────────────────
// API-key backend
// ─────────────────────────────────────────────────────────────────────────────

// GoogleAIBackend calls the public generative-language API with an API key.
type GoogleAIBackend struct {
	BaseURL    string
	Model      string
	APIKey     string
	HTTPClient *http.Client
}

func (b *GoogleAIBackend) Name() string { return "googleai" }

func (b *GoogleAIBackend) Available() bool { return strings.TrimSpace(b.APIKey) != "" }

func (b *GoogleAIBackend) endpoint() string {
	base := strings.TrimRight(b.BaseURL, "/")
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, b.Model, url.QueryEscape(b.APIKey))
}

// Generate implements Backend.
func (b *GoogleAIBackend) Generate(ctx context.Context, payload Payload) (string, error) {
	if !b.Available() {
		return "", errors.New(errors.ErrCodeNarrativeCredentialMissing, "generation api key is missing")
	}
	return postJSON(ctx, httpClient(b.HTTPClient), b.endpoint(), payload, nil)
}

// ─────────────────────────────────────────────────────────────────────────────
// Identity-token backend
// ─────────────────────────────────────────────────────────────────────────────

// VertexBackend calls the regional AI platform endpoint with an access token
// fetched from the instance metadata server.
type VertexBackend struct {
	Project          string
	Location         string
	Model            string
	MetadataTokenURL string
	// BaseURL overrides https://<location>-aiplatform.googleapis.com.
	BaseURL    string
	HTTPClient *http.Client
}

func (b *VertexBackend) Name() string { return "vertex" }

func (b *VertexBackend) Available() bool { return strings.TrimSpace(b.Project) != "" }

func (b *VertexBackend) endpoint() string {
	base := strings.TrimRight(b.BaseURL, "/")
	if base == "" {
		base = "https://" + b.Location + "-aiplatform.googleapis.com"
	}
	return fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		base, b.Project, b.Location, b.Model)
}

func (b *VertexBackend) accessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.MetadataTokenURL, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeNarrativeCredentialMissing, "build metadata token request")
	}
	req.Header.Set("Metadata-Flavor", "Google")

	resp, err := httpClient(b.HTTPClient).Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeNarrativeCredentialMissing, "metadata token request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Newf(errors.ErrCodeNarrativeCredentialMissing, "metadata token request returned %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeNarrativeCredentialMissing, "undecodable metadata token")
	}
	if token.AccessToken == "" {
		return "", errors.New(errors.ErrCodeNarrativeCredentialMissing, "metadata token is empty")
	}
	return token.AccessToken, nil
}

// Generate implements Backend.
func (b *VertexBackend) Generate(ctx context.Context, payload Payload) (string, error) {
	if !b.Available() {
		return "", errors.New(errors.ErrCodeNarrativeCredentialMissing, "vertex project is not configured")
	}
	token, err := b.accessToken(ctx)
	if err != nil {
		return "", err
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return postJSON(ctx, httpClient(b.HTTPClient), b.endpoint(), payload, header)
}

func httpClient(hc *http.Client) *http.Client {
	if hc != nil {
		return hc
	}
	return http.DefaultClient
}

//Personal.AI order the ending
