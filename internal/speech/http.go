package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// HTTPSynthesizer fetches audio from a GET endpoint taking name=<voice> and
// text=<text> query parameters.
type HTTPSynthesizer struct {
	endpoint string
	voice    string
	client   *http.Client
}

func NewHTTPSynthesizer(endpoint, voice string) *HTTPSynthesizer {
	return &HTTPSynthesizer{endpoint: endpoint, voice: voice, client: http.DefaultClient}
}

func (h *HTTPSynthesizer) requestURL(text string) (string, error) {
	u, err := url.Parse(h.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse speech url: %w", err)
	}
	q := u.Query()
	q.Set("name", h.voice)
	q.Set("text", text)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (h *HTTPSynthesizer) Synthesize(ctx context.Context, text, path string) error {
	reqURL, err := h.requestURL(text)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build speech request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch speech: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("speech endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("write audio file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close audio file: %w", err)
	}
	return nil
}
