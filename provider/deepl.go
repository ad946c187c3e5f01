package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaguanLabs/modtl"
)

const (
	// DeepLFreeEndpoint serves keys ending in ":fx".
	DeepLFreeEndpoint = "https://api-free.deepl.com/v2/translate"
	// DeepLProEndpoint serves paid keys.
	DeepLProEndpoint = "https://api.deepl.com/v2/translate"

	deeplTimeout = 15 * time.Second
)

// DeepLProvider implements Provider using the DeepL REST API.
type DeepLProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// DeepLConfig holds configuration for the DeepL provider.
type DeepLConfig struct {
	APIKey     string       // DeepL authentication key
	Endpoint   string       // Override the translate endpoint (optional)
	HTTPClient *http.Client // Custom client (default: 15s timeout)
}

// NewDeepLProvider creates a new DeepL provider.
func NewDeepLProvider(cfg DeepLConfig) *DeepLProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DeepLProEndpoint
		if strings.HasSuffix(cfg.APIKey, ":fx") {
			endpoint = DeepLFreeEndpoint
		}
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: deeplTimeout}
	}

	return &DeepLProvider{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		client:   client,
	}
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string  `json:"detected_source_language"`
		Text                   *string `json:"text"`
	} `json:"translations"`
}

// Translate sends one string to DeepL.
func (p *DeepLProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	form := url.Values{}
	form.Set("text", req.Text)
	if req.SourceLang != "" {
		form.Set("source_lang", modtl.DeepLCode(req.SourceLang, true))
	}
	form.Set("target_lang", modtl.DeepLCode(req.TargetLang, false))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &modtl.ProviderError{Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", modtl.UserAgent())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &modtl.ProviderError{
			Message:   "DeepL request failed",
			Cause:     err,
			Retryable: isTimeout(err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		// Read a little of the body to help diagnose
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(slurp))
		return "", &modtl.ProviderError{
			Message:   fmt.Sprintf("DeepL returned %s: %s", resp.Status, msg),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode/100 == 5,
		}
	}

	var out deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &modtl.ProviderError{Message: "decoding DeepL response", Cause: err}
	}
	if len(out.Translations) == 0 || out.Translations[0].Text == nil {
		return "", &modtl.ProviderError{Message: "DeepL response has no translations[0].text"}
	}

	return *out.Translations[0].Text, nil
}

// Endpoint returns the translate URL in use.
func (p *DeepLProvider) Endpoint() string {
	return p.endpoint
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Verify DeepLProvider implements Provider
var _ Provider = (*DeepLProvider)(nil)
