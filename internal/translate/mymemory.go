package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MyMemory is a client for the free MyMemory translation API
type MyMemory struct {
	baseURL    string
	httpClient *http.Client
}

// NewMyMemory creates a client for the API rooted at baseURL
func NewMyMemory(baseURL string) *MyMemory {
	return &MyMemory{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.Number `json:"responseStatus"`
}

// Translate translates text from source to target language, e.g. "en" to "ru"
func (m *MyMemory) Translate(ctx context.Context, text, source, target string) (string, error) {
	query := url.Values{}
	query.Set("q", text)
	query.Set("langpair", source+"|"+target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/get?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory returned status %d", resp.StatusCode)
	}

	var data myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// responseStatus is 200 on success, even when sent as a string
	if status := data.ResponseStatus.String(); status != "" && status != "200" {
		return "", fmt.Errorf("mymemory response status %s", status)
	}

	return strings.TrimSpace(data.ResponseData.TranslatedText), nil
}

// Close releases idle connections held by the client
func (m *MyMemory) Close() error {
	m.httpClient.CloseIdleConnections()
	return nil
}
