package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-resty/resty/v2"
)

// HTTPStore hands files to an upload service that answers {"url": "..."}.
type HTTPStore struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPStore(endpoint, token string) *HTTPStore {
	client := resty.New()
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HTTPStore{client: client, endpoint: endpoint}
}

func (s *HTTPStore) Store(ctx context.Context, data []byte, nameHint string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", objectName("", filepath.Base(nameHint)), bytes.NewReader(data)).
		SetResult(&out).
		Post(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("upload: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload: empty url in response")
	}
	return out.URL, nil
}
