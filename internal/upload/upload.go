package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/AbdullaE100/medico-chat/internal/domain"
)

var ErrUpload = errors.New("attachment upload failed")

// Store persists attachment bytes and returns a durable URL. The chat core
// never sees raw bytes; a send only starts once the URL exists.
type Store interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (*domain.Attachment, error)
}

// HTTPStore uploads to the backend's storage endpoint via multipart POST.
type HTTPStore struct {
	endpoint string
	token    func() string
	client   *http.Client
}

func NewHTTPStore(endpoint string, token func() string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{endpoint: endpoint, token: token, client: client}
}

func (s *HTTPStore) Upload(ctx context.Context, data []byte, filename, contentType string) (*domain.Attachment, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Upload-Content-Type", contentType)
	if tok := s.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpload, resp.StatusCode, msg)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.URL == "" {
		return nil, fmt.Errorf("%w: malformed response", ErrUpload)
	}

	return &domain.Attachment{
		URL:      out.URL,
		Filename: filename,
		MimeType: contentType,
	}, nil
}
