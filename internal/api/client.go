// Package api is a client for the remote portfolio API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/vbonduro/portfolio/internal/domain"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error { return domain.ErrTransport }

type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a client for the API rooted at baseURL
// (e.g. "http://localhost:5678/api").
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := cleanhttp.DefaultPooledClient()
	c.Timeout = timeout
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  c,
	}
}

func (c *Client) ListWorks(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := c.getJSON(ctx, "/works", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	var cats []domain.CategoryRef
	if err := c.getJSON(ctx, "/categories", &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.CategoryRef{}
	}
	return cats, nil
}

func (c *Client) DeleteWork(ctx context.Context, id int, token string) error {
	path := "/works/" + strconv.Itoa(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	return checkStatus(req, resp, path)
}

// CreateWork uploads a new work as multipart form data.
func (c *Client) CreateWork(ctx context.Context, work domain.NewWork, token string) (domain.Item, error) {
	body, contentType, err := encodeWork(work)
	if err != nil {
		return domain.Item{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/works", body)
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return domain.Item{}, err
	}
	defer drain(resp)

	if err := checkStatus(req, resp, "/works"); err != nil {
		return domain.Item{}, err
	}

	var created domain.Item
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.Item{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return created, nil
}

// Login exchanges an email and password for a session credential.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Credential, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/login", bytes.NewReader(payload))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return domain.Credential{}, err
	}
	defer drain(resp)

	if err := checkStatus(req, resp, "/users/login"); err != nil {
		return domain.Credential{}, err
	}

	var cred domain.Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return domain.Credential{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if cred.Token == "" {
		return domain.Credential{}, fmt.Errorf("login response carried no token")
	}
	return cred, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if err := checkStatus(req, resp, path); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrTransport, req.Method, req.URL.Path, err)
	}
	return resp, nil
}

func checkStatus(req *http.Request, resp *http.Response, path string) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: req.Method, Path: path, Code: resp.StatusCode}
	}
	return nil
}

// drain empties and closes the body so the pooled connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func encodeWork(work domain.NewWork) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := work.Filename
	if filename == "" {
		filename = "image"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", work.MimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(work.Image); err != nil {
		return nil, "", fmt.Errorf("failed to write image part: %w", err)
	}
	if err := mw.WriteField("title", work.Title); err != nil {
		return nil, "", fmt.Errorf("failed to write title: %w", err)
	}
	if err := mw.WriteField("category", strconv.Itoa(work.CategoryID)); err != nil {
		return nil, "", fmt.Errorf("failed to write category: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
