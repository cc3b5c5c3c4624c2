// Package pinning uploads rendered certificate artifacts to a Pinata
// compatible pinning service and returns the resulting content identifier.
package pinning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wipecert/internal/config"
	"wipecert/internal/domain"
)

const defaultEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"

type Client struct {
	endpoint   string
	apiKey     string
	apiSecret  string
	gatewayURL string
	httpClient *http.Client
}

func New(endpoint, apiKey, apiSecret, gatewayURL string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if gatewayURL == "" {
		gatewayURL = "https://gateway.pinata.cloud/ipfs"
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func NewFromConfig(cfg config.Config) *Client {
	return New(cfg.PinEndpoint, cfg.PinAPIKey, cfg.PinSecret, cfg.GatewayBaseURL)
}

// Enabled reports whether pinning credentials were configured. The issuance
// flow skips the upload step entirely when they were not.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != "" && c.apiSecret != ""
}

// GatewayURL returns the public retrieval URL for a pinned identifier, or an
// empty string when the identifier is empty.
func (c *Client) GatewayURL(cid string) string {
	if c == nil || cid == "" {
		return ""
	}
	return c.gatewayURL + "/" + cid
}

// PinFile uploads one artifact and returns its content identifier.
func (c *Client) PinFile(ctx context.Context, path string, meta domain.PinMetadata) (string, error) {
	if !c.Enabled() {
		return "", errors.New("pinning credentials missing")
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read artifact: %w", err)
	}
	if meta.Name == "" {
		meta.Name = filepath.Base(path)
	}
	metadata, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
		return "", err
	}
	if err := writer.WriteField("pinataOptions", `{"cidVersion":1}`); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pin upload failed: status %d", resp.StatusCode)
	}
	var parsed struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("pin response: %w", err)
	}
	if parsed.IpfsHash == "" {
		return "", errors.New("pin response missing IpfsHash")
	}
	return parsed.IpfsHash, nil
}
