// Package cloudinary uploads media files to Cloudinary's unsigned upload
// endpoint and returns the publicly retrievable URL.
package cloudinary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const uploadURLFormat = "https://api.cloudinary.com/v1_1/%s/auto/upload"

// Client is a thin client for unsigned uploads.
type Client struct {
	cloudName    string
	uploadPreset string
	httpClient   *http.Client
}

// New creates a Client for the given cloud and unsigned upload preset.
func New(cloudName, uploadPreset string) *Client {
	return &Client{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload POSTs the file as multipart form data and returns the secure URL
// Cloudinary assigns to it.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("upload_preset", c.uploadPreset); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	url := fmt.Sprintf(uploadURLFormat, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", fmt.Errorf("cloudinary upload failed: %s: %s", res.Status, body)
	}

	var payload struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("cloudinary upload: decode response: %w", err)
	}
	if payload.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: no secure_url in response")
	}
	return payload.SecureURL, nil
}
