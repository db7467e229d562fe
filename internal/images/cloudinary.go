// Package images uploads user photos to a Cloudinary-compatible image host
// and hands back the public URL. The host owns storage, transformation, and
// delivery; this client only performs the unsigned upload call.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vagaroute/backend/internal/domain"
)

// Uploader posts images to an unsigned upload endpoint.
type Uploader struct {
	uploadURL string
	preset    string
	client    *http.Client
}

// NewUploader constructs an Uploader. uploadURL is the full endpoint
// (e.g. "https://api.cloudinary.com/v1_1/<cloud>/image/upload"); preset is
// the unsigned upload preset configured on the host.
func NewUploader(uploadURL, preset string, client *http.Client) *Uploader {
	return &Uploader{uploadURL: uploadURL, preset: preset, client: client}
}

// uploadResponse is the subset of the host's response we read.
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends one image and returns its public HTTPS URL.
// Upstream failures are reported as domain.ErrUpstream.
func (u *Uploader) Upload(ctx context.Context, filename string, image io.Reader) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("images.Uploader.Upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("images.Uploader.Upload: %w", err)
	}
	if err := form.WriteField("upload_preset", u.preset); err != nil {
		return "", fmt.Errorf("images.Uploader.Upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("images.Uploader.Upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("images.Uploader.Upload: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("images.Uploader.Upload: %w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("images.Uploader.Upload: %w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("images.Uploader.Upload: %w: decode: %v", domain.ErrUpstream, err)
	}
	if decoded.SecureURL == "" {
		return "", fmt.Errorf("images.Uploader.Upload: %w: no secure_url in response", domain.ErrUpstream)
	}

	return decoded.SecureURL, nil
}
