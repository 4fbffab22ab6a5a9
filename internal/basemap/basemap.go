package basemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ecommerce-dashboard/internal/observability"
)

const (
	service       = "basemap"
	maxImageBytes = 10 << 20
)

var ErrTooLarge = errors.New("basemap: image too large")

type Image struct {
	Data        []byte
	ContentType string
	FetchedAt   time.Time
}

// Fetch downloads the background image once. There is no retry; callers are
// expected to render without a basemap when this fails.
func Fetch(ctx context.Context, client *http.Client, url string) (*Image, error) {
	start := time.Now()
	status := 0
	defer func() {
		observability.ObserveExternal(service, status, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("basemap: build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("basemap: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("basemap: fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("basemap: read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("basemap: empty body")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &Image{Data: data, ContentType: contentType, FetchedAt: time.Now()}, nil
}

func (img *Image) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, "", img.FetchedAt, bytes.NewReader(img.Data))
}
