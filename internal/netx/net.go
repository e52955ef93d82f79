// Package netx fetches objects through presigned URLs.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DownloadPresigned GETs url and returns the body. Any status other than
// 200 is an error carrying the status and body.
func DownloadPresigned(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(body))
	}
	return body, nil
}
