// Package mirror fetches entity tables from the cloud CSV mirror, an HTTP
// file store that holds one <entity>.csv per table.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crmdash/backend/internal/dataset"
)

var ErrNotFound = errors.New("mirror: file not found")

type Client struct {
	BaseURL string
	Folder  string
	Client  *http.Client
}

func NewClient(baseURL, folder string) *Client {
	return &Client{
		BaseURL: baseURL,
		Folder:  folder,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// LoadTable downloads and parses <base>/<folder>/<name>.csv. A missing
// file is reported as ErrNotFound so the loader can degrade that entity
// to an empty table instead of failing the snapshot.
func (c *Client) LoadTable(ctx context.Context, name string) (dataset.Table, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}

	endpoint := c.fileURL(name + ".csv")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return dataset.Table{}, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return dataset.Table{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return dataset.Table{}, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return dataset.Table{}, fmt.Errorf("mirror http error: %s", resp.Status)
	}

	return dataset.ReadCSV(resp.Body)
}

func (c *Client) fileURL(filename string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if c.Folder != "" {
		base += "/" + url.PathEscape(c.Folder)
	}
	return base + "/" + url.PathEscape(filename)
}
