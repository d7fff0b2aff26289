// Package rest implements checklist.Source against a hosted checklist API.
//
// The wire contract is the service's loosely-typed record shape; every
// payload passes through checklist.Normalize before the engine sees it.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/colonyops/checkup/internal/core/checklist"
	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

// Client talks to the remote checklist service.
type Client struct {
	endpoint     string
	apiKey       string
	pollInterval time.Duration
	httpc        *http.Client
	log          zerolog.Logger
}

var _ checklist.Source = (*Client)(nil)

// Options configures a remote client.
type Options struct {
	// Endpoint is the service base URL, e.g. https://api.example.com/v1.
	Endpoint string
	// APIKey is sent as a bearer token on every request.
	APIKey string
	// PollInterval controls Subscribe's change polling. Zero disables
	// polling entirely.
	PollInterval time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// New creates a remote checklist client.
func New(opts Options, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("invalid endpoint %q", opts.Endpoint)
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		endpoint:     strings.TrimRight(opts.Endpoint, "/"),
		apiKey:       opts.APIKey,
		pollInterval: opts.PollInterval,
		httpc:        httpc,
		log:          log,
	}, nil
}

// checklistRecord is the wire shape of GET /checklists/{id}.
type checklistRecord struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description"`
	ClientProfile *checklist.ClientProfile `json:"client_profile"`
	Items         []checklist.RawItem      `json:"items"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// FetchChecklist loads a checklist from the service and normalizes its
// items. Returns checklist.ErrNotFound on a 404.
func (c *Client) FetchChecklist(ctx context.Context, id string) (checklist.Checklist, error) {
	var record checklistRecord
	err := c.do(ctx, http.MethodGet, "/checklists/"+url.PathEscape(id), nil, &record)
	if err != nil {
		return checklist.Checklist{}, err
	}

	items, err := checklist.NormalizeAll(record.Items)
	if err != nil {
		return checklist.Checklist{}, fmt.Errorf("checklist %s: %w", id, err)
	}

	return checklist.Checklist{
		ID:            record.ID,
		Title:         record.Title,
		Description:   record.Description,
		Items:         items,
		ClientProfile: record.ClientProfile,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}, nil
}

// patchBody is the wire shape of PATCH /checklists/{id}/items/{id}. Only
// the fields the patch touches are sent.
type patchBody struct {
	ToggleCompleted bool                    `json:"toggle_completed,omitempty"`
	Notes           *string                 `json:"notes,omitempty"`
	Verification    *checklist.Verification `json:"verification,omitempty"`
	ActualMinutes   *int                    `json:"actual_minutes,omitempty"`
}

// WriteItemPatch pushes a patch to the service and returns the item the
// server settled on.
func (c *Client) WriteItemPatch(ctx context.Context, checklistID, itemID string, patch checklist.Patch) (checklist.Item, error) {
	if err := patch.Validate(); err != nil {
		return checklist.Item{}, err
	}

	body := patchBody{
		ToggleCompleted: patch.ToggleCompleted,
		Notes:           patch.Notes,
		Verification:    patch.Verification,
		ActualMinutes:   patch.ActualMinutes,
	}

	path := "/checklists/" + url.PathEscape(checklistID) + "/items/" + url.PathEscape(itemID)

	var raw checklist.RawItem
	if err := c.do(ctx, http.MethodPatch, path, body, &raw); err != nil {
		return checklist.Item{}, err
	}

	it, err := checklist.Normalize(raw)
	if err != nil {
		return checklist.Item{}, fmt.Errorf("item %s: %w", itemID, err)
	}
	return it, nil
}

// Subscribe polls the service for items changed since the last poll and
// invokes onRemoteChange for each. The returned function stops polling.
func (c *Client) Subscribe(checklistID string, onRemoteChange func(checklist.Item)) checklist.Unsubscribe {
	if c.pollInterval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go c.poll(ctx, checklistID, onRemoteChange)
	return func() { cancel() }
}

func (c *Client) poll(ctx context.Context, checklistID string, onRemoteChange func(checklist.Item)) {
	since := time.Now().UTC()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			path := fmt.Sprintf("/checklists/%s/items?updated_since=%s",
				url.PathEscape(checklistID), url.QueryEscape(since.Format(time.RFC3339Nano)))

			var raws []checklist.RawItem
			if err := c.do(ctx, http.MethodGet, path, nil, &raws); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.Warn().Err(err).Str("checklist_id", checklistID).Msg("change poll failed")
				continue
			}

			for _, raw := range raws {
				it, err := checklist.Normalize(raw)
				if err != nil {
					c.log.Warn().Err(err).Msg("dropping malformed remote item")
					continue
				}
				if it.UpdatedAt.After(since) {
					since = it.UpdatedAt
				}
				onRemoteChange(it)
			}
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return checklist.ErrNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
