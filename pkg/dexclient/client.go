package dexclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PrincipalHeader carries the authenticated identity on every API call.
const PrincipalHeader = "X-Ms-Client-Principal"

// Client is a minimal HTTP client for the tracker API.
type Client struct {
	baseURL    string
	principal  string // base64 principal header value; empty means signed out
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetPrincipal swaps the identity used for subsequent requests. Pass the
// empty string on sign-out.
func (c *Client) SetPrincipal(encoded string) {
	c.principal = encoded
}

type collectionResponse struct {
	UserID  string        `json:"userId"`
	Count   int           `json:"count"`
	Pokemon []ServerEntry `json:"pokemon"`
}

// FetchCollection pulls the complete server-side collection for the current
// principal.
func (c *Client) FetchCollection(ctx context.Context) (string, []ServerEntry, error) {
	if c.principal == "" {
		return "", nil, fmt.Errorf("not signed in")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/userdex", nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set(PrincipalHeader, c.principal)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("collection fetch returned status %d", resp.StatusCode)
	}

	var body collectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", nil, err
	}
	return body.UserID, body.Pokemon, nil
}

// SetCaught marks a species caught (or updates its fields) on the server.
func (c *Client) SetCaught(ctx context.Context, entry ServerEntry) error {
	caught := true
	payload := map[string]interface{}{
		"pokemonId": entry.PokemonID,
		"caught":    caught,
		"shiny":     entry.Shiny,
		"notes":     entry.Notes,
	}
	if entry.Screenshot != "" {
		payload["screenshot"] = entry.Screenshot
	}
	if entry.ScreenshotShiny != "" {
		payload["screenshotShiny"] = entry.ScreenshotShiny
	}
	return c.send(ctx, http.MethodPut, "/api/userdex", payload)
}

// RemoveCaught deletes a species from the server-side collection. Deleting
// an absent entry succeeds.
func (c *Client) RemoveCaught(ctx context.Context, pokemonID int) error {
	return c.send(ctx, http.MethodDelete, "/api/userdex", map[string]interface{}{
		"pokemonId": pokemonID,
	})
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}) error {
	if c.principal == "" {
		return fmt.Errorf("not signed in")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(PrincipalHeader, c.principal)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode)
	}
	return nil
}
