package hass

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// RESTClient fires events through POST /api/events/<type>. The
// underlying http.Client reuses connections across sends for the
// lifetime of the event loop; there is no per-request timeout beyond
// what the transport and context provide.
type RESTClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTClient creates a client targeting the given base URL
// (e.g. "http://homeassistant.local:8123").
func NewRESTClient(baseURL, token string) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{},
	}
}

// SendKeyEvent posts {"button_name": key} to the event endpoint. Any
// transport failure or HTTP status >= 400 reports ErrUpstream.
func (c *RESTClient) SendKeyEvent(ctx context.Context, key string) error {
	data, err := json.Marshal(map[string]string{"button_name": key})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/events/"+EventType, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return upstreamErrf("POST %s: %v", req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return upstreamErrf("POST %s: %d %s", req.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Close drops idle keep-alive connections. The REST transport has no
// session state to reset.
func (c *RESTClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
