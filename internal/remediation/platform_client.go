package remediation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AdminClient implements Platform against the hosting platform's admin HTTP
// API. The API is identified only by a base URL; function restarts and
// rollbacks are plain POSTs.
type AdminClient struct {
	baseURL string
	client  *http.Client
}

// NewAdminClient builds a Platform client for the given base URL.
func NewAdminClient(baseURL string) *AdminClient {
	return &AdminClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AdminClient) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build admin request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("admin request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("admin API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// RestartFunction restarts a named platform function.
func (c *AdminClient) RestartFunction(ctx context.Context, name string) error {
	return c.post(ctx, "/functions/"+name+"/restart")
}

// RollbackDeployment reverts to the last stable deployment.
func (c *AdminClient) RollbackDeployment(ctx context.Context) error {
	return c.post(ctx, "/deployments/rollback")
}
