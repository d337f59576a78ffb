package client

import "context"

// Health is the response of GET /health.
type Health struct {
	Service            string `json:"service"`
	Version            string `json:"version"`
	RealDataEnabled    bool   `json:"realDataEnabled"`
	PersistenceEnabled bool   `json:"persistenceEnabled"`
	NarrativeMode      string `json:"narrativeMode,omitempty"`
	Status             string `json:"status"`
	Timestamp          string `json:"timestamp"`
	Uptime             string `json:"uptime"`
}

// Health calls the liveness endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.get(ctx, apiPrefix+"/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
