package api

import (
	"context"

	"github.com/Kimutaijeremy/handyproconnect/internal/models"
)

// ListServices returns the service catalog. No authentication is required.
func (c *Client) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := c.get(ctx, "list services", "/services/", &services); err != nil {
		return nil, err
	}
	return services, nil
}
