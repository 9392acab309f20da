package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"storefront-service/internal/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// ProductInfo is the catalog service's wire shape.
type ProductInfo struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Images   []ProductImage  `json:"images"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	IsActive bool            `json:"isActive"`
}

type ProductImage struct {
	URL string `json:"url"`
}

func (p ProductInfo) toDomain() *domain.Product {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0].URL
	}
	return &domain.Product{
		ID:       p.ID,
		Name:     p.Name,
		Image:    image,
		Price:    p.Price,
		Stock:    p.Stock,
		IsActive: p.IsActive,
	}
}

// ProductClient reads live product state from the catalog service. Calls go
// through a circuit breaker so a failing catalog fails fast.
type ProductClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*domain.Product]
}

func NewProductClient(baseURL string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*domain.Product](gobreaker.Settings{
			Name:        "product-service",
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (c *ProductClient) GetProductById(ctx context.Context, id string) (*domain.Product, error) {
	return c.breaker.Execute(func() (*domain.Product, error) {
		return c.fetch(ctx, id)
	})
}

func (c *ProductClient) fetch(ctx context.Context, id string) (*domain.Product, error) {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build product request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("product service returned status %d", resp.StatusCode)
	}

	var p ProductInfo
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	return p.toDomain(), nil
}
