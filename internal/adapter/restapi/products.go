package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.ProductsAPI = (*Client)(nil)

// GetProducts lists one page of products. Only the params that are set
// become query parameters.
func (c *Client) GetProducts(
	ctx context.Context, params domain.ProductsParams,
) (domain.ProductsPage, error) {
	const op = "Client.GetProducts"

	var res schema.ProductsResponse
	err := c.do(ctx, http.MethodGet, productsQuery(params), nil, &res, "products")
	if err != nil {
		return domain.ProductsPage{}, fmt.Errorf("%s: %w", op, err)
	}
	return productsPageToDomain(res), nil
}

func (c *Client) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.GetAllProducts"

	var res schema.AllProductsResponse
	err := c.do(ctx, http.MethodGet, nil, nil, &res, "products", "all")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return productsToDomain(res.Products), nil
}

func productsQuery(params domain.ProductsParams) url.Values {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	return q
}
