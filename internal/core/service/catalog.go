package service

import (
	"context"
	"fmt"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/querycache"
)

const (
	ProductsQueryName    = "products"
	AllProductsQueryName = "productsAll"
)

type (
	// ProductsQuery is keyed by (page, category); SetKey with new params
	// fetches again.
	ProductsQuery = querycache.Query[domain.ProductsParams, domain.ProductsPage]

	AllProductsQuery = querycache.Query[struct{}, []domain.Product]
)

// Catalog is the product query layer.
type Catalog struct {
	api   port.ProductsAPI
	cache *querycache.Client
}

func NewCatalog(api port.ProductsAPI, cache *querycache.Client) *Catalog {
	if cache == nil {
		cache = querycache.NewClient()
	}
	return &Catalog{api: api, cache: cache}
}

// GetProducts fetches one page without caching.
func (c *Catalog) GetProducts(
	ctx context.Context, params domain.ProductsParams,
) (domain.ProductsPage, error) {
	const op = "Catalog.GetProducts"

	page, err := c.api.GetProducts(ctx, params.Normalized())
	if err != nil {
		return domain.ProductsPage{}, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

// GetAllProducts fetches the unfiltered list without caching.
func (c *Catalog) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Catalog.GetAllProducts"

	ps, err := c.api.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// ProductsQuery keys the cache by the normalized params, so a negative
// page shares the entry of the absent page.
func (c *Catalog) ProductsQuery(params domain.ProductsParams) *ProductsQuery {
	return querycache.NewQuery(
		c.cache,
		ProductsQueryName,
		params.Normalized(),
		func(ctx context.Context, p domain.ProductsParams) (domain.ProductsPage, error) {
			return c.GetProducts(ctx, p)
		},
	)
}

func (c *Catalog) AllProductsQuery() *AllProductsQuery {
	return querycache.NewQuery(
		c.cache,
		AllProductsQueryName,
		struct{}{},
		func(ctx context.Context, _ struct{}) ([]domain.Product, error) {
			return c.GetAllProducts(ctx)
		},
	)
}

// InvalidateProducts drops every cached product query result.
func (c *Catalog) InvalidateProducts(ctx context.Context) error {
	const op = "Catalog.InvalidateProducts"

	if err := c.cache.Invalidate(ctx, ProductsQueryName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.cache.Invalidate(ctx, AllProductsQueryName); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
