package port

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
)

type ProductsAPI interface {
	GetProducts(context.Context, domain.ProductsParams) (domain.ProductsPage, error)
	GetAllProducts(context.Context) ([]domain.Product, error)
}

type CartAPI interface {
	GetCart(context.Context) (domain.Cart, error)
	AddCartItem(context.Context, domain.AddCartItem) error
	UpdateCartItem(context.Context, domain.UpdateCartItem) error
	DeleteCartItem(ctx context.Context, cartID string) error
}

// A Notifier receives user-facing failure alerts.
type Notifier interface {
	Notify(context.Context, domain.Alert)
}

// A StorefrontBackend is the server side of the storefront API, used by the
// mock API server.
type StorefrontBackend interface {
	ListProducts(context.Context, domain.ProductsParams) (domain.ProductsPage, error)
	AllProducts(context.Context) ([]domain.Product, error)
	ReadCart(context.Context) (domain.Cart, error)
	AddItem(context.Context, domain.AddCartItem) (domain.CartLineItem, error)
	UpdateItem(context.Context, domain.UpdateCartItem) (domain.CartLineItem, error)
	DeleteItem(ctx context.Context, cartID string) error
}
