package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
)

var _ port.CartAPI = (*Client)(nil)

var ErrEmptyCartID = errors.New("cart id is empty")

func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	const op = "Client.GetCart"

	var res schema.CartResponse
	if err := c.do(ctx, http.MethodGet, nil, nil, &res, "cart"); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return cartToDomain(res.Data), nil
}

func (c *Client) AddCartItem(ctx context.Context, v domain.AddCartItem) error {
	const op = "Client.AddCartItem"

	req := schema.CartItemRequest{
		Data: schema.CartItemPayload{ProductID: v.ProductID, Qty: v.Qty},
	}
	var res schema.CartItemResponse
	if err := c.do(ctx, http.MethodPost, nil, req, &res, "cart"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) UpdateCartItem(ctx context.Context, v domain.UpdateCartItem) error {
	const op = "Client.UpdateCartItem"

	if v.ID == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyCartID)
	}

	req := schema.CartItemRequest{
		Data: schema.CartItemPayload{ProductID: v.ProductID, Qty: v.Qty},
	}
	var res schema.CartItemResponse
	if err := c.do(ctx, http.MethodPut, nil, req, &res, "cart", v.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) DeleteCartItem(ctx context.Context, cartID string) error {
	const op = "Client.DeleteCartItem"

	if cartID == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyCartID)
	}

	if err := c.do(ctx, http.MethodDelete, nil, nil, nil, "cart", cartID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
