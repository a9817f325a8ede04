package domain

import "slices"

type (
	// A Cart is the server-authoritative cart snapshot.
	Cart struct {
		Carts      []CartLineItem
		Total      float64
		FinalTotal float64
	}

	CartLineItem struct {
		ID         string
		ProductID  string
		Qty        int
		Total      float64
		FinalTotal float64
		Product    Product
	}
)

// Clone returns a deep copy, so callers never share the store's slices.
func (c Cart) Clone() Cart {
	out := Cart{Total: c.Total, FinalTotal: c.FinalTotal}
	if c.Carts == nil {
		return out
	}
	out.Carts = make([]CartLineItem, len(c.Carts))
	for i, item := range c.Carts {
		item.Product.ImagesURL = slices.Clone(item.Product.ImagesURL)
		out.Carts[i] = item
	}
	return out
}

// HasItem reports whether the snapshot contains a line with the cart id.
func (c Cart) HasItem(id string) bool {
	for _, item := range c.Carts {
		if item.ID == id {
			return true
		}
	}
	return false
}

type AddCartItem struct {
	ProductID string
	Qty       int
}

type UpdateCartItem struct {
	ID        string
	ProductID string
	Qty       int
}
