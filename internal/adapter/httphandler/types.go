package httphandler

import (
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
)

func productToSchema(p domain.Product) schema.Product {
	var enabled int
	if p.IsEnabled {
		enabled = 1
	}
	return schema.Product{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		OriginPrice: p.OriginPrice,
		Price:       p.Price,
		Unit:        p.Unit,
		Description: p.Description,
		Content:     p.Content,
		IsEnabled:   enabled,
		ImageURL:    p.ImageURL,
		ImagesURL:   p.ImagesURL,
	}
}

// ProductsToSchema and the other exported mappers render domain values in
// the API wire format.
func ProductsToSchema(ps []domain.Product) []schema.Product {
	out := make([]schema.Product, len(ps))
	for i := range ps {
		out[i] = productToSchema(ps[i])
	}
	return out
}

func ProductsPageToSchema(p domain.ProductsPage) schema.ProductsResponse {
	messages := p.Messages
	if messages == nil {
		messages = []string{}
	}
	return schema.ProductsResponse{
		Success:  p.Success,
		Products: ProductsToSchema(p.Products),
		Pagination: schema.Pagination{
			TotalPages:  p.Pagination.TotalPages,
			CurrentPage: p.Pagination.CurrentPage,
			HasPre:      p.Pagination.HasPre,
			HasNext:     p.Pagination.HasNext,
			Category:    p.Pagination.Category,
		},
		Messages: messages,
	}
}

func cartLineToSchema(l domain.CartLineItem) schema.CartLineItem {
	return schema.CartLineItem{
		ID:         l.ID,
		ProductID:  l.ProductID,
		Qty:        l.Qty,
		Total:      l.Total,
		FinalTotal: l.FinalTotal,
		Product:    productToSchema(l.Product),
	}
}

func CartToSchema(c domain.Cart) schema.CartInfo {
	out := schema.CartInfo{
		Carts:      make([]schema.CartLineItem, len(c.Carts)),
		Total:      c.Total,
		FinalTotal: c.FinalTotal,
	}
	for i := range c.Carts {
		out.Carts[i] = cartLineToSchema(c.Carts[i])
	}
	return out
}
