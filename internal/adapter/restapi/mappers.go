package restapi

import (
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
)

func productToDomain(p schema.Product) domain.Product {
	return domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		OriginPrice: p.OriginPrice,
		Price:       p.Price,
		Unit:        p.Unit,
		Description: p.Description,
		Content:     p.Content,
		IsEnabled:   p.IsEnabled != 0,
		ImageURL:    p.ImageURL,
		ImagesURL:   p.ImagesURL,
	}
}

func productsToDomain(ps []schema.Product) []domain.Product {
	out := make([]domain.Product, len(ps))
	for i := range ps {
		out[i] = productToDomain(ps[i])
	}
	return out
}

func productsPageToDomain(r schema.ProductsResponse) domain.ProductsPage {
	return domain.ProductsPage{
		Success:  r.Success,
		Products: productsToDomain(r.Products),
		Pagination: domain.Pagination{
			TotalPages:  r.Pagination.TotalPages,
			CurrentPage: r.Pagination.CurrentPage,
			HasPre:      r.Pagination.HasPre,
			HasNext:     r.Pagination.HasNext,
			Category:    r.Pagination.Category,
		},
		Messages: r.Messages,
	}
}

func cartToDomain(c schema.CartInfo) domain.Cart {
	cart := domain.Cart{
		Carts:      make([]domain.CartLineItem, len(c.Carts)),
		Total:      c.Total,
		FinalTotal: c.FinalTotal,
	}
	for i, item := range c.Carts {
		cart.Carts[i] = domain.CartLineItem{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			Total:      item.Total,
			FinalTotal: item.FinalTotal,
			Product:    productToDomain(item.Product),
		}
	}
	return cart
}
