package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/shopspring/decimal"
)

const PageSize = 10

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidQty = errors.New("quantity must be at least 1")
)

var _ port.StorefrontBackend = (*Memory)(nil)

//go:embed seed.json
var seedJSON []byte

// SeedProducts returns the built-in catalog.
func SeedProducts() ([]domain.Product, error) {
	const op = "storage.SeedProducts"

	var ps []schema.Product
	if err := json.Unmarshal(seedJSON, &ps); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.Product, len(ps))
	for i, p := range ps {
		out[i] = domain.Product{
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
	return out, nil
}

// Memory is a single-cart storefront kept in process memory.
type Memory struct {
	mu       sync.RWMutex
	products []domain.Product
	lines    []domain.CartLineItem
	newID    func() string
}

func NewMemory(products []domain.Product) *Memory {
	return &Memory{
		products: slices.Clone(products),
		newID:    uuid.NewString,
	}
}

func (m *Memory) ListProducts(
	ctx context.Context, params domain.ProductsParams,
) (domain.ProductsPage, error) {
	const op = "Memory.ListProducts"

	if err := ctx.Err(); err != nil {
		return domain.ProductsPage{}, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []domain.Product
	for _, p := range m.products {
		if params.Category == "" || p.Category == params.Category {
			filtered = append(filtered, p)
		}
	}

	totalPages := max(1, (len(filtered)+PageSize-1)/PageSize)
	page := min(max(1, params.Page), totalPages)

	start := min((page-1)*PageSize, len(filtered))
	end := min(start+PageSize, len(filtered))

	return domain.ProductsPage{
		Success:  true,
		Products: slices.Clone(filtered[start:end]),
		Pagination: domain.Pagination{
			TotalPages:  totalPages,
			CurrentPage: page,
			HasPre:      page > 1,
			HasNext:     page < totalPages,
			Category:    params.Category,
		},
		Messages: []string{},
	}, nil
}

func (m *Memory) AllProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Memory.AllProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.products), nil
}

func (m *Memory) ReadCart(ctx context.Context) (domain.Cart, error) {
	const op = "Memory.ReadCart"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	cart := domain.Cart{Carts: slices.Clone(m.lines)}
	if cart.Carts == nil {
		cart.Carts = []domain.CartLineItem{}
	}
	total, finalTotal := decimal.Zero, decimal.Zero
	for _, line := range cart.Carts {
		total = total.Add(decimal.NewFromFloat(line.Total))
		finalTotal = finalTotal.Add(decimal.NewFromFloat(line.FinalTotal))
	}
	cart.Total = total.InexactFloat64()
	cart.FinalTotal = finalTotal.InexactFloat64()
	return cart.Clone(), nil
}

// AddItem merges the quantity into an existing line of the same product.
func (m *Memory) AddItem(
	ctx context.Context, item domain.AddCartItem,
) (domain.CartLineItem, error) {
	const op = "Memory.AddItem"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}
	if item.Qty < 1 {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, ErrInvalidQty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.product(item.ProductID)
	if !ok {
		return domain.CartLineItem{}, fmt.Errorf(
			"%s: product %q: %w", op, item.ProductID, ErrNotFound,
		)
	}

	for i := range m.lines {
		if m.lines[i].ProductID == item.ProductID {
			m.lines[i] = makeLine(m.lines[i].ID, product, m.lines[i].Qty+item.Qty)
			log.Debug("line merged", "id", m.lines[i].ID, "qty", m.lines[i].Qty)
			return m.lines[i], nil
		}
	}

	line := makeLine(m.newID(), product, item.Qty)
	m.lines = append(m.lines, line)
	log.Debug("line added", "id", line.ID)
	return line, nil
}

func (m *Memory) UpdateItem(
	ctx context.Context, item domain.UpdateCartItem,
) (domain.CartLineItem, error) {
	const op = "Memory.UpdateItem"

	if err := ctx.Err(); err != nil {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, err)
	}
	if item.Qty < 1 {
		return domain.CartLineItem{}, fmt.Errorf("%s: %w", op, ErrInvalidQty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.lineIndex(item.ID)
	if i < 0 {
		return domain.CartLineItem{}, fmt.Errorf(
			"%s: cart item %q: %w", op, item.ID, ErrNotFound,
		)
	}

	productID := item.ProductID
	if productID == "" {
		productID = m.lines[i].ProductID
	}
	product, ok := m.product(productID)
	if !ok {
		return domain.CartLineItem{}, fmt.Errorf(
			"%s: product %q: %w", op, productID, ErrNotFound,
		)
	}

	m.lines[i] = makeLine(item.ID, product, item.Qty)
	return m.lines[i], nil
}

func (m *Memory) DeleteItem(ctx context.Context, cartID string) error {
	const op = "Memory.DeleteItem"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.lineIndex(cartID)
	if i < 0 {
		return fmt.Errorf("%s: cart item %q: %w", op, cartID, ErrNotFound)
	}
	m.lines = slices.Delete(m.lines, i, i+1)
	return nil
}

func (m *Memory) product(id string) (domain.Product, bool) {
	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (m *Memory) lineIndex(id string) int {
	return slices.IndexFunc(m.lines, func(l domain.CartLineItem) bool {
		return l.ID == id
	})
}

// makeLine prices the line in decimal, rounded to cents.
func makeLine(id string, p domain.Product, qty int) domain.CartLineItem {
	total := decimal.NewFromFloat(p.Price).
		Mul(decimal.NewFromInt(int64(qty))).
		Round(2).
		InexactFloat64()
	return domain.CartLineItem{
		ID:         id,
		ProductID:  p.ID,
		Qty:        qty,
		Total:      total,
		FinalTotal: total,
		Product:    p,
	}
}
