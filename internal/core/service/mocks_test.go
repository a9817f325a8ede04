package service_test

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockCartAPI struct {
	mock.Mock
}

func (m *MockCartAPI) GetCart(ctx context.Context) (domain.Cart, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartAPI) AddCartItem(ctx context.Context, v domain.AddCartItem) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockCartAPI) UpdateCartItem(ctx context.Context, v domain.UpdateCartItem) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockCartAPI) DeleteCartItem(ctx context.Context, cartID string) error {
	return m.Called(ctx, cartID).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, a domain.Alert) {
	m.Called(ctx, a)
}

type MockProductsAPI struct {
	mock.Mock
}

func (m *MockProductsAPI) GetProducts(
	ctx context.Context, params domain.ProductsParams,
) (domain.ProductsPage, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.ProductsPage), args.Error(1)
}

func (m *MockProductsAPI) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}
