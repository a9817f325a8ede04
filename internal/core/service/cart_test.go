package service_test

import (
	"errors"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("network is unreachable")

func alertWith(msg string) any {
	return mock.MatchedBy(func(a domain.Alert) bool {
		return a.Message == msg
	})
}

func sampleCart() domain.Cart {
	return domain.Cart{
		Carts: []domain.CartLineItem{
			{ID: "a", ProductID: "p1", Qty: 1, Total: 100, FinalTotal: 100},
			{ID: "b", ProductID: "p2", Qty: 2, Total: 400, FinalTotal: 360},
		},
		Total:      500,
		FinalTotal: 460,
	}
}

func TestCartStoreInitialState(t *testing.T) {
	s := service.NewCartStore(new(MockCartAPI), nil)

	st := s.State()
	assert.Equal(t, domain.Cart{Carts: []domain.CartLineItem{}}, st.Cart)
	assert.False(t, st.IsUpdating)
	assert.False(t, st.IsDeleting)
	assert.Zero(t, st.Revision)
}

func TestCartStoreGetCart(t *testing.T) {
	t.Run("EmptyCart", func(t *testing.T) {
		api := new(MockCartAPI)
		empty := domain.Cart{Carts: []domain.CartLineItem{}, Total: 0, FinalTotal: 0}
		api.On("GetCart", mock.Anything).Return(empty, nil).Once()

		s := service.NewCartStore(api, nil)
		require.NoError(t, s.GetCart(t.Context()))

		assert.Equal(t, empty, s.Cart())
		assert.Equal(t, uint64(1), s.State().Revision)
		api.AssertExpectations(t)
	})

	t.Run("FailureKeepsSnapshot", func(t *testing.T) {
		api := new(MockCartAPI)
		notifier := new(MockNotifier)
		api.On("GetCart", mock.Anything).Return(sampleCart(), nil).Once()
		api.On("GetCart", mock.Anything).Return(domain.Cart{}, errNetwork).Once()
		notifier.On("Notify", mock.Anything, alertWith(service.MsgGetCartFailed)).Once()

		s := service.NewCartStore(api, notifier)
		require.NoError(t, s.GetCart(t.Context()))

		err := s.GetCart(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, errNetwork)

		var opErr *service.OpError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, service.MsgGetCartFailed, opErr.Message)

		assert.Equal(t, sampleCart(), s.Cart())
		notifier.AssertExpectations(t)
	})

	t.Run("SnapshotIsACopy", func(t *testing.T) {
		api := new(MockCartAPI)
		api.On("GetCart", mock.Anything).Return(sampleCart(), nil)

		s := service.NewCartStore(api, nil)
		require.NoError(t, s.GetCart(t.Context()))

		c := s.Cart()
		c.Carts[0].Qty = 99
		assert.Equal(t, 1, s.Cart().Carts[0].Qty)
	})
}

func TestCartStoreAddCartItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := new(MockCartAPI)
		item := domain.AddCartItem{ProductID: "p1", Qty: 2}
		api.On("AddCartItem", mock.Anything, item).Return(nil).Once()
		api.On("GetCart", mock.Anything).Return(sampleCart(), nil).Once()

		s := service.NewCartStore(api, nil)

		var flags []bool
		s.Subscribe(func(st service.CartState) {
			flags = append(flags, st.IsUpdating || st.IsDeleting)
		})

		require.NoError(t, s.AddCartItem(t.Context(), item))
		assert.Equal(t, sampleCart(), s.Cart())
		// no busy flag for additions
		assert.Equal(t, []bool{false}, flags)
		api.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		api := new(MockCartAPI)
		notifier := new(MockNotifier)
		item := domain.AddCartItem{ProductID: "p1", Qty: 2}
		api.On("AddCartItem", mock.Anything, item).Return(errNetwork).Once()
		notifier.On("Notify", mock.Anything, alertWith(service.MsgAddCartFailed)).Once()

		s := service.NewCartStore(api, notifier)
		err := s.AddCartItem(t.Context(), item)
		require.ErrorIs(t, err, errNetwork)

		api.AssertNotCalled(t, "GetCart", mock.Anything)
		notifier.AssertExpectations(t)
	})

	t.Run("ResyncFailure", func(t *testing.T) {
		api := new(MockCartAPI)
		notifier := new(MockNotifier)
		item := domain.AddCartItem{ProductID: "p1", Qty: 2}
		api.On("AddCartItem", mock.Anything, item).Return(nil).Once()
		api.On("GetCart", mock.Anything).Return(domain.Cart{}, errNetwork).Once()
		notifier.On("Notify", mock.Anything, alertWith(service.MsgGetCartFailed)).Once()

		s := service.NewCartStore(api, notifier)
		err := s.AddCartItem(t.Context(), item)
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrResync)
		assert.ErrorIs(t, err, errNetwork)

		notifier.AssertExpectations(t)
		notifier.AssertNumberOfCalls(t, "Notify", 1)
	})
}

func TestCartStoreUpdateCartItem(t *testing.T) {
	t.Run("Failure", func(t *testing.T) {
		api := new(MockCartAPI)
		notifier := new(MockNotifier)
		item := domain.UpdateCartItem{ID: "a", ProductID: "p1", Qty: 3}
		api.On("GetCart", mock.Anything).Return(sampleCart(), nil).Once()
		api.On("UpdateCartItem", mock.Anything, item).Return(errNetwork).Once()
		notifier.On("Notify", mock.Anything, alertWith(service.MsgUpdateCartFailed)).Once()

		s := service.NewCartStore(api, notifier)
		require.NoError(t, s.GetCart(t.Context()))
		before := s.Cart()

		err := s.UpdateCartItem(t.Context(), item)
		require.ErrorIs(t, err, errNetwork)

		assert.False(t, s.IsUpdating())
		assert.Equal(t, before, s.Cart())
		notifier.AssertNumberOfCalls(t, "Notify", 1)
		notifier.AssertExpectations(t)
	})

	t.Run("Success", func(t *testing.T) {
		api := new(MockCartAPI)
		item := domain.UpdateCartItem{ID: "a", ProductID: "p1", Qty: 3}
		updated := sampleCart()
		updated.Carts[0].Qty = 3
		api.On("UpdateCartItem", mock.Anything, item).Return(nil).Once()
		api.On("GetCart", mock.Anything).Return(updated, nil).Once()

		s := service.NewCartStore(api, nil)

		var seen []bool
		s.Subscribe(func(st service.CartState) {
			seen = append(seen, st.IsUpdating)
		})

		require.NoError(t, s.UpdateCartItem(t.Context(), item))
		assert.Equal(t, updated, s.Cart())
		assert.Equal(t, []bool{true, true, false}, seen)
		assert.False(t, s.IsUpdating())
	})
}

func TestCartStoreDeleteCartItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		api := new(MockCartAPI)
		after := domain.Cart{
			Carts:      []domain.CartLineItem{sampleCart().Carts[1]},
			Total:      400,
			FinalTotal: 360,
		}
		api.On("GetCart", mock.Anything).Return(sampleCart(), nil).Once()
		api.On("DeleteCartItem", mock.Anything, "a").Return(nil).Once()
		api.On("GetCart", mock.Anything).Return(after, nil).Once()

		s := service.NewCartStore(api, nil)
		require.NoError(t, s.GetCart(t.Context()))

		flags := []bool{s.IsDeleting()}
		s.Subscribe(func(st service.CartState) {
			if flags[len(flags)-1] != st.IsDeleting {
				flags = append(flags, st.IsDeleting)
			}
		})

		require.NoError(t, s.DeleteCartItem(t.Context(), "a"))
		assert.Equal(t, []bool{false, true, false}, flags)
		assert.False(t, s.Cart().HasItem("a"))
		assert.True(t, s.Cart().HasItem("b"))
		api.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		api := new(MockCartAPI)
		notifier := new(MockNotifier)
		api.On("DeleteCartItem", mock.Anything, "a").Return(errNetwork).Once()
		notifier.On("Notify", mock.Anything, alertWith(service.MsgDeleteCartFailed)).Once()

		s := service.NewCartStore(api, notifier)
		err := s.DeleteCartItem(t.Context(), "a")
		require.ErrorIs(t, err, errNetwork)
		assert.False(t, s.IsDeleting())
		notifier.AssertExpectations(t)
	})
}

func TestCartStoreSubscribeCancel(t *testing.T) {
	api := new(MockCartAPI)
	api.On("GetCart", mock.Anything).Return(sampleCart(), nil)

	s := service.NewCartStore(api, nil)
	var calls int
	cancel := s.Subscribe(func(service.CartState) { calls++ })

	require.NoError(t, s.GetCart(t.Context()))
	cancel()
	require.NoError(t, s.GetCart(t.Context()))

	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(2), s.State().Revision)
}

func TestCartStoreReset(t *testing.T) {
	api := new(MockCartAPI)
	api.On("GetCart", mock.Anything).Return(sampleCart(), nil)

	s := service.NewCartStore(api, nil)
	require.NoError(t, s.GetCart(t.Context()))
	s.Reset()

	assert.Equal(t, domain.Cart{Carts: []domain.CartLineItem{}}, s.Cart())
}
