package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/clock"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockProducerClient struct {
	mock.Mock
	mu      sync.Mutex
	records []*kgo.Record
}

func (m *MockProducerClient) ProduceSync(
	ctx context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	m.mu.Lock()
	m.records = append(m.records, rs...)
	m.mu.Unlock()
	args := m.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (m *MockProducerClient) Close() {
	m.Called()
}

func (m *MockProducerClient) Records() []*kgo.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*kgo.Record(nil), m.records...)
}

type jsonEncoder struct{}

func (jsonEncoder) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

type failEncoder struct{}

func (failEncoder) Encode(any) ([]byte, error) {
	return nil, errors.New("encode failed")
}

func sampleCart() domain.Cart {
	return domain.Cart{
		Carts: []domain.CartLineItem{
			{ID: "c1", ProductID: "p1", Qty: 2, Total: 200, FinalTotal: 180},
		},
		Total:      200,
		FinalTotal: 180,
	}
}

func TestNewCartActivityProducer(t *testing.T) {
	t.Run("TooFewOpts", func(t *testing.T) {
		p, err := NewCartActivityProducer("s1",
			ProducerWithClientOpt(&MockProducerClient{}),
		)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrTooFewOpts)
	})

	t.Run("NilEncoder", func(t *testing.T) {
		_, err := NewCartActivityProducer("s1", ProducerEncoderOpt(nil))
		assert.Error(t, err)
	})

	t.Run("GeneratesSessionID", func(t *testing.T) {
		p, err := NewCartActivityProducer("",
			ProducerWithClientOpt(&MockProducerClient{}),
			ProducerEncoderOpt(jsonEncoder{}),
		)
		require.NoError(t, err)
		assert.NotEmpty(t, p.SessionID())
	})
}

func TestCartActivityProducer(t *testing.T) {
	t.Run("ProducesNewRevisions", func(t *testing.T) {
		cl := &MockProducerClient{}
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{})
		cl.On("Close").Once()

		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		p, err := NewCartActivityProducer("s1",
			ProducerWithClientOpt(cl),
			ProducerEncoderOpt(jsonEncoder{}),
			ProducerClockOpt(clock.NewMockClock(now)),
		)
		require.NoError(t, err)

		p.Publish(1, sampleCart())
		p.Publish(1, sampleCart())
		p.Publish(0, domain.Cart{})
		p.Publish(2, domain.Cart{Carts: []domain.CartLineItem{}})

		go p.Run(t.Context())
		p.Close(t.Context())

		records := cl.Records()
		require.Len(t, records, 2)
		cl.AssertExpectations(t)

		var first schema.CartSnapshotV1
		require.NoError(t, json.Unmarshal(records[0].Value, &first))
		assert.Equal(t, []byte("s1"), records[0].Key)
		assert.Equal(t, "s1", first.SessionID)
		assert.Equal(t, int64(1), first.Revision)
		assert.Equal(t, now.UnixMilli(), first.OccurredAt)
		assert.NotEmpty(t, first.EventID)
		assert.Equal(t, 180.0, first.FinalTotal)
		assert.Equal(t, []schema.CartItemV1{
			{ID: "c1", ProductID: "p1", Qty: 2, Total: 200, FinalTotal: 180},
		}, first.Items)

		var second schema.CartSnapshotV1
		require.NoError(t, json.Unmarshal(records[1].Value, &second))
		assert.Equal(t, int64(2), second.Revision)
		assert.Empty(t, second.Items)
		assert.NotEqual(t, first.EventID, second.EventID)
	})

	t.Run("PublishAfterCloseIgnored", func(t *testing.T) {
		cl := &MockProducerClient{}
		cl.On("Close").Once()

		p, err := NewCartActivityProducer("s1",
			ProducerWithClientOpt(cl),
			ProducerEncoderOpt(jsonEncoder{}),
		)
		require.NoError(t, err)

		go p.Run(t.Context())
		p.Close(t.Context())
		p.Publish(1, sampleCart())

		assert.Empty(t, cl.Records())
		cl.AssertNotCalled(t, "ProduceSync", mock.Anything, mock.Anything)
	})

	t.Run("EncodeFailureSkipsRecord", func(t *testing.T) {
		cl := &MockProducerClient{}
		cl.On("Close").Once()

		p, err := NewCartActivityProducer("s1",
			ProducerWithClientOpt(cl),
			ProducerEncoderOpt(failEncoder{}),
		)
		require.NoError(t, err)

		p.Publish(1, sampleCart())
		go p.Run(t.Context())
		p.Close(t.Context())

		cl.AssertNotCalled(t, "ProduceSync", mock.Anything, mock.Anything)
	})

	t.Run("ProduceFailureKeepsRunning", func(t *testing.T) {
		cl := &MockProducerClient{}
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{{Err: errors.New("broker down")}}).Once()
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{}).Once()
		cl.On("Close").Once()

		p, err := NewCartActivityProducer("s1",
			ProducerWithClientOpt(cl),
			ProducerEncoderOpt(jsonEncoder{}),
		)
		require.NoError(t, err)

		p.Publish(1, sampleCart())
		p.Publish(2, sampleCart())
		go p.Run(t.Context())
		p.Close(t.Context())

		assert.Len(t, cl.Records(), 2)
		cl.AssertExpectations(t)
	})

	t.Run("CloseWithoutRunHonorsContext", func(t *testing.T) {
		cl := &MockProducerClient{}
		cl.On("Close").Once()

		p, err := NewCartActivityProducer("s1",
			ProducerWithClientOpt(cl),
			ProducerEncoderOpt(jsonEncoder{}),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()
		p.Close(ctx)
		cl.AssertExpectations(t)
	})
}
