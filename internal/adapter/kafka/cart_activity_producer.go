package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/clock"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const queueSize = 64

type cartSnapshot struct {
	revision   uint64
	cart       domain.Cart
	occurredAt time.Time
}

// A CartActivityProducer publishes re-synchronized cart snapshots of one
// session. Snapshots are queued by Publish and produced by Run, so the
// cart store never waits on the broker.
type CartActivityProducer struct {
	cl        ProducerClient
	encoder   Encoder
	clock     clock.Clock
	sessionID string
	opPrefix  string

	mu           sync.Mutex
	closed       bool
	lastRevision uint64
	queue        chan cartSnapshot
	done         chan struct{}
}

func NewCartActivityProducer(
	sessionID string, opts ...ProducerOpt,
) (*CartActivityProducer, error) {
	const op = "NewCartActivityProducer"

	options := producerOpts{clock: clock.NewRealClock()}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, opErr(err, op)
		}
	}
	if options.cl == nil || options.encoder == nil {
		return nil, opErr(ErrTooFewOpts, op)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	return &CartActivityProducer{
		cl:        options.cl,
		encoder:   options.encoder,
		clock:     options.clock,
		sessionID: sessionID,
		opPrefix:  "CartActivityProducer",
		queue:     make(chan cartSnapshot, queueSize),
		done:      make(chan struct{}),
	}, nil
}

func (p *CartActivityProducer) SessionID() string {
	return p.sessionID
}

// Publish queues the snapshot when revision is newer than the last one
// seen. It never blocks; a full queue drops the snapshot.
func (p *CartActivityProducer) Publish(revision uint64, cart domain.Cart) {
	const op = "Publish"

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || revision <= p.lastRevision {
		return
	}
	p.lastRevision = revision

	s := cartSnapshot{
		revision:   revision,
		cart:       cart.Clone(),
		occurredAt: p.clock.Now(),
	}
	select {
	case p.queue <- s:
	default:
		slog.Warn("queue is full, snapshot dropped",
			"op", makeOp(p.opPrefix, op), "revision", revision,
		)
	}
}

// Run produces queued snapshots until the context is done or the producer
// is closed and drained.
func (p *CartActivityProducer) Run(ctx context.Context) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-p.queue:
			if !ok {
				return
			}
			p.produce(ctx, s)
		}
	}
}

// Close stops accepting snapshots, waits for Run to drain the queue and
// closes the client.
func (p *CartActivityProducer) Close(ctx context.Context) {
	const op = "Close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing producer...")

	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		log.Warn("queue is not drained", "err", ctx.Err())
	}

	p.cl.Close()
	log.Info("producer is closed")
}

func (p *CartActivityProducer) produce(ctx context.Context, s cartSnapshot) {
	const op = "produce"
	log := slog.With("op", makeOp(p.opPrefix, op), "revision", s.revision)

	r, err := p.createRecord(s)
	if err != nil {
		log.Error("failed to create record", "err", err)
		return
	}

	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		log.Error("failed to produce snapshot", "err", err)
		return
	}
	log.Debug("snapshot produced")
}

func (p *CartActivityProducer) createRecord(s cartSnapshot) (*kgo.Record, error) {
	const op = "createRecord"

	b, err := p.encoder.Encode(p.toSchema(s))
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(p.sessionID), Value: b}, nil
}

func (p *CartActivityProducer) toSchema(s cartSnapshot) schema.CartSnapshotV1 {
	v := schema.CartSnapshotV1{
		EventID:    uuid.NewString(),
		SessionID:  p.sessionID,
		Revision:   int64(s.revision),
		OccurredAt: s.occurredAt.UnixMilli(),
		Total:      s.cart.Total,
		FinalTotal: s.cart.FinalTotal,
		Items:      make([]schema.CartItemV1, len(s.cart.Carts)),
	}
	for i, item := range s.cart.Carts {
		v.Items[i] = schema.CartItemV1{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        int64(item.Qty),
			Total:      item.Total,
			FinalTotal: item.FinalTotal,
		}
	}
	return v
}
