// Package notify delivers user-facing alerts raised by the cart store.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.Notifier = Log{}
	_ port.Notifier = (*Writer)(nil)
	_ port.Notifier = Multi{}
	_ port.Notifier = Discard{}
)

// Log writes alerts to the default slog logger at warn level.
type Log struct{}

func (Log) Notify(ctx context.Context, a domain.Alert) {
	slog.WarnContext(ctx, a.Message, "op", a.Op, "err", a.Err)
}

// Writer prints the alert message on its own line, the terminal
// counterpart of a modal alert.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(_ context.Context, a domain.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintln(n.w, a.Message); err != nil {
		slog.Error("failed to write alert", "op", "Writer.Notify", "err", err)
	}
}

type Multi []port.Notifier

func (m Multi) Notify(ctx context.Context, a domain.Alert) {
	for _, n := range m {
		n.Notify(ctx, a)
	}
}

type Discard struct{}

func (Discard) Notify(context.Context, domain.Alert) {}
