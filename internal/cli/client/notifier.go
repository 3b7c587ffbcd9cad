package client

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cloo-solutions/lunchpick/internal/domain"
)

// stderrNotifier prints notices as single lines.
type stderrNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newStderrNotifier(w io.Writer) *stderrNotifier {
	return &stderrNotifier{w: w}
}

func (n *stderrNotifier) Notify(_ context.Context, notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "! %s\n", notice.Message)
}
