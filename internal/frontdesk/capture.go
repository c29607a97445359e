package frontdesk

import (
	"context"
	"sync"

	"github.com/wolfman30/medspa-frontdesk/internal/notify"
)

type noticeKey struct{}

type noticeSlot struct {
	mu     sync.Mutex
	notice notify.Notice
	set    bool
}

// CaptureNotice returns a context that records the notice of the operation
// run with it, so a request handler can echo the message back to its caller.
func CaptureNotice(ctx context.Context) (context.Context, func() (notify.Notice, bool)) {
	slot := &noticeSlot{}
	return context.WithValue(ctx, noticeKey{}, slot), func() (notify.Notice, bool) {
		slot.mu.Lock()
		defer slot.mu.Unlock()
		return slot.notice, slot.set
	}
}

func deliver(ctx context.Context, sink notify.Notifier, n notify.Notice) {
	if slot, ok := ctx.Value(noticeKey{}).(*noticeSlot); ok {
		slot.mu.Lock()
		slot.notice, slot.set = n, true
		slot.mu.Unlock()
	}
	sink.Notify(ctx, n)
}
