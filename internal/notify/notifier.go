package notify

import (
	"context"
	"sync"

	"github.com/wolfman30/medspa-frontdesk/pkg/logging"
)

// Notice is the one human-readable message produced by a front-desk operation.
type Notice struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
	OK        bool   `json:"ok"`
}

// Notifier receives a notice for every success and failure outcome.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// LogNotifier writes notices to the structured log.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs successes at info and failures at warn.
func (l *LogNotifier) Notify(ctx context.Context, n Notice) {
	if n.OK {
		l.logger.InfoContext(ctx, n.Message, "operation", n.Operation)
		return
	}
	l.logger.WarnContext(ctx, n.Message, "operation", n.Operation)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify appends n to the recorded notices.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

// Fanout delivers each notice to several notifiers in order.
type Fanout []Notifier

// Notify forwards n to every sink in order.
func (f Fanout) Notify(ctx context.Context, n Notice) {
	for _, nf := range f {
		if nf != nil {
			nf.Notify(ctx, n)
		}
	}
}

// Nop discards notices.
type Nop struct{}

// Notify discards n.
func (Nop) Notify(context.Context, Notice) {}
