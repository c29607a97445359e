package frontdesk

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/medspa-frontdesk/internal/notify"
)

type fakeS3 struct {
	calls int
}

func (f *fakeS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	return &s3.PutObjectOutput{}, nil
}

type captureSender struct {
	sent []notify.EmailMessage
	err  error
}

func (c *captureSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

// blockingSender holds every Send until release is closed.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingSender() *blockingSender {
	return &blockingSender{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingSender) Send(ctx context.Context, _ notify.EmailMessage) error {
	select {
	case b.started <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
