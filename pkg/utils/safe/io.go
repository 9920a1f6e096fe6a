package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// maxDrain bounds how much of an unread response body is discarded before close,
// so the connection can go back to the pool without reading huge bodies.
const maxDrain = 64 << 10

// Close closes an io.Closer and logs any error. Nil closers are ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// CloseBody drains a bounded remainder of an HTTP body and closes it.
func CloseBody(ctx context.Context, body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, body, maxDrain)
	Close(ctx, body)
}

// Write writes data to an io.Writer and logs any error. Nil writers are ignored.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}
