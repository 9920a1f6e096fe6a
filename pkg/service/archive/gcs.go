package archive

import (
	"context"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
)

// GCS stores raw webhook bodies in a Cloud Storage bucket
type GCS struct {
	bucket string
	prefix string
	client *storage.Client
}

var _ interfaces.CallbackArchive = (*GCS)(nil)

// Option configures GCS
type Option func(*GCS)

// WithPrefix sets the object key prefix. Default is "signalhire".
func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

// NewGCS creates a Cloud Storage archive for bucket
func NewGCS(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	g := &GCS{bucket: bucket, prefix: "signalhire", client: client}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ObjectKey returns the object name for a callback
func (x *GCS) ObjectKey(requestID string) string {
	return path.Join(x.prefix, requestID+".json")
}

// Put writes body as {prefix}/{requestID}.json
func (x *GCS) Put(ctx context.Context, requestID string, body []byte) error {
	key := x.ObjectKey(requestID)
	w := x.client.Bucket(x.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archive object", goerr.V("bucket", x.bucket), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to close archive object", goerr.V("bucket", x.bucket), goerr.V("key", key))
	}
	return nil
}

// Close releases the storage client
func (x *GCS) Close() error {
	return x.client.Close()
}
