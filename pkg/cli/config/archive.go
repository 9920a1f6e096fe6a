package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/service/archive"
	"github.com/urfave/cli/v3"
)

// Archive configures Cloud Storage archiving of raw webhook bodies
type Archive struct {
	bucket string
	prefix string
}

func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for raw SignalHire callbacks",
			Category:    "Archive",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("COFFEECHAT_ARCHIVE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix for archived callbacks",
			Category:    "Archive",
			Value:       "signalhire",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("COFFEECHAT_ARCHIVE_PREFIX"),
		},
	}
}

func (x Archive) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure returns nil when no bucket is set. The caller closes the archive.
func (x *Archive) Configure(ctx context.Context) (*archive.GCS, error) {
	if x.bucket == "" {
		return nil, nil
	}
	a, err := archive.NewGCS(ctx, x.bucket, archive.WithPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure callback archive", goerr.V("bucket", x.bucket))
	}
	return a, nil
}
