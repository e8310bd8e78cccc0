package transport

import (
	"context"
	"errors"

	"github.com/ignite/engage/internal/config"
)

// ErrNoTransport is returned when no sender is enabled in config.
var ErrNoTransport = errors.New("no email transport enabled")

// FromConfig picks the enabled sender. Priority when several are enabled:
// SparkPost, then SES, then SMTP, matching how deployments layer a
// provider API over a relay fallback.
func FromConfig(ctx context.Context, cfg *config.Config) (Func, error) {
	if cfg.SparkPost.Enabled {
		return NewSparkPostSender(cfg.SparkPost).Send, nil
	}
	if cfg.SES.Enabled {
		sender, err := NewSESSender(ctx, cfg.SES)
		if err != nil {
			return nil, err
		}
		return sender.Send, nil
	}
	if cfg.SMTP.Enabled {
		return NewSMTPSender(cfg.SMTP).Send, nil
	}
	return nil, ErrNoTransport
}
