package emergency

import (
	"context"
	"time"

	"github.com/suraksha/crowd-safety/pkg/httpclient"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"go.uber.org/zap"
)

// GatewayNotifier posts broadcast payloads to an external notification
// gateway with retries.
type GatewayNotifier struct {
	client *httpclient.Client
}

// NewGatewayNotifier builds a notifier for the given gateway base URL.
// Returns nil when the URL is empty so callers can skip delivery.
func NewGatewayNotifier(gatewayURL string, timeout time.Duration) *GatewayNotifier {
	if gatewayURL == "" {
		return nil
	}
	return &GatewayNotifier{
		client: httpclient.NewClient(gatewayURL, timeout, httpclient.WithDefaultRetry()),
	}
}

// Send delivers one broadcast to the gateway. The alert ID doubles as the
// idempotency key so retried deliveries do not fan out twice.
func (n *GatewayNotifier) Send(ctx context.Context, broadcast *BroadcastResult) error {
	_, err := n.client.PostWithIdempotency(ctx, "/v1/broadcasts", broadcast, nil, broadcast.AlertID.String())
	if err != nil {
		logger.WithContext(ctx).Warn("broadcast gateway delivery failed",
			zap.String("alert_id", broadcast.AlertID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
