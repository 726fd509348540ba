package whatsapp

import (
	"context"
	"time"

	"go.mau.fi/whatsmeow/types"
)

const keepAliveInterval = 60 * time.Second

// StartKeepAlive sends an "available" presence every minute until ctx ends.
func (w *WhatsmeowProvider) StartKeepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", keepAliveInterval).Msg("🔄 Keep-alive started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("🛑 Keep-alive stopped")
			return
		case <-ticker.C:
			client := w.currentClient()
			if client == nil || !client.IsConnected() {
				continue
			}
			if err := client.SendPresence(ctx, types.PresenceAvailable); err != nil {
				w.logger.Warn().Err(err).Msg("⚠️ Keep-alive ping failed")
			} else {
				w.logger.Debug().Msg("💓 Keep-alive ping sent")
			}
		}
	}
}
