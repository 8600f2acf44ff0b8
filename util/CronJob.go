package util

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper removes expired records and reports how many it removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StartExpirySweep runs s.Sweep every interval until ctx is cancelled.
// A non-positive interval disables the job; sweeping then only happens on listing.
func StartExpirySweep(ctx context.Context, s Sweeper, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("periodic otp sweep disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("periodic otp sweep scheduled")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("periodic otp sweep stopped")
				return
			case <-ticker.C:
				removed, err := s.Sweep(ctx)
				if err != nil {
					log.Error().Err(err).Msg("otp sweep failed")
					continue
				}
				if removed > 0 {
					log.Info().Int("removed", removed).Msg("otp sweep completed")
				}
			}
		}
	}()
}
