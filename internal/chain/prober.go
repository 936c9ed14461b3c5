package chain

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RunBalanceProber polls GetWalletBalance on interval until ctx is
// canceled, logging at WARN whenever the balance drops below
// minBalance and at INFO when it recovers above it.
func (d *Dispatcher) RunBalanceProber(ctx context.Context, interval time.Duration, minBalance int64) {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	wasLow := false
	for {
		select {
		case <-ticker.C:
			balance, err := d.GetWalletBalance(ctx)
			if err != nil {
				d.log.WithError(err).Warn("wallet balance probe failed")
				continue
			}
			low := balance < minBalance
			if low && !wasLow {
				d.log.WithField("balance", balance).Warn("faucet wallet balance below configured minimum")
			} else if !low && wasLow {
				d.log.WithField("balance", balance).Info("faucet wallet balance recovered above configured minimum")
			} else {
				d.log.WithField("balance", balance).Debug("wallet balance probe")
			}
			wasLow = low
		case <-ctx.Done():
			return
		}
	}
}
