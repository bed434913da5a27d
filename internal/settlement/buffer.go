package settlement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oggyb/sms-gateway/internal/cache"
	"github.com/oggyb/sms-gateway/internal/worker"
)

// drainBuffer pops up to max outcomes from the settlement buffer without
// blocking once the buffer is empty. It is the single-flight batch
// settler's only consumer of the buffer, so no other component need ever
// call RPop directly.
func drainBuffer(ctx context.Context, c cache.Cache, max int) ([]worker.Outcome, error) {
	outcomes := make([]worker.Outcome, 0, max)

	for i := 0; i < max; i++ {
		raw, err := c.RPop(ctx, string(cache.SettlementBuffer))
		if err != nil {
			return outcomes, err
		}
		if raw == "" {
			break
		}

		var o worker.Outcome
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			continue
		}
		outcomes = append(outcomes, o)
	}

	return outcomes, nil
}

// lockTTLFloor is the minimum TTL accepted for the settler's cross-process
// lock, so a misconfigured zero/negative value can't make the lock expire
// before the tick it guards even starts.
const lockTTLFloor = time.Second
