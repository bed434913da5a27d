package cache

import "fmt"

type Prefix string

const (
	// AuthTenant namespaces auth-cache entries keyed by API key.
	AuthTenant Prefix = "auth_tenant"
	// SettlementBuffer is the single Redis list used as the write-behind
	// settlement buffer (C8): workers LPush, the batch settler RPops.
	SettlementBuffer Prefix = "settlement_buffer"
	// SettlerLock namespaces the single-flight lock the batch settler
	// takes before draining the buffer.
	SettlerLock Prefix = "settler_lock"
)

func (p Prefix) Key(id string) string {
	return fmt.Sprintf("%s:%s", p, id)
}
