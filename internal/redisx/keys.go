package redisx

import (
	"fmt"
	"time"
)

const (
	// Session cart: cart:{session_id} -> JSON snapshot of the items
	KeyCart = "cart:%s"

	// Checkout in flight for a session: checkout:{session_id}
	KeyCheckout = "checkout:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart  = 24 * time.Hour
	TTLDedup = 48 * time.Hour
	// Upper bound on one checkout; the lock is released earlier on return.
	TTLCheckout = 30 * time.Second
)

func CartKey(session string) string { return fmt.Sprintf(KeyCart, session) }

func CheckoutKey(session string) string { return fmt.Sprintf(KeyCheckout, session) }

func DedupKey(service, id string) string { return fmt.Sprintf(KeyDedup, service, id) }
