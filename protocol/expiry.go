package protocol

import "time"

// Hall calls go stale quickly; nobody waits minutes for a lift.
var defaultTTLs = map[string]time.Duration{
	TypeLiftRequest: 30 * time.Second,

	TypeLiftDispatched: 2 * time.Minute,
	TypeLiftRejected:   2 * time.Minute,

	TypeLiftArrived: 5 * time.Minute,
	TypeLiftParked:  5 * time.Minute,
}

// FallbackTTL is used when no specific TTL is configured.
const FallbackTTL = 2 * time.Minute

func DefaultTTLFor(msgType string) time.Duration {
	if ttl, ok := defaultTTLs[msgType]; ok {
		return ttl
	}
	return FallbackTTL
}

// IsExpired returns true if the envelope has passed its expiry time.
func IsExpired(env *Envelope) bool {
	return expired(env.ExpiresAt)
}

// IsExpiredHeader checks expiry using only the raw header.
func IsExpiredHeader(hdr *RawHeader) bool {
	return expired(hdr.ExpiresAt)
}

func expired(exp time.Time) bool {
	if exp.IsZero() {
		return false
	}
	return time.Now().UTC().After(exp)
}
