package canary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ringswap/internal/swap"
)

func TestBucket_Deterministic(t *testing.T) {
	actor := swap.ActorRef{Type: "user", ID: "actor-1"}
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := Bucket("salt-a", actor, "idem-1", ts)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Bucket("salt-a", actor, "idem-1", ts))
	}
	assert.GreaterOrEqual(t, first, int64(0))
	assert.Less(t, first, int64(10000))
}

func TestBucket_InputSensitivity(t *testing.T) {
	actor := swap.ActorRef{Type: "user", ID: "actor-1"}
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := Bucket("salt-a", actor, "idem-1", ts)

	assert.NotEqual(t, base, Bucket("salt-b", actor, "idem-1", ts), "salt must shift buckets")
	assert.NotEqual(t, base, Bucket("salt-a", swap.ActorRef{Type: "user", ID: "actor-2"}, "idem-1", ts))
	assert.NotEqual(t, base, Bucket("salt-a", actor, "idem-2", ts))
	assert.NotEqual(t, base, Bucket("salt-a", actor, "idem-1", ts.Add(time.Second)))
}

func TestBucket_MissingIdempotencyKey(t *testing.T) {
	actor := swap.ActorRef{Type: "user", ID: "actor-1"}
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// An absent key hashes as the literal "none" placeholder, and two
	// requests without keys land in the same bucket.
	assert.Equal(t, Bucket("s", actor, "", ts), Bucket("s", actor, "", ts))
	assert.Equal(t, Bucket("s", actor, "none", ts), Bucket("s", actor, "", ts))
}

func TestBucket_TimezoneNormalized(t *testing.T) {
	actor := swap.ActorRef{Type: "user", ID: "actor-1"}
	utc := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	offset := utc.In(time.FixedZone("UTC+2", 2*3600))

	assert.Equal(t, Bucket("s", actor, "k", utc), Bucket("s", actor, "k", offset),
		"the same instant must bucket identically regardless of zone")
}
