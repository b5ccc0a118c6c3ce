package canary

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"time"

	"github.com/roach88/ringswap/internal/swap"
)

// bucketModulus is the bucket space size; rollout percentages are expressed
// in basis points against it.
const bucketModulus = 10000

// noIdempotencyKey stands in for an absent key so that "no key" hashes
// differently from an empty-string field boundary shift.
const noIdempotencyKey = "none"

// Bucket deterministically assigns a run request to a rollout bucket in
// [0, 10000).
//
// The value is the first four bytes of
// SHA-256(salt | actorType | actorId | idempotencyKeyOrNone | timestamp),
// big-endian, mod 10000. Pure function of its inputs: repeated calls with
// identical inputs yield identical buckets, so idempotent retries land in
// the same bucket and tests can pin assignments.
func Bucket(salt string, actor swap.ActorRef, idempotencyKey string, timestamp time.Time) int64 {
	key := idempotencyKey
	if key == "" {
		key = noIdempotencyKey
	}

	payload := strings.Join([]string{
		salt,
		actor.Type,
		actor.ID,
		key,
		timestamp.UTC().Format(time.RFC3339),
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return int64(binary.BigEndian.Uint32(sum[0:4]) % bucketModulus)
}
