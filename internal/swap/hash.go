package swap

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without colliding with old digests.
const (
	DomainCycle    = "ringswap/cycle/v1"
	DomainDecision = "ringswap/decision/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CycleDigest computes the content-addressed digest of a rotation-normalized
// cycle. Two enumerations of the same ring produce the same digest because
// the member list is already canonicalized before hashing.
func CycleDigest(members []string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"members": members,
	})
	if err != nil {
		return "", fmt.Errorf("CycleDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCycle, canonical), nil
}

// DecisionDigest computes the content-addressed digest of a canary decision
// record snapshot. Used by the store for idempotent decision writes.
func DecisionDigest(snapshot map[string]any) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("DecisionDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDecision, canonical), nil
}
