package swap

import (
	"fmt"
	"strconv"
	"strings"
)

// Run ids carry a monotonic sequence number as a zero-padded numeric suffix
// ("run-000042"). The audit log and shadow diff history order and evict
// records by this sequence, so parsing must be tolerant of foreign ids.

const runIDPrefix = "run-"

// FormatRunID renders a run sequence number as a run id.
func FormatRunID(seq int64) string {
	return fmt.Sprintf("%s%06d", runIDPrefix, seq)
}

// RunIDSequence parses the numeric suffix of a run id.
// Returns ok=false for ids that do not carry a parseable sequence;
// callers sort those last.
func RunIDSequence(runID string) (int64, bool) {
	rest, found := strings.CutPrefix(runID, runIDPrefix)
	if !found {
		return 0, false
	}
	seq, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
