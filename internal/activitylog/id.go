package activitylog

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	ulidEntropyMu sync.Mutex
)

// NewID builds "<table>-<action>-<unixMillis>-<ulid>". The ULID suffix keeps
// ids unique even for two writes in the same millisecond.
func NewID(table string, action Action, at time.Time) string {
	ulidEntropyMu.Lock()
	suffix := ulid.MustNew(ulid.Timestamp(at), ulidEntropy).String()
	ulidEntropyMu.Unlock()
	return fmt.Sprintf("%s-%s-%d-%s", table, action, at.UnixMilli(), suffix)
}
