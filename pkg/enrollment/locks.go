package enrollment

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyLocks serializes read-modify-write cycles on one (owner, label) within the process.
type keyLocks [lockStripes]sync.Mutex

func (l *keyLocks) lock(owner, label string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(owner))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(label))
	mu := &l[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
