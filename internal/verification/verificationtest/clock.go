// Package verificationtest provides clocks, code generators and a conformance suite
// for verification.Store implementations.
package verificationtest

import (
	"strconv"
	"sync"
	"time"

	"github.com/moodgarden/verify-api/internal/verification"
)

// Epoch is a second-aligned start time so backends that store unix seconds round-trip exactly.
var Epoch = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// Clock is a manually advanced clock safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock { return &Clock{now: start} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Sequence returns a generator that yields codes in order and falls back to
// verification.NewCode once they run out.
func Sequence(codes ...string) verification.CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		if i < len(codes) {
			i++
			return codes[i-1]
		}
		return verification.NewCode()
	}
}

// Counter returns a generator that yields start, start+1, ... so every issued code is unique.
func Counter(start int) verification.CodeGenerator {
	var mu sync.Mutex
	next := start
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		c := strconv.Itoa(next)
		next++
		return c
	}
}
