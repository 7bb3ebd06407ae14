package encouragement

import (
	"math/rand"
	"sync"
	"time"
)

// Picker chooses an index in [0, n) for flavor-text selection.
type Picker interface {
	Pick(n int) int
}

// UniformPicker picks uniformly at random. It is safe for concurrent use.
type UniformPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewUniformPicker returns a picker over src, or a time-seeded source when src is nil.
func NewUniformPicker(src rand.Source) *UniformPicker {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &UniformPicker{rnd: rand.New(src)}
}

func (p *UniformPicker) Pick(n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Intn(n)
}

// SeededPicker always returns SeededIndex(Seed, n), for reproducible selection.
type SeededPicker struct {
	Seed int64
}

func (p SeededPicker) Pick(n int) int {
	return SeededIndex(p.Seed, n)
}

// SeededIndex maps seed onto [0, n) as |seed| mod n.
func SeededIndex(seed int64, n int) int {
	if n <= 0 {
		return 0
	}
	idx := seed % int64(n)
	if idx < 0 {
		idx = -idx
	}
	return int(idx)
}
