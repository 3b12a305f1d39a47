package wire

import "sync"

// EncoderPool hands out reusable Encoders sized from the previous call on
// the same socket, matching the spec's rule that "outside the audio path
// buffers are allocated per call but sized hints from prior calls are
// carried forward." Audio-path callers should instead keep a single
// Encoder per goroutine and Reset it directly rather than going through
// the pool, to avoid a sync.Pool round trip on the hot path.
type EncoderPool struct {
	pool sync.Pool
	hint atomicInt
}

func NewEncoderPool() *EncoderPool {
	p := &EncoderPool{}
	p.pool.New = func() any {
		return NewEncoder(p.hint.load())
	}
	return p
}

// Get returns an Encoder reset for reuse.
func (p *EncoderPool) Get() *Encoder {
	e := p.pool.Get().(*Encoder)
	e.Reset()
	return e
}

// Put returns an Encoder to the pool and records its size as the next
// sizing hint.
func (p *EncoderPool) Put(e *Encoder) {
	p.hint.store(e.Len())
	p.pool.Put(e)
}

// atomicInt is a tiny fixed-width wrapper kept local to this package so
// the pool doesn't need to import sync/atomic's generic helpers twice.
type atomicInt struct {
	mu sync.Mutex
	v  int
}

func (a *atomicInt) load() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.v == 0 {
		return 256
	}
	return a.v
}

func (a *atomicInt) store(v int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.v = v
}
