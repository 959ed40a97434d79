package cartsync

import "sync"

// Counter はカートの総点数を持つ購読可能なストア。
// グローバル変数ではなく、注入して使う。
type Counter struct {
	mu    sync.Mutex
	count int64
	next  int
	subs  map[int]func(int64)
}

func NewCounter() *Counter {
	return &Counter{subs: map[int]func(int64){}}
}

func (c *Counter) Get() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Set は値を更新し、全購読者に通知する。
func (c *Counter) Set(n int64) {
	c.mu.Lock()
	c.count = n
	fns := make([]func(int64), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	// コールバックはロック外で呼ぶ
	for _, fn := range fns {
		fn(n)
	}
}

// Subscribe は購読を登録し、解除関数を返す。
func (c *Counter) Subscribe(fn func(int64)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	c.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}
