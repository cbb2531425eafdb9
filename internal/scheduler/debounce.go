package scheduler

import (
	"sync"
	"time"
)

type debounced struct {
	timer *time.Timer
	fn    func()
}

// Debouncer adia a execução de uma função até que a mesma chave pare de ser acionada
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*debounced
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*debounced),
	}
}

// Trigger agenda fn para delay depois da última chamada com a mesma chave.
// A chamada anterior ainda pendente é descartada.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	entry := &debounced{fn: fn}
	entry.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending[key] != entry {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		fn()
	})
	d.pending[key] = entry
}

// Flush executa na hora tudo que ainda está pendente; usado no desligamento
func (d *Debouncer) Flush() {
	d.mu.Lock()
	run := make([]func(), 0, len(d.pending))
	for key, entry := range d.pending {
		if entry.timer.Stop() {
			run = append(run, entry.fn)
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range run {
		fn()
	}
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
