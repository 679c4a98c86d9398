// File: internal/worker/worker.go
package worker

import (
	"context"
	"fmt"
	"sync"

	"polly-relay/internal/logging"
)

// Task 背景工作，例如寫入語音快取或寄送通知信
type Task func(ctx context.Context)

// Pool 固定數量 goroutine 的工作池
type Pool interface {
	// Submit 排入工作；Stop 之後呼叫會被忽略並回傳 false
	Submit(name string, t Task) bool
	Stop()
}

// NewPool creates a pool with n workers. n<=0 defaults to 1.
func NewPool(n int, log logging.Logger) Pool {
	if n <= 0 {
		n = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &pool{
		jobs:   make(chan job, n),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.loop()
	}
	return p
}

type job struct {
	name string
	task Task
}

type pool struct {
	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	log    logging.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func (p *pool) loop() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

func (p *pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(p.ctx, "background task panicked", "task", j.name, "panic", fmt.Sprint(r))
		}
	}()
	if j.task != nil {
		j.task(p.ctx)
	}
}

func (p *pool) Submit(name string, t Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.log.Warn(context.Background(), "worker pool stopped, task dropped", "task", name)
		return false
	}
	p.jobs <- job{name: name, task: t}
	return true
}

// Stop 等待已排入的工作完成後才返回
func (p *pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

// FakePool 測試替身，Submit 時同步執行並記錄工作名稱
type FakePool struct {
	mu    sync.Mutex
	Names []string
}

func (f *FakePool) Submit(name string, t Task) bool {
	f.mu.Lock()
	f.Names = append(f.Names, name)
	f.mu.Unlock()
	if t != nil {
		t(context.Background())
	}
	return true
}

func (f *FakePool) Stop() {}
