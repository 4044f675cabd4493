// Package dashboard keeps the console's report views fresh: timer-driven pollers
// for the live panels and on-demand loads for analytics.
package dashboard

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Poller runs fn immediately and then on every tick until Stop.
// A tick that fires while the previous run is still going is skipped.
type Poller struct {
	name     string
	interval time.Duration
	fn       func(context.Context) error

	trigger chan struct{}
	stop    chan struct{}
	done    chan struct{}
	running int32
	started int32
	runs    sync.WaitGroup
	once    sync.Once
}

func NewPoller(name string, interval time.Duration, fn func(context.Context) error) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		trigger:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *Poller) Start(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.started, 0, 1) {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(p.done)
		defer cancel()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				p.runs.Wait()
				return
			case <-p.stop:
				cancel()
				p.runs.Wait()
				return
			case <-ticker.C:
				p.tick(ctx)
			case <-p.trigger:
				p.tick(ctx)
			}
		}
	}()
}

func (p *Poller) tick(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return
	}
	p.runs.Add(1)
	go func() {
		defer p.runs.Done()
		defer atomic.StoreInt32(&p.running, 0)
		if err := p.fn(ctx); err != nil && ctx.Err() == nil {
			log.Printf("⚠️  %s refresh failed: %v", p.name, err)
		}
	}()
}

// Trigger asks for an early refresh; it is dropped if one is already queued
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Stop ends the loop and waits for an in-flight run to return
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
	if atomic.LoadInt32(&p.started) == 1 {
		<-p.done
	}
}
