package events

import (
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type workerPool struct {
	size   int
	logger *zap.Logger
	wg     sync.WaitGroup
}

func newWorkerPool(size int, logger *zap.Logger) *workerPool {
	if size < 1 {
		size = 1
	}
	return &workerPool{
		size:   size,
		logger: logger,
	}
}

// start runs size workers reading from msgs. Once done is closed each
// worker handles whatever is still buffered and exits.
func (w *workerPool) start(msgs <-chan *nats.Msg, done <-chan struct{}, handle func(*nats.Msg)) {
	for i := 0; i < w.size; i++ {
		w.wg.Add(1)
		go func(id int) {
			defer w.wg.Done()
			for {
				select {
				case msg := <-msgs:
					handle(msg)
				case <-done:
					w.drain(id, msgs, handle)
					return
				}
			}
		}(i)
	}
	w.logger.Info("Started workers", zap.Int("count", w.size))
}

func (w *workerPool) drain(id int, msgs <-chan *nats.Msg, handle func(*nats.Msg)) {
	drained := 0
	for {
		select {
		case msg := <-msgs:
			handle(msg)
			drained++
		default:
			if drained > 0 {
				w.logger.Debug("Worker drained buffered messages",
					zap.Int("worker", id),
					zap.Int("messages", drained))
			}
			return
		}
	}
}

// wait blocks until every worker exits.
func (w *workerPool) wait() {
	w.wg.Wait()
}
