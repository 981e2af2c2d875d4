// Package queue hands thumbnail jobs to the external worker. Enqueue is
// fire-and-forget: it never blocks the request that triggered it, and a
// dropped job is logged, not retried.
package queue

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/cabinetd/cabinet/internal/model"
)

// ErrQueueFull is returned when the dispatch buffer has no room left.
var ErrQueueFull = errors.New("queue: dispatch buffer full")

type Dispatcher interface {
	Enqueue(job model.ThumbnailJob) error
	Close()
}

// ChannelDispatcher delivers jobs over a buffered channel to a single
// consumer goroutine, which forwards each job to the handler func (the
// boundary to the external worker).
type ChannelDispatcher struct {
	jobs    chan model.ThumbnailJob
	wg      sync.WaitGroup
	closing sync.Once
}

func NewChannelDispatcher(size int, handle func(model.ThumbnailJob)) *ChannelDispatcher {
	if size <= 0 {
		size = 64
	}

	d := &ChannelDispatcher{
		jobs: make(chan model.ThumbnailJob, size),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for job := range d.jobs {
			handle(job)
		}
	}()

	return d
}

// Enqueue queues a job without blocking. A full buffer drops the job.
func (d *ChannelDispatcher) Enqueue(job model.ThumbnailJob) error {
	select {
	case d.jobs <- job:
		return nil
	default:
		slog.Warn("thumbnail job dropped, dispatch buffer full",
			"file_id", job.FileID,
			"user_id", job.UserID,
		)
		return ErrQueueFull
	}
}

// Close stops accepting jobs and waits for the consumer to drain.
func (d *ChannelDispatcher) Close() {
	d.closing.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}
