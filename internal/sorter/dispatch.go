package sorter

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type workFunc func(ctx context.Context, path string)

// dispatcher feeds candidate paths to work. Implementations stop handing out
// new paths once ctx is done and return only after in-flight work finishes.
type dispatcher interface {
	dispatch(ctx context.Context, paths []string, work workFunc)
}

type directDispatcher struct{}

func (directDispatcher) dispatch(ctx context.Context, paths []string, work workFunc) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		work(ctx, path)
	}
}

type poolDispatcher struct {
	workers int
}

func (p poolDispatcher) dispatch(ctx context.Context, paths []string, work workFunc) {
	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		// Go blocks while the pool is full, so cancellation is rechecked
		// between admissions.
		g.Go(func() error {
			work(ctx, path)
			return nil
		})
	}
	_ = g.Wait()
}

func dispatcherFor(mode Mode, workers int) dispatcher {
	if mode == ModeSequential || workers <= 1 {
		return directDispatcher{}
	}
	return poolDispatcher{workers: workers}
}
