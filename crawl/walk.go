package crawl

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/docsynth"
	"golang.org/x/sync/errgroup"
)

// walker runs the worker pool over a shared frontier.
//
// Workers pull entries through next, which blocks while the frontier is
// empty but other workers may still discover links. A worker is only
// dispatched while accepted plus in-flight pages stay below MaxPages; the
// atomic accepted counter is the final word, so a page completing after
// the cap is reached is discarded.
type walker struct {
	c        *Crawler
	cfg      Config
	scope    *scope
	frontier *Frontier
	progress ProgressFunc

	accepted atomic.Int64

	mu        sync.Mutex
	cond      *sync.Cond
	inflight  int
	done      bool
	pages     []walkedPage
	failed    int
	discarded int
	reused    int
	completed int
}

type walkedPage struct {
	seq  int
	page *docsynth.PageRecord
}

func newWalker(c *Crawler, cfg Config, scope *scope, frontier *Frontier, progress ProgressFunc) *walker {
	w := &walker{
		c:        c,
		cfg:      cfg,
		scope:    scope,
		frontier: frontier,
		progress: progress,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *walker) run(ctx context.Context) (*Result, error) {
	stop := context.AfterFunc(ctx, w.stop)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for range w.cfg.Concurrency {
		g.Go(func() error {
			w.work(gctx)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(w.pages, func(i, j int) bool { return w.pages[i].seq < w.pages[j].seq })
	res := &Result{
		Pages:     make([]*docsynth.PageRecord, len(w.pages)),
		Failed:    w.failed,
		Discarded: w.discarded,
		Reused:    w.reused,
	}
	for i, p := range w.pages {
		res.Pages[i] = p.page
	}
	return res, nil
}

// work is the loop of a single worker. Each worker owns its rate limiter.
func (w *walker) work(ctx context.Context) {
	limiter := NewWorkerLimiter(w.cfg.RateLimit)
	for {
		e, ok := w.next()
		if !ok {
			return
		}
		if err := limiter.Wait(ctx); err != nil {
			w.finish(e, nil, nil, false, err)
			return
		}
		page, links, reused, err := w.c.visit(ctx, w.cfg, e)
		w.finish(e, page, links, reused, err)
	}
}

// next returns the next entry to visit, or false when the walk is over.
func (w *walker) next() (Entry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		if w.done {
			return Entry{}, false
		}
		max := int64(w.cfg.MaxPages)
		accepted := w.accepted.Load()
		if accepted >= max {
			w.stopLocked()
			return Entry{}, false
		}
		if accepted+int64(w.inflight) < max {
			if e, ok := w.frontier.Pop(); ok {
				w.inflight++
				return e, true
			}
		}
		if w.inflight == 0 {
			w.stopLocked()
			return Entry{}, false
		}
		w.cond.Wait()
	}
}

// finish records the outcome of a visit and wakes waiting workers.
func (w *walker) finish(e Entry, page *docsynth.PageRecord, links []docsynth.DiscoveredLink, reused bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer w.cond.Broadcast()

	w.inflight--

	if !w.done {
		for _, link := range links {
			if w.scope.contains(link.URL) {
				w.frontier.Push(link.URL, e.Depth+1)
			}
		}
	}

	switch {
	case err != nil:
		w.failed++
		w.completed++
		w.c.logger().Warn("skipping page", "url", e.URL, "err", err)
		w.progress(ProgressEvent{Type: ProgressFailed, Completed: w.completed, Total: w.cfg.MaxPages, URL: e.URL, Error: err})
	case w.accepted.Add(1) > int64(w.cfg.MaxPages):
		w.discarded++
	default:
		w.pages = append(w.pages, walkedPage{seq: e.Seq, page: page})
		if reused {
			w.reused++
		}
		w.completed++
		w.progress(ProgressEvent{Type: ProgressCompleted, Completed: w.completed, Total: w.cfg.MaxPages, URL: e.URL})
	}
}

func (w *walker) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *walker) stopLocked() {
	w.done = true
	w.cond.Broadcast()
}
