package rod

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultRecycleAfter is the number of pages a browser renders before it is
// replaced. Chrome's memory baseline only grows with use.
const DefaultRecycleAfter = 75

// chromeFlags keep background tabs rendering at full speed in containers.
var chromeFlags = []flags.Flag{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// session is one launched browser process.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func launch() (*session, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for _, f := range chromeFlags {
		l = l.Set(f)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &session{browser: browser, launcher: l}, nil
}

func (s *session) close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// BrowserManager hands out a shared headless browser and replaces it after
// a fixed number of pages. A page in flight keeps the browser it started
// on until released, so replacement waits for in-flight pages.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu           sync.RWMutex // read-held by every page in flight
	current      *session     // nil after Close
	rendered     atomic.Int64 // pages released on current
	recycleAfter int64
	closed       atomic.Bool
}

// NewBrowserManager launches a browser that is replaced every recycleAfter
// pages, or DefaultRecycleAfter if recycleAfter is not positive. Close must
// be called when the manager is no longer needed.
func NewBrowserManager(recycleAfter int64) (*BrowserManager, error) {
	if recycleAfter <= 0 {
		recycleAfter = DefaultRecycleAfter
	}
	s, err := launch()
	if err != nil {
		return nil, err
	}
	return &BrowserManager{current: s, recycleAfter: recycleAfter}, nil
}

// Acquire returns the browser for the next page and a release func that
// must be called when the page is done. Release is idempotent. After Close
// the returned browser is nil.
func (bm *BrowserManager) Acquire() (*rod.Browser, func()) {
	if bm.rendered.Load() >= bm.recycleAfter && !bm.closed.Load() {
		bm.mu.Lock()
		if bm.rendered.Load() >= bm.recycleAfter && bm.current != nil {
			bm.recycle()
		}
		bm.mu.Unlock()
	}

	bm.mu.RLock()
	var browser *rod.Browser
	if bm.current != nil {
		browser = bm.current.browser
	}
	var once sync.Once
	return browser, func() {
		once.Do(func() {
			bm.rendered.Add(1)
			bm.mu.RUnlock()
		})
	}
}

// recycle swaps in a fresh browser. The old one is kept if the launch
// fails. Must be called with mu held for writing.
func (bm *BrowserManager) recycle() {
	next, err := launch()
	if err != nil {
		return
	}
	_ = bm.current.close()
	bm.current = next
	bm.rendered.Store(0)
}

// Close shuts the browser down. It is safe to call more than once.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil {
		return nil
	}
	err := bm.current.close()
	bm.current = nil
	return err
}

// Closed reports whether Close has been called.
func (bm *BrowserManager) Closed() bool {
	return bm.closed.Load()
}

// LauncherPID returns the process ID of the browser launcher, or 0 after
// Close.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	if bm.current == nil {
		return 0
	}
	return bm.current.launcher.PID()
}
