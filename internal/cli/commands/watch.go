package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chazu/meshlint/internal/app"
	"github.com/chazu/meshlint/internal/cli/output"
	"github.com/chazu/meshlint/pkg/metrics"
	"github.com/chazu/meshlint/pkg/scan"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Path string
}

// WatchEvent is one line of watch output.
type WatchEvent struct {
	Object       string `json:"object,omitempty"`
	Announcement string `json:"announcement,omitempty"`
	Error        string `json:"error,omitempty"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch <scene>",
		Short: "Re-check a scene every time it changes",
		Long: `Watch a scene file and re-evaluate its objects on every change.

Bursts of file events are coalesced with --debounce. After each change only
what got worse is announced, e.g. "Pyramid: Found Tris: 4 faces". Unchanged
objects are served from a report cache.

With --metrics-addr a Prometheus /metrics endpoint is served while watching.`,
		Example: `  meshlint watch scene.lisp
  meshlint watch --debounce 500 --metrics-addr :9100 scene.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().Int("debounce", 0, "Milliseconds to wait for file events to settle (default 250)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	var m *metrics.Metrics
	if cfg.Watch.MetricsAddr != "" {
		m = metrics.New(nil)
	}

	cc, err := NewCommandContext(cmd, m)
	if err != nil {
		return err
	}
	w, err := newSceneWatcher(cc, opts.Path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if m != nil {
		srv := serveMetrics(cfg.Watch.MetricsAddr, m, cc.Logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cc.Renderer.Mode() == output.ModeTable {
		cc.Renderer.Header(1, "Watching "+w.path)
	}
	return w.run(ctx, cfg.Watch.Debounce())
}

func serveMetrics(addr string, m *metrics.Metrics, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}

// sceneWatcher re-evaluates a scene file through a continuous checker.
type sceneWatcher struct {
	app     *app.App
	checker *scan.Checker
	r       *output.Renderer
	logger  *log.Logger
	path    string

	mu     sync.Mutex
	seen   map[string]bool // object IDs present after the last reload
	closed bool
}

func newSceneWatcher(cc *CommandContext, path string) (*sceneWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	checker, err := cc.App.NewChecker(0)
	if err != nil {
		return nil, err
	}
	return &sceneWatcher{
		app:     cc.App,
		checker: checker,
		r:       cc.Renderer,
		logger:  cc.Logger,
		path:    abs,
		seen:    make(map[string]bool),
	}, nil
}

// run evaluates the scene once, then again after every settled change,
// until ctx is done.
func (w *sceneWatcher) run(ctx context.Context, settle time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	defer w.close()

	w.reevaluate()

	debounced := debounce.New(settle)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("scene changed", "op", event.Op.String())
			debounced(func() { w.reevaluate() })
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *sceneWatcher) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// reevaluate reloads the scene and re-checks every mesh object, rendering
// and returning what got worse.
func (w *sceneWatcher) reevaluate() []WatchEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}

	events := w.collect()
	for _, ev := range events {
		w.render(ev)
	}
	return events
}

func (w *sceneWatcher) collect() []WatchEvent {
	sc, errs, err := w.app.LoadScene(w.path)
	if err != nil {
		return []WatchEvent{{Error: err.Error()}}
	}
	if len(errs) > 0 {
		events := make([]WatchEvent, 0, len(errs))
		for _, e := range errs {
			events = append(events, WatchEvent{Error: formatError(e)})
		}
		return events
	}

	var events []WatchEvent
	present := make(map[string]bool, sc.Len())
	for _, obj := range sc.ScanOrder() {
		if !obj.IsMesh() {
			continue
		}
		present[obj.ID] = true
		ev, err := w.checker.Reevaluate(obj)
		if err != nil {
			events = append(events, WatchEvent{Object: obj.Name, Error: err.Error()})
			continue
		}
		if ev.Announcement != "" {
			events = append(events, WatchEvent{Object: obj.Name, Announcement: ev.Announcement})
		}
	}
	for id := range w.seen {
		if !present[id] {
			w.checker.Forget(id)
		}
	}
	w.seen = present
	return events
}

func (w *sceneWatcher) render(ev WatchEvent) {
	if w.r.Mode() == output.ModeJSON {
		if err := w.r.JSON(ev); err != nil {
			w.logger.Warn("render event", "err", err)
		}
		return
	}
	switch {
	case ev.Error != "" && ev.Object != "":
		w.r.Error(fmt.Sprintf("%s: %s", ev.Object, ev.Error))
	case ev.Error != "":
		w.r.Error(ev.Error)
	default:
		w.r.Warning(fmt.Sprintf("%s: %s", ev.Object, ev.Announcement))
	}
}
