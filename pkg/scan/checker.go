package scan

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chazu/meshlint/pkg/lint"
	"github.com/chazu/meshlint/pkg/scene"
)

// DefaultCacheSize is the report cache size used when NewChecker is given a
// non-positive size.
const DefaultCacheSize = 256

// Evaluation is the outcome of one continuous re-evaluation.
type Evaluation struct {
	Report *lint.Report

	// Announcement describes what got worse since the previous evaluation of
	// the same object, e.g. "Found Tris: 2 faces". Empty when nothing grew.
	Announcement string

	// Cached is set when the report came from the cache.
	Cached bool
}

// Checker is the entry point for continuous mode. The host calls Reevaluate
// on every relevant edit; the Checker has no timer and does no debouncing.
// Reports are cached by mesh fingerprint, object metadata and configuration,
// so repeated calls on an unchanged object skip the analysis.
type Checker struct {
	orch  *Orchestrator
	cache *lru.Cache[string, *lint.Report]

	mu       sync.Mutex
	previous map[string]*lint.Report // last report per history key
}

// NewChecker creates a continuous checker holding up to size cached reports.
func NewChecker(analyzer *lint.Analyzer, size int, opts ...Option) (*Checker, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *lint.Report](size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &Checker{
		orch:     New(analyzer, opts...),
		cache:    cache,
		previous: make(map[string]*lint.Report),
	}, nil
}

// Reevaluate evaluates obj now, or returns the cached report when nothing
// that affects the analysis changed, and diffs it against the previous
// evaluation of the same object.
func (c *Checker) Reevaluate(obj *scene.Object) (Evaluation, error) {
	if obj == nil {
		return Evaluation{}, fmt.Errorf("reevaluate: nil object")
	}
	if !obj.IsMesh() {
		return Evaluation{}, fmt.Errorf("reevaluate %s: %w", obj, lint.ErrNoMesh)
	}

	key := c.cacheKey(obj)
	report, cached := c.cache.Get(key)
	if cached {
		c.orch.metrics.CacheHit()
	} else {
		c.orch.metrics.CacheMiss()
		var err error
		report, err = c.orch.Reevaluate(obj)
		if err != nil {
			return Evaluation{}, err
		}
		c.cache.Add(key, report)
	}

	hk := historyKey(obj)
	c.mu.Lock()
	prev := c.previous[hk]
	c.previous[hk] = report
	c.mu.Unlock()

	ev := Evaluation{
		Report:       report,
		Announcement: lint.Diff(prev, report),
		Cached:       cached,
	}
	if ev.Announcement != "" {
		c.orch.logger.Info(ev.Announcement, "object", obj.Name)
	}
	return ev, nil
}

// Forget drops the previous report of an object so the next evaluation
// announces everything it finds.
func (c *Checker) Forget(objectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.previous, objectID)
}

// historyKey is the object's ID, or its name for objects never added to a
// scene.
func historyKey(obj *scene.Object) string {
	if obj.ID == "" {
		return "name:" + obj.Name
	}
	return obj.ID
}

// Purge clears the report cache and the per-object history.
func (c *Checker) Purge() {
	c.cache.Purge()
	c.mu.Lock()
	c.previous = make(map[string]*lint.Report)
	c.mu.Unlock()
}

func (c *Checker) cacheKey(obj *scene.Object) string {
	return fmt.Sprintf("%s|%016x|%q|%g,%g,%g|%s",
		obj.ID, obj.Mesh.Fingerprint(), obj.Name,
		obj.Scale.X, obj.Scale.Y, obj.Scale.Z,
		c.orch.analyzer.Config().Key())
}
