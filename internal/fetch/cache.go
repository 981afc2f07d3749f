// Package fetch — кэш чтений над репозиториями: ключ = ресурс + запрос,
// одинаковые параллельные запросы схлопываются, устаревшее отдаётся и перечитывается в фоне.
package fetch

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/infra/metrics"
)

type Options struct {
	// StaleAfter — через сколько запись считается устаревшей.
	StaleAfter time.Duration
	// MaxRetries — сколько раз повторяем после первой неудачи.
	MaxRetries uint64
	Backoff    time.Duration
	Now        func() time.Time
}

func DefaultOptions() Options {
	return Options{StaleAfter: 30 * time.Second, MaxRetries: 3, Backoff: 500 * time.Millisecond}
}

type Loader[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	val        V
	fetchedAt  time.Time
	refreshing bool
}

type Cache[V any] struct {
	resource string
	opts     Options
	log      *slog.Logger

	group singleflight.Group
	bg    sync.WaitGroup

	mu      sync.Mutex
	entries map[string]*entry[V]
	// gen растёт на каждой мутации кэша: результаты запросов, начатых раньше, не сохраняются.
	gen uint64
}

func New[V any](resource string, opts Options, log *slog.Logger) *Cache[V] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache[V]{resource: resource, opts: opts, log: log, entries: map[string]*entry[V]{}}
}

func (c *Cache[V]) Resource() string { return c.resource }

// Get отдаёт закэшированное значение или загружает его. Устаревшее значение отдаётся сразу,
// перечитывание идёт в фоне.
func (c *Cache[V]) Get(ctx context.Context, key string, load Loader[V]) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		v := e.val
		result := "hit"
		if c.opts.Now().Sub(e.fetchedAt) >= c.opts.StaleAfter && !e.refreshing {
			e.refreshing = true
			result = "stale"
			c.bg.Add(1)
			go c.refresh(c.gen, key, e, load)
		}
		c.mu.Unlock()
		metrics.CacheLookups.WithLabelValues(c.resource, result).Inc()
		return v, nil
	}
	gen := c.gen
	c.mu.Unlock()

	metrics.CacheLookups.WithLabelValues(c.resource, "miss").Inc()
	return c.load(ctx, gen, key, load)
}

func (c *Cache[V]) load(ctx context.Context, gen uint64, key string, load Loader[V]) (V, error) {
	res, err, _ := c.group.Do(strconv.FormatUint(gen, 10)+"|"+key, func() (any, error) {
		v, err := c.withRetry(ctx, load)
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = &entry[V]{val: v, fetchedAt: c.opts.Now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// refresh перечитывает key в фоне. Флаг refreshing снимается с исходной записи
// при любом исходе: запись могла пережить мутацию и снова устареть.
func (c *Cache[V]) refresh(gen uint64, key string, e *entry[V], load Loader[V]) {
	defer c.bg.Done()
	_, err := c.load(context.Background(), gen, key, load)
	if err != nil {
		c.log.Warn("background refetch failed", "resource", c.resource, "key", key, "err", err)
	}
	c.mu.Lock()
	e.refreshing = false
	c.mu.Unlock()
}

// withRetry: not found и ошибки валидации сразу отдаём, остальное повторяем MaxRetries раз.
func (c *Cache[V]) withRetry(ctx context.Context, load Loader[V]) (V, error) {
	var out V
	b := retry.WithMaxRetries(c.opts.MaxRetries, retry.NewExponential(c.opts.Backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		v, err := load(ctx)
		if err != nil {
			if fault.Retryable(err) {
				metrics.FetchRetries.WithLabelValues(c.resource).Inc()
				return retry.RetryableError(err)
			}
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.val, true
}

// Set кладёт значение как свежее (например, ответ на успешное сохранение).
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries[key] = &entry[V]{val: v, fetchedAt: c.opts.Now()}
}

// Update переписывает все записи ресурса; keep=false выкидывает запись.
func (c *Cache[V]) Update(fn func(key string, v V) (V, bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for k, e := range c.entries {
		nv, keep := fn(k, e.val)
		if !keep {
			delete(c.entries, k)
			continue
		}
		e.val = nv
	}
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	delete(c.entries, key)
}

func (c *Cache[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	clear(c.entries)
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close дожидается фоновых перечитываний.
func (c *Cache[V]) Close() { c.bg.Wait() }
