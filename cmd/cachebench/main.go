// Command cachebench drives a synthetic Zipf-distributed workload
// against the cache and reports throughput, hit rate and the final
// counters. Optional HTTP endpoints expose Prometheus metrics and pprof
// profiles while the run is in flight.
//
// Example:
//
//	cachebench --capacity 100000 --workers 8 --duration 30s --read-pct 90
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/akgit4713/lrucache/cache"
	"github.com/akgit4713/lrucache/internal/util"
	"github.com/akgit4713/lrucache/metrics/prom"
	"github.com/akgit4713/lrucache/policy"
	"github.com/akgit4713/lrucache/policy/fifo"
	"github.com/akgit4713/lrucache/policy/lru"
	"github.com/akgit4713/lrucache/policy/twoq"
)

var (
	capacity     int
	shardCount   int
	strategyName string
	policyName   string
	workers      int
	runFor       time.Duration
	readPct      int
	keySpace     int
	zipfS        float64
	zipfV        float64
	seed         int64
	defaultTTL   time.Duration
	sweepEvery   time.Duration
	opsPerSec    float64
	metricsAddr  string
	pprofAddr    string
)

func main() {
	app := &cli.App{
		Name:  "cachebench",
		Usage: "synthetic load driver for the cache library",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "capacity",
				Value:       100_000,
				Usage:       "cache capacity in entries",
				Destination: &capacity,
			},
			&cli.IntFlag{
				Name:        "shards",
				Value:       1,
				Usage:       "shard count; 1 runs a single store, 0 picks a count from GOMAXPROCS",
				Destination: &shardCount,
			},
			&cli.StringFlag{
				Name:        "strategy",
				Value:       "locked",
				Usage:       "store synchronization: locked or concurrent",
				Destination: &strategyName,
			},
			&cli.StringFlag{
				Name:        "policy",
				Value:       "lru",
				Usage:       "eviction policy: lru, fifo or 2q",
				Destination: &policyName,
			},
			&cli.IntFlag{
				Name:        "workers",
				Value:       8,
				Usage:       "concurrent worker goroutines",
				Destination: &workers,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Value:       10 * time.Second,
				Usage:       "how long to run the workload",
				Destination: &runFor,
			},
			&cli.IntFlag{
				Name:        "read-pct",
				Value:       90,
				Usage:       "percentage of operations that are reads",
				Destination: &readPct,
			},
			&cli.IntFlag{
				Name:        "keys",
				Value:       1_000_000,
				Usage:       "size of the key space",
				Destination: &keySpace,
			},
			&cli.Float64Flag{
				Name:        "zipf-s",
				Value:       1.1,
				Usage:       "Zipf skew parameter, must be > 1",
				Destination: &zipfS,
			},
			&cli.Float64Flag{
				Name:        "zipf-v",
				Value:       1,
				Usage:       "Zipf value parameter, must be >= 1",
				Destination: &zipfV,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Value:       1,
				Usage:       "base RNG seed; worker i uses seed+i",
				Destination: &seed,
			},
			&cli.DurationFlag{
				Name:        "ttl",
				Usage:       "default TTL applied to every write; 0 disables expiry",
				Destination: &defaultTTL,
			},
			&cli.DurationFlag{
				Name:        "sweep",
				Usage:       "background sweep interval; 0 inherits --ttl",
				Destination: &sweepEvery,
			},
			&cli.Float64Flag{
				Name:        "rate",
				Usage:       "total operations per second across workers; 0 runs unthrottled",
				Destination: &opsPerSec,
			},
			&cli.StringFlag{
				Name:        "metrics-addr",
				Usage:       "serve Prometheus metrics on this address, e.g. :9100",
				Destination: &metricsAddr,
			},
			&cli.StringFlag{
				Name:        "pprof-addr",
				Usage:       "serve pprof on this address, e.g. :6060",
				Destination: &pprofAddr,
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(_ *cli.Context) error {
	if readPct < 0 || readPct > 100 {
		return fmt.Errorf("cachebench: --read-pct %d out of range [0,100]", readPct)
	}
	if keySpace < 1 {
		return errors.New("cachebench: --keys must be positive")
	}
	if workers < 1 {
		return errors.New("cachebench: --workers must be positive")
	}
	if zipfS <= 1 || zipfV < 1 {
		return errors.New("cachebench: --zipf-s must be > 1 and --zipf-v >= 1")
	}

	registry := prometheus.NewRegistry()
	c, err := buildCache(registry)
	if err != nil {
		return err
	}
	defer c.Close()

	serveMetrics(registry)
	servePprof()

	// Warm the cache so reads do not start from an empty map.
	for i := 0; i < capacity && i < keySpace; i++ {
		c.Set(i, i)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runFor)
	defer cancel()

	var limiter *rate.Limiter
	if opsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opsPerSec), workers)
	}

	var totalOps atomic.Uint64
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		workerSeed := seed + int64(i)
		g.Go(func() error {
			return worker(ctx, c, workerSeed, limiter, &totalOps)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	report(time.Since(start), totalOps.Load(), c)
	return nil
}

func buildCache(reg *prometheus.Registry) (cache.Cache[int, int], error) {
	var strat cache.Strategy
	switch strategyName {
	case "locked":
		strat = cache.StrategyLocked
	case "concurrent":
		strat = cache.StrategyConcurrent
	default:
		return nil, fmt.Errorf("cachebench: unknown strategy %q", strategyName)
	}

	pol, err := buildPolicy()
	if err != nil {
		return nil, err
	}

	opt := cache.Options[int, int]{
		Capacity:      capacity,
		Strategy:      strat,
		Policy:        pol,
		DefaultTTL:    defaultTTL,
		SweepInterval: sweepEvery,
	}
	if metricsAddr != "" {
		opt.Metrics = prom.New(reg, "cachebench", "cache", nil)
	}

	if shardCount == 1 {
		return cache.New(opt)
	}
	return cache.NewSharded(shardCount, opt)
}

func buildPolicy() (policy.Policy[int, int], error) {
	switch policyName {
	case "lru":
		return lru.New[int, int](), nil
	case "fifo":
		return fifo.New[int, int](), nil
	case "2q":
		per := perShardCapacity()
		return twoq.New[int, int](per/4+1, per/2+1), nil
	default:
		return nil, fmt.Errorf("cachebench: unknown policy %q", policyName)
	}
}

// perShardCapacity mirrors the shard splitting the cache itself will do,
// so 2Q queue bounds line up with per-shard capacity.
func perShardCapacity() int {
	if shardCount == 1 {
		return capacity
	}
	m := shardCount
	if m <= 0 {
		m = util.DefaultShardCount()
	}
	n := int(util.NextPowerOfTwo(uint64(m)))
	if n > util.MaxShards {
		n = util.MaxShards
	}
	return (capacity + n - 1) / n
}

func serveMetrics(reg *prometheus.Registry) {
	if metricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("cachebench: metrics server: %v", err)
		}
	}()
	log.Printf("cachebench: serving metrics on %s/metrics", metricsAddr)
}

func servePprof() {
	if pprofAddr == "" {
		return
	}
	go func() {
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			log.Printf("cachebench: pprof server: %v", err)
		}
	}()
	log.Printf("cachebench: serving pprof on %s/debug/pprof/", pprofAddr)
}

func worker(ctx context.Context, c cache.Cache[int, int], workerSeed int64, limiter *rate.Limiter, totalOps *atomic.Uint64) error {
	rng := rand.New(rand.NewSource(workerSeed))
	zipf := rand.NewZipf(rng, zipfS, zipfV, uint64(keySpace-1))

	var ops uint64
	defer func() { totalOps.Add(ops) }()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		k := int(zipf.Uint64())
		if rng.Intn(100) < readPct {
			c.Get(k)
		} else {
			c.Set(k, k)
		}
		ops++
	}
}

func report(elapsed time.Duration, ops uint64, c cache.Cache[int, int]) {
	st := c.Stats()
	lookups := st.Hits + st.Misses
	hitRate := 0.0
	if lookups > 0 {
		hitRate = float64(st.Hits) / float64(lookups) * 100
	}

	fmt.Printf("elapsed            %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("operations         %d (%.0f ops/sec)\n", ops, float64(ops)/elapsed.Seconds())
	fmt.Printf("hits / misses      %d / %d (%.1f%% hit rate)\n", st.Hits, st.Misses, hitRate)
	fmt.Printf("evictions          %d\n", st.Evictions)
	fmt.Printf("expirations        %d\n", st.Expirations)
	fmt.Printf("resident entries   %d of %d\n", c.Len(), c.Capacity())
}
