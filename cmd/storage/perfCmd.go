package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/okv/cmd/util"
	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for okv servers",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__perf"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfOps              = 10000
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of operations per benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfOps = max(viper.GetInt("ops"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfResult holds the measurements of a single benchmark
type perfResult struct {
	name   string
	timer  metrics.Timer
	errors metrics.Counter
	total  time.Duration
}

// perfOp is a single benchmarked operation, i is the operation counter
type perfOp func(ctx context.Context, i int) error

func runPerf(cmd *cobra.Command, _ []string) error {
	title := color.New(color.FgMagenta, color.Bold).SprintFunc()
	fmt.Println(title("Performance testing tool for okv servers"))

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Operations: %d\n", perfOps)
	fmt.Println()

	// every run works on its own keys, concurrent runs don't interfere
	runID := uuid.New().String()
	fmt.Printf("Run ID: %s\n\n", runID)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	kind := offchain.StorageKindPersistent
	keys := perfKeys(runID)
	key := func(i int) []byte { return keys[i%len(keys)] }
	smallValue := []byte("test")
	largeValue := make([]byte, perfLargeValueSizeKB*1024)

	fill := func() {
		for _, k := range keys {
			if err := rpcOffchain.SetLocalStorage(ctx, kind, k, smallValue); err != nil {
				fmt.Printf("error preparing key: %v\n", err)
			}
		}
	}
	cleanup := func() {
		for _, k := range keys {
			if err := rpcOffchain.ClearLocalStorage(ctx, kind, k); err != nil {
				fmt.Printf("error clearing key: %v\n", err)
			}
		}
	}

	benchmarks := []struct {
		name    string
		prepare func()
		op      perfOp
	}{
		{"set", nil, func(ctx context.Context, i int) error {
			return rpcOffchain.SetLocalStorage(ctx, kind, key(i), smallValue)
		}},
		{"set-large", nil, func(ctx context.Context, i int) error {
			return rpcOffchain.SetLocalStorage(ctx, kind, key(i), largeValue)
		}},
		{"get", fill, func(ctx context.Context, i int) error {
			_, _, err := rpcOffchain.GetLocalStorage(ctx, kind, key(i))
			return err
		}},
		{"get-missing", cleanup, func(ctx context.Context, i int) error {
			_, _, err := rpcOffchain.GetLocalStorage(ctx, kind, key(i))
			return err
		}},
		{"clear", fill, func(ctx context.Context, i int) error {
			return rpcOffchain.ClearLocalStorage(ctx, kind, key(i))
		}},
		{"mixed", fill, func(ctx context.Context, i int) error {
			switch i % 3 {
			case 0:
				return rpcOffchain.SetLocalStorage(ctx, kind, key(i), smallValue)
			case 1:
				_, _, err := rpcOffchain.GetLocalStorage(ctx, kind, key(i))
				return err
			default:
				return rpcOffchain.ClearLocalStorage(ctx, kind, key(i))
			}
		}},
	}

	fmt.Println("starting tests...")

	var results []*perfResult
	for _, b := range benchmarks {
		if shouldSkip(b.name) {
			continue
		}
		if b.prepare != nil {
			b.prepare()
		}
		res := runBenchmark(ctx, b.name, perfNumThreads, perfOps, b.op)
		results = append(results, res)
		printResult(res)
	}
	cleanup()

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, runID, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runBenchmark executes op ops times spread over threads goroutines
func runBenchmark(ctx context.Context, name string, threads, ops int, op perfOp) *perfResult {
	res := &perfResult{
		name:   name,
		timer:  metrics.NewTimer(),
		errors: metrics.NewCounter(),
	}

	var (
		wg   sync.WaitGroup
		next = make(chan int, threads)
	)

	start := time.Now()
	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				opStart := time.Now()
				err := op(ctx, i)
				res.timer.UpdateSince(opStart)
				if err != nil {
					res.errors.Inc(1)
				}
			}
		}()
	}
	for i := 0; i < ops; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
	res.total = time.Since(start)

	return res
}

func printResult(res *perfResult) {
	name := color.New(color.FgCyan).SprintFunc()
	t := res.timer
	fmt.Printf("%-12s %8d ops %10.0f ops/sec  mean %-10s p99 %-10s max %-10s errors %d\n",
		name(res.name),
		t.Count(),
		opsPerSecond(t.Count(), res.total),
		time.Duration(t.Mean()),
		time.Duration(t.Percentile(0.99)),
		time.Duration(t.Max()),
		res.errors.Count(),
	)
}

func opsPerSecond(count int64, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / total.Seconds()
}

func writeResultsToCSV(path, runID string, results []*perfResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"run_id", "benchmark", "transport", "serializer", "threads",
		"ops", "errors", "ops_per_sec", "mean_ns", "p50_ns", "p99_ns", "max_ns",
	}); err != nil {
		return err
	}

	for _, res := range results {
		t := res.timer
		if err := w.Write([]string{
			runID,
			res.name,
			viper.GetString("transport"),
			viper.GetString("serializer"),
			strconv.Itoa(perfNumThreads),
			strconv.FormatInt(t.Count(), 10),
			strconv.FormatInt(res.errors.Count(), 10),
			strconv.FormatFloat(opsPerSecond(t.Count(), res.total), 'f', 2, 64),
			strconv.FormatFloat(t.Mean(), 'f', 0, 64),
			strconv.FormatFloat(t.Percentile(0.5), 'f', 0, 64),
			strconv.FormatFloat(t.Percentile(0.99), 'f', 0, 64),
			strconv.FormatInt(t.Max(), 10),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// perfKeys creates the test keys of a run
func perfKeys(runID string) [][]byte {
	keys := make([][]byte, perfKeySpread)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("%s/%s/%d", perfKeyPrefix, runID, i))
	}
	return keys
}
