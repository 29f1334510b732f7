// Package main provides a performance benchmarking tool for the Flowcast CLI.
// It generates ticket tables of increasing size, then measures series derivation
// and forecast times for each model, running each test multiple times, treating
// the first successful run as cold and averaging the rest as warm, and writes
// CSV output for performance analysis and documentation.
//
// Prerequisites:
// - flowcast binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where generated ticket tables are written
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Datasets    map[string]int
	Order       []string
	Models      []string
}

// benchmarkCommand is one flowcast invocation measured against every dataset.
type benchmarkCommand struct {
	Name string
	Args []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     10 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Datasets:    map[string]int{"small": 500, "medium": 2000, "large": 8000},
		Order:       []string{"small", "medium", "large"},
		Models:      []string{"ridge", "forest", "boost"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using flowcast cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("flowcast", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	datasets, err := generateDatasets(config)
	if err != nil {
		fmt.Printf("Failed to generate datasets: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, datasets)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the flowcast binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("flowcast"); err != nil {
		return fmt.Errorf("flowcast binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateDatasets writes one ticket table per dataset and returns their paths
func generateDatasets(config BenchmarkConfig) (map[string]string, error) {
	paths := make(map[string]string, len(config.Datasets))
	for _, name := range config.Order {
		path := filepath.Join(config.WorkDir, "tickets_"+name+".csv")
		cmd := exec.Command("flowcast", "generate",
			"--tickets", strconv.Itoa(config.Datasets[name]),
			"--output", "csv", "--output-file", path)
		if output, err := cmd.CombinedOutput(); err != nil {
			return nil, fmt.Errorf("generate %s: %w\nOutput: %s", name, err, string(output))
		}
		fmt.Printf("Generated %s dataset (%d tickets) at %s\n", name, config.Datasets[name], path)
		paths[name] = path
	}
	return paths, nil
}

// commands returns every command measured per dataset
func commands(config BenchmarkConfig) []benchmarkCommand {
	cmds := []benchmarkCommand{{Name: "series", Args: []string{"series"}}}
	for _, model := range config.Models {
		cmds = append(cmds, benchmarkCommand{
			Name: "forecast-" + model,
			Args: []string{"forecast", "--model", model, "--strategy", "random", "--n-iter", "5"},
		})
	}
	return cmds
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig, datasets map[string]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Order), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.Order {
		fmt.Printf("Benchmarking %s\n", name)
		for _, c := range commands(config) {
			results = append(results, runBenchmarkSuite(config, name, datasets[name], c))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, path string, c benchmarkCommand) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", c.Name, dataset)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, c, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     c.Name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a flowcast command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path string, c benchmarkCommand, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, c.Args[0], path)
	args = append(args, c.Args[1:]...)
	args = append(args, "--cache-backend", cacheBackend, "--workers", strconv.Itoa(config.Workers))

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "flowcast", args...).CombinedOutput()
		if err == nil && isSuccess(output, c.Args[0]) {
			times = append(times, time.Since(start).Seconds())
		}
		cancel()
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "series" {
		return strings.Contains(outputStr, "Derived") && strings.Contains(outputStr, "Cache backend")
	}
	return strings.Contains(outputStr, "validated") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/flowcast_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, c := range commands(config) {
		fmt.Printf("%s:\n", c.Name)
		for _, result := range results {
			if result.Command == c.Name {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
