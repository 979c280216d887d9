//go:build ignore

package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

var baseURL = "http://localhost:8080"

func main() {
	if url := os.Getenv("BASE_URL"); url != "" {
		baseURL = url
	}

	fmt.Println("Test 1: activity list (2000 requests, 200 concurrent)")
	runLoadTest("/api/git-activity", 2000, 200)

	fmt.Println("\nTest 2: statistics (2000 requests, 200 concurrent)")
	runLoadTest("/api/git-activity/stats", 2000, 200)

	fmt.Println("\nTest 3: health (5000 requests, 500 concurrent)")
	runLoadTest("/health", 5000, 500)
}

func runLoadTest(path string, totalReqs, concurrent int) {
	var (
		success   int64
		failures  int64
		durations []time.Duration
		mu        sync.Mutex
		wg        sync.WaitGroup
		sem       = make(chan struct{}, concurrent)
	)

	start := time.Now()

	for range totalReqs {
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			reqStart := time.Now()
			resp, err := http.Get(baseURL + path)
			reqDuration := time.Since(reqStart)

			mu.Lock()
			durations = append(durations, reqDuration)
			mu.Unlock()

			if err != nil || resp.StatusCode >= 400 {
				atomic.AddInt64(&failures, 1)
			} else {
				atomic.AddInt64(&success, 1)
			}

			if resp != nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}()
	}

	wg.Wait()
	totalTime := time.Since(start)

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	avg := sum / time.Duration(len(durations))

	fmt.Printf("Results:\n")
	fmt.Printf("  Total time: %v\n", totalTime)
	fmt.Printf("  Requests: %d\n", totalReqs)
	fmt.Printf("  Succeeded: %d\n", success)
	fmt.Printf("  Failed: %d\n", failures)
	fmt.Printf("  Mean latency: %v\n", avg)
	fmt.Printf("  Throughput: %.2f rps\n", float64(totalReqs)/totalTime.Seconds())
}
