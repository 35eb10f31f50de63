package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type classifyPayload struct {
	Disease string         `json:"disease"`
	Country string         `json:"country,omitempty"`
	Case    map[string]any `json:"case"`
	Tests   []any          `json:"tests,omitempty"`
}

type sample struct {
	latency time.Duration
	status  int
	err     error
}

type options struct {
	url      string
	rps      int
	duration time.Duration
	workers  int
	timeout  time.Duration
	p90      time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.url, "url", "http://localhost:8080/classify", "classify endpoint URL")
	flag.IntVar(&opts.rps, "rps", 50, "target requests per second")
	flag.DurationVar(&opts.duration, "duration", 60*time.Second, "test duration")
	flag.IntVar(&opts.workers, "workers", 50, "number of concurrent workers")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.DurationVar(&opts.p90, "p90", 30*time.Millisecond, "maximum accepted P90 latency")
	flag.Parse()

	if opts.rps <= 0 || opts.duration <= 0 || opts.workers <= 0 {
		fmt.Fprintln(os.Stderr, "rps, duration and workers must be > 0")
		os.Exit(2)
	}

	body, err := json.Marshal(classifyPayload{
		Disease: "MEASLES",
		Country: "DE",
		Case: map[string]any{
			"report_date": time.Now().UTC().Format(time.RFC3339),
			"symptoms": map[string]string{
				"fever":             "YES",
				"maculopapularRash": "YES",
				"cough":             "YES",
			},
		},
		Tests: []any{map[string]any{"test_type": "IGM_SERUM_ANTIBODY", "result": "POSITIVE"}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal payload: %v\n", err)
		os.Exit(1)
	}

	samples := run(opts, body)
	if len(samples) == 0 {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}
	if !report(opts, samples) {
		os.Exit(1)
	}
}

// run fires requests at the target rate until the duration elapses.
func run(opts options, body []byte) []sample {
	client := &http.Client{Timeout: opts.timeout}
	jobs := make(chan struct{}, opts.workers)

	var mu sync.Mutex
	samples := make([]sample, 0, opts.rps*int(opts.duration.Seconds())+1)
	record := func(s sample) {
		mu.Lock()
		samples = append(samples, s)
		mu.Unlock()
	}

	var g errgroup.Group
	for i := 0; i < opts.workers; i++ {
		g.Go(func() error {
			for range jobs {
				record(post(client, opts.url, body))
			}
			return nil
		})
	}

	ticker := time.NewTicker(time.Second / time.Duration(opts.rps))
	defer ticker.Stop()
	deadline := time.Now().Add(opts.duration)
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		jobs <- struct{}{}
	}
	close(jobs)
	_ = g.Wait()

	return samples
}

func post(client *http.Client, url string, body []byte) sample {
	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return sample{latency: time.Since(start), err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	lat := time.Since(start)
	if err != nil {
		return sample{latency: lat, err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return sample{latency: lat, status: resp.StatusCode}
}

// report prints the summary and reports whether the run met the target.
func report(opts options, samples []sample) bool {
	latencies := make([]time.Duration, 0, len(samples))
	var ok2xx, non2xx, errs int
	for _, s := range samples {
		latencies = append(latencies, s.latency)
		switch {
		case s.err != nil:
			errs++
		case s.status >= 200 && s.status < 300:
			ok2xx++
		default:
			non2xx++
		}
	}
	slices.Sort(latencies)

	p90 := percentile(latencies, 90)
	achieved := float64(len(latencies)) / opts.duration.Seconds()

	fmt.Printf("Load test finished\n")
	fmt.Printf("- target_rps: %d\n", opts.rps)
	fmt.Printf("- achieved_rps: %.2f\n", achieved)
	fmt.Printf("- duration: %s\n", opts.duration)
	fmt.Printf("- requests: %d\n", len(latencies))
	fmt.Printf("- 2xx: %d\n", ok2xx)
	fmt.Printf("- non_2xx: %d\n", non2xx)
	fmt.Printf("- errors: %d\n", errs)
	fmt.Printf("- avg_ms: %.3f\n", ms(average(latencies)))
	fmt.Printf("- p50_ms: %.3f\n", ms(percentile(latencies, 50)))
	fmt.Printf("- p90_ms: %.3f\n", ms(p90))
	fmt.Printf("- p99_ms: %.3f\n", ms(percentile(latencies, 99)))

	if achieved >= float64(opts.rps)*0.98 && p90 < opts.p90 && errs == 0 && non2xx == 0 {
		fmt.Printf("PASS: meets %d RPS and P90 < %s\n", opts.rps, opts.p90)
		return true
	}
	fmt.Println("FAIL: does not meet target (or has request errors)")
	return false
}

func percentile(items []time.Duration, p int) time.Duration {
	if len(items) == 0 {
		return 0
	}
	return items[(len(items)-1)*p/100]
}

func average(items []time.Duration) time.Duration {
	if len(items) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range items {
		total += d
	}
	return total / time.Duration(len(items))
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
