// Command cachecheck verifies that the public event endpoints of a running
// server fill the Redis cache. Usage: cachecheck -event <uuid>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"propdesk/internal/shared/config"
	"propdesk/internal/shared/constants"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type CheckResult struct {
	Endpoint     string        `json:"endpoint"`
	CacheKey     string        `json:"cache_key"`
	StatusCode   int           `json:"status_code"`
	Cached       bool          `json:"cached"`
	TTL          time.Duration `json:"ttl"`
	ResponseTime time.Duration `json:"response_time"`
	DataSize     int           `json:"data_size"`
	Error        string        `json:"error,omitempty"`
}

type CheckSuite struct {
	BaseURL string
	Redis   *redis.Client
	HTTP    *http.Client
	Results []CheckResult
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	eventID := flag.String("event", "", "public, active event id to probe")
	baseURL := flag.String("base", "http://localhost:"+cfg.Port+cfg.GetAPIBasePath(), "API base URL")
	out := flag.String("out", "", "write the JSON report to this file")
	flag.Parse()

	if *eventID == "" {
		fmt.Fprintln(os.Stderr, "missing -event")
		os.Exit(2)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Redis connection failed: %v\n", err)
		os.Exit(1)
	}

	suite := &CheckSuite{
		BaseURL: *baseURL,
		Redis:   rdb,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}

	checks := []struct {
		endpoint string
		key      string
	}{
		{"/events/" + *eventID, constants.BuildEventDetailKey(*eventID)},
		{"/events/" + *eventID + "/availability", constants.BuildEventAvailabilityKey(*eventID)},
	}

	for _, c := range checks {
		// Start cold so the first request is a miss
		suite.Redis.Del(ctx, c.key)
		suite.Results = append(suite.Results, suite.check(ctx, c.endpoint, c.key))
		suite.Results = append(suite.Results, suite.check(ctx, c.endpoint, c.key))
	}

	failed := suite.report()
	if *out != "" {
		data, _ := json.MarshalIndent(suite.Results, "", "  ")
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func (s *CheckSuite) check(ctx context.Context, endpoint, key string) CheckResult {
	result := CheckResult{Endpoint: endpoint, CacheKey: key}

	start := time.Now()
	resp, err := s.HTTP.Get(s.BaseURL + endpoint)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	result.ResponseTime = time.Since(start)
	result.StatusCode = resp.StatusCode
	result.DataSize = len(body)

	ttl, err := s.Redis.PTTL(ctx, key).Result()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	// PTTL is negative when the key is missing or has no expiry
	result.Cached = ttl > 0
	result.TTL = ttl

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
	} else if !result.Cached {
		result.Error = "response was not cached"
	}
	return result
}

func (s *CheckSuite) report() int {
	fmt.Println("CACHE CHECK")
	fmt.Println("===========")

	failed := 0
	for _, r := range s.Results {
		status := "ok"
		if r.Error != "" {
			status = r.Error
			failed++
		}
		fmt.Printf("%-60s %3d cached=%-5t ttl=%-8v %-10v %s\n",
			r.Endpoint, r.StatusCode, r.Cached, r.TTL.Round(time.Second), r.ResponseTime.Round(time.Microsecond), status)
	}
	fmt.Printf("\n%d checks, %d failed\n", len(s.Results), failed)
	return failed
}
