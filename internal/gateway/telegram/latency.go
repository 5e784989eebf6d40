package telegram

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// latencyClient times every Bot API call except long polls, whose duration
// reflects the poll timeout rather than the round trip.
type latencyClient struct {
	client *http.Client
	last   atomic.Int64
}

func newLatencyClient(timeout time.Duration) *latencyClient {
	return &latencyClient{client: &http.Client{Timeout: timeout}}
}

func (c *latencyClient) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err == nil && !strings.HasSuffix(req.URL.Path, "/getUpdates") {
		c.last.Store(int64(time.Since(start)))
	}
	return resp, err
}

// Latency returns the duration of the last completed non-polling request.
func (c *latencyClient) Latency() time.Duration {
	return time.Duration(c.last.Load())
}
