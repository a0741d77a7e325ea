package testctl

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// chooseFreePort finds an available TCP port by asking the kernel for :0
func chooseFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func isPortBusy(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), 200*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		return true
	}
	return false
}

// preferOrFree returns port if nothing listens on it, else a free one.
func preferOrFree(port int) (int, error) {
	if port > 0 && !isPortBusy(port) {
		return port, nil
	}
	p, err := chooseFreePort()
	if err != nil {
		return 0, err
	}
	if port > 0 {
		warn("[ports] Port %d is busy, using %d", port, p)
	}
	return p, nil
}

// waitHTTP polls url until it answers with want or ctx ends.
func waitHTTP(ctx context.Context, url string, want int, every time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	last := 0
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			last = resp.StatusCode
			if resp.StatusCode == want {
				return nil
			}
		}
		select {
		case <-time.After(every):
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s to return %d (last %d)", url, want, last)
		}
	}
}
