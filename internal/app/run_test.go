package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

// requireEventually retries the condition until it holds or the timeout expires.
func requireEventually(t *testing.T, timeout, tick time.Duration, condition func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		<-ticker.C
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	port := freePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := NewContainerBuilder([]string{
		"--storage=memory",
		fmt.Sprintf("--port=%d", port),
		"--grpc-port=0",
		"--debug-port=0",
	}).
		WithRegisterer(prometheus.NewRegistry()).
		WithLogOutput(io.Discard).
		Build(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- run(c) }()

	requireEventually(t, 2*time.Second, 10*time.Millisecond, func() bool {
		resp, err := http.Get(base + "/ping")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, "server did not come up")

	resp := postJSON(t, base+"/drivers", map[string]string{"name": "Artem", "phone": "+70000000000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, base+"/deliveries", map[string]any{
		"order_id":            "order-1",
		"restaurant_location": map[string]float64{"lat": 55.75, "lng": 37.61},
		"customer_location":   map[string]float64{"lat": 55.76, "lng": 37.62},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = postJSON(t, base+"/assignment/manual", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pass struct {
		Assigned int `json:"assigned"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pass))
	_ = resp.Body.Close()
	require.Equal(t, 1, pass.Assigned)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRun_ListenErrorIsReturned(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	port := lis.Addr().(*net.TCPAddr).Port

	c, err := NewContainerBuilder([]string{
		"--storage=memory",
		fmt.Sprintf("--port=%d", port),
		"--grpc-port=0",
		"--debug-port=0",
	}).
		WithRegisterer(prometheus.NewRegistry()).
		WithLogOutput(io.Discard).
		Build(context.Background())
	require.NoError(t, err)

	err = run(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "listen http")
}
