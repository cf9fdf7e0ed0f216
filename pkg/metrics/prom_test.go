package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestStartPrometheusServer(t *testing.T) {
	Requests.WithLabelValues(http.MethodGet, "users", "200").Inc()

	core, logs := observer.New(zap.InfoLevel)
	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	StartPrometheusServer(ctx, &wg, &PromServerOpts{Addr: addr, Path: "/prom", Logger: zap.New(core)})

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/prom")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		body = string(b)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, `pgrest_requests_total{code="200",method="GET",resource="users"}`)

	cancel()
	wg.Wait()
	assert.Equal(t, 1, logs.FilterMessage("starting metrics server").Len())
	require.Eventually(t, func() bool {
		return logs.FilterMessage("metrics server shutdown complete").Len() == 1
	}, 2*time.Second, 20*time.Millisecond)
}
