package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryInterceptor_CountsByCode(t *testing.T) {
	m := New()
	info := &grpc.UnaryServerInfo{FullMethod: "/inventory.v1.Inventory/GetProduct"}

	_, _ = m.UnaryInterceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return "ok", nil
	})
	_, _ = m.UnaryInterceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "not found")
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.handled.WithLabelValues(info.FullMethod, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handled.WithLabelValues(info.FullMethod, "NotFound")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.handling))
}

type fakeStream struct {
	grpc.ServerStream
	sent int
}

func (f *fakeStream) SendMsg(interface{}) error {
	f.sent++
	return nil
}

func TestStreamInterceptor(t *testing.T) {
	m := New()
	info := &grpc.StreamServerInfo{FullMethod: "/inventory.v1.Inventory/WatchTotal", IsServerStream: true}
	ss := &fakeStream{}

	err := m.StreamInterceptor(nil, ss, info, func(_ interface{}, s grpc.ServerStream) error {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.activeStreams.WithLabelValues(info.FullMethod)))
		require.NoError(t, s.SendMsg("a"))
		require.NoError(t, s.SendMsg("b"))
		return status.Error(codes.Canceled, "client gone")
	})
	require.Error(t, err)

	assert.Equal(t, 2, ss.sent)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.streamSends.WithLabelValues(info.FullMethod)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeStreams.WithLabelValues(info.FullMethod)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handled.WithLabelValues(info.FullMethod, "OK")))
}

func TestRouter(t *testing.T) {
	m := New()
	m.handled.WithLabelValues("/x", "OK").Inc()
	srv := httptest.NewServer(m.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "inventory_grpc_server_handled_total"))

	resp, err = http.Post(srv.URL+"/healthz", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTPServer_RunStopsOnCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", New().Router(), logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.FailNow(t, "server exited early", "%v", err)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "server did not stop")
	}
}

func TestHTTPServer_BadAddress(t *testing.T) {
	err := NewHTTPServer("127.0.0.1:99999", New().Router(), logging.Nop()).Run(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, http.ErrServerClosed))
}
