// Package metrics owns the server's Prometheus registry, the gRPC
// instrumentation interceptors and the HTTP side-port serving /metrics and
// /healthz.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const namespace = "inventory"

type Metrics struct {
	Registry *prometheus.Registry

	handled       *prometheus.CounterVec
	handling      *prometheus.HistogramVec
	activeStreams *prometheus.GaugeVec
	streamSends   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "server_handled_total",
			Help:      "Total number of RPCs completed, by method and code.",
		}, []string{"grpc_method", "grpc_code"}),
		handling: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "server_handling_seconds",
			Help:      "Latency of unary RPCs in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"grpc_method"}),
		activeStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "server_active_streams",
			Help:      "Number of open server streams, by method.",
		}, []string{"grpc_method"}),
		streamSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "server_stream_msg_sent_total",
			Help:      "Messages sent on server streams, by method.",
		}, []string{"grpc_method"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.handled,
		m.handling,
		m.activeStreams,
		m.streamSends,
	)
	return m
}

// UnaryInterceptor counts and times every unary RPC.
func (m *Metrics) UnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	m.handled.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	m.handling.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	return resp, err
}

// StreamInterceptor tracks open streams and the messages sent on them.
func (m *Metrics) StreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	active := m.activeStreams.WithLabelValues(info.FullMethod)
	active.Inc()
	defer active.Dec()

	err := handler(srv, &countingStream{ServerStream: ss, sent: m.streamSends.WithLabelValues(info.FullMethod)})

	code := status.Code(err)
	// a client hanging up on a live stream is the normal way it ends
	if code == codes.Canceled {
		code = codes.OK
	}
	m.handled.WithLabelValues(info.FullMethod, code.String()).Inc()
	return err
}

type countingStream struct {
	grpc.ServerStream
	sent prometheus.Counter
}

func (s *countingStream) SendMsg(msg interface{}) error {
	if err := s.ServerStream.SendMsg(msg); err != nil {
		return err
	}
	s.sent.Inc()
	return nil
}
