package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ValentinKolb/okv/lib/offchain"
	"github.com/ValentinKolb/okv/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// recordRequest counts a handled request by method and result code and tracks its duration
func recordRequest(msgType common.MessageType, code offchain.ErrorCode, start time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`okv_requests_total{method=%q,code="%d"}`, msgType, code)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`okv_request_duration_seconds{method=%q}`, msgType)).UpdateDuration(start)
}

// registerBackendInfo exposes the configured backend as an info metric
func registerBackendInfo(backend string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`okv_backend_info{backend=%q}`, backend)).Set(1)
}

// metricsServer serves the prometheus text format at /metrics
type metricsServer struct {
	server *http.Server
}

func newMetricsServer(endpoint string) *metricsServer {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	return &metricsServer{
		server: &http.Server{
			Addr:              endpoint,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// start runs the metrics server in the background
func (m *metricsServer) start() {
	go func() {
		Logger.Infof("Serving metrics on %s/metrics", m.server.Addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("Metrics server failed: %v", err)
		}
	}()
}

func (m *metricsServer) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.server.Shutdown(ctx)
}
