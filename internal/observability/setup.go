package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	// Audit records every corrective action as a structured JSON line in the
	// moderation audit log, independent of the operational logs.
	Audit *zap.Logger

	// Metrics
	messagesInspected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "modguard_messages_inspected_total",
			Help: "Total number of free-text messages run through the moderation pipeline",
		},
	)

	moderationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modguard_moderation_actions_total",
			Help: "Total number of corrective actions taken",
		},
		[]string{"action"},
	)
)

func Init(ctx context.Context, auditPath string) error {
	_ = ctx

	auditCfg := zap.NewProductionConfig()
	auditCfg.OutputPaths = []string{auditPath}
	auditCfg.ErrorOutputPaths = []string{"stderr"}

	var err error
	Audit, err = auditCfg.Build()
	if err != nil {
		return err
	}

	prometheus.MustRegister(messagesInspected)
	prometheus.MustRegister(moderationActions)

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	return nil
}

func MessageInspected() {
	messagesInspected.Inc()
}

func ActionTaken(action string) {
	moderationActions.WithLabelValues(action).Inc()
}

// AuditEvent writes one structured line to the moderation audit log. Safe to
// call before Init: events are dropped when no audit sink is configured.
func AuditEvent(event string, fields ...zap.Field) {
	if Audit == nil {
		return
	}
	Audit.Info(event, fields...)
}

// MetricsServer exposes the prometheus endpoint as a lifecycle component.
type MetricsServer struct {
	srv *http.Server
}

func NewMetricsServer(addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &MetricsServer{
		srv: &http.Server{Addr: addr, Handler: mux},
	}
}

func (m *MetricsServer) Start(ctx context.Context) error {
	_ = ctx
	go func() {
		if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	return nil
}

func (m *MetricsServer) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.srv.Shutdown(shutdownCtx)
}
