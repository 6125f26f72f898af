package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DaemonMetrics is the Prometheus-backed collector for client and
// surface admission, wire errors, and per-frame composition timing.
// Every method no-ops on a nil receiver so callers can hold a
// *DaemonMetrics unconditionally and skip the IsEnabled check at each
// call site.
type DaemonMetrics struct {
	clientsConnected prometheus.Gauge
	clientsTotal     prometheus.Counter
	clientsRejected  *prometheus.CounterVec
	surfacesLive     prometheus.Gauge
	framesComposited *prometheus.CounterVec
	frameDuration    *prometheus.HistogramVec
	surfacesRendered *prometheus.HistogramVec
	ipcErrors        *prometheus.CounterVec
	sdcsBytes        *prometheus.HistogramVec
}

// NewDaemonMetrics creates a new Prometheus-backed DaemonMetrics
// instance. Returns nil if metrics are not enabled (InitRegistry not
// called), so that callers get zero overhead.
func NewDaemonMetrics() *DaemonMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()
	return &DaemonMetrics{
		clientsConnected: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "semadraw_clients_connected",
			Help: "Current number of connected clients.",
		}),
		clientsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "semadraw_clients_total",
			Help: "Total number of client sessions accepted since startup.",
		}),
		clientsRejected: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "semadraw_clients_rejected_total",
			Help: "Total number of client connections rejected, by reason.",
		}, []string{"reason"}), // "max_clients"
		surfacesLive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "semadraw_surfaces_live",
			Help: "Current number of live surfaces across all clients.",
		}),
		framesComposited: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "semadraw_frames_composited_total",
			Help: "Total number of composited frames, by output.",
		}, []string{"output"}),
		frameDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "semadraw_frame_duration_milliseconds",
			Help: "Time spent in a single composite() pass, by output.",
			Buckets: []float64{
				0.5, 1, 2, 4, 8, 16, 33, 50, 100,
			},
		}, []string{"output"}),
		surfacesRendered: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "semadraw_surfaces_rendered_per_frame",
			Help: "Number of surfaces rendered per composited frame, by output.",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"output"}),
		ipcErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "semadraw_ipc_errors_total",
			Help: "Total number of IPC requests answered with an error reply, by code.",
		}, []string{"code"}),
		sdcsBytes: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "semadraw_sdcs_bytes",
			Help: "Size in bytes of attached SDCS command streams.",
			Buckets: []float64{
				4096, 65536, 1 << 20, 8 << 20, 32 << 20, 64 << 20,
			},
		}, []string{"transport"}), // "local", "network"
	}
}

func (m *DaemonMetrics) ClientConnected() {
	if m == nil {
		return
	}
	m.clientsConnected.Inc()
	m.clientsTotal.Inc()
}

func (m *DaemonMetrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.clientsConnected.Dec()
}

func (m *DaemonMetrics) ClientRejected(reason string) {
	if m == nil {
		return
	}
	m.clientsRejected.WithLabelValues(reason).Inc()
}

func (m *DaemonMetrics) SetSurfacesLive(n int) {
	if m == nil {
		return
	}
	m.surfacesLive.Set(float64(n))
}

func (m *DaemonMetrics) ObserveFrame(output string, rendered int, d time.Duration) {
	if m == nil {
		return
	}
	m.framesComposited.WithLabelValues(output).Inc()
	m.frameDuration.WithLabelValues(output).Observe(float64(d.Microseconds()) / 1000.0)
	m.surfacesRendered.WithLabelValues(output).Observe(float64(rendered))
}

func (m *DaemonMetrics) IPCError(code string) {
	if m == nil {
		return
	}
	m.ipcErrors.WithLabelValues(code).Inc()
}

func (m *DaemonMetrics) ObserveSDCSBytes(transport string, n int) {
	if m == nil {
		return
	}
	m.sdcsBytes.WithLabelValues(transport).Observe(float64(n))
}
