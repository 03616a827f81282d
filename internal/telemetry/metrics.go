// Package telemetry provides Prometheus metrics for the chat relay.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Gauges
	ParticipantsOnline prometheus.Gauge
	ConnectionsOpen    prometheus.Gauge
	HistorySize        prometheus.Gauge

	// Counters
	EventsTotal     *prometheus.CounterVec
	DroppedSends    prometheus.Counter
	InboundRejected *prometheus.CounterVec
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		ParticipantsOnline = promauto.NewGauge(prometheus.GaugeOpts{Name: "chat_participants_online", Help: "Number of joined participants"})
		ConnectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{Name: "chat_connections_open", Help: "Number of open websocket connections"})
		HistorySize = promauto.NewGauge(prometheus.GaugeOpts{Name: "chat_history_size", Help: "Number of chat events retained in history"})
		EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chat_events_total", Help: "Chat events broadcast, by kind"}, []string{"kind"})
		DroppedSends = promauto.NewCounter(prometheus.CounterOpts{Name: "chat_dropped_sends_total", Help: "Outbound frames dropped because a client buffer was full"})
		InboundRejected = promauto.NewCounterVec(prometheus.CounterOpts{Name: "chat_inbound_rejected_total", Help: "Inbound events discarded, by reason"}, []string{"reason"})
	})
}

// SetParticipantsOnline records the current registry size.
func SetParticipantsOnline(n int) {
	if ParticipantsOnline != nil {
		ParticipantsOnline.Set(float64(n))
	}
}

// SetConnectionsOpen records the number of connections held by the hub.
func SetConnectionsOpen(n int) {
	if ConnectionsOpen != nil {
		ConnectionsOpen.Set(float64(n))
	}
}

// SetHistorySize records the number of retained chat events.
func SetHistorySize(n int) {
	if HistorySize != nil {
		HistorySize.Set(float64(n))
	}
}

// CountEvent increments the broadcast counter for the given event kind.
func CountEvent(kind string) {
	if EventsTotal != nil {
		EventsTotal.WithLabelValues(kind).Inc()
	}
}

// CountDroppedSend increments the dropped frame counter.
func CountDroppedSend() {
	if DroppedSends != nil {
		DroppedSends.Inc()
	}
}

// CountRejected increments the discarded inbound counter for reason.
func CountRejected(reason string) {
	if InboundRejected != nil {
		InboundRejected.WithLabelValues(reason).Inc()
	}
}
