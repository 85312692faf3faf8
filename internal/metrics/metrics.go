package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "call_service"

var (
	LiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_rooms",
		Help:      "Rooms with at least one connected participant.",
	})
	LiveDevices = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_devices",
		Help:      "Devices bound in the device registry.",
	})
	Connections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Open websocket connections by role.",
	}, []string{"role"})
	Inbound = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inbound_messages_total",
		Help:      "Parsed inbound messages by connection role and kind, unknown included.",
	}, []string{"role", "kind"})
	Relayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relayed_messages_total",
		Help:      "Messages delivered to at least one peer connection, by kind.",
	}, []string{"kind"})
	RejectedHandshakes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_handshakes_total",
		Help:      "Connections closed because they carried neither roomId nor deviceId.",
	})
	RoomFull = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "room_full_total",
		Help:      "Join attempts rejected because the room already had two participants.",
	})
	StoreFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_failures_total",
		Help:      "Persistence errors swallowed in favour of in-memory state.",
	}, []string{"op"})
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Lifecycle events handed to the publisher.",
	}, []string{"type", "result"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
