package server

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gamehub_sessions_created_total",
			Help: "Total game sessions created",
		},
	)
	movesReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gamehub_moves_received_total",
			Help: "Total move messages received over websocket",
		},
	)
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamehub_ws_connections",
			Help: "Currently open websocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsCreated)
	prometheus.MustRegister(movesReceived)
	prometheus.MustRegister(wsConnections)
}
