package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deaddrop_messages_created_total",
		Help: "Messages accepted and persisted.",
	})
	MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deaddrop_messages_deleted_total",
		Help: "Messages deleted by participants.",
	})
	BroadcastsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deaddrop_broadcasts_delivered_total",
		Help: "Per-connection event deliveries handed to the transport.",
	})
	SweepMessagesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deaddrop_sweep_messages_purged_total",
		Help: "Message records removed by inactivity sweeps.",
	})
	SweepFileDeletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deaddrop_sweep_file_deletions_total",
		Help: "Object-store deletions attempted by inactivity sweeps.",
	})
	SweepRoomsCleaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deaddrop_sweep_rooms_cleaned_total",
		Help: "Rooms fully purged by inactivity sweeps.",
	})
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
