package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// syncWritesTotal counts stored documents by writer: full or minimal.
	syncWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docvault_sync_writes_total",
		Help: "Documents written by the sync endpoint, by writer.",
	}, []string{"writer"})

	quotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_quota_rejections_total",
		Help: "Writes and upload URLs refused because the storage quota is exhausted.",
	})

	usageScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_usage_scans_total",
		Help: "Storage usage recomputations from object storage listings.",
	})

	devicesRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docvault_device_limit_rejections_total",
		Help: "Device registrations refused by the per-user limit.",
	})
)
