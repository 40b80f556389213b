package domain

import "time"

type HealthStatus struct {
	DatabaseHealthy bool      `json:"database_healthy"`
	CacheEnabled    bool      `json:"cache_enabled"`
	CacheHealthy    bool      `json:"cache_healthy"`
	ServerTime      time.Time `json:"server_time"`
}

func (h HealthStatus) Healthy() bool {
	return h.DatabaseHealthy && (!h.CacheEnabled || h.CacheHealthy)
}
