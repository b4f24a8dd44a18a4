package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	Rooms         RoomMetrics      `json:"rooms"`
	Pipeline      *PipelineMetrics `json:"pipeline,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// RoomMetrics summarises the room store.
type RoomMetrics struct {
	Total      int            `json:"total"`
	Resolved   int            `json:"resolved"`
	BySeverity map[string]int `json:"by_severity"`
	Windows    map[string]int `json:"windows"`
}

// PipelineMetrics contains telemetry pipeline counters.
type PipelineMetrics struct {
	Received  uint64 `json:"received"`
	Malformed uint64 `json:"malformed"`
	Processed uint64 `json:"processed"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Rooms: RoomMetrics{
			BySeverity: make(map[string]int),
			Windows:    make(map[string]int),
		},
	}

	for _, rm := range s.store.List() {
		metrics.Rooms.Total++
		if rm.Resolved {
			metrics.Rooms.Resolved++
		}
		metrics.Rooms.BySeverity[rm.Severity().String()]++
		metrics.Rooms.Windows[string(rm.Window)]++
	}

	if s.stats != nil {
		st := s.stats.Stats()
		metrics.Pipeline = &PipelineMetrics{
			Received:  st.Received,
			Malformed: st.Malformed,
			Processed: st.Processed,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
