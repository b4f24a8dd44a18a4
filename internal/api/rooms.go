package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/aircontrol-core/internal/advisory"
	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/room"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// roomView is the API representation of a room snapshot.
type roomView struct {
	ID            room.ID                   `json:"id"`
	Latest        map[aqi.Pollutant]float64 `json:"latest"`
	Severity      aqi.Severity              `json:"severity"`
	SeverityLabel string                    `json:"severity_label"`
	Advisory      advisory.Color            `json:"advisory"`
	Window        room.State                `json:"window"`
	Ventilation   room.State                `json:"ventilation"`
	OpeningHours  room.OpeningHours         `json:"opening_hours"`
	Endpoint      string                    `json:"actuator_endpoint,omitempty"`
	Resolved      bool                      `json:"resolved"`
	ReadingAt     *time.Time                `json:"reading_at,omitempty"`
}

func newRoomView(rm room.Room) roomView {
	sev := rm.Severity()
	v := roomView{
		ID:            rm.ID,
		Latest:        rm.Latest,
		Severity:      sev,
		SeverityLabel: sev.String(),
		Advisory:      advisory.ColorFor(sev),
		Window:        rm.Window,
		Ventilation:   rm.Ventilation,
		OpeningHours:  rm.Hours,
		Endpoint:      rm.Endpoint,
		Resolved:      rm.Resolved,
	}
	if !rm.ReadingAt.IsZero() {
		at := rm.ReadingAt.UTC()
		v.ReadingAt = &at
	}
	return v
}

// handleListRooms returns every room that has reported telemetry.
func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := s.store.List()
	views := make([]roomView, 0, len(rooms))
	for _, rm := range rooms {
		views = append(views, newRoomView(rm))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": views,
		"count": len(views),
	})
}

// handleGetRoom returns a single room.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := s.roomID(w, r)
	if !ok {
		return
	}

	rm, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return
		}
		writeInternalError(w, "failed to load room")
		return
	}
	writeJSON(w, http.StatusOK, newRoomView(rm))
}

// handleRoomHistory returns the most recent actuator changes of a room.
func (s *Server) handleRoomHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "actuator history not configured")
		return
	}

	id, ok := s.roomID(w, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if _, err := s.store.Get(id); err != nil {
		writeNotFound(w, "room not found")
		return
	}

	entries, err := s.history.List(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("failed to list actuator history", "room", id.String(), "error", err)
		writeInternalError(w, "failed to list history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room":    id,
		"entries": entries,
		"count":   len(entries),
	})
}

// roomID extracts and validates the room path parameters, writing a 400 on failure.
func (s *Server) roomID(w http.ResponseWriter, r *http.Request) (room.ID, bool) {
	id, err := room.NewID(
		chi.URLParam(r, "building"),
		chi.URLParam(r, "floor"),
		chi.URLParam(r, "number"),
	)
	if err != nil {
		writeBadRequest(w, "invalid room id")
		return room.ID{}, false
	}
	return id, true
}
