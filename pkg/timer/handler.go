package timer

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/freelanceos/freelanceos/internal/rest"
	"github.com/freelanceos/freelanceos/pkg/activity"
	"github.com/freelanceos/freelanceos/pkg/user"
	log "github.com/sirupsen/logrus"
)

type TimerDTO struct {
	State          string     `json:"state"`
	ActivityId     int        `json:"activityId,omitempty"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	ElapsedSeconds int64      `json:"elapsedSeconds"`
}

type StopDTO struct {
	Result     string  `json:"result"`
	ActivityId int     `json:"activityId,omitempty"`
	SpanId     string  `json:"spanId,omitempty"`
	Minutes    *int    `json:"durationMinutes,omitempty"`
	Error      *string `json:"error,omitempty"`
}

type StartRequest struct {
	ActivityId int `json:"activityId"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, snapshotToDTO(snapshot))
}

// Start godoc
// @Summary Start timing an activity
// @Description A session of another activity is discarded or recorded depending on the configured policy.
// @Tags Timer
// @Accept json
// @Produce json
// @Param request body StartRequest true "Activity to time"
// @Success 200 {object} TimerDTO
// @Router /api/timer/start [post]
// @Security XUserId
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var request StartRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	log.Debugf("Starting timer for activity %d", request.ActivityId)
	snapshot, err := h.service.Start(r.Context(), request.ActivityId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Pause(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Resume(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Reset(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, snapshotToDTO(snapshot))
}

// Stop godoc
// @Summary Stop the timer and record the session
// @Description A failed recording answers 502 with the outcome, telling whether the session is still loaded.
// @Tags Timer
// @Produce json
// @Success 200 {object} StopDTO
// @Failure 502 {object} StopDTO
// @Router /api/timer/stop [post]
// @Security XUserId
func (h *Handler) Stop(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.service.Stop(r.Context())
	if err != nil && outcome.Result == "" {
		writeServiceError(w, err)
		return
	}
	dto := StopDTO{Result: string(outcome.Result), ActivityId: outcome.ActivityId}
	if outcome.Span != nil {
		dto.SpanId = outcome.Span.Id.String()
		dto.Minutes = outcome.Span.DurationMinutes
	}
	if err != nil {
		message := err.Error()
		dto.Error = &message
		rest.WriteJSON(w, http.StatusBadGateway, dto)
		return
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotRunning), errors.Is(err, activity.ErrActivityLocked):
		rest.WriteError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, activity.ErrActivityNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func snapshotToDTO(snapshot Snapshot) TimerDTO {
	dto := TimerDTO{
		State:          string(snapshot.State),
		ActivityId:     snapshot.ActivityId,
		ElapsedSeconds: int64(snapshot.Elapsed / time.Second),
	}
	if snapshot.State != Idle {
		startedAt := snapshot.StartedAt
		dto.StartedAt = &startedAt
	}
	return dto
}
