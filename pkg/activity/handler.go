package activity

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/freelanceos/freelanceos/internal/rest"
	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ActivityDTO struct {
	Id                int              `json:"id"`
	Title             string           `json:"title"`
	Category          string           `json:"category"`
	ClientId          int              `json:"clientId"`
	ProjectId         *int             `json:"projectId,omitempty"`
	EstimatedQuantity *decimal.Decimal `json:"estimatedQuantity,omitempty"`
	HourlyRate        *decimal.Decimal `json:"hourlyRate,omitempty"`
	Status            string           `json:"status"`
}

type TransitionDTO struct {
	Event string `json:"event"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List activities
// @Tags Activity
// @Produce json
// @Param clientId query int false "Client ID"
// @Param status query string false "Status"
// @Success 200 {array} ActivityDTO
// @Router /api/activity [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := Filter{Status: Status(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("clientId"); raw != "" {
		clientId, err := strconv.Atoi(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid client id", raw)
			return
		}
		filter.ClientId = clientId
	}
	activities, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := make([]ActivityDTO, 0, len(activities))
	for _, activity := range activities {
		result = append(result, ToDTO(activity))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create an activity
// @Description The hourly rate is filled from the configured rates when omitted.
// @Tags Activity
// @Accept json
// @Produce json
// @Param activity body ActivityDTO true "Activity"
// @Success 201 {object} ActivityDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/activity [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating activity")
	var dto ActivityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	category, err := rate.ParseCategory(dto.Category)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), Activity{
		Title:             dto.Title,
		Category:          category,
		ClientId:          dto.ClientId,
		ProjectId:         dto.ProjectId,
		EstimatedQuantity: dto.EstimatedQuantity,
		HourlyRate:        dto.HourlyRate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(created))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	activityId, err := rest.PathId(r, "activityId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity id", "")
		return
	}
	activity, err := h.service.Get(r.Context(), activityId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(activity))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	activityId, err := rest.PathId(r, "activityId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity id", "")
		return
	}
	var dto ActivityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), Activity{
		Id:                activityId,
		Title:             dto.Title,
		ProjectId:         dto.ProjectId,
		EstimatedQuantity: dto.EstimatedQuantity,
		HourlyRate:        dto.HourlyRate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(updated))
}

// Transition godoc
// @Summary Apply a status event to an activity
// @Tags Activity
// @Accept json
// @Produce json
// @Param activityId path int true "Activity ID"
// @Param event body TransitionDTO true "validate, submit_review, complete or rework"
// @Success 200 {object} ActivityDTO
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/activity/{activityId}/transition [post]
// @Security XUserId
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	activityId, err := rest.PathId(r, "activityId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity id", "")
		return
	}
	var dto TransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	activity, err := h.service.Transition(r.Context(), activityId, dto.Event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(activity))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	activityId, err := rest.PathId(r, "activityId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity id", "")
		return
	}
	deleted, err := h.service.Delete(r.Context(), activityId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		rest.WriteError(w, http.StatusBadRequest, "Invalid activity", err.Error())
	case errors.Is(err, ErrActivityNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrActivityLocked):
		rest.WriteError(w, http.StatusConflict, "Activity cannot be changed", err.Error())
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ToDTO(activity Activity) ActivityDTO {
	return ActivityDTO{
		Id:                activity.Id,
		Title:             activity.Title,
		Category:          string(activity.Category),
		ClientId:          activity.ClientId,
		ProjectId:         activity.ProjectId,
		EstimatedQuantity: activity.EstimatedQuantity,
		HourlyRate:        activity.HourlyRate,
		Status:            string(activity.Status),
	}
}
