package rate

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/freelanceos/freelanceos/internal/rest"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type RateDTO struct {
	Id           int             `json:"id"`
	Category     string          `json:"category"`
	ClientId     *int            `json:"clientId,omitempty"`
	HourlyAmount decimal.Decimal `json:"hourlyAmount"`
	Active       bool            `json:"active"`
}

type ResolvedRateDTO struct {
	Found bool     `json:"found"`
	Rate  *RateDTO `json:"rate,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := make([]RateDTO, 0, len(rates))
	for _, rate := range rates {
		result = append(result, rateToDTO(rate))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a default rate or a client override
// @Tags Rate
// @Accept json
// @Produce json
// @Param rate body RateDTO true "Rate"
// @Success 201 {object} RateDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/rate [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating rate")
	var dto RateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	category, err := ParseCategory(dto.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), Rate{
		Category:     category,
		ClientId:     dto.ClientId,
		HourlyAmount: dto.HourlyAmount,
		Active:       dto.Active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, rateToDTO(created))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	rateId, err := rest.PathId(r, "rateId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid rate id", "")
		return
	}
	var dto RateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), Rate{Id: rateId, HourlyAmount: dto.HourlyAmount, Active: dto.Active})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, rateToDTO(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	rateId, err := rest.PathId(r, "rateId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid rate id", "")
		return
	}
	deleted, err := h.service.Delete(r.Context(), rateId)
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

// Resolve godoc
// @Summary Resolve the rate applying to a category and optional client
// @Tags Rate
// @Produce json
// @Param category query string true "Work category"
// @Param clientId query int false "Client ID"
// @Success 200 {object} ResolvedRateDTO
// @Router /api/rate/resolve [get]
// @Security XUserId
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	category, err := ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var clientId *int
	if raw := r.URL.Query().Get("clientId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid client id", raw)
			return
		}
		clientId = &id
	}

	resolved, found, err := h.service.ResolveRate(r.Context(), category, clientId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := ResolvedRateDTO{Found: found}
	if found {
		dto := rateToDTO(resolved)
		result.Rate = &dto
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		rest.WriteError(w, http.StatusBadRequest, "Invalid rate", err.Error())
	case errors.Is(err, ErrRateNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrRateConflict):
		rest.WriteError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func rateToDTO(rate Rate) RateDTO {
	return RateDTO{
		Id:           rate.Id,
		Category:     string(rate.Category),
		ClientId:     rate.ClientId,
		HourlyAmount: rate.HourlyAmount,
		Active:       rate.Active,
	}
}
