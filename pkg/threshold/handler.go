package threshold

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freelanceos/freelanceos/internal/rest"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/shopspring/decimal"
)

type AlertDTO struct {
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
}

type ReportDTO struct {
	Year                int             `json:"year"`
	AnnualRevenue       decimal.Decimal `json:"annualRevenue"`
	LowerCap            decimal.Decimal `json:"lowerCap"`
	UpperCap            decimal.Decimal `json:"upperCap"`
	ContributionRate    decimal.Decimal `json:"contributionRate"`
	ContributionAmount  decimal.Decimal `json:"contributionAmount"`
	PercentOfUpperCap   decimal.Decimal `json:"percentOfUpperCap"`
	RemainingToLowerCap decimal.Decimal `json:"remainingToLowerCap"`
	RemainingToUpperCap decimal.Decimal `json:"remainingToUpperCap"`
	ExceedsLowerCap     bool            `json:"exceedsLowerCap"`
	ExceedsUpperCap     bool            `json:"exceedsUpperCap"`
	ApproachingUpperCap bool            `json:"approachingUpperCap"`
	Alert               *AlertDTO       `json:"alert,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Current godoc
// @Summary Evaluate the revenue paid in a year against the regulatory caps
// @Tags Threshold
// @Produce json
// @Param year query int false "Calendar year, defaults to the current one"
// @Success 200 {object} ReportDTO
// @Router /api/threshold [get]
// @Security XUserId
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", raw)
			return
		}
		year = parsed
	}
	report, err := h.service.Current(r.Context(), year)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusForbidden, "User not found", "")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ReportToDTO(report))
}

func ReportToDTO(report Report) ReportDTO {
	dto := ReportDTO{
		Year:                report.Year,
		AnnualRevenue:       report.Snapshot.AnnualRevenue,
		LowerCap:            report.Snapshot.Lower,
		UpperCap:            report.Snapshot.Upper,
		ContributionRate:    report.Snapshot.ContributionRate,
		ContributionAmount:  report.ContributionAmount,
		PercentOfUpperCap:   report.PercentOfUpperCap,
		RemainingToLowerCap: report.RemainingToLowerCap,
		RemainingToUpperCap: report.RemainingToUpperCap,
		ExceedsLowerCap:     report.ExceedsLowerCap,
		ExceedsUpperCap:     report.ExceedsUpperCap,
		ApproachingUpperCap: report.ApproachingUpperCap,
	}
	if report.Alert != nil {
		dto.Alert = &AlertDTO{Severity: string(report.Alert.Severity), Kind: string(report.Alert.Kind)}
	}
	return dto
}
