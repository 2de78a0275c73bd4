package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/freelanceos/freelanceos/internal/rest"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type DiscountDTO struct {
	Kind   string          `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

type LineDTO struct {
	ActivityId  int             `json:"activityId"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitRate    decimal.Decimal `json:"unitRate"`
	Amount      decimal.Decimal `json:"amount"`
}

type InvoiceDTO struct {
	Id            int             `json:"id"`
	Number        string          `json:"number"`
	ClientId      int             `json:"clientId"`
	IssueDate     string          `json:"issueDate"`
	DueDate       string          `json:"dueDate"`
	Lines         []LineDTO       `json:"lines,omitempty"`
	Discount      *DiscountDTO    `json:"discount,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type CreateInvoiceDTO struct {
	ClientId    int          `json:"clientId"`
	ActivityIds []int        `json:"activityIds"`
	Discount    *DiscountDTO `json:"discount,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

const dateLayout = "2006-01-02"

type Handler struct {
	service     Service
	csvRenderer CsvInvoiceRenderer
}

func NewHandler(service Service, csvRenderer CsvInvoiceRenderer) *Handler {
	return &Handler{service: service, csvRenderer: csvRenderer}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := make([]InvoiceDTO, 0, len(invoices))
	for _, invoice := range invoices {
		result = append(result, invoiceToDTO(invoice))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create a draft invoice for done activities of one client
// @Tags Invoice
// @Accept json
// @Produce json
// @Param invoice body CreateInvoiceDTO true "Invoice"
// @Success 201 {object} InvoiceDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Failure 422 {object} rest.ErrorResponse
// @Router /api/invoice [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating invoice")
	var dto CreateInvoiceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), CreateRequest{
		ClientId:    dto.ClientId,
		ActivityIds: dto.ActivityIds,
		Discount:    dtoToDiscount(dto.Discount),
		Notes:       dto.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, invoiceToDTO(created))
}

// Get godoc
// @Summary Get an invoice with its lines, as JSON or CSV depending on the Accept header
// @Tags Invoice
// @Produce json
// @Produce text/csv
// @Param invoiceId path int true "Invoice ID"
// @Success 200 {object} InvoiceDTO
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/invoice/{invoiceId} [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") == "text/csv" {
		h.Csv(w, r)
		return
	}
	invoiceId, err := rest.PathId(r, "invoiceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid invoice id", "")
		return
	}
	invoice, err := h.service.Get(r.Context(), invoiceId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, invoiceToDTO(invoice))
}

func (h *Handler) Csv(w http.ResponseWriter, r *http.Request) {
	invoiceId, err := rest.PathId(r, "invoiceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid invoice id", "")
		return
	}
	invoice, err := h.service.Get(r.Context(), invoiceId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	currentUser, err := user.CurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	csv, err := h.csvRenderer.RenderInvoice(invoice, currentUser.Settings.Currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+invoice.Number+`.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csv)); err != nil {
		log.Errorf("failed to write invoice csv: %v", err)
	}
}

func (h *Handler) Issue(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.service.Issue)
}

// Pay godoc
// @Summary Mark an invoice as paid; its activities become billed
// @Tags Invoice
// @Produce json
// @Param invoiceId path int true "Invoice ID"
// @Success 200 {object} InvoiceDTO
// @Failure 409 {object} rest.ErrorResponse
// @Router /api/invoice/{invoiceId}/pay [post]
// @Security XUserId
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.service.MarkPaid)
}

func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.service.Void)
}

func (h *Handler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	invoiceId, err := rest.PathId(r, "invoiceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid invoice id", "")
		return
	}
	var dto *DiscountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	updated, err := h.service.UpdateDiscount(r.Context(), invoiceId, dtoToDiscount(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, invoiceToDTO(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	invoiceId, err := rest.PathId(r, "invoiceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid invoice id", "")
		return
	}
	deleted, err := h.service.Delete(r.Context(), invoiceId)
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

func (h *Handler) statusChange(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, invoiceId int) (Invoice, error)) {
	invoiceId, err := rest.PathId(r, "invoiceId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid invoice id", "")
		return
	}
	updated, err := change(r.Context(), invoiceId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, invoiceToDTO(updated))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		rest.WriteError(w, http.StatusBadRequest, "Invalid invoice", err.Error())
	case errors.Is(err, ErrMissingRate):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Missing hourly rate", err.Error())
	case errors.Is(err, ErrInvoiceNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, ErrInvoiceImmutable), errors.Is(err, ErrInvalidStatusChange), errors.Is(err, ErrNumberConflict):
		rest.WriteError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, ErrActivityInvoiced):
		rest.WriteError(w, http.StatusConflict, "Activity already invoiced", err.Error())
		rest.WriteError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func dtoToDiscount(dto *DiscountDTO) *Discount {
	if dto == nil {
		return nil
	}
	return &Discount{Kind: DiscountKind(dto.Kind), Amount: dto.Amount}
}

func invoiceToDTO(invoice Invoice) InvoiceDTO {
	dto := InvoiceDTO{
		Id:            invoice.Id,
		Number:        invoice.Number,
		ClientId:      invoice.ClientId,
		IssueDate:     invoice.IssueDate.Format(dateLayout),
		DueDate:       invoice.DueDate.Format(dateLayout),
		Subtotal:      invoice.Subtotal,
		DiscountValue: invoice.DiscountValue,
		Total:         invoice.Total,
		Status:        string(invoice.Status),
		PaidAt:        invoice.PaidAt,
		Notes:         invoice.Notes,
	}
	if invoice.Discount != nil {
		dto.Discount = &DiscountDTO{Kind: string(invoice.Discount.Kind), Amount: invoice.Discount.Amount}
	}
	for _, line := range invoice.Lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ActivityId:  line.ActivityId,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitRate:    line.UnitRate,
			Amount:      line.Amount,
		})
	}
	return dto
}
