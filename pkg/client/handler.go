package client

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/freelanceos/freelanceos/internal/rest"
	"github.com/freelanceos/freelanceos/pkg/user"
	log "github.com/sirupsen/logrus"
)

type ClientDTO struct {
	Id        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	VatNumber string `json:"vatNumber,omitempty"`
}

type ProjectDTO struct {
	Id       int    `json:"id"`
	ClientId int    `json:"clientId"`
	Name     string `json:"name"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListClients godoc
// @Summary List clients
// @Tags Client
// @Produce json
// @Success 200 {array} ClientDTO
// @Router /api/client [get]
// @Security XUserId
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := make([]ClientDTO, 0, len(clients))
	for _, client := range clients {
		result = append(result, clientToDTO(client))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// CreateClient godoc
// @Summary Create a client
// @Tags Client
// @Accept json
// @Produce json
// @Param client body ClientDTO true "Client"
// @Success 201 {object} ClientDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/client [post]
// @Security XUserId
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new client")
	var dto ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	created, err := h.service.CreateClient(r.Context(), dtoToClient(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, clientToDTO(created))
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientId, err := rest.PathId(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", "")
		return
	}
	client, err := h.service.GetClient(r.Context(), clientId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, clientToDTO(client))
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientId, err := rest.PathId(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", "")
		return
	}
	var dto ClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	dto.Id = clientId
	updated, err := h.service.UpdateClient(r.Context(), dtoToClient(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, clientToDTO(updated))
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	clientId, err := rest.PathId(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", "")
		return
	}
	deleted, err := h.service.DeleteClient(r.Context(), clientId)
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

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	clientId, err := rest.PathId(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", "")
		return
	}
	projects, err := h.service.ListProjects(r.Context(), clientId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result := make([]ProjectDTO, 0, len(projects))
	for _, project := range projects {
		result = append(result, ProjectDTO{Id: project.Id, ClientId: project.ClientId, Name: project.Name})
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	clientId, err := rest.PathId(r, "clientId")
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid client id", "")
		return
	}
	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	project, err := h.service.CreateProject(r.Context(), Project{ClientId: clientId, Name: dto.Name})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ProjectDTO{Id: project.Id, ClientId: project.ClientId, Name: project.Name})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		rest.WriteError(w, http.StatusBadRequest, "Invalid client data", err.Error())
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrProjectNotFound):
		rest.WriteError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func clientToDTO(client Client) ClientDTO {
	return ClientDTO{
		Id:        client.Id,
		Name:      client.Name,
		Email:     client.Email,
		Address:   client.Address,
		VatNumber: client.VatNumber,
	}
}

func dtoToClient(dto ClientDTO) Client {
	return Client{
		Id:        dto.Id,
		Name:      dto.Name,
		Email:     dto.Email,
		Address:   dto.Address,
		VatNumber: dto.VatNumber,
	}
}
