package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/api-sage/bank-account-ledger/internal/adapter/http/models"
	"github.com/api-sage/bank-account-ledger/internal/commons"
	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/logger"
)

type ClientService interface {
	CreateClient(ctx context.Context, client domain.Client) (domain.Client, error)
	GetClientByID(ctx context.Context, id string) (domain.Client, error)
}

type ClientController struct {
	service ClientService
}

func NewClientController(service ClientService) *ClientController {
	return &ClientController{service: service}
}

func (c *ClientController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/clients/create", c.create)
	mux.HandleFunc("GET /api/clients/{id}", c.getByID)
}

func (c *ClientController) create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.ClientResponse]("invalid request body", err.Error()))
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.ClientResponse]("validation failed", err.Error()))
		return
	}

	client, err := c.service.CreateClient(r.Context(), domain.Client{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		logError(r, err, nil)
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.ClientResponse]("failed to create client", err.Error()))
		return
	}

	writeJSON(w, http.StatusCreated, commons.SuccessResponse("client created successfully", models.NewClientResponse(client)))
}

func (c *ClientController) getByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logRequest(r, nil)

	client, err := c.service.GetClientByID(r.Context(), id)
	if err != nil {
		logError(r, err, logger.Fields{"clientId": id})
		writeJSON(w, statusForError(err), commons.ErrorResponse[models.ClientResponse]("failed to get client", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, commons.SuccessResponse("client fetched successfully", models.NewClientResponse(client)))
}
