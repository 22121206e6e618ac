package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/accountsvc/account-service/internal/cqrs"
	"github.com/accountsvc/account-service/internal/middleware"
	"github.com/accountsvc/account-service/internal/models"
	"github.com/accountsvc/account-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// AccountCommander defines the write-side operations used by AccountHandler.
// AccountExists answers from the store, never from the read model.
type AccountCommander interface {
	AccountExists(ctx context.Context, id int64) error
	CreateAccount(context.Context, cqrs.CreateAccountCommand) (*models.Account, error)
	UpdateAccount(context.Context, cqrs.UpdateAccountCommand) (*models.Account, error)
	DeleteAccount(context.Context, cqrs.DeleteAccountCommand) error
}

// AccountQuerier defines the read-side operations used by AccountHandler.
type AccountQuerier interface {
	GetAccount(context.Context, cqrs.GetAccountQuery) (*models.Account, error)
	ListAccounts(context.Context, cqrs.ListAccountsQuery) ([]models.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	commands AccountCommander
	queries  AccountQuerier
}

func NewAccountHandler(commands AccountCommander, queries AccountQuerier) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

// CreateAccount answers 415 for a non-JSON body, 400 for an invalid payload
// and 201 with a Location header otherwise.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	if !requireJSON(c) {
		return
	}

	var account models.Account
	if !deserialize(c, &account, http.StatusBadRequest) {
		return
	}

	created, err := h.commands.CreateAccount(c.Request.Context(), cqrs.CreateAccountCommand{
		Name:        account.Name,
		Email:       account.Email,
		Address:     account.Address,
		PhoneNumber: account.PhoneNumber,
	})
	if err != nil {
		respondWithServiceError(c, err, 0, "Failed to create account")
		return
	}

	c.Header("Location", accountURL(c, created.ID))
	c.JSON(http.StatusCreated, created.Serialize())
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.queries.ListAccounts(c.Request.Context(), cqrs.ListAccountsQuery{})
	if err != nil {
		respondWithServiceError(c, err, 0, "Failed to list accounts")
		return
	}

	body := make([]map[string]any, 0, len(accounts))
	for i := range accounts {
		body = append(body, accounts[i].Serialize())
	}
	c.JSON(http.StatusOK, body)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	account, err := h.queries.GetAccount(c.Request.Context(), cqrs.GetAccountQuery{ID: id})
	if err != nil {
		respondWithServiceError(c, err, id, "Failed to read account")
		return
	}

	c.JSON(http.StatusOK, account.Serialize())
}

// UpdateAccount replaces every mutable field. The checks run in a fixed
// order: media type (415), existence (404), payload (409).
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	if !requireJSON(c) {
		return
	}

	ctx := c.Request.Context()
	if err := h.commands.AccountExists(ctx, id); err != nil {
		respondWithServiceError(c, err, id, "Failed to update account")
		return
	}

	var account models.Account
	if !deserialize(c, &account, http.StatusConflict) {
		return
	}

	updated, err := h.commands.UpdateAccount(ctx, cqrs.UpdateAccountCommand{
		ID:          id,
		Name:        account.Name,
		Email:       account.Email,
		Address:     account.Address,
		PhoneNumber: account.PhoneNumber,
	})
	if err != nil {
		respondWithServiceError(c, err, id, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, updated.Serialize())
}

// DeleteAccount answers 404 for an id that does not exist, even though the
// underlying delete is idempotent.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.commands.AccountExists(ctx, id); err != nil {
		respondWithServiceError(c, err, id, "Failed to delete account")
		return
	}

	if err := h.commands.DeleteAccount(ctx, cqrs.DeleteAccountCommand{ID: id}); err != nil {
		respondWithServiceError(c, err, id, "Failed to delete account")
		return
	}

	c.Status(http.StatusNoContent)
}

// accountID parses the :id path segment. A non-numeric id cannot name an
// account, so it is reported as not found.
func accountID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("Account with id [%s] could not be found.", raw))
		return 0, false
	}
	return id, true
}

func requireJSON(c *gin.Context) bool {
	if c.ContentType() == binding.MIMEJSON {
		return true
	}
	middleware.RespondWithError(c, http.StatusUnsupportedMediaType,
		fmt.Sprintf("Content-Type must be %s", binding.MIMEJSON))
	return false
}

// deserialize reads the request body into account, answering with
// failStatus when it is not a valid account payload.
func deserialize(c *gin.Context, account *models.Account, failStatus int) bool {
	body, err := c.GetRawData()
	if err != nil {
		middleware.RespondWithError(c, failStatus, "Could not read request body")
		return false
	}

	if err := account.Deserialize(body); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			middleware.RespondWithValidationError(c, failStatus, verr)
			return false
		}
		_ = c.Error(err)
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to validate request")
		return false
	}
	return true
}

func respondWithServiceError(c *gin.Context, err error, id int64, message string) {
	if errors.Is(err, repository.ErrAccountNotFound) {
		middleware.RespondWithError(c, http.StatusNotFound, fmt.Sprintf("Account with id [%d] could not be found.", id))
		return
	}
	_ = c.Error(err)
	middleware.RespondWithError(c, http.StatusInternalServerError, message)
}

// accountURL is the absolute read URL of account id.
func accountURL(c *gin.Context, id int64) string {
	return baseURL(c).JoinPath("accounts", strconv.FormatInt(id, 10)).String()
}

func baseURL(c *gin.Context) *url.URL {
	scheme := "http"
	if middleware.IsHTTPS(c.Request) {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: c.Request.Host, Path: "/"}
}
