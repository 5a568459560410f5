package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"mentorhub-backend/internal/service"
)

// AccountHandler exposes user registration, the account snapshot and the
// plan catalog
type AccountHandler struct {
	accounts      service.AccountService
	subscriptions service.SubscriptionService
}

func NewAccountHandler(accounts service.AccountService, subscriptions service.SubscriptionService) *AccountHandler {
	return &AccountHandler{accounts: accounts, subscriptions: subscriptions}
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AccountHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.accounts.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	acct, err := h.accounts.GetAccount(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *AccountHandler) HandleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.subscriptions.ListPlans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// RegisterAccountRoutes registers user, account and plan-catalog endpoints
func RegisterAccountRoutes(router *mux.Router, accounts service.AccountService, subscriptions service.SubscriptionService) {
	handler := NewAccountHandler(accounts, subscriptions)
	router.HandleFunc("/api/v1/users", handler.HandleCreateUser).Methods("POST")
	router.HandleFunc("/api/v1/users/{id}/account", handler.HandleGetAccount).Methods("GET")
	router.HandleFunc("/api/v1/plans", handler.HandleListPlans).Methods("GET")
}
