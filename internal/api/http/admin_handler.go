package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mentorhub-backend/internal/domain"
	"mentorhub-backend/internal/service"
)

// AdminHandler exposes mentor-side and account-lifecycle operations:
// blocks, booking settings, subscriptions, coupons and pack redemption
type AdminHandler struct {
	blocks        service.BlockService
	subscriptions service.SubscriptionService
	packs         service.PackService
	settings      service.SettingsService
}

func NewAdminHandler(blocks service.BlockService, subscriptions service.SubscriptionService, packs service.PackService, settings service.SettingsService) *AdminHandler {
	return &AdminHandler{blocks: blocks, subscriptions: subscriptions, packs: packs, settings: settings}
}

type createBlockRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (h *AdminHandler) HandleCreateBlock(w http.ResponseWriter, r *http.Request) {
	var req createBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.blocks.CreateBlock(r.Context(), req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *AdminHandler) HandleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid block id", http.StatusBadRequest)
		return
	}
	if err := h.blocks.DeleteBlock(r.Context(), blockID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type subscribeRequest struct {
	UserID int32 `json:"user_id"`
	PlanID int32 `json:"plan_id"`
}

func (h *AdminHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), req.UserID, req.PlanID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *AdminHandler) HandleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	if err := h.subscriptions.CancelSubscription(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type refundRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *AdminHandler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.subscriptions.RefundLatestPayment(r.Context(), userID, req.AmountCents); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createCouponRequest struct {
	Sessions       int32      `json:"sessions"`
	MaxRedemptions int32      `json:"max_redemptions"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

func (h *AdminHandler) HandleCreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	coupon, err := h.packs.CreateCoupon(r.Context(), req.Sessions, req.MaxRedemptions, req.ExpiresAt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, coupon)
}

type redeemCouponRequest struct {
	UserID int32  `json:"user_id"`
	Code   string `json:"code"`
}

func (h *AdminHandler) HandleRedeemCoupon(w http.ResponseWriter, r *http.Request) {
	var req redeemCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pack, err := h.packs.RedeemCoupon(r.Context(), req.UserID, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pack)
}

func (h *AdminHandler) HandleListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.blocks.ListBlocks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (h *AdminHandler) HandleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan domain.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.subscriptions.CreatePlan(r.Context(), &plan); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *AdminHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settings.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *AdminHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var cfg domain.MentorConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.settings.UpdateSettings(r.Context(), &cfg); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// RegisterAdminRoutes registers block, settings, subscription and coupon endpoints
func RegisterAdminRoutes(router *mux.Router, blocks service.BlockService, subscriptions service.SubscriptionService, packs service.PackService, settings service.SettingsService) {
	handler := NewAdminHandler(blocks, subscriptions, packs, settings)
	router.HandleFunc("/api/v1/blocks", handler.HandleCreateBlock).Methods("POST")
	router.HandleFunc("/api/v1/blocks", handler.HandleListBlocks).Methods("GET")
	router.HandleFunc("/api/v1/blocks/{id}", handler.HandleDeleteBlock).Methods("DELETE")
	router.HandleFunc("/api/v1/plans", handler.HandleCreatePlan).Methods("POST")
	router.HandleFunc("/api/v1/settings", handler.HandleGetSettings).Methods("GET")
	router.HandleFunc("/api/v1/settings", handler.HandleUpdateSettings).Methods("PUT")
	router.HandleFunc("/api/v1/subscriptions", handler.HandleSubscribe).Methods("POST")
	router.HandleFunc("/api/v1/subscriptions/{user_id}", handler.HandleCancelSubscription).Methods("DELETE")
	router.HandleFunc("/api/v1/subscriptions/{user_id}/refunds", handler.HandleRefund).Methods("POST")
	router.HandleFunc("/api/v1/coupons", handler.HandleCreateCoupon).Methods("POST")
	router.HandleFunc("/api/v1/coupons/redeem", handler.HandleRedeemCoupon).Methods("POST")
}
