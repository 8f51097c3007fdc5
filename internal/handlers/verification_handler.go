package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"entitleBack/internal/models"
)

// PurchaseVerifier drives one verification call end to end.
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, req models.PurchaseVerificationRequest) (models.VerificationOutcome, error)
}

// EntitlementReader reads the stored entitlement record.
type EntitlementReader interface {
	GetEntitlement(ctx context.Context, userID string) (models.UserEntitlementRecord, error)
}

type VerificationHandler struct {
	Service PurchaseVerifier
	Store   EntitlementReader
}

// VerifyGooglePurchase expects {sku_id, purchase_token, package_name, user_id, source}.
func (h *VerificationHandler) VerifyGooglePurchase(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, models.PlatformGooglePlay)
}

// VerifyApplePurchase expects {sku_id, purchase_token, user_id, source}.
func (h *VerificationHandler) VerifyApplePurchase(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, models.PlatformApple)
}

func (h *VerificationHandler) verify(w http.ResponseWriter, r *http.Request, platform models.Platform) {
	var req models.PurchaseVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	req.Platform = platform
	if req.UserID == "" {
		req.UserID, _ = r.Context().Value("user_id").(string)
	}
	if req.UserID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if strings.TrimSpace(req.SKUID) == "" || strings.TrimSpace(req.PurchaseToken) == "" {
		http.Error(w, "sku_id and purchase_token are required", http.StatusBadRequest)
		return
	}

	// A persistence failure already shapes the outcome as a 5xx; the caller
	// never sees it disguised as an invalid subscription.
	outcome, _ := h.Service.VerifyPurchase(r.Context(), req)
	w.WriteHeader(outcome.Status)
	_ = json.NewEncoder(w).Encode(outcome)
}

// GetEntitlement returns the entitlement record for the authenticated user.
func (h *VerificationHandler) GetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	record, err := h.Store.GetEntitlement(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load entitlement", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(record)
}
