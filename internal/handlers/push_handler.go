package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"entitleBack/internal/models"
)

// DeviceTokenStore manages the fcmTokens array on the user document.
type DeviceTokenStore interface {
	DeviceTokens(ctx context.Context, userID string) ([]string, error)
	RegisterDeviceToken(ctx context.Context, userID, token string) error
	RemoveDeviceToken(ctx context.Context, userID, token string) error
}

// PushSender dispatches a payload to a set of device tokens.
type PushSender interface {
	SendToDevices(ctx context.Context, tokens []string, payload models.PushNotification) []models.PushResult
}

type PushHandler struct {
	Sender PushSender
	Store  DeviceTokenStore
}

type notifyRequest struct {
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// NotifyUser sends a push to every registered device of a user.
func (h *PushHandler) NotifyUser(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		req.UserID, _ = r.Context().Value("user_id").(string)
	}
	if req.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	tokens, err := h.Store.DeviceTokens(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch tokens", http.StatusInternalServerError)
		return
	}
	if len(tokens) == 0 {
		http.Error(w, "no devices registered", http.StatusNotFound)
		return
	}

	results := h.Sender.SendToDevices(r.Context(), tokens, models.PushNotification{
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})

	sent := 0
	for _, res := range results {
		if res.Err == nil {
			sent++
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]int{
		"devices": len(results),
		"sent":    sent,
	})
}

type deviceTokenRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

func (h *PushHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req deviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		req.UserID, _ = r.Context().Value("user_id").(string)
	}
	if req.UserID == "" || strings.TrimSpace(req.Token) == "" {
		http.Error(w, "user_id and token are required", http.StatusBadRequest)
		return
	}

	if err := h.Store.RegisterDeviceToken(r.Context(), req.UserID, req.Token); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to register token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *PushHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(":token")
	userID, _ := r.Context().Value("user_id").(string)
	if token == "" || userID == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := h.Store.RemoveDeviceToken(r.Context(), userID, token); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
