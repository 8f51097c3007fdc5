package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"entitleBack/internal/models"
	"entitleBack/utils"
)

const (
	appleProdVerifyURL    = "https://buy.itunes.apple.com/verifyReceipt"
	appleSandboxVerifyURL = "https://sandbox.itunes.apple.com/verifyReceipt"

	appleStatusOK = 0
	// "This receipt is from the test environment, but it was sent to the
	// production environment for verification."
	appleStatusSandboxReceipt = 21007
)

type AppStoreConfig struct {
	SharedSecret string

	// Overridable for tests; default to Apple's endpoints.
	ProductionURL string
	SandboxURL    string

	Client *http.Client
	Logger *slog.Logger
}

// AppStoreService submits receipt blobs to Apple's verifyReceipt endpoint.
// Receipts signal their own environment: a production submission answered
// with status 21007 is resubmitted once, unchanged, to the sandbox endpoint.
type AppStoreService struct {
	sharedSecret  string
	productionURL string
	sandboxURL    string

	httpClient *http.Client
	logger     *slog.Logger
}

func NewAppStoreService(cfg AppStoreConfig) (*AppStoreService, error) {
	if strings.TrimSpace(cfg.SharedSecret) == "" {
		return nil, errors.New("APP_STORE_SHARED_SECRET is empty")
	}
	if cfg.ProductionURL == "" {
		cfg.ProductionURL = appleProdVerifyURL
	}
	if cfg.SandboxURL == "" {
		cfg.SandboxURL = appleSandboxVerifyURL
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AppStoreService{
		sharedSecret:  cfg.SharedSecret,
		productionURL: cfg.ProductionURL,
		sandboxURL:    cfg.SandboxURL,
		httpClient:    client,
		logger:        logger,
	}, nil
}

type verifyReceiptRequest struct {
	ReceiptData            string `json:"receipt-data"`
	Password               string `json:"password"`
	ExcludeOldTransactions bool   `json:"exclude-old-transactions"`
}

type verifyReceiptResponse struct {
	Status            int                 `json:"status"`
	LatestReceiptInfo []latestReceiptInfo `json:"latest_receipt_info"`
}

// Apple serializes the millisecond fields inconsistently (usually a decimal
// string, sometimes a number), so they are kept raw until parseEpochMillis.
type latestReceiptInfo struct {
	ExpiresDateMS      json.RawMessage `json:"expires_date_ms"`
	CancellationDateMS json.RawMessage `json:"cancellation_date_ms"`
}

// VerifyReceipt normalizes one receipt verification round-trip, including the
// single sandbox resubmission. A 21007 answered by the sandbox endpoint is
// Invalid, never retried again.
func (s *AppStoreService) VerifyReceipt(ctx context.Context, receipt string) (models.VendorVerification, error) {
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return models.VendorVerification{}, errors.New("purchase_token is required")
	}

	resp, err := s.submit(ctx, s.productionURL, receipt)
	if err != nil {
		return models.TransientVerification(err), nil
	}
	if resp.Status == appleStatusSandboxReceipt {
		s.logger.Info("receipt belongs to sandbox, resubmitting",
			"token", utils.MaskToken(receipt),
		)
		resp, err = s.submit(ctx, s.sandboxURL, receipt)
		if err != nil {
			return models.TransientVerification(err), nil
		}
		if resp.Status == appleStatusSandboxReceipt {
			return models.InvalidVerification(resp.Status, "sandbox redirect from sandbox endpoint"), nil
		}
	}
	if resp.Status != appleStatusOK {
		return models.InvalidVerification(resp.Status, fmt.Sprintf("receipt rejected with status %d", resp.Status)), nil
	}
	if len(resp.LatestReceiptInfo) == 0 {
		return models.InvalidVerification(resp.Status, "missing latest_receipt_info"), nil
	}

	// The first element is the most recent transaction.
	latest := resp.LatestReceiptInfo[0]
	expiry, ok := parseEpochMillis(latest.ExpiresDateMS)
	if !ok {
		return models.InvalidVerification(resp.Status, "malformed expiry"), nil
	}
	var cancellation int64
	if len(latest.CancellationDateMS) > 0 {
		cancellation, ok = parseEpochMillis(latest.CancellationDateMS)
		if !ok {
			return models.InvalidVerification(resp.Status, "malformed cancellation"), nil
		}
	}
	return models.ValidVerification(expiry, cancellation), nil
}

func (s *AppStoreService) submit(ctx context.Context, endpoint, receipt string) (verifyReceiptResponse, error) {
	body, err := json.Marshal(verifyReceiptRequest{
		ReceiptData:            receipt,
		Password:               s.sharedSecret,
		ExcludeOldTransactions: true,
	})
	if err != nil {
		return verifyReceiptResponse{}, fmt.Errorf("apple verifyReceipt marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return verifyReceiptResponse{}, fmt.Errorf("apple verifyReceipt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return verifyReceiptResponse{}, fmt.Errorf("apple verifyReceipt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return verifyReceiptResponse{}, fmt.Errorf("apple verifyReceipt: %s (%s)", resp.Status, strings.TrimSpace(string(b)))
	}

	var out verifyReceiptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return verifyReceiptResponse{}, fmt.Errorf("apple verifyReceipt decode: %w", err)
	}
	return out, nil
}

func parseEpochMillis(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		v, err := strconv.ParseInt(strings.TrimSpace(asString), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, true
	}
	return 0, false
}
