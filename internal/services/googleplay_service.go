package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	androidpublisher "google.golang.org/api/androidpublisher/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"entitleBack/internal/models"
	"entitleBack/utils"
)

type GooglePlayConfig struct {
	// Default application package, used when a request omits package_name.
	PackageName        string
	ServiceAccountJSON string

	Logger *slog.Logger
}

// GooglePlayService queries a single subscription's status from the Play
// billing API. The androidpublisher client authenticates with the service
// account credential and caches its bearer token internally, so one
// constructed service is reused across calls.
type GooglePlayService struct {
	cfg    GooglePlayConfig
	svc    *androidpublisher.Service
	logger *slog.Logger
}

func NewGooglePlayService(cfg GooglePlayConfig) (*GooglePlayService, error) {
	cfg.PackageName = strings.TrimSpace(cfg.PackageName)
	if cfg.PackageName == "" {
		return nil, errors.New("GOOGLE_PLAY_PACKAGE_NAME is empty")
	}
	if strings.TrimSpace(cfg.ServiceAccountJSON) == "" {
		return nil, errors.New("GOOGLE_PLAY_SERVICE_ACCOUNT_JSON is empty")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx := context.Background()
	s, err := androidpublisher.NewService(ctx,
		option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)),
		option.WithScopes(androidpublisher.AndroidpublisherScope),
	)
	if err != nil {
		return nil, fmt.Errorf("androidpublisher.NewService: %w", err)
	}

	return &GooglePlayService{cfg: cfg, svc: s, logger: logger}, nil
}

// VerifySubscription resolves one purchase token against subscriptions.get
// and normalizes the response. A vendor-side rejection becomes Invalid with
// the vendor's status and message; auth or network errors become
// TransientVerification. No local writes happen here.
func (s *GooglePlayService) VerifySubscription(ctx context.Context, packageName, subscriptionID, token string) (models.VendorVerification, error) {
	packageName = strings.TrimSpace(packageName)
	subscriptionID = strings.TrimSpace(subscriptionID)
	token = strings.TrimSpace(token)
	if packageName == "" {
		packageName = s.cfg.PackageName
	}
	if subscriptionID == "" || token == "" {
		return models.VendorVerification{}, errors.New("subscription_id and purchase_token are required")
	}

	resp, err := s.svc.Purchases.Subscriptions.Get(packageName, subscriptionID, token).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			s.logger.Warn("google subscriptions.get rejected",
				"sku", subscriptionID,
				"token", utils.MaskToken(token),
				"code", apiErr.Code,
			)
			return models.InvalidVerification(apiErr.Code, apiErr.Message), nil
		}
		return models.TransientVerification(fmt.Errorf("google subscriptions.get: %w", err)), nil
	}

	return models.ValidVerification(resp.ExpiryTimeMillis, resp.UserCancellationTimeMillis), nil
}
