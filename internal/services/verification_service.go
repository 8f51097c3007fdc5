package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"entitleBack/internal/models"
	"entitleBack/utils"
)

// PlayVerifier resolves a Play purchase token to a normalized result.
type PlayVerifier interface {
	VerifySubscription(ctx context.Context, packageName, subscriptionID, token string) (models.VendorVerification, error)
}

// ReceiptVerifier resolves an App Store receipt to a normalized result.
type ReceiptVerifier interface {
	VerifyReceipt(ctx context.Context, receipt string) (models.VendorVerification, error)
}

// EntitlementStore is the document-store surface the orchestrator consumes.
type EntitlementStore interface {
	GetEntitlement(ctx context.Context, userID string) (models.UserEntitlementRecord, error)
	ApplyDecision(ctx context.Context, userID string, decision models.EntitlementDecision, skuID, purchaseToken, source string) error
	DeviceTokens(ctx context.Context, userID string) ([]string, error)
}

// PushSender is the notification surface the orchestrator consumes.
type PushSender interface {
	SendToDevices(ctx context.Context, tokens []string, payload models.PushNotification) []models.PushResult
}

// VerificationService drives one verification call end to end: vendor client
// by platform, evaluator, then exactly one terminal entitlement write. It
// performs no retries of its own; the single Apple sandbox resubmission
// inside the receipt verifier counts as one logical attempt.
type VerificationService struct {
	Play     PlayVerifier
	AppStore ReceiptVerifier
	Store    EntitlementStore
	Push     PushSender

	Logger *slog.Logger
	Now    func() time.Time
}

func (s *VerificationService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// VerifyPurchase returns the caller-facing outcome. The returned error is
// non-nil only for a persistence failure: the decision was computed but the
// store write did not land, which the caller must see as a system error
// rather than an invalid subscription.
func (s *VerificationService) VerifyPurchase(ctx context.Context, req models.PurchaseVerificationRequest) (models.VerificationOutcome, error) {
	verification, err := s.verifyWithVendor(ctx, req)
	if err != nil {
		// Input or wiring problems prove nothing about the subscription;
		// treat them like any other failed vendor round-trip.
		verification = models.TransientVerification(err)
	}

	decision := DecideEntitlement(verification, s.now())

	previous, prevErr := s.Store.GetEntitlement(ctx, req.UserID)
	if prevErr != nil {
		previous = models.UserEntitlementRecord{}
	}

	if err := s.Store.ApplyDecision(ctx, req.UserID, decision, req.SKUID, req.PurchaseToken, req.Source); err != nil {
		s.logger().Error("entitlement write failed",
			"user", req.UserID,
			"package", string(decision.Package),
			"err", err,
		)
		return models.VerificationOutcome{
			Status:  http.StatusInternalServerError,
			Message: "entitlement update failed",
		}, fmt.Errorf("apply entitlement decision: %w", err)
	}

	s.logger().Info("entitlement applied",
		"user", req.UserID,
		"platform", string(req.Platform),
		"sku", req.SKUID,
		"token", utils.MaskToken(req.PurchaseToken),
		"package", string(decision.Package),
		"reason", string(decision.Reason),
	)

	if decision.Package == models.PackagePremium && previous.SubscriptionPackage != models.PackagePremium {
		s.notifyPremiumActivated(ctx, req.UserID)
	}

	return outcomeFor(decision, verification), nil
}

// notifyPremiumActivated is best effort; a failed push never changes the
// verification outcome.
func (s *VerificationService) notifyPremiumActivated(ctx context.Context, userID string) {
	if s.Push == nil {
		return
	}
	tokens, err := s.Store.DeviceTokens(ctx, userID)
	if err != nil {
		s.logger().Warn("device token lookup failed", "user", userID, "err", err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	s.Push.SendToDevices(ctx, tokens, models.PushNotification{
		Title: "Premium activated",
		Body:  "Your premium subscription is now active.",
		Data: map[string]string{
			"type":            "entitlement",
			"notification_id": uuid.NewString(),
		},
	})
}

func (s *VerificationService) verifyWithVendor(ctx context.Context, req models.PurchaseVerificationRequest) (models.VendorVerification, error) {
	switch req.Platform {
	case models.PlatformGooglePlay:
		return s.Play.VerifySubscription(ctx, req.PackageName, req.SKUID, req.PurchaseToken)
	case models.PlatformApple:
		return s.AppStore.VerifyReceipt(ctx, req.PurchaseToken)
	default:
		return models.VendorVerification{}, fmt.Errorf("%w: %s", models.ErrInvalidPlatform, req.Platform)
	}
}

func outcomeFor(decision models.EntitlementDecision, verification models.VendorVerification) models.VerificationOutcome {
	if decision.Package == models.PackagePremium {
		return models.VerificationOutcome{Status: http.StatusOK, Message: "success"}
	}

	switch decision.Reason {
	case models.ReasonExpired, models.ReasonCancelled:
		return models.VerificationOutcome{Status: http.StatusUnauthorized, Message: "expired"}
	case models.ReasonVendorRejected:
		message := verification.VendorMessage
		if message == "" {
			message = "failure"
		}
		return models.VerificationOutcome{Status: http.StatusUnauthorized, Message: message}
	default:
		return models.VerificationOutcome{Status: http.StatusUnauthorized, Message: "failure"}
	}
}
