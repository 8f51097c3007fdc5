package services

import (
	"time"

	"entitleBack/internal/models"
)

// DecideEntitlement maps a normalized vendor result onto PREMIUM or FREE.
// Pure: identical inputs always produce identical decisions.
//
// The system fails closed. A transient vendor failure, even a timeout that
// says nothing about subscription validity, downgrades to FREE rather than
// preserving a prior PREMIUM state. A redesign would likely keep the stored
// entitlement untouched on VerificationTransient and surface retry guidance
// instead; until then the caller retries the whole verification call.
func DecideEntitlement(result models.VendorVerification, now time.Time) models.EntitlementDecision {
	switch result.State {
	case models.VerificationTransient:
		return models.EntitlementDecision{Package: models.PackageFree, Reason: models.ReasonVendorUnreachable}
	case models.VerificationInvalid:
		return models.EntitlementDecision{Package: models.PackageFree, Reason: models.ReasonVendorRejected}
	}

	nowMillis := now.UnixMilli()

	if result.CancellationTimeMillis > 0 && result.CancellationTimeMillis <= nowMillis {
		return models.EntitlementDecision{Package: models.PackageFree, Reason: models.ReasonCancelled}
	}
	if result.ExpiryTimeMillis <= 0 || result.ExpiryTimeMillis <= nowMillis {
		return models.EntitlementDecision{Package: models.PackageFree, Reason: models.ReasonExpired}
	}
	return models.EntitlementDecision{Package: models.PackagePremium, Reason: models.ReasonActive}
}
