package services

import (
	"errors"
	"testing"
	"time"

	"entitleBack/internal/models"
)

var evalNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestDecideEntitlement_ActiveSubscription(t *testing.T) {
	result := models.ValidVerification(evalNow.UnixMilli()+1000000, 0)

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackagePremium {
		t.Fatalf("expected PREMIUM, got %s", decision.Package)
	}
	if decision.Reason != models.ReasonActive {
		t.Errorf("unexpected reason: %s", decision.Reason)
	}
}

func TestDecideEntitlement_ExpiredSubscription(t *testing.T) {
	result := models.ValidVerification(evalNow.UnixMilli()-1000, 0)

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackageFree {
		t.Fatalf("expected FREE, got %s", decision.Package)
	}
	if decision.Reason != models.ReasonExpired {
		t.Errorf("unexpected reason: %s", decision.Reason)
	}
}

func TestDecideEntitlement_ExpiryAbsent(t *testing.T) {
	result := models.ValidVerification(0, 0)

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackageFree {
		t.Fatalf("expected FREE, got %s", decision.Package)
	}
	if decision.Reason != models.ReasonExpired {
		t.Errorf("unexpected reason: %s", decision.Reason)
	}
}

func TestDecideEntitlement_CancelledBeatsFutureExpiry(t *testing.T) {
	result := models.ValidVerification(evalNow.UnixMilli()+1000000, evalNow.UnixMilli()-5000)

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackageFree {
		t.Fatalf("expected FREE, got %s", decision.Package)
	}
	if decision.Reason != models.ReasonCancelled {
		t.Errorf("unexpected reason: %s", decision.Reason)
	}
}

func TestDecideEntitlement_FutureCancellationStillPremium(t *testing.T) {
	result := models.ValidVerification(evalNow.UnixMilli()+1000000, evalNow.UnixMilli()+500000)

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackagePremium {
		t.Fatalf("expected PREMIUM, got %s", decision.Package)
	}
}

func TestDecideEntitlement_ExpiredBeatsCancellationField(t *testing.T) {
	// A past expiry decides FREE regardless of the cancellation value.
	result := models.ValidVerification(evalNow.UnixMilli()-1000, evalNow.UnixMilli()+500000)

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackageFree {
		t.Fatalf("expected FREE, got %s", decision.Package)
	}
}

func TestDecideEntitlement_VendorRejected(t *testing.T) {
	result := models.InvalidVerification(410, "purchase token no longer valid")

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackageFree {
		t.Fatalf("expected FREE, got %s", decision.Package)
	}
	if decision.Reason != models.ReasonVendorRejected {
		t.Errorf("unexpected reason: %s", decision.Reason)
	}
}

func TestDecideEntitlement_TransientFailsClosed(t *testing.T) {
	result := models.TransientVerification(errors.New("dial tcp: i/o timeout"))

	decision := DecideEntitlement(result, evalNow)

	if decision.Package != models.PackageFree {
		t.Fatalf("expected FREE, got %s", decision.Package)
	}
	if decision.Reason != models.ReasonVendorUnreachable {
		t.Errorf("unexpected reason: %s", decision.Reason)
	}
}

func TestDecideEntitlement_Pure(t *testing.T) {
	result := models.ValidVerification(evalNow.UnixMilli()+1000000, 0)

	first := DecideEntitlement(result, evalNow)
	second := DecideEntitlement(result, evalNow)

	if first != second {
		t.Fatalf("identical inputs produced different decisions: %+v vs %+v", first, second)
	}
}
