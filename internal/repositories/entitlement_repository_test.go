package repositories

import (
	"testing"

	"cloud.google.com/go/firestore"

	"entitleBack/internal/models"
)

func TestDecisionUpdates_Premium(t *testing.T) {
	decision := models.EntitlementDecision{Package: models.PackagePremium, Reason: models.ReasonActive}

	updates := decisionUpdates(decision, "premium_monthly", "tok-123", "android")

	if len(updates) != 4 {
		t.Fatalf("expected all four fields to change together, got %d", len(updates))
	}
	byPath := map[string]interface{}{}
	for _, u := range updates {
		byPath[u.Path] = u.Value
	}
	if byPath["skuId"] != "premium_monthly" {
		t.Errorf("skuId mismatch: %v", byPath["skuId"])
	}
	if byPath["purchaseToken"] != "tok-123" {
		t.Errorf("purchaseToken mismatch: %v", byPath["purchaseToken"])
	}
	if byPath["source"] != "android" {
		t.Errorf("source mismatch: %v", byPath["source"])
	}
	if byPath["subscriptionPackage"] != "PREMIUM" {
		t.Errorf("subscriptionPackage mismatch: %v", byPath["subscriptionPackage"])
	}
}

func TestDecisionUpdates_FreeClearsVendorFields(t *testing.T) {
	decision := models.EntitlementDecision{Package: models.PackageFree, Reason: models.ReasonExpired}

	updates := decisionUpdates(decision, "premium_monthly", "tok-123", "android")

	if len(updates) != 4 {
		t.Fatalf("expected all four fields to change together, got %d", len(updates))
	}
	byPath := map[string]interface{}{}
	for _, u := range updates {
		byPath[u.Path] = u.Value
	}
	// FREE must delete the vendor fields, never write stale values.
	if byPath["skuId"] != firestore.Delete {
		t.Errorf("skuId must be deleted on FREE, got %v", byPath["skuId"])
	}
	if byPath["purchaseToken"] != firestore.Delete {
		t.Errorf("purchaseToken must be deleted on FREE, got %v", byPath["purchaseToken"])
	}
	if byPath["source"] != "android" {
		t.Errorf("source mismatch: %v", byPath["source"])
	}
	if byPath["subscriptionPackage"] != "FREE" {
		t.Errorf("subscriptionPackage mismatch: %v", byPath["subscriptionPackage"])
	}
}

func TestDecisionUpdates_Deterministic(t *testing.T) {
	decision := models.EntitlementDecision{Package: models.PackageFree, Reason: models.ReasonVendorRejected}

	first := decisionUpdates(decision, "sku", "tok", "ios")
	second := decisionUpdates(decision, "sku", "tok", "ios")

	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Path != second[i].Path || first[i].Value != second[i].Value {
			t.Errorf("update %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
