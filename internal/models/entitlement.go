package models

// Platform identifies the billing authority that issued a purchase token.
type Platform string

const (
	PlatformGooglePlay Platform = "GOOGLE_PLAY"
	PlatformApple      Platform = "APPLE"
)

// PurchaseVerificationRequest carries one verification call. It is built per
// request and never persisted. PurchaseToken is opaque and vendor specific;
// log it only through utils.MaskToken.
type PurchaseVerificationRequest struct {
	Platform      Platform `json:"-"`
	SKUID         string   `json:"sku_id"`
	PurchaseToken string   `json:"purchase_token"`
	PackageName   string   `json:"package_name,omitempty"`
	UserID        string   `json:"user_id"`
	Source        string   `json:"source"`
}

// VerificationState discriminates the normalized vendor result.
type VerificationState int

const (
	VerificationValid VerificationState = iota
	VerificationInvalid
	VerificationTransient
)

// VendorVerification is the normalized union of the two vendor response
// shapes. Millisecond epochs use 0 for "vendor omitted the field".
// It lives only for the duration of one verification call.
type VendorVerification struct {
	State VerificationState

	ExpiryTimeMillis       int64
	CancellationTimeMillis int64

	VendorStatusCode int
	VendorMessage    string

	Cause error
}

func ValidVerification(expiryMillis, cancellationMillis int64) VendorVerification {
	return VendorVerification{
		State:                  VerificationValid,
		ExpiryTimeMillis:       expiryMillis,
		CancellationTimeMillis: cancellationMillis,
	}
}

func InvalidVerification(statusCode int, message string) VendorVerification {
	return VendorVerification{
		State:            VerificationInvalid,
		VendorStatusCode: statusCode,
		VendorMessage:    message,
	}
}

func TransientVerification(cause error) VendorVerification {
	return VendorVerification{State: VerificationTransient, Cause: cause}
}

// SubscriptionPackage is the entitlement tier stored on the user record.
type SubscriptionPackage string

const (
	PackagePremium SubscriptionPackage = "PREMIUM"
	PackageFree    SubscriptionPackage = "FREE"
)

// ReasonCode explains why an entitlement decision landed on its package.
type ReasonCode string

const (
	ReasonActive            ReasonCode = "active"
	ReasonExpired           ReasonCode = "expired"
	ReasonCancelled         ReasonCode = "cancelled"
	ReasonVendorRejected    ReasonCode = "vendor_rejected"
	ReasonVendorUnreachable ReasonCode = "vendor_unreachable"
)

// EntitlementDecision is derived deterministically from a VendorVerification
// and a wall-clock instant. No hidden state.
type EntitlementDecision struct {
	Package SubscriptionPackage
	Reason  ReasonCode
}

// UserEntitlementRecord is the entitlement subset of the users/{userId}
// document. A FREE record never carries skuId or purchaseToken: the writer
// deletes both fields so a stale token can never re-grant downstream.
type UserEntitlementRecord struct {
	SKUID               string              `json:"sku_id,omitempty" firestore:"skuId"`
	PurchaseToken       string              `json:"purchase_token,omitempty" firestore:"purchaseToken"`
	Source              string              `json:"source,omitempty" firestore:"source"`
	SubscriptionPackage SubscriptionPackage `json:"subscription_package" firestore:"subscriptionPackage"`
}

// VerificationOutcome is the caller-facing result of one verification call.
type VerificationOutcome struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
