package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"entitleBack/internal/models"
)

const usersCollection = "users"

// EntitlementRepository owns the entitlement subset of the users/{userId}
// documents. Writes are unconditional full overwrites of the four
// entitlement fields; two calls for the same user are last-writer-wins,
// which is acceptable because every caller recomputes the record from a
// fresh vendor read. A conditional update keyed on the document revision
// would be the upgrade path if exactly-once ever matters.
type EntitlementRepository struct {
	Client *firestore.Client
}

func (r *EntitlementRepository) userDoc(userID string) *firestore.DocumentRef {
	return r.Client.Collection(usersCollection).Doc(userID)
}

func (r *EntitlementRepository) GetEntitlement(ctx context.Context, userID string) (models.UserEntitlementRecord, error) {
	snap, err := r.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.UserEntitlementRecord{}, models.ErrUserNotFound
		}
		return models.UserEntitlementRecord{}, fmt.Errorf("get users/%s: %w", userID, err)
	}

	var record models.UserEntitlementRecord
	if err := snap.DataTo(&record); err != nil {
		return models.UserEntitlementRecord{}, fmt.Errorf("decode users/%s: %w", userID, err)
	}
	return record, nil
}

// ApplyDecision performs the single terminal write of a verification call.
// All four fields change together; on FREE the vendor fields are deleted,
// never left stale. Idempotent: re-applying a decision leaves the stored
// record unchanged.
func (r *EntitlementRepository) ApplyDecision(ctx context.Context, userID string, decision models.EntitlementDecision, skuID, purchaseToken, source string) error {
	_, err := r.userDoc(userID).Update(ctx, decisionUpdates(decision, skuID, purchaseToken, source))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &models.PersistenceError{Op: "update users/" + userID, Err: models.ErrUserNotFound}
		}
		return &models.PersistenceError{Op: "update users/" + userID, Err: err}
	}
	return nil
}

func decisionUpdates(decision models.EntitlementDecision, skuID, purchaseToken, source string) []firestore.Update {
	if decision.Package == models.PackagePremium {
		return []firestore.Update{
			{Path: "skuId", Value: skuID},
			{Path: "purchaseToken", Value: purchaseToken},
			{Path: "source", Value: source},
			{Path: "subscriptionPackage", Value: string(models.PackagePremium)},
		}
	}
	return []firestore.Update{
		{Path: "skuId", Value: firestore.Delete},
		{Path: "purchaseToken", Value: firestore.Delete},
		{Path: "source", Value: source},
		{Path: "subscriptionPackage", Value: string(models.PackageFree)},
	}
}

// DeviceTokens returns the fcmTokens array of the user document. A user
// without registered devices is not an error.
func (r *EntitlementRepository) DeviceTokens(ctx context.Context, userID string) ([]string, error) {
	snap, err := r.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("get users/%s: %w", userID, err)
	}

	raw, err := snap.DataAt("fcmTokens")
	if err != nil {
		return nil, nil
	}
	values, ok := raw.([]interface{})
	if !ok {
		return nil, nil
	}
	tokens := make([]string, 0, len(values))
	for _, v := range values {
		if token, ok := v.(string); ok && token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

func (r *EntitlementRepository) RegisterDeviceToken(ctx context.Context, userID, token string) error {
	_, err := r.userDoc(userID).Update(ctx, []firestore.Update{
		{Path: "fcmTokens", Value: firestore.ArrayUnion(token)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrUserNotFound
		}
		return fmt.Errorf("register token for users/%s: %w", userID, err)
	}
	return nil
}

func (r *EntitlementRepository) RemoveDeviceToken(ctx context.Context, userID, token string) error {
	_, err := r.userDoc(userID).Update(ctx, []firestore.Update{
		{Path: "fcmTokens", Value: firestore.ArrayRemove(token)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ErrUserNotFound
		}
		return fmt.Errorf("remove token for users/%s: %w", userID, err)
	}
	return nil
}
