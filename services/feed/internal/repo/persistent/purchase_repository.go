package persistent

import (
	"context"
	"fmt"
	"time"

	"girlfanz/pkg/models"
	"girlfanz/services/feed/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRepository is the purchase ledger.
type PurchaseRepository interface {
	// PurchasedPostIDs returns the subset of postIDs the viewer holds an
	// active purchase for.
	PurchasedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]struct{}, error)
	// RecordPurchase stores a purchase. Recording the same viewer and post
	// again replaces price and expiry. Returns
	// entity.ErrPurchaseTargetNotFound when the viewer or post is unknown.
	RecordPurchase(ctx context.Context, purchase entity.Purchase) error
}

type purchaseRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db, now: time.Now}
}

func (r *purchaseRepository) PurchasedPostIDs(ctx context.Context, viewerID string, postIDs []string) (map[string]struct{}, error) {
	result := make(map[string]struct{})
	if viewerID == "" || len(postIDs) == 0 {
		return result, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("viewer_id = ? AND post_id IN ?", viewerID, postIDs).
		Where("(expires_at IS NULL OR expires_at > ?)", r.now().UTC()).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	for _, id := range ids {
		result[id] = struct{}{}
	}
	return result, nil
}

func (r *purchaseRepository) RecordPurchase(ctx context.Context, purchase entity.Purchase) error {
	if purchase.ViewerID == "" || purchase.PostID == "" {
		return fmt.Errorf("purchase requires viewer and post")
	}

	model := ToPurchaseModel(purchase)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.User{}, "viewer", purchase.ViewerID); err != nil {
			return err
		}
		if err := requireRow(tx, &models.Post{}, "post", purchase.PostID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "viewer_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price_in_cents", "expires_at", "updated_at"}),
		}).Create(model).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	return nil
}

// requireRow mirrors the purchases foreign keys, which also accept
// soft-deleted rows.
func requireRow(tx *gorm.DB, model interface{}, kind, id string) error {
	var count int64
	if err := tx.Unscoped().Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %s", entity.ErrPurchaseTargetNotFound, kind, id)
	}
	return nil
}
