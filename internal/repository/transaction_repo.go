package repository

import (
	"context"
	"time"

	"go-packet-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	Create(tx *gorm.DB, txn *model.Transaction) error
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]model.Transaction, error)
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Transaction, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error)
	SoftDelete(tx *gorm.DB, ownerID, id uuid.UUID) (int64, error)
	UpdatePaymentStatus(tx *gorm.DB, ownerID, id uuid.UUID, from, to model.PaymentStatus) (int64, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(tx *gorm.DB, txn *model.Transaction) error {
	txn.CreatedBy = txn.OwnerID.String()
	txn.UpdatedBy = txn.OwnerID.String()
	return translateError("insert transaction", tx.Omit("Product").Create(txn).Error)
}

func (r *transactionRepo) FindAll(ctx context.Context, ownerID uuid.UUID) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&transactions).Error
	return transactions, translateError("list transactions", err)
}

func (r *transactionRepo) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).Preload("Product").First(&txn, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		return nil, translateError("find transaction", err)
	}
	return &txn, nil
}

// FindForUpdate loads a row regardless of owner and locks it (FOR UPDATE on
// PostgreSQL) so the caller can check ownership before mutating.
func (r *transactionRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&txn, "id = ?", id).Error
	if err != nil {
		return nil, translateError("find transaction", err)
	}
	return &txn, nil
}

// SoftDelete hides the row from every read. Only one of two concurrent
// deletes sees a row affected.
func (r *transactionRepo) SoftDelete(tx *gorm.DB, ownerID, id uuid.UUID) (int64, error) {
	res := tx.Model(&model.Transaction{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_by": ownerID.String(),
		})
	return res.RowsAffected, translateError("delete transaction", res.Error)
}

func (r *transactionRepo) UpdatePaymentStatus(tx *gorm.DB, ownerID, id uuid.UUID, from, to model.PaymentStatus) (int64, error) {
	res := tx.Model(&model.Transaction{}).
		Where("id = ? AND owner_id = ? AND payment_status = ?", id, ownerID, from).
		Updates(map[string]interface{}{
			"payment_status": to,
			"updated_by":     ownerID.String(),
		})
	return res.RowsAffected, translateError("update payment status", res.Error)
}
