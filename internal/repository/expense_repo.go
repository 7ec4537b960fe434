package repository

import (
	"context"
	"time"

	"go-packet-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]model.Expense, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (int64, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db}
}

func (r *expenseRepo) Create(ctx context.Context, expense *model.Expense) error {
	return translateError("create expense", r.db.WithContext(ctx).Create(expense).Error)
}

func (r *expenseRepo) FindAll(ctx context.Context, ownerID uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&expenses).Error
	return expenses, translateError("list expenses", err)
}

// FindByID is not owner-scoped; callers compare OwnerID themselves.
func (r *expenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, translateError("find expense", err)
	}
	return &expense, nil
}

func (r *expenseRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Expense{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"deleted_by": ownerID.String(),
		})
	return res.RowsAffected, translateError("delete expense", res.Error)
}
