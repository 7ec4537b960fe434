package service

import (
	"context"
	"fmt"

	"go-packet-inventory/internal/events"
	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpenseService interface {
	CreateExpense(ctx context.Context, ownerID uuid.UUID, req *CreateExpenseRequest) (*model.Expense, error)
	GetAllExpenses(ctx context.Context, ownerID uuid.UUID) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	publisher   events.Publisher
	log         *zap.Logger
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, publisher events.Publisher, log *zap.Logger) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, publisher: publisher, log: log}
}

func (s *expenseService) CreateExpense(ctx context.Context, ownerID uuid.UUID, req *CreateExpenseRequest) (*model.Expense, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Amount.IsNegative() {
		return nil, model.InvalidInput("amount must not be negative")
	}
	if !model.HasMoneyScale(req.Amount) {
		return nil, model.InvalidInput("amount must have at most %d decimal places", model.MoneyPlaces)
	}

	expense := &model.Expense{
		OwnerID:  ownerID,
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	}
	expense.CreatedBy = ownerID.String()
	expense.UpdatedBy = ownerID.String()

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		logFailure(s.log, "create expense", ownerID, uuid.Nil, err)
		return nil, err
	}

	s.log.Info("expense created", zap.String("owner_id", ownerID.String()), zap.String("expense_id", expense.ID.String()))
	s.publisher.Publish(ctx, events.New(ownerID, events.ActionExpenseCreated, expense,
		fmt.Sprintf("Expense '%s' of %s added", expense.Category, expense.Amount.StringFixed(2))))
	return expense, nil
}

func (s *expenseService) GetAllExpenses(ctx context.Context, ownerID uuid.UUID) ([]model.Expense, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	return s.expenseRepo.FindAll(ctx, ownerID)
}

func (s *expenseService) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	if ownerID == uuid.Nil {
		return model.ErrUnauthorized
	}

	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if expense.OwnerID != ownerID {
		err := fmt.Errorf("expense %s: %w", id, model.ErrForbidden)
		logFailure(s.log, "delete expense", ownerID, id, err)
		return err
	}

	n, err := s.expenseRepo.Delete(ctx, ownerID, id)
	if err != nil {
		logFailure(s.log, "delete expense", ownerID, id, err)
		return err
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, model.ErrNotFound)
	}

	s.log.Info("expense deleted", zap.String("owner_id", ownerID.String()), zap.String("expense_id", id.String()))
	s.publisher.Publish(ctx, events.New(ownerID, events.ActionExpenseDeleted, expense,
		fmt.Sprintf("Expense '%s' removed", expense.Category)))
	return nil
}
