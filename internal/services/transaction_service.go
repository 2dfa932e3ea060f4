package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// TransactionInput is the payload shared by create and update.
type TransactionInput struct {
	Type        core.EntryType
	Amount      core.Money
	Year        int
	Month       int
	Day         int
	CategoryID  *string
	Description *string
}

type TransactionService struct {
	store  TransactionStore
	notify ChangeNotifier
}

func NewTransactionService(store TransactionStore, notify ChangeNotifier) *TransactionService {
	return &TransactionService{store: store, notify: orNoop(notify)}
}

// build validates the input and returns the normalized transaction.
func (s *TransactionService) build(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	if !in.Type.Valid() {
		return core.Transaction{}, core.ErrInvalidType
	}
	date, err := core.DateFromParts(in.Year, in.Month, in.Day)
	if err != nil {
		return core.Transaction{}, err
	}
	desc, err := core.NormalizeOptionalDescription(in.Description)
	if err != nil {
		return core.Transaction{}, err
	}

	var categoryID *string
	if in.CategoryID != nil && *in.CategoryID != "" {
		id := *in.CategoryID
		categoryID = &id
	}

	tx := core.Transaction{
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        date,
		CategoryID:  categoryID,
		Description: desc,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if categoryID != nil {
		if _, err := s.store.GetCategory(ctx, *categoryID); err != nil {
			if isNotFound(err) {
				return core.Transaction{}, core.Validationf("category %s does not exist", *categoryID)
			}
			return core.Transaction{}, fmt.Errorf("get category: %w", err)
		}
	}
	return tx, nil
}

func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (string, error) {
	tx, err := s.build(ctx, in)
	if err != nil {
		return "", err
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		if v := translate(err, "transaction category"); core.IsValidation(v) {
			return "", v
		}
		return "", fmt.Errorf("create transaction: %w", err)
	}

	s.logMutation(ctx, log.OpCreate, created)
	s.notify.PeriodChanged(ctx, created.Date.Period(), "transaction.create")
	return created.ID, nil
}

// Update replaces every field. Both the old and the new period are notified.
func (s *TransactionService) Update(ctx context.Context, id string, in TransactionInput) error {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return core.NotFoundf("transaction %s not found", id)
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	tx, err := s.build(ctx, in)
	if err != nil {
		return err
	}
	tx.ID = id

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		if isNotFound(err) {
			return core.NotFoundf("transaction %s not found", id)
		}
		if v := translate(err, "transaction category"); core.IsValidation(v) {
			return v
		}
		return fmt.Errorf("update transaction: %w", err)
	}

	s.logMutation(ctx, log.OpUpdate, tx)
	oldPeriod, newPeriod := existing.Date.Period(), tx.Date.Period()
	s.notify.PeriodChanged(ctx, newPeriod, "transaction.update")
	if oldPeriod != newPeriod {
		s.notify.PeriodChanged(ctx, oldPeriod, "transaction.update")
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return core.NotFoundf("transaction %s not found", id)
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		if isNotFound(err) {
			return core.NotFoundf("transaction %s not found", id)
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.logMutation(ctx, log.OpDelete, existing.Transaction)
	s.notify.PeriodChanged(ctx, existing.Date.Period(), "transaction.delete")
	return nil
}

// List filters to one month only when both year and month are given.
func (s *TransactionService) List(ctx context.Context, year, month *int) ([]core.TransactionView, error) {
	var period *core.Period
	if year != nil && month != nil {
		p := core.NewPeriod(*year, *month)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		period = &p
	}

	txs, err := s.store.ListTransactions(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) logMutation(ctx context.Context, op string, tx core.Transaction) {
	log.FromContext(ctx).WithComponent(log.ComponentTransaction).InfoContext(ctx, "Transaction "+op+"d",
		log.NewFields().
			WithID(tx.ID).
			WithOperation(op).
			WithPeriod(tx.Date.Period().Key()).
			WithAmount(tx.Amount.Cents).
			ToSlice()...)
}
