package services

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

type CategoryService struct {
	store  CategoryStore
	notify ChangeNotifier
}

func NewCategoryService(store CategoryStore, notify ChangeNotifier) *CategoryService {
	return &CategoryService{store: store, notify: orNoop(notify)}
}

// Create trims the name and rejects a duplicate (name, type) pair.
func (s *CategoryService) Create(ctx context.Context, name string, t core.EntryType) (string, error) {
	name, err := core.NormalizeCategoryName(name)
	if err != nil {
		return "", err
	}
	if !t.Valid() {
		return "", core.ErrInvalidType
	}

	_, err = s.store.FindCategory(ctx, name, t)
	switch {
	case err == nil:
		return "", core.Conflictf("category %q already exists for type %s", name, t)
	case !isNotFound(err):
		return "", fmt.Errorf("find category: %w", err)
	}

	c, err := s.store.CreateCategory(ctx, core.Category{Name: name, Type: t})
	if err != nil {
		if conflict := translate(err, fmt.Sprintf("category %q", name)); core.IsConflict(conflict) {
			return "", conflict
		}
		return "", fmt.Errorf("create category: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentCategory).InfoContext(ctx, "Category created",
		log.FieldID, c.ID, log.FieldEntryType, t.String())
	return c.ID, nil
}

// Delete removes a category. Dependent transactions and budgets go with it,
// so every period may have changed.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if isNotFound(err) {
			return core.NotFoundf("category %s not found", id)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentCategory).InfoContext(ctx, "Category deleted", log.FieldID, id)
	s.notify.AllChanged(ctx, "category.delete")
	return nil
}

// List returns categories ordered by type, then name.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func isNotFound(err error) bool {
	return errors.Is(translate(err, ""), core.ErrNotFound)
}

type noopNotifier struct{}

func (noopNotifier) PeriodChanged(context.Context, core.Period, string) {}
func (noopNotifier) AllChanged(context.Context, string)                 {}

func orNoop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
