package capacity

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

// Repository хранилище боксов партнёров
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория боксов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает боксы партнёра в порядке объявления или ErrCapacityNotFound
func (r *Repository) Get(ctx context.Context, partnerID int64) (*domain.CapacityPlan, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("bay_id", "display_name", "category", "is_active", "updated_at").
		From("partner_bays").
		Where(squirrel.Eq{"partner_id": partnerID}).
		OrderBy("sort_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Get - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	plan := &domain.CapacityPlan{PartnerID: partnerID, Bays: make([]domain.Bay, 0)}
	for rows.Next() {
		var (
			bay       domain.Bay
			updatedAt time.Time
		)
		if err := rows.Scan(&bay.ID, &bay.DisplayName, &bay.Category, &bay.IsActive, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: Get - scan bay: %w", ErrScanRow, err)
		}
		if updatedAt.After(plan.UpdatedAt) {
			plan.UpdatedAt = updatedAt
		}
		plan.Bays = append(plan.Bays, bay)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Get - rows error: %w", ErrScanRow, err)
	}

	if len(plan.Bays) == 0 {
		return nil, ErrCapacityNotFound
	}

	return plan, nil
}

// Replace заменяет набор боксов партнёра целиком, сохраняя порядок как sort_order.
// Должен вызываться внутри транзакции.
func (r *Repository) Replace(ctx context.Context, plan *domain.CapacityPlan) (*domain.CapacityPlan, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("partner_bays").
		Where(squirrel.Eq{"partner_id": plan.PartnerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Replace - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Replace - execute delete: %w", ErrExecQuery, err)
	}

	if len(plan.Bays) == 0 {
		return plan, nil
	}

	insert := psqlbuilder.Insert("partner_bays").
		Columns("partner_id", "bay_id", "display_name", "category", "is_active", "sort_order")
	for i, bay := range plan.Bays {
		insert = insert.Values(plan.PartnerID, bay.ID, bay.DisplayName, bay.Category, bay.IsActive, i)
	}

	query, args, err = insert.Suffix("RETURNING updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Replace - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Replace - execute insert: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	saved := *plan
	for rows.Next() {
		if err := rows.Scan(&saved.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: Replace - scan row: %w", ErrScanRow, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Replace - rows error: %w", ErrScanRow, err)
	}

	return &saved, nil
}
