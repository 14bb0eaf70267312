package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

// Repository хранилище недельных расписаний партнёров
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает расписание партнёра или ErrScheduleNotFound
func (r *Repository) Get(ctx context.Context, partnerID int64) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"partner_id",
		"days",
		"buffer_minutes",
		"max_advance_days",
		"min_booking_notice_minutes",
		"updated_at",
	).
		From("partner_schedules").
		Where(squirrel.Eq{"partner_id": partnerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		s    domain.WeeklySchedule
		days []byte
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.PartnerID,
		&days,
		&s.BufferMinutes,
		&s.MaxAdvanceDays,
		&s.MinBookingNoticeMinutes,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan schedule: %w", ErrScanRow, err)
	}

	if err := json.Unmarshal(days, &s.Days); err != nil {
		return nil, fmt.Errorf("%w: Get: %v", ErrEncode, err)
	}

	return &s, nil
}

// Upsert создает или заменяет расписание партнёра
func (r *Repository) Upsert(ctx context.Context, s *domain.WeeklySchedule) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	days, err := json.Marshal(s.Days)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert("partner_schedules").
		Columns("partner_id", "days", "buffer_minutes", "max_advance_days", "min_booking_notice_minutes").
		Values(s.PartnerID, string(days), s.BufferMinutes, s.MaxAdvanceDays, s.MinBookingNoticeMinutes).
		Suffix(`ON CONFLICT (partner_id) DO UPDATE SET
			days = EXCLUDED.days,
			buffer_minutes = EXCLUDED.buffer_minutes,
			max_advance_days = EXCLUDED.max_advance_days,
			min_booking_notice_minutes = EXCLUDED.min_booking_notice_minutes,
			updated_at = NOW()
		RETURNING updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	saved := *s
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&saved.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	return &saved, nil
}
