package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

const table = "bookings"

var columns = []string{
	"id",
	"customer_id",
	"partner_id",
	"service_id",
	"service_name",
	"category",
	"bay_id",
	"slot_date",
	"slot_start",
	"slot_end",
	"status",
	"delivery_required",
	"car_id",
	"vehicle_body_type",
	"subscription_tier",
	"products",
	"base_price",
	"subscription_discount",
	"products_total",
	"subtotal",
	"platform_fee",
	"final_price",
	"partner_payout",
	"notes",
	"cancelled_by",
	"cancellation_reason",
	"cancelled_at",
	"rescheduled_from_date",
	"rescheduled_from_start",
	"rescheduled_from_end",
	"rescheduled_from_bay_id",
	"rescheduled_at",
	"reschedule_count",
	"started_at",
	"completed_at",
	"status_changed_at",
	"created_at",
	"updated_at",
}

// Repository журнал бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое бронирование.
// Вызывается аллокатором внутри транзакции, полученной через context.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	products, err := json.Marshal(booking.Products)
	if err != nil {
		return nil, fmt.Errorf("%w: Create: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"customer_id",
			"partner_id",
			"service_id",
			"service_name",
			"category",
			"bay_id",
			"slot_date",
			"slot_start",
			"slot_end",
			"status",
			"delivery_required",
			"car_id",
			"vehicle_body_type",
			"subscription_tier",
			"products",
			"base_price",
			"subscription_discount",
			"products_total",
			"subtotal",
			"platform_fee",
			"final_price",
			"partner_payout",
			"notes",
		).
		Values(
			booking.CustomerID,
			booking.PartnerID,
			booking.ServiceID,
			booking.ServiceName,
			booking.Category,
			booking.BayID,
			dateParam(booking.SlotDate),
			booking.SlotStart,
			booking.SlotEnd,
			booking.Status,
			booking.DeliveryRequired,
			booking.CarID,
			booking.VehicleBodyType,
			booking.SubscriptionTier,
			string(products),
			booking.Pricing.BasePrice,
			booking.Pricing.SubscriptionDiscount,
			booking.Pricing.ProductsTotal,
			booking.Pricing.Subtotal,
			booking.Pricing.PlatformFee,
			booking.Pricing.FinalPrice,
			booking.Pricing.PartnerPayout,
			booking.Notes,
		).
		Suffix("RETURNING id, status_changed_at, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created := *booking
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&created.ID,
		&created.StatusChangedAt,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return &created, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListActiveForSlotDay возвращает активные бронирования ключа конкуренции
// (партнёр, категория, дата). Внутри транзакции строки блокируются.
func (r *Repository) ListActiveForSlotDay(ctx context.Context, partnerID int64, category domain.Category, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"partner_id": partnerID,
			"category":   category,
			"slot_date":  dateParam(date),
			"status":     statusStrings(domain.ActiveStatuses),
		}).
		OrderBy("slot_start ASC", "id ASC")
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForSlotDay - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListActiveForSlotDay", query, args)
}

// ListActiveForPartnerDay возвращает активные бронирования партнёра на дату по всем категориям
func (r *Repository) ListActiveForPartnerDay(ctx context.Context, partnerID int64, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"partner_id": partnerID,
			"slot_date":  dateParam(date),
			"status":     statusStrings(domain.ActiveStatuses),
		}).
		OrderBy("slot_start ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForPartnerDay - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "ListActiveForPartnerDay", query, args)
}

// GetByCustomer получает бронирования клиента, опционально по статусу
func (r *Repository) GetByCustomer(ctx context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"customer_id": filter.CustomerID}).
		OrderBy("slot_date DESC", "slot_start DESC")

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "GetByCustomer", query, args)
}

// GetByPartnerWithFilter получает бронирования партнёра с фильтрацией.
// Date имеет приоритет над периодом From/To. Без Status и IncludeInactive
// возвращаются только активные бронирования.
func (r *Repository) GetByPartnerWithFilter(ctx context.Context, filter domain.PartnerBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"partner_id": filter.PartnerID})

	switch {
	case filter.Date != nil:
		builder = builder.Where(squirrel.Eq{"slot_date": dateParam(*filter.Date)})
	default:
		if filter.From != nil {
			builder = builder.Where(squirrel.GtOrEq{"slot_date": dateParam(*filter.From)})
		}
		if filter.To != nil {
			builder = builder.Where(squirrel.LtOrEq{"slot_date": dateParam(*filter.To)})
		}
	}

	if filter.Category != nil {
		builder = builder.Where(squirrel.Eq{"category": *filter.Category})
	}

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		builder = builder.Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)})
	}

	if filter.Date != nil {
		builder = builder.OrderBy("slot_start ASC", "bay_id ASC")
	} else {
		builder = builder.OrderBy("slot_date DESC", "slot_start DESC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPartnerWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "GetByPartnerWithFilter", query, args)
}

// UpdateStatus переводит бронирование в новый статус и проставляет отметки времени этапов
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(table).
		Set("status", status).
		Set("status_changed_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id})

	switch status {
	case domain.StatusInProgress:
		builder = builder.Set("started_at", at)
	case domain.StatusCompleted:
		builder = builder.Set("completed_at", at)
	}

	query, args, err := builder.Suffix("RETURNING " + joinColumns()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// Cancel отменяет бронирование. Бокс освобождается, так как статус выходит из активного множества.
func (r *Repository) Cancel(ctx context.Context, id int64, actor domain.Actor, reason *string, at time.Time) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.StatusCancelled).
		Set("cancelled_by", actor).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("status_changed_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// MoveSlot записывает новое окно и бокс бронирования вместе с полями rescheduledFrom*
func (r *Repository) MoveSlot(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var fromDate interface{}
	if booking.RescheduledFromDate != nil {
		fromDate = dateParam(*booking.RescheduledFromDate)
	}

	query, args, err := psqlbuilder.Update(table).
		Set("bay_id", booking.BayID).
		Set("slot_date", dateParam(booking.SlotDate)).
		Set("slot_start", booking.SlotStart).
		Set("slot_end", booking.SlotEnd).
		Set("rescheduled_from_date", fromDate).
		Set("rescheduled_from_start", booking.RescheduledFromStart).
		Set("rescheduled_from_end", booking.RescheduledFromEnd).
		Set("rescheduled_from_bay_id", booking.RescheduledFromBayID).
		Set("rescheduled_at", booking.RescheduledAt).
		Set("reschedule_count", booking.RescheduleCount).
		Set("updated_at", booking.UpdatedAt).
		Where(squirrel.Eq{"id": booking.ID}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: MoveSlot - build update query: %v", ErrBuildQuery, err)
	}

	moved, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: MoveSlot - execute update: %w", ErrExecQuery, err)
	}

	return moved, nil
}

// AddSlotHistory добавляет запись об окне, которое покинуло бронирование
func (r *Repository) AddSlotHistory(ctx context.Context, entry *domain.SlotHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_slot_history").
		Columns("booking_id", "bay_id", "slot_date", "slot_start", "slot_end", "status", "actor", "reason", "created_at").
		Values(
			entry.BookingID,
			entry.BayID,
			dateParam(entry.SlotDate),
			entry.SlotStart,
			entry.SlotEnd,
			entry.Status,
			entry.Actor,
			entry.Reason,
			entry.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddSlotHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("%w: AddSlotHistory - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// GetSlotHistory возвращает историю окон бронирования от старых к новым
func (r *Repository) GetSlotHistory(ctx context.Context, bookingID int64) ([]*domain.SlotHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "booking_id", "bay_id", "slot_date", "slot_start", "slot_end", "status", "actor", "reason", "created_at").
		From("booking_slot_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotHistory - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.SlotHistoryEntry, 0)
	for rows.Next() {
		var e domain.SlotHistoryEntry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.BayID, &e.SlotDate, &e.SlotStart, &e.SlotEnd, &e.Status, &e.Actor, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetSlotHistory - scan row: %w", ErrScanRow, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetSlotHistory - rows error: %w", ErrScanRow, err)
	}

	return entries, nil
}

func (r *Repository) query(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Booking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return bookings, nil
}
