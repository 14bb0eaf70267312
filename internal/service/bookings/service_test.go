package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *mockRepo) GetByCustomer(ctx context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]*domain.Booking)
	return b, args.Error(1)
}

func (m *mockRepo) GetByPartnerWithFilter(ctx context.Context, filter domain.PartnerBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]*domain.Booking)
	return b, args.Error(1)
}

func (m *mockRepo) GetSlotHistory(ctx context.Context, bookingID int64) ([]*domain.SlotHistoryEntry, error) {
	args := m.Called(ctx, bookingID)
	h, _ := args.Get(0).([]*domain.SlotHistoryEntry)
	return h, args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, at time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, id, status, at)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

func (m *mockRepo) Cancel(ctx context.Context, id int64, actor domain.Actor, reason *string, at time.Time) (*domain.Booking, error) {
	args := m.Called(ctx, id, actor, reason, at)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

type mockSeller struct{ mock.Mock }

func (m *mockSeller) GetPartner(ctx context.Context, partnerID int64) (*sellerservice.Partner, error) {
	args := m.Called(ctx, partnerID)
	p, _ := args.Get(0).(*sellerservice.Partner)
	return p, args.Error(1)
}

type passTx struct{}

func (passTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type countingMetrics struct{ transitions []string }

func (m *countingMetrics) IncStatusTransition(status string) {
	m.transitions = append(m.transitions, status)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

const (
	customerID = int64(7)
	managerID  = int64(100)
	partnerID  = int64(1)
)

var now = time.Date(2025, 10, 14, 9, 0, 0, 0, time.UTC)

func newService(repo *mockRepo, seller *mockSeller, metrics *countingMetrics) *Service {
	return NewService(repo, seller, passTx{}, metrics, fixedTime{now: now},
		Settings{Location: time.UTC, CancellationWindowHours: 24}, nopLogger{})
}

func bookingAt(date time.Time, start string, status domain.BookingStatus) *domain.Booking {
	s := types.MustMinuteOfDay(start)
	return &domain.Booking{
		ID:         42,
		CustomerID: customerID,
		PartnerID:  partnerID,
		Category:   domain.CategoryWash,
		BayID:      1,
		SlotDate:   date,
		SlotStart:  s,
		SlotEnd:    s.AddMinutes(60),
		Status:     status,
	}
}

func partner() *sellerservice.Partner {
	return &sellerservice.Partner{ID: partnerID, ManagerIDs: []int64{managerID}}
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	tomorrow := now.AddDate(0, 0, 1)

	t.Run("owner sees booking with history", func(t *testing.T) {
		repo, seller := &mockRepo{}, &mockSeller{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(tomorrow, "10:00", domain.StatusBooked), nil)
		repo.On("GetSlotHistory", ctx, int64(42)).Return([]*domain.SlotHistoryEntry{
			{BookingID: 42, BayID: 2, SlotDate: tomorrow, SlotStart: types.MustMinuteOfDay("09:00"),
				SlotEnd: types.MustMinuteOfDay("10:00"), Status: domain.StatusRescheduled, Actor: domain.ActorCustomer},
		}, nil)

		resp, err := newService(repo, seller, &countingMetrics{}).GetByID(ctx, 42, customerID)
		require.NoError(t, err)
		assert.Equal(t, "10:00", resp.Start)
		assert.Equal(t, "11:00", resp.End)
		require.Len(t, resp.SlotHistory, 1)
		assert.Equal(t, "rescheduled", resp.SlotHistory[0].Status)
		require.NotNil(t, resp.NextStatus)
		assert.Equal(t, "in_progress", *resp.NextStatus)
		seller.AssertNotCalled(t, "GetPartner", mock.Anything, mock.Anything)
	})

	t.Run("stranger is denied", func(t *testing.T) {
		repo, seller := &mockRepo{}, &mockSeller{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(tomorrow, "10:00", domain.StatusBooked), nil)
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)

		_, err := newService(repo, seller, &countingMetrics{}).GetByID(ctx, 42, 555)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByID", ctx, int64(42)).Return(nil, bookingRepo.ErrBookingNotFound)

		_, err := newService(repo, &mockSeller{}, &countingMetrics{}).GetByID(ctx, 42, customerID)
		assert.ErrorIs(t, err, ErrBookingNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("customer cancels outside the window", func(t *testing.T) {
		repo, metrics := &mockRepo{}, &countingMetrics{}
		b := bookingAt(now.AddDate(0, 0, 2), "10:00", domain.StatusBooked)
		repo.On("GetByID", ctx, int64(42)).Return(b, nil)
		cancelled := *b
		cancelled.Status = domain.StatusCancelled
		repo.On("Cancel", ctx, int64(42), domain.ActorCustomer, (*string)(nil), now).Return(&cancelled, nil)

		resp, err := newService(repo, &mockSeller{}, metrics).Cancel(ctx, 42, &models.CancelBookingRequest{UserID: customerID})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.Equal(t, []string{"cancelled"}, metrics.transitions)
	})

	t.Run("inside the window is rejected", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(now, "20:00", domain.StatusBooked), nil)

		_, err := newService(repo, &mockSeller{}, &countingMetrics{}).Cancel(ctx, 42, &models.CancelBookingRequest{UserID: customerID})
		assert.ErrorIs(t, err, domain.ErrCancellationWindowViolated)
		repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completed booking cannot be cancelled", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(now.AddDate(0, 0, 3), "10:00", domain.StatusCompleted), nil)

		_, err := newService(repo, &mockSeller{}, &countingMetrics{}).Cancel(ctx, 42, &models.CancelBookingRequest{UserID: customerID})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("manager cancels as partner", func(t *testing.T) {
		repo, seller := &mockRepo{}, &mockSeller{}
		b := bookingAt(now.AddDate(0, 0, 2), "10:00", domain.StatusBooked)
		repo.On("GetByID", ctx, int64(42)).Return(b, nil)
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)
		reason := "bay maintenance"
		repo.On("Cancel", ctx, int64(42), domain.ActorPartner, &reason, now).Return(b, nil)

		_, err := newService(repo, seller, &countingMetrics{}).Cancel(ctx, 42, &models.CancelBookingRequest{
			UserID: managerID, Actor: domain.ActorPartner, Reason: &reason,
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("customer actor must own the booking", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(now.AddDate(0, 0, 2), "10:00", domain.StatusBooked), nil)

		_, err := newService(repo, &mockSeller{}, &countingMetrics{}).Cancel(ctx, 42, &models.CancelBookingRequest{
			UserID: managerID, Actor: domain.ActorCustomer,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_AdvanceStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("booked to in_progress", func(t *testing.T) {
		repo, seller, metrics := &mockRepo{}, &mockSeller{}, &countingMetrics{}
		b := bookingAt(now, "10:00", domain.StatusBooked)
		repo.On("GetByID", ctx, int64(42)).Return(b, nil)
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)
		started := *b
		started.Status = domain.StatusInProgress
		repo.On("UpdateStatus", ctx, int64(42), domain.StatusInProgress, now).Return(&started, nil)

		resp, err := newService(repo, seller, metrics).AdvanceStatus(ctx, 42, &models.AdvanceStatusRequest{
			UserID: managerID, TargetStatus: domain.StatusInProgress,
		})
		require.NoError(t, err)
		assert.Equal(t, "in_progress", resp.Status)
		assert.Equal(t, []string{"in_progress"}, metrics.transitions)
	})

	t.Run("skipping a step is rejected", func(t *testing.T) {
		repo, seller := &mockRepo{}, &mockSeller{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(now, "10:00", domain.StatusBooked), nil)
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)

		_, err := newService(repo, seller, &countingMetrics{}).AdvanceStatus(ctx, 42, &models.AdvanceStatusRequest{
			UserID: managerID, TargetStatus: domain.StatusCompleted,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("delivery path needs delivery flag", func(t *testing.T) {
		repo, seller := &mockRepo{}, &mockSeller{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(now, "10:00", domain.StatusCompleted), nil)
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)

		_, err := newService(repo, seller, &countingMetrics{}).AdvanceStatus(ctx, 42, &models.AdvanceStatusRequest{
			UserID: managerID, TargetStatus: domain.StatusPicked,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("customer cannot advance", func(t *testing.T) {
		repo, seller := &mockRepo{}, &mockSeller{}
		repo.On("GetByID", ctx, int64(42)).Return(bookingAt(now, "10:00", domain.StatusBooked), nil)
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)

		_, err := newService(repo, seller, &countingMetrics{}).AdvanceStatus(ctx, 42, &models.AdvanceStatusRequest{
			UserID: customerID, TargetStatus: domain.StatusInProgress,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_GetPartnerBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("filter is passed to repository", func(t *testing.T) {
		repo, seller := &mockRepo{}, &mockSeller{}
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)
		category := "detailing"
		repo.On("GetByPartnerWithFilter", ctx, mock.MatchedBy(func(f domain.PartnerBookingsFilter) bool {
			return f.PartnerID == partnerID && f.Category != nil && *f.Category == domain.CategoryDetailing
		})).Return([]*domain.Booking{bookingAt(now, "10:00", domain.StatusBooked)}, nil)

		resp, err := newService(repo, seller, &countingMetrics{}).GetPartnerBookings(ctx, &models.GetPartnerBookingsRequest{
			UserID: managerID, PartnerID: partnerID, Category: &category,
		})
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 1)
	})

	t.Run("unknown status", func(t *testing.T) {
		seller := &mockSeller{}
		seller.On("GetPartner", ctx, partnerID).Return(partner(), nil)
		status := "confirmed"

		_, err := newService(&mockRepo{}, seller, &countingMetrics{}).GetPartnerBookings(ctx, &models.GetPartnerBookingsRequest{
			UserID: managerID, PartnerID: partnerID, Status: &status,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("partner missing", func(t *testing.T) {
		seller := &mockSeller{}
		seller.On("GetPartner", ctx, partnerID).Return(nil, sellerservice.ErrPartnerNotFound)

		_, err := newService(&mockRepo{}, seller, &countingMetrics{}).GetPartnerBookings(ctx, &models.GetPartnerBookingsRequest{
			UserID: managerID, PartnerID: partnerID,
		})
		assert.ErrorIs(t, err, ErrPartnerNotFound)
	})
}

func TestService_GetCustomerBookings(t *testing.T) {
	ctx := context.Background()

	_, err := newService(&mockRepo{}, &mockSeller{}, &countingMetrics{}).GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{
		UserID: 1, CustomerID: customerID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	repo := &mockRepo{}
	repo.On("GetByCustomer", ctx, domain.CustomerBookingsFilter{CustomerID: customerID}).Return([]*domain.Booking{}, nil)
	resp, err := newService(repo, &mockSeller{}, &countingMetrics{}).GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{
		UserID: customerID, CustomerID: customerID,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)
}
