package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	sellerClient "github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// Settings параметры жизненного цикла бронирований
type Settings struct {
	Location                *time.Location
	CancellationWindowHours int
}

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	sellerClient SellerServiceClient
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	settings     Settings
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	sellerClient SellerServiceClient,
	txManager TransactionManager,
	metrics Metrics,
	timeProvider TimeProvider,
	settings Settings,
	logger Logger,
) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Service{
		bookingRepo:  bookingRepo,
		sellerClient: sellerClient,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: timeProvider,
		settings:     settings,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID вместе с историей окон.
// Пользователь видит своё бронирование, менеджер видит бронирования своего партнёра.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	history, err := s.bookingRepo.GetSlotHistory(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to get slot history for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - slot history: %v", ErrInternal, err)
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking).WithSlotHistory(history), nil
}

// GetCustomerBookings получает историю бронирований клиента.
// Клиент видит только свои бронирования.
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d, status=%v", req.CustomerID, req.Status)

	if req.UserID != req.CustomerID {
		s.logger.Warn("GetCustomerBookings: user=%d requested bookings of customer=%d", req.UserID, req.CustomerID)
		return nil, ErrAccessDenied
	}

	filter := domain.CustomerBookingsFilter{CustomerID: req.CustomerID}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByCustomer(ctx, filter)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: successfully fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetPartnerBookings получает бронирования партнёра с фильтрацией по дате,
// периоду, категории и статусу. Доступно только менеджерам партнёра.
func (s *Service) GetPartnerBookings(ctx context.Context, req *models.GetPartnerBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetPartnerBookings: fetching bookings for partner=%d, user=%d", req.PartnerID, req.UserID)
	if req.Date != nil {
		logMsg += fmt.Sprintf(", date=%s", req.Date.Format(domain.DateFormat))
	}
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))
	}
	if req.Category != nil {
		logMsg += fmt.Sprintf(", category=%s", *req.Category)
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if err := s.checkManagerAccess(ctx, req.PartnerID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetPartnerBookings: invalid filter for partner=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: invalid filter: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByPartnerWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetPartnerBookings: repository error for partner=%d: %v", req.PartnerID, err)
		return nil, fmt.Errorf("%w: GetPartnerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetPartnerBookings: successfully fetched %d bookings for partner=%d", len(bookings), req.PartnerID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование и освобождает бокс.
// Клиент отменяет своё бронирование, менеджер любое бронирование партнёра.
// Отмена допустима только в активном статусе и не позже окна отмены до начала.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d as %s", bookingID, req.UserID, req.Actor)

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	booking, err := s.getBooking(ctx, "Cancel", bookingID)
	if err != nil {
		return nil, err
	}

	actor, err := s.resolveActor(ctx, booking, req)
	if err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return nil, err
	}

	var cancelled *domain.Booking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		locked, err := s.getBooking(txCtx, "Cancel", bookingID)
		if err != nil {
			return err
		}

		if err := locked.CanCancel(s.timeProvider.Now(), s.settings.Location, s.settings.CancellationWindowHours); err != nil {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled: %v", bookingID, err)
			return err
		}

		cancelled, err = s.bookingRepo.Cancel(txCtx, bookingID, actor, req.Reason, s.timeProvider.Now())
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStatusTransition(string(domain.StatusCancelled))
	s.logger.Info("Cancel: successfully cancelled booking id=%d by %s", bookingID, actor)
	return models.FromDomainBooking(cancelled), nil
}

// AdvanceStatus переводит бронирование в следующий статус жизненного цикла.
// Доступно только менеджерам партнёра.
func (s *Service) AdvanceStatus(ctx context.Context, bookingID int64, req *models.AdvanceStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("AdvanceStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.TargetStatus, req.UserID)

	if !req.TargetStatus.IsValid() {
		s.logger.Warn("AdvanceStatus: invalid status=%s for booking id=%d", req.TargetStatus, bookingID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	booking, err := s.getBooking(ctx, "AdvanceStatus", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkManagerAccess(ctx, booking.PartnerID, req.UserID); err != nil {
		return nil, err
	}

	var updated *domain.Booking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		locked, err := s.getBooking(txCtx, "AdvanceStatus", bookingID)
		if err != nil {
			return err
		}

		if err := locked.CanAdvanceTo(req.TargetStatus); err != nil {
			s.logger.Warn("AdvanceStatus: booking id=%d: %v", bookingID, err)
			return err
		}

		updated, err = s.bookingRepo.UpdateStatus(txCtx, bookingID, req.TargetStatus, s.timeProvider.Now())
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("AdvanceStatus: repository error for booking id=%d: %v", bookingID, err)
			return fmt.Errorf("%w: AdvanceStatus - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncStatusTransition(string(req.TargetStatus))
	s.logger.Info("AdvanceStatus: successfully updated booking id=%d to status=%s", bookingID, req.TargetStatus)
	return models.FromDomainBooking(updated), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// resolveActor определяет, от чьего имени выполняется отмена
func (s *Service) resolveActor(ctx context.Context, booking *domain.Booking, req *models.CancelBookingRequest) (domain.Actor, error) {
	switch req.Actor {
	case domain.ActorCustomer:
		if booking.CustomerID != req.UserID {
			return "", ErrAccessDenied
		}
		return domain.ActorCustomer, nil
	case domain.ActorPartner:
		if err := s.checkManagerAccess(ctx, booking.PartnerID, req.UserID); err != nil {
			return "", err
		}
		return domain.ActorPartner, nil
	case "":
		if booking.CustomerID == req.UserID {
			return domain.ActorCustomer, nil
		}
		if err := s.checkManagerAccess(ctx, booking.PartnerID, req.UserID); err != nil {
			return "", ErrAccessDenied
		}
		return domain.ActorPartner, nil
	default:
		return "", fmt.Errorf("%w: unknown actor %q", ErrInvalidInput, req.Actor)
	}
}

// checkUserAccess проверяет, что пользователь владелец бронирования или менеджер партнёра
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	if booking.CustomerID == userID {
		return nil
	}

	if err := s.checkManagerAccess(ctx, booking.PartnerID, userID); err != nil {
		// Ошибка уже залогирована в checkManagerAccess
		return ErrAccessDenied
	}

	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером партнёра
func (s *Service) checkManagerAccess(ctx context.Context, partnerID int64, userID int64) error {
	partner, err := s.sellerClient.GetPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, sellerClient.ErrPartnerNotFound) {
			s.logger.Warn("checkManagerAccess: partner id=%d not found", partnerID)
			return ErrPartnerNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get partner id=%d: %v", partnerID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get partner: %v", ErrInternal, err)
	}

	if !partner.IsManager(userID) {
		s.logger.Warn("checkManagerAccess: user=%d is not a manager of partner=%d", userID, partnerID)
		return ErrAccessDenied
	}

	s.logger.Info("checkManagerAccess: user=%d is manager of partner=%d", userID, partnerID)
	return nil
}
