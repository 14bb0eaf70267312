package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_customer_bookings"
	getPartnerBookingsHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_partner_bookings"
	getPartnerConfigHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/get_partner_config"
	healthHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/health"
	rescheduleBookingHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/update_booking_status"
	updatePartnerConfigHandler "github.com/m04kA/SMC-BookingEngine/internal/api/handlers/update_partner_config"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/config"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/allocator"
	"github.com/m04kA/SMC-BookingEngine/internal/engine/pricing"
	"github.com/m04kA/SMC-BookingEngine/internal/infra/cache"
	"github.com/m04kA/SMC-BookingEngine/internal/infra/lock"
	"github.com/m04kA/SMC-BookingEngine/internal/infra/migrator"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	capacityRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/capacity"
	scheduleRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/schedule"
	sellerServiceClient "github.com/m04kA/SMC-BookingEngine/internal/integrations/sellerservice"
	userServiceClient "github.com/m04kA/SMC-BookingEngine/internal/integrations/userservice"
	bookingsService "github.com/m04kA/SMC-BookingEngine/internal/service/bookings"
	configService "github.com/m04kA/SMC-BookingEngine/internal/service/config"
	createBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_availability"
	rescheduleBookingUC "github.com/m04kA/SMC-BookingEngine/internal/usecase/reschedule_booking"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/keylock"
	"github.com/m04kA/SMC-BookingEngine/pkg/logger"
	"github.com/m04kA/SMC-BookingEngine/pkg/metrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

const rateLimitIdleTTL = 10 * time.Minute

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BookingEngine...")
	log.Info("Configuration loaded from config.toml (timezone=%s, lock_backend=%s)",
		cfg.Booking.Timezone, cfg.Booking.LockBackend)

	// Инициализируем метрики (если включены). Выключенные метрики - nil, все методы nil-safe.
	var metricsCollector *metrics.Metrics
	stopCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Проверяем соединение
	if err := db.PingContext(startupCtx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Применяем миграции
	if cfg.Database.MigrateOnStart {
		m, err := migrator.New(db, log)
		if err != nil {
			log.Fatal("Failed to initialize migrator: %v", err)
		}
		if err := m.Up(startupCtx); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopCh)

	// Redis: кэш настроек партнёров и распределённая блокировка аллокатора
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(startupCtx).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		log.Info("Successfully connected to redis (addr=%s, cache_ttl=%ds)", cfg.Redis.Addr, cfg.Redis.CacheTTLSeconds)
	}

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	sellerClient := sellerServiceClient.NewClient(
		cfg.SellerService.URL,
		time.Duration(cfg.SellerService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s timeout=%ds, SellerService=%s timeout=%ds)",
		cfg.UserService.URL, cfg.UserService.Timeout, cfg.SellerService.URL, cfg.SellerService.Timeout)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	capacityRepository := capacityRepo.NewRepository(wrappedDB)

	partnerConfigCache := cache.NewPartnerConfig(
		redisClient,
		cfg.Redis.CacheTTL(),
		scheduleRepository,
		capacityRepository,
		metricsCollector,
		log,
	)

	txMgr := txmanager.NewTransactionManager(
		wrappedDB,
		txmanager.WithMaxRetries(cfg.Booking.SerializationRetries),
		txmanager.WithLockTimeout(time.Duration(cfg.Booking.DBLockTimeoutMs)*time.Millisecond),
	)

	// Блокировка ключа (партнёр, категория, дата): в памяти для одного инстанса, Redis для нескольких
	var locker allocator.Locker
	switch cfg.Booking.LockBackend {
	case config.LockBackendRedis:
		locker = lock.NewRedisLocker(redisClient, time.Duration(cfg.Booking.LockLeaseMs)*time.Millisecond, log)
	default:
		locker = keylock.New()
	}

	bayAllocator := allocator.New(
		locker,
		txMgr,
		bookingRepository,
		metricsCollector,
		log,
		time.Duration(cfg.Booking.LockTimeoutMs)*time.Millisecond,
	)

	// Инициализируем сервисы
	location := cfg.Booking.Location()

	configSvc := configService.NewService(
		partnerConfigCache,
		scheduleRepository,
		capacityRepository,
		txMgr,
		sellerClient,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		sellerClient,
		txMgr,
		metricsCollector,
		&bookingsService.RealTimeProvider{},
		bookingsService.Settings{
			Location:                location,
			CancellationWindowHours: cfg.Booking.CancellationWindowHours,
		},
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		bookingRepository,
		configSvc,
		sellerClient,
		location,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bayAllocator,
		configSvc,
		sellerClient,
		userClient,
		createBookingUC.Settings{
			Location: location,
			Pricing: pricing.Settings{
				CustomerCommissionPercent: cfg.Pricing.CustomerCommissionPercent,
				PartnerCommissionPercent:  cfg.Pricing.PartnerCommissionPercent,
				PremiumDiscountPercent:    cfg.Pricing.PremiumDiscountPercent,
			},
			AllocationMaxAttempts: cfg.Booking.AllocationMaxAttempts,
		},
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		bayAllocator,
		configSvc,
		sellerClient,
		rescheduleBookingUC.Settings{
			Location:              location,
			AllocationMaxAttempts: cfg.Booking.AllocationMaxAttempts,
		},
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getPartnerBookings := getPartnerBookingsHandler.NewHandler(bookingSvc, log)
	getPartnerConfig := getPartnerConfigHandler.NewHandler(configSvc, log)
	updatePartnerConfig := updatePartnerConfigHandler.NewHandler(configSvc, log)

	checkers := map[string]healthHandler.Checker{
		"postgres": healthHandler.CheckerFunc(wrappedDB.PingContext),
	}
	if redisClient != nil {
		checkers["redis"] = partnerConfigCache
	}
	health := healthHandler.NewHandler(checkers, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные окна партнёра
	api.HandleFunc("/partners/{partnerId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// Изменяющие маршруты ограничены по частоте на пользователя
	mutating := protected.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, rateLimitIdleTTL)
		go limiter.RunCleanup(time.Minute, stopCh)
		mutating.Use(limiter.Middleware)
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// --- Бронирования ---
	mutating.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	mutating.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	mutating.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)
	mutating.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/customers/{customerId}/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// --- Управление партнёром (для менеджеров) ---
	protected.HandleFunc("/partners/{partnerId}/bookings", getPartnerBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/partners/{partnerId}/config", getPartnerConfig.Handle).Methods(http.MethodGet)
	mutating.HandleFunc("/partners/{partnerId}/config", updatePartnerConfig.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool и очистку лимитера
	close(stopCh)

	log.Info("Server stopped gracefully")
}
