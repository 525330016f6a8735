package main

import (
	"context"
	"database/sql"
	"errors"
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
	"golang.org/x/sync/errgroup"

	cancelNotificationHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_notification"
	changeStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/change_appointment_status"
	checkBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/check_booking"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_appointment"
	dispatchNotificationsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/dispatch_notifications"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getDayStatsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_day_stats"
	getPublicProfileHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_public_profile"
	listAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_appointments"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/cache"
	redisCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/redis"
	ristrettoCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/ristretto"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	businessHoursRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/businesshours"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	idempotencyRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/idempotency"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/migrations"
	notificationRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/notification"
	organizationRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/organization"
	outboxRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/outbox"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/email"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/eventbus"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/whatsapp"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflictgate"
	notificationsService "github.com/m04kA/SMC-AppointmentService/internal/service/notifications"
	tenantsService "github.com/m04kA/SMC-AppointmentService/internal/service/tenants"
	checkBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_booking"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	listAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/list_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	notificationsWorker "github.com/m04kA/SMC-AppointmentService/internal/worker/notifications"
	outboxWorker "github.com/m04kA/SMC-AppointmentService/internal/worker/outbox"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

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

	log.Info("Starting SMC-AppointmentService...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Параметры расписания по умолчанию (проверены в config.Validate)
	defaultLocation, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid default timezone: %v", err)
	}
	closedDays, err := cfg.Booking.ClosedWeekdays()
	if err != nil {
		log.Fatal("Invalid default closed days: %v", err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	defer close(stopMetricsCh)

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

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// Executor и transaction manager (с метриками или без)
	var (
		executor  dbmetrics.DBExecutor
		txManager *txmanager.TransactionManager
	)
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		executor = wrappedDB
		txManager = txmanager.NewTransactionManager(wrappedDB)
		log.Info("Database metrics collection started")
	} else {
		executor = db
		txManager = simpletxmanager.NewTransactionManager(db)
	}

	// Redis: кеш L2 и rate limit
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Address, err)
		}
		log.Info("Connected to redis at %s", cfg.Redis.Address)
	}

	// Кеш организаций: L1 в процессе, L2 в Redis
	l1, err := ristrettoCache.New(cfg.Cache.L1MaxCostMiB << 20)
	if err != nil {
		log.Fatal("Failed to create in-process cache: %v", err)
	}
	defer l1.Close()

	var l2 cache.Store
	if rdb != nil {
		l2 = redisCache.New(rdb, cfg.Cache.Prefix)
	}
	orgCache := cache.NewTiered(l1, l2, cfg.Cache.L1TTL())

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(executor)
	businessHoursRepository := businessHoursRepo.NewRepository(executor)
	catalogRepository := catalogRepo.NewRepository(executor)
	customerRepository := customerRepo.NewRepository(executor)
	idempotencyRepository := idempotencyRepo.NewRepository(executor)
	notificationRepository := notificationRepo.NewRepository(executor)
	organizationRepository := organizationRepo.NewRepository(executor)
	outboxRepository := outboxRepo.NewRepository(executor)

	// Сервисы
	calculator := availability.NewCalculator(availability.Settings{
		StepMinutes:       cfg.Booking.SlotStepMinutes,
		DefaultOpensAt:    types.TimeString(cfg.Booking.DefaultOpensAt),
		DefaultClosesAt:   types.TimeString(cfg.Booking.DefaultClosesAt),
		DefaultClosedDays: closedDays,
	})

	gate := conflictgate.NewGate(
		organizationRepository,
		catalogRepository,
		appointmentRepository,
		businessHoursRepository,
		calculator,
		defaultLocation,
		metricsCollector,
		log,
	)

	notificationSvc := notificationsService.NewService(
		notificationRepository,
		outboxRepository,
		defaultLocation,
		log,
	)

	appointmentSvc := appointmentsService.NewService(
		txManager,
		appointmentRepository,
		customerRepository,
		organizationRepository,
		catalogRepository,
		notificationRepository,
		notificationSvc,
		defaultLocation,
		metricsCollector,
		log,
	)

	tenantSvc := tenantsService.NewService(
		organizationRepository,
		catalogRepository,
		businessHoursRepository,
		orgCache,
		cfg.Cache.TTL(),
		cfg.Booking.DefaultTimezone,
		log,
	)

	// Use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		customerRepository,
		idempotencyRepository,
		gate,
		appointmentSvc,
		txManager,
		log,
	)

	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		gate,
		appointmentSvc,
		txManager,
		log,
	)

	listAvailableSlotsUseCase := listAvailableSlotsUC.NewUseCase(
		organizationRepository,
		catalogRepository,
		businessHoursRepository,
		appointmentRepository,
		calculator,
		defaultLocation,
		log,
	)

	checkBookingUseCase := checkBookingUC.NewUseCase(gate, log)

	// Каналы доставки уведомлений
	senders := map[domain.NotificationChannel]notificationsWorker.Sender{
		domain.ChannelEmail: email.NewSender(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log),
		domain.ChannelWhatsApp: whatsapp.NewClient(whatsapp.Config{
			BaseURL:     cfg.WhatsApp.URL,
			APIKey:      cfg.WhatsApp.APIKey,
			Instance:    cfg.WhatsApp.Instance,
			CountryCode: cfg.WhatsApp.CountryCode,
			Timeout:     time.Duration(cfg.WhatsApp.Timeout) * time.Second,
		}, log),
	}
	if !cfg.SMTP.Configured() {
		log.Warn("SMTP is not configured, email notifications will fail")
	}
	if !cfg.WhatsApp.Configured() {
		log.Warn("WhatsApp gateway is not configured, whatsapp notifications will fail")
	}

	dispatcher := notificationsWorker.NewDispatcher(
		notificationRepository,
		senders,
		txManager,
		metricsCollector,
		log,
		notificationsWorker.Config{
			BatchSize:     cfg.Dispatcher.BatchSize,
			MaxAttempts:   cfg.Dispatcher.MaxAttempts,
			Backoff:       time.Duration(cfg.Dispatcher.BackoffSeconds) * time.Second,
			PollInterval:  time.Duration(cfg.Dispatcher.PollIntervalSeconds) * time.Second,
			RatePerSecond: cfg.Dispatcher.RatePerSecond,
			Burst:         cfg.Dispatcher.Burst,
		},
	)

	// Handlers
	getPublicProfile := getPublicProfileHandler.NewHandler(tenantSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(listAvailableSlotsUseCase, log)
	createPublicAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, createAppointmentUC.OriginPublic, log)
	createStaffAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, createAppointmentUC.OriginStaff, log)
	checkBooking := checkBookingHandler.NewHandler(checkBookingUseCase, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentSvc, log)
	getDayStats := getDayStatsHandler.NewHandler(appointmentSvc, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	changeStatus := changeStatusHandler.NewHandler(appointmentSvc, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(appointmentSvc, log)
	dispatchNotifications := dispatchNotificationsHandler.NewHandler(dispatcher, log)
	cancelNotification := cancelNotificationHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (организация по slug)
	// ============================================================

	bySlug := middleware.TenantBySlug(tenantSvc, log)

	// Профиль организации: услуги и сотрудники
	api.Handle("/public/{slug}", bySlug(http.HandlerFunc(getPublicProfile.Handle))).Methods(http.MethodGet)

	public := api.PathPrefix("/public/{slug}").Subrouter()
	public.Use(bySlug)

	// Свободные слоты
	public.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Запись клиента (ограничение частоты на клиента)
	var createPublic http.Handler = http.HandlerFunc(createPublicAppointment.Handle)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window(), cfg.RateLimit.Prefix, cfg.RateLimit.FailOpen, log)
		createPublic = limiter.Middleware(createPublic)
		log.Info("Public booking rate limit: %d per %s", cfg.RateLimit.Limit, cfg.RateLimit.Window())
	}
	public.Handle("/appointments", createPublic).Methods(http.MethodPost)

	// Проверка доступности времени (организация в теле запроса)
	api.HandleFunc("/bookings/check", checkBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// STAFF ROUTES (требуют X-Organization-ID header)
	// ============================================================

	staff := api.PathPrefix("").Subrouter()
	staff.Use(middleware.Tenant)

	// --- Записи ---
	staff.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/appointments", createStaffAppointment.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/appointments/stats", getDayStats.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	staff.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)
	staff.HandleFunc("/appointments/{appointmentId}/status", changeStatus.Handle).Methods(http.MethodPatch)
	staff.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)

	// --- Уведомления ---
	staff.HandleFunc("/notifications/dispatch", dispatchNotifications.Handle).Methods(http.MethodPost)
	staff.HandleFunc("/notifications/{notificationId}/cancel", cancelNotification.Handle).Methods(http.MethodPatch)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown: %v", err)
		}
		return nil
	})

	if cfg.Dispatcher.Enabled {
		g.Go(func() error {
			return dispatcher.Run(gctx)
		})
	}

	if cfg.Kafka.Enabled {
		publisher := eventbus.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		defer publisher.Close()

		relay := outboxWorker.NewRelay(
			outboxRepository,
			publisher,
			txManager,
			metricsCollector,
			log,
			cfg.Kafka.BatchSize,
			time.Duration(cfg.Kafka.PollIntervalSeconds)*time.Second,
		)
		g.Go(func() error {
			return relay.Run(gctx)
		})
	} else {
		log.Warn("Kafka is disabled, outbox events stay unpublished")
	}

	if err := g.Wait(); err != nil {
		log.Error("Service stopped with error: %v", err)
		return
	}

	log.Info("Server stopped gracefully")
}
