package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/dilip-codes/fingerauthbackend/acquisition"
	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/config"
	"github.com/dilip-codes/fingerauthbackend/database"
	"github.com/dilip-codes/fingerauthbackend/handlers"
	"github.com/dilip-codes/fingerauthbackend/media"
	"github.com/dilip-codes/fingerauthbackend/models"
	"github.com/dilip-codes/fingerauthbackend/repository"
	"github.com/dilip-codes/fingerauthbackend/services"
	"github.com/dilip-codes/fingerauthbackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.CapturesPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	galleryRepo := repository.NewGalleryRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)

	bootstrapAdminOperator(operatorRepo, cfg)

	strategy := resolveDetectorStrategy(cfg.DetectorStrategy)
	extractor := biometric.NewExtractor(strategy)

	acceptThreshold := cfg.AcceptThreshold
	if acceptThreshold <= 0 {
		acceptThreshold = biometric.DefaultAcceptThreshold(extractor.Strategy())
	}
	log.Printf("Detector strategy: %s, accept threshold: %d", extractor.Strategy(), acceptThreshold)

	matcher := biometric.NewMatcher(cfg.RatioTestThreshold)

	captureSubDirs := map[media.AssetType]string{
		media.AssetTypeEnrollmentCapture:     filepath.Base(cfg.CapturesPath),
		media.AssetTypeAuthenticationCapture: filepath.Base(cfg.CapturesPath),
	}
	captureStore, err := media.NewLocalStorage(cfg.MediaStoragePath, captureSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize capture store: %v", err)
	}
	captureProcessor := media.NewProcessor(captureStore)

	log.Printf("Initializing capture archive worker pool (Workers: %d, Queue Size: %d)...", cfg.NumArchiveWorkers, cfg.ArchiveQueueSize)
	archiver := workers.NewCaptureArchiver(captureProcessor, cfg.ArchiveQueueSize, cfg.NumArchiveWorkers, cfg.SnapshotMaxSize)
	defer archiver.Stop()

	enrollmentService := services.NewEnrollmentService(galleryRepo, cfg.MinFeatureElements, cfg.MaxEnrollmentCaptures)
	authService := services.NewAuthenticationService(galleryRepo, attendanceRepo, matcher, acceptThreshold, cfg.MinFeatureElements)

	var webcam acquisition.ImageSource
	if cfg.WebcamEnabled {
		live, err := acquisition.OpenLiveCapture(cfg.WebcamDeviceID)
		if err != nil {
			log.Fatalf("FATAL: Failed to open webcam device %d: %v", cfg.WebcamDeviceID, err)
		}
		defer live.Close()
		webcam = live
		log.Printf("Live capture enabled on device %d", cfg.WebcamDeviceID)
	}

	authHandler := handlers.NewAuthHandler(operatorRepo, time.Duration(cfg.SessionTTLHours)*time.Hour)
	enrollmentHandler := &handlers.EnrollmentHandler{
		Enrollment:  enrollmentService,
		Extractor:   extractor,
		Gallery:     galleryRepo,
		Archiver:    archiver,
		MaxCaptures: cfg.MaxEnrollmentCaptures,
	}
	authenticationHandler := &handlers.AuthenticationHandler{
		Auth:      authService,
		Extractor: extractor,
		Webcam:    webcam,
		Archiver:  archiver,
	}
	attendanceHandler := &handlers.AttendanceHandler{Attendance: attendanceRepo, SQLDB: sqlDB}

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// the kiosk authenticates without an operator session
		r.Post("/authenticate", authenticationHandler.Authenticate)

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return handlers.SessionMiddleware(operatorRepo, next)
			})

			r.Route("/subjects", func(r chi.Router) {
				r.Post("/", enrollmentHandler.EnrollSubject)
				r.Get("/", enrollmentHandler.ListSubjects)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", attendanceHandler.ListDates)
				r.Get("/{date}", attendanceHandler.GetDay)
				r.Get("/{date}/summary", attendanceHandler.GetDaySummary)
			})
		})
	})

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing capture snapshots in: %s", cfg.CapturesPath)
	log.Printf("Server listening on %s", cfg.ListenAddr)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

// resolveDetectorStrategy maps the configured detector name to a strategy,
// probing hardware support when set to auto.
func resolveDetectorStrategy(name string) biometric.DetectorStrategy {
	switch name {
	case "primary":
		return biometric.DetectorPrimary
	case "fallback":
		return biometric.DetectorFallback
	default:
		return biometric.ProbeDetector()
	}
}

// bootstrapAdminOperator seeds the first operator account from the environment
// so a fresh install can log in. It only runs against an empty operator table.
func bootstrapAdminOperator(repo repository.OperatorRepositoryInterface, cfg config.Config) {
	count, err := repo.Count()
	if err != nil {
		log.Fatalf("FATAL: Failed to count operators: %v", err)
	}
	if count > 0 {
		return
	}
	if cfg.AdminPassword == "" {
		log.Println("Warning: no operators exist and ADMIN_PASSWORD is unset; operator endpoints will be unreachable")
		return
	}

	operator := &models.Operator{Username: cfg.AdminUsername}
	if err := operator.SetPassword(cfg.AdminPassword); err != nil {
		log.Fatalf("FATAL: Failed to hash admin password: %v", err)
	}
	if err := repo.Create(operator); err != nil {
		log.Fatalf("FATAL: Failed to create admin operator: %v", err)
	}
	log.Printf("Bootstrapped admin operator '%s'", cfg.AdminUsername)
}
