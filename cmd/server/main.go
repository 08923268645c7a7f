package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/catchlog-backend/internal/conditions"
	"github.com/AnshRaj112/catchlog-backend/internal/config"
	"github.com/AnshRaj112/catchlog-backend/internal/database"
	"github.com/AnshRaj112/catchlog-backend/internal/geocode"
	"github.com/AnshRaj112/catchlog-backend/internal/handlers"
	"github.com/AnshRaj112/catchlog-backend/internal/localstore"
	"github.com/AnshRaj112/catchlog-backend/internal/middleware"
	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/remote"
	"github.com/AnshRaj112/catchlog-backend/internal/routes"
	"github.com/AnshRaj112/catchlog-backend/internal/services"
	"github.com/AnshRaj112/catchlog-backend/internal/syncer"
	"github.com/AnshRaj112/catchlog-backend/internal/weather"
	"github.com/AnshRaj112/catchlog-backend/pkg/clientip"
	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()
	clientip.TrustProxy = cfg.TrustProxy

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Check encryption key (warn if not set, but don't fail)
	var encryptor *utils.Encryptor
	if cfg.EncryptionKey == "" {
		log.Println("⚠️  WARNING: ENCRYPTION_KEY not set. Recovery email encryption will not work.")
		log.Println("   To generate a key, run: openssl rand -base64 32")
	} else if encryptor, err = utils.NewEncryptor(cfg.EncryptionKey); err != nil {
		log.Printf("⚠️  WARNING: ENCRYPTION_KEY is invalid: %v", err)
		log.Println("   Key must be base64-encoded 32 bytes. Generate with: openssl rand -base64 32")
	} else {
		log.Println("✅ Encryption key configured")
	}

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (likes and comments)
	log.Printf("Connecting to MongoDB: %s", maskURI(cfg.MongoURI))
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	interactions := services.NewInteractionStore(database.DB)
	if err := interactions.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB interaction indexes: %v", err)
	} else {
		log.Println("✅ MongoDB interaction indexes ensured")
	}

	// Local store, fish catalog and synchronizer
	store, closeStore := openLocalStore(cfg)
	defer closeStore()

	catalog := models.DefaultFishCatalog()
	if cfg.FishCatalogJSON != "" {
		if loaded, err := models.LoadFishCatalogJSON(cfg.FishCatalogJSON); err != nil {
			log.Printf("⚠️  WARNING: fish catalog %s not loaded, using built-in list: %v", cfg.FishCatalogJSON, err)
		} else {
			catalog = loaded
		}
	}

	// Realtime feed; new catches are announced once the outbox pushed them.
	hub := services.NewFeedHub(database.RedisClient)
	hub.Start(ctx)

	pg := remote.NewPostgres(database.PostgresDB)
	manager := syncer.NewManager(store, pg,
		syncer.WithCatalog(catalog),
		syncer.WithOnApplied(handlers.AnnounceSyncedCatches(hub)),
	)
	syncer.NewWorker(manager, cfg.SyncInterval).Start(ctx)

	// Weather, ranking and geocoding
	var fetcher conditions.WeatherFetcher
	if cfg.WeatherAPIKey != "" {
		client := weather.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, conditions.DefaultFetchTimeout)
		fetcher = weather.NewCachedProvider(client, services.NewCacheService(database.RedisClient), cfg.WeatherCacheTTL)
		log.Println("✅ Weather provider configured")
	} else {
		log.Println("Warning: WEATHER_API_KEY not set. Condition scoring will report insufficient data")
	}
	ranker := conditions.NewRanker()
	ranker.Threshold = cfg.AlternativesThreshold

	h := &handlers.Handler{
		Users:        services.NewUserService(database.PostgresDB),
		Sessions:     services.NewSessionStore(database.RedisClient),
		Encryptor:    encryptor,
		Sync:         manager,
		Feed:         pg,
		Interactions: interactions,
		Hub:          hub,
		Weather:      fetcher,
		Ranker:       ranker,
		Geocoder:     geocode.NewClient(cfg.GeocodeBaseURL, 1),
	}

	// Initialize Cloudinary service
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		uploader, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
		} else {
			h.Uploader = uploader
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Direct uploads will not be available")
	}

	// S3 presigned uploads
	if cfg.S3BucketName != "" {
		presigner, err := services.NewS3Presigner(ctx, cfg.AWSRegion, cfg.S3BucketName)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 presigner: %v", err)
		} else {
			h.Presigner = presigner
			log.Println("✅ S3 presigner initialized")
		}
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RedisRateLimit(database.RedisClient))
	}

	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 CatchLog backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	// Last chance to push queued writes.
	res := manager.DrainAll(shutdownCtx)
	log.Printf("Final sync drain: %+v", res)
}

func openLocalStore(cfg *config.Config) (localstore.Store, func()) {
	switch cfg.LocalStore {
	case config.LocalStoreSQLite:
		db, err := localstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatal("Failed to open SQLite local store:", err)
		}
		log.Printf("✅ Local store: SQLite (%s)", cfg.SQLitePath)
		return db, func() { db.Close() }
	case config.LocalStoreMemory:
		log.Println("⚠️  Local store: memory (data is lost on restart)")
		return localstore.NewMemory(), func() {}
	default:
		log.Println("✅ Local store: Redis")
		return localstore.NewRedis(database.RedisClient), func() {}
	}
}

// maskURI hides the password of a connection string.
func maskURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	scheme := strings.Index(uri, "://")
	if at < 0 || scheme < 0 {
		return uri
	}
	creds := uri[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return uri[:scheme+3] + creds[:i] + ":***" + uri[at:]
	}
	return uri
}
