package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"edulens-backend/internal/aiclient"
	"edulens-backend/internal/database"
	"edulens-backend/internal/handlers"
	"edulens-backend/internal/mailer"
	customMiddleware "edulens-backend/internal/middleware"
	"edulens-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	// Required env vars
	mongoURI := getEnv("MONGODB_URI", "")
	dbName := getEnv("MONGODB_DB_NAME", "edulens")
	jwtSecret := getEnv("JWT_SECRET", "")
	aiServiceURL := getEnv("AI_SERVICE_URL", "")
	port := getEnv("PORT", "8080")

	if mongoURI == "" {
		log.Fatal("❌ MONGODB_URI is required")
	}
	if jwtSecret == "" {
		log.Fatal("❌ JWT_SECRET is required")
	}

	// Connect to MongoDB
	if err := database.Connect(mongoURI, dbName); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo()
	sessionRepo := repository.NewSessionRepo()
	profileRepo := repository.NewProfileRepo()
	smartRepo := repository.NewSmartProfileRepo()
	applicationRepo := repository.NewApplicationRepo()
	resumeRepo := repository.NewResumeRepo()
	roadmapRepo := repository.NewRoadmapRepo()
	chatRepo := repository.NewChatRepo()
	adminStore := repository.NewAdminStore(userRepo, profileRepo, smartRepo, sessionRepo)

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	for name, repo := range map[string]indexer{
		"user":           userRepo,
		"session":        sessionRepo,
		"user_profiles":  profileRepo,
		"smart_profiles": smartRepo,
		"applications":   applicationRepo,
		"resumes":        resumeRepo,
		"roadmap_plans":  roadmapRepo,
		"chat":           chatRepo,
	} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Printf("⚠️  Warning: failed to create %s indexes: %v", name, err)
		}
	}

	// External collaborators
	var ai aiclient.Client
	if aiServiceURL == "" {
		log.Println("⚠️  AI_SERVICE_URL not set, using mock dream-chat client")
		ai = aiclient.NewMock()
	} else {
		ai = aiclient.New(aiServiceURL)
	}
	mail := mailer.NewFromEnv()

	// Initialize handlers
	adminHandler := handlers.NewAdminUsersHandler(adminStore, mail)
	resumeHandler := handlers.NewResumeHandler(resumeRepo)
	applicationsHandler := handlers.NewApplicationsHandler(applicationRepo)
	dreamHandler := handlers.NewDreamHandler(ai, chatRepo)
	profileHandler := handlers.NewProfileHandler(profileRepo, smartRepo, chatRepo)
	roadmapHandler := handlers.NewRoadmapHandler(roadmapRepo)

	// Rate limiters: dream chat per anon id, resume analysis per user
	dreamLimiter := customMiddleware.NewRateLimiter(20, time.Minute)
	analyzeLimiter := customMiddleware.NewRateLimiter(10, time.Minute)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Anon-Id"},
		ExposedHeaders:   []string{"X-Anon-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"edulens-backend"}`))
	})

	// Public dream-chat routes (pre-signup, keyed by anon id)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Limit(dreamLimiter, anonKey))
		r.Post("/api/dream/message", dreamHandler.Message)
		r.Post("/api/dream/prefill", dreamHandler.Prefill)
	})

	// Authenticated routes (JWT or Better-Auth session token)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Auth(jwtSecret, sessionRepo))

		r.Get("/api/profile", profileHandler.Get)
		r.Put("/api/profile", profileHandler.Put)
		r.Post("/api/profile/migrate", profileHandler.Migrate)

		r.Get("/api/roadmap", roadmapHandler.Get)
		r.Put("/api/roadmap", roadmapHandler.Put)
		r.Patch("/api/roadmap/tasks/{taskId}", roadmapHandler.PatchTask)

		r.Get("/api/resume", resumeHandler.Get)
		r.Put("/api/resume", resumeHandler.Put)
		r.Delete("/api/resume", resumeHandler.Delete)
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Limit(analyzeLimiter, userKey))
			r.Post("/api/resume/analyze", resumeHandler.Analyze)
			r.Post("/api/resume/optimize", resumeHandler.Optimize)
		})

		r.Get("/api/applications", applicationsHandler.List)
		r.Post("/api/applications", applicationsHandler.Create)
		r.Post("/api/applications/import", applicationsHandler.Import)
		r.Get("/api/applications/{applicationId}", applicationsHandler.Get)
		r.Put("/api/applications/{applicationId}", applicationsHandler.Update)
		r.Delete("/api/applications/{applicationId}", applicationsHandler.Delete)

		// Admin panel
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.RequireAdmin(userRepo))
			r.Get("/api/admin/users", adminHandler.List)
			r.Get("/api/admin/users/{userId}", adminHandler.Get)
			r.Put("/api/admin/users/{userId}", adminHandler.Update)
			r.Delete("/api/admin/users/{userId}", adminHandler.Delete)
		})
	})

	// Start server
	log.Printf("🚀 EduLens backend starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func userKey(r *http.Request) string {
	return customMiddleware.GetUserID(r.Context())
}

// anonKey rate-limits only clients that identify themselves; first contact
// has no anon id yet.
func anonKey(r *http.Request) string {
	return r.Header.Get("X-Anon-Id")
}

func corsOrigins() []string {
	raw := getEnv("CORS_ORIGIN", "*")
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
