package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crossgen/crossword/internal/api"
	"github.com/crossgen/crossword/internal/auth"
	"github.com/crossgen/crossword/internal/config"
	"github.com/crossgen/crossword/internal/db"
	"github.com/crossgen/crossword/internal/middleware"
	"github.com/crossgen/crossword/internal/realtime"
	"github.com/crossgen/crossword/pkg/clues"
	"github.com/crossgen/crossword/pkg/clues/providers"
	"github.com/crossgen/crossword/pkg/dictionary"
	"github.com/crossgen/crossword/pkg/index"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg := config.Load()
	if err := cfg.RequireLLMCredentials(); err != nil {
		log.Fatalf("setup failure: %v", err)
	}

	database, err := db.New(cfg.DatabaseURL, cfg.RedisURL)
	if err != nil {
		log.Fatalf("setup failure: %v", err)
	}
	if err := database.InitSchema(); err != nil {
		log.Fatalf("setup failure: failed to initialize schema: %v", err)
	}
	log.Println("database connected and schema initialized")

	dict, err := dictionary.Load(cfg.DictionaryPath, cfg.GridLen)
	if err != nil {
		log.Fatalf("setup failure: failed to load dictionary: %v", err)
	}
	idx := index.Build(dict)
	log.Printf("dictionary loaded: %d words", dict.Len())

	clueGen, err := setupClueGenerator(cfg)
	if err != nil {
		log.Fatalf("setup failure: failed to set up hint binder: %v", err)
	}

	authService := auth.NewAuthService(cfg.JWTSecret)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	hub := realtime.NewHub(database)
	go hub.Run()

	handlers := api.NewHandlers(database, hub, dict, idx, clueGen, cfg)

	router := gin.Default()
	router.Use(middleware.CORS())
	router.Use(middleware.PerformanceMonitor())

	router.GET("/health", handlers.Health)
	router.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.GetMetrics())
	})

	apiGroup := router.Group("/api")
	{
		puzzlesGroup := apiGroup.Group("/puzzles")
		puzzlesGroup.Use(authMiddleware.RequireAuth())
		{
			puzzlesGroup.POST("", handlers.CreatePuzzle)
			puzzlesGroup.GET("", handlers.ListPuzzles)
			puzzlesGroup.GET("/:id", handlers.GetPuzzle)
			puzzlesGroup.GET("/:id/progress", handlers.StreamProgress)
		}

		apiGroup.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "API endpoint does not exist",
				"path":    c.Request.URL.Path,
			})
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	log.Printf("server started on port %s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	database.Close()
	log.Println("server exited")
}

// setupClueGenerator opens the local hint cache and, depending on
// cfg.LLMProvider, wires an LLM client behind it. cache-only mode makes no
// network calls: it serves hints already in the cache, and a word missing
// from the cache makes GenerateHints return an error.
func setupClueGenerator(cfg *config.Config) (*clues.Generator, error) {
	cacheDB, err := sql.Open("sqlite3", "./clue_cache.db")
	if err != nil {
		return nil, err
	}
	if err := clues.InitDB(cacheDB); err != nil {
		return nil, err
	}
	cache, err := clues.NewClueCache(cacheDB)
	if err != nil {
		return nil, err
	}

	var llmClient providers.LLMClient
	switch cfg.LLMProvider {
	case "anthropic":
		llmClient, err = providers.NewAnthropicClient(providers.AnthropicConfig{
			APIKey: cfg.AnthropicKey,
			Model:  providers.ModelHaiku,
		})
		if err != nil {
			return nil, err
		}
	case "ollama":
		llmClient, err = providers.NewOllamaClient(providers.OllamaConfig{
			BaseURL: cfg.OllamaURL,
			Model:   providers.ModelLlama2,
		})
		if err != nil {
			return nil, err
		}
	case "cache-only":
		llmClient = nil
	}

	return clues.NewGenerator(cache, llmClient), nil
}
