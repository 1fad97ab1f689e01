// cmd/web/main.go
package main

import (
	"context"
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/api/handlers"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/api/middleware"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/api/responses"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/config"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/auth"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/billing"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/cancellation"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/core/ingest"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/jobs"
	"github.com/LuisEduardoPedra/apuracaoFaturamento/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// initFirestoreClient initializes the Firestore client.
func initFirestoreClient(ctx context.Context, cfg config.FirestoreSettings, zl *zap.Logger) *firestore.Client {
	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID)
	if err != nil {
		zl.Fatal("erro ao inicializar cliente Firestore", zap.String("database", cfg.DatabaseID), zap.Error(err))
	}
	zl.Info("conectado ao Firestore", zap.String("project", cfg.ProjectID), zap.String("database", cfg.DatabaseID))
	return client
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuração inválida: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.App.Environment)
	if err != nil {
		log.Fatalf("erro ao inicializar logger: %v", err)
	}
	defer zl.Sync()
	responses.InitLogger(zl)

	ctx := context.Background()

	var (
		firestoreClient *firestore.Client
		repo            cancellation.Repository
	)
	if cfg.Firestore.Enabled() {
		firestoreClient = initFirestoreClient(ctx, cfg.Firestore, zl)
		defer firestoreClient.Close()
		repo = cancellation.NewFirestoreRepository(firestoreClient)
	} else {
		zl.Warn("FIRESTORE_PROJECT_ID não definido: cancelamentos ficam apenas em memória")
		repo = cancellation.NewMemoryRepository()
	}

	billingService := billing.NewService(repo, zl, billing.WithMaxGapSpan(cfg.Billing.MaxGapSpan))
	apuracaoHandler := handlers.NewApuracaoHandler(ingest.NewService(zl), billingService, cfg.HTTP.MaxUploadBytes(), zl)

	sweeper, err := jobs.StartSessionSweeper(cfg.Sessions.SweepSchedule, cfg.Sessions.TTL, billingService, zl)
	if err != nil {
		zl.Fatal("erro ao agendar limpeza de sessões", zap.Error(err))
	}
	defer sweeper.Stop()

	if cfg.App.Environment != "local" && cfg.App.Environment != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.MaxMultipartMemory = cfg.HTTP.MaxUploadBytes()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiV1 := router.Group("/api/v1")
	{
		protected := apiV1.Group("/")
		if cfg.Auth.Enabled {
			authService := auth.NewService(auth.NewFirestoreUserStore(firestoreClient), []byte(cfg.Auth.JWTSecret), zl)
			apiV1.POST("/login", handlers.NewAuthHandler(authService).Login)
			protected.Use(middleware.AuthMiddleware([]byte(cfg.Auth.JWTSecret)), middleware.PermissionMiddleware(cfg.Auth.Role))
		} else {
			zl.Warn("autenticação desabilitada")
		}
		apuracaoHandler.Register(protected)
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	zl.Info("servidor iniciado", zap.String("addr", cfg.HTTP.Address()), zap.String("env", cfg.App.Environment))
	if err := router.Run(cfg.HTTP.Address()); err != nil {
		zl.Fatal("falha ao iniciar o servidor", zap.Error(err))
	}
}
