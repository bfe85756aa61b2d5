package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hypernova-labs/dte-service/internal/api"
	"github.com/hypernova-labs/dte-service/internal/config"
	"github.com/hypernova-labs/dte-service/internal/database"
	"github.com/hypernova-labs/dte-service/internal/hacienda"
	"github.com/hypernova-labs/dte-service/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting DTE Service...")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Redis es opcional: sin él, el token de Hacienda vive solo en memoria
	var almacenToken hacienda.AlmacenToken
	if cfg.Redis.Enabled {
		redis, err := database.ConnectRedis(cfg)
		if err != nil {
			logger.Warnf("Error connecting to Redis: %v", err)
		} else {
			defer redis.Close()
			almacenToken = redis
		}
	}

	cliente := hacienda.NewClient(hacienda.Config{
		Ambiente:           cfg.Hacienda.Ambiente,
		AuthURL:            cfg.Hacienda.AuthURL,
		FirmadorURL:        cfg.Hacienda.FirmadorURL,
		RecepcionURL:       cfg.Hacienda.RecepcionURL,
		ConsultaURL:        cfg.Hacienda.ConsultaURL,
		AnulacionURL:       cfg.Hacienda.AnulacionURL,
		Usuario:            cfg.Hacienda.Usuario,
		Password:           cfg.Hacienda.Password,
		PasswordFirma:      cfg.Hacienda.PasswordFirma,
		TimeoutEnvio:       cfg.Hacienda.TimeoutEnvio,
		TimeoutConsulta:    cfg.Hacienda.TimeoutConsulta,
		ReintentosConsulta: cfg.Hacienda.ReintentosConsulta,
	}, hacienda.NewTokenCache(almacenToken), logger)

	documentoService := services.NewDocumentoService(db, cliente, logger)
	anulacionService := services.NewAnulacionService(db, cliente, logger)
	emisorService := services.NewEmisorService(db, logger)

	apiHandler := api.NewAPI(documentoService, anulacionService, emisorService, logger)

	router := setupRouter(apiHandler, db, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, db *database.DB, cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "dte-service",
			"ambiente":  cfg.Hacienda.Ambiente,
		})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/emisores", apiHandler.CrearEmisor)
		v1.GET("/emisores/:id", apiHandler.GetEmisor)

		v1.POST("/documentos", apiHandler.CrearDocumento)
		v1.GET("/documentos", apiHandler.ListarDocumentos)
		v1.GET("/documentos/:id", apiHandler.GetDocumento)
		v1.GET("/documentos/:id/disponibilidad", apiHandler.GetDisponibilidad)
		v1.POST("/documentos/:id/anulacion", apiHandler.AnularDocumento)
	}

	return router
}
