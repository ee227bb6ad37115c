package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"epubshelf/internal/books"
	"epubshelf/internal/middleware"
	"epubshelf/pkg/utils"
)

func newRouter(cfg utils.ServerConfig, log *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.AccessLog(log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.Error("Panic while serving request", zap.Any("panic", recovered), zap.String("request_id", middleware.RequestID(c)))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}),
		middleware.CORS(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "books_dir": cfg.BooksDir})
	})

	store := books.NewStore(cfg.BooksDir)
	booksHandler := books.NewHandler(store, books.ParserFunc(books.OpenEPUB), log)
	booksHandler.RegisterRoutes(router.Group("/api"))

	return router, nil
}
