// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	mosaic "github.com/poiesic/mosaic"
	"github.com/poiesic/mosaic/config"
	"github.com/poiesic/mosaic/ingest"
)

func main() {
	app := &cli.App{
		Name:  "mosaic",
		Usage: "Multimodal ingestion and dual-embedding pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the storage-event webhook server",
				Action: serveCommand,
			},
			{
				Name:      "process",
				Usage:     "Ingest one local file and exit",
				ArgsUsage: "<path>",
				Action:    processCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Owning user ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "content-type",
						Usage: "Declared MIME type (inferred from extension if empty)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := mosaic.NewService(ctx, cfg)
	if err != nil {
		return err
	}
	defer service.Close()

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/v1/events", func(c *gin.Context) {
		var event ingest.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if event.Bucket == "" || event.Path == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bucket and path are required"})
			return
		}

		// The pipeline's own timeouts bound the request; no extra
		// deadline on top, the platform's is the outer bound.
		if err := service.Pipeline().HandleEvent(c.Request.Context(), event); err != nil {
			var unsupported *ingest.UnsupportedContentTypeError
			if errors.As(err, &unsupported) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": unsupported.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "completed"})
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func processCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file path is required")
	}

	contentType := c.String("content-type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			return fmt.Errorf("cannot infer content type for %s, pass --content-type", path)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Serve the file's directory as the storage root so the pipeline
	// fetches it the same way it would a bucket object.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	cfg.StorageRoot = filepath.Dir(filepath.Dir(abs))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := mosaic.NewService(ctx, cfg)
	if err != nil {
		return err
	}
	defer service.Close()

	event := ingest.Event{
		Bucket:      filepath.Base(filepath.Dir(abs)),
		Path:        filepath.Base(abs),
		ContentType: contentType,
		UserID:      c.String("user"),
	}
	if err := service.Pipeline().HandleEvent(ctx, event); err != nil {
		return err
	}

	doc, err := service.Documents().GetByPath(ctx, event.UserID, event.Path)
	if err != nil {
		return err
	}
	count, err := service.Chunks().CountByDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	fmt.Printf("processed %s: status=%s chunks=%d\n", path, doc.Status, count)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
