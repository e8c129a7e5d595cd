package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readmegen/backend/config"
	"github.com/readmegen/backend/controller"
	"github.com/readmegen/backend/limiter"
	"github.com/readmegen/backend/logger"
	"github.com/readmegen/backend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("unable to load configuration")
	}

	// configure logger
	logger.Setup(*cfg)

	// setup github client
	// we do here and pass the client to Github service to easily improve tests with mock client
	githubClient := github.NewClient(nil)

	if cfg.Github.Token != "" {
		log.Debug("will setup github client with authorization token")
		githubClient = githubClient.WithAuthToken(cfg.Github.Token)
	}

	// setup outbound rate limiter for our own github calls
	// execute first request to github to fetch current rate limits
	log.Debug("loading current rate limit from github")
	rateLimits, _, err := githubClient.RateLimit.Get(context.Background())
	if err != nil {
		log.WithError(err).Panic("unable to load current github rate limits")
	}

	log.WithFields(log.Fields{
		"totalAvailable":    rateLimits.Core.Limit,
		"remainingRequests": rateLimits.Core.Remaining,
	}).Debug("will setup github rate limiter with rate limits infos from github")

	// consume X tokens according to the number of remaining tokens
	// this help us to have a right rate limiter even if external requests are made
	githubRateLimiter := rate.NewLimiter(rate.Every(time.Hour), rateLimits.Core.Limit)

	if !githubRateLimiter.AllowN(time.Now(), rateLimits.Core.Limit-rateLimits.Core.Remaining) {
		log.WithError(err).Panic("unable to configure the github rate limiter")
	}

	// setup inbound admission control
	// one fixed window counter shared by the whole process, every endpoint
	// under /api goes through it
	admission := limiter.NewFixedWindow(
		cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute,
	)

	// setup handlers and services
	githubService := service.NewGithubService(*cfg, githubClient, githubRateLimiter)
	readmeService := service.NewReadmeService(*cfg, service.NewOpenAIGenerator(cfg.Generator))
	apiController := controller.NewAPIController(*cfg, githubService, readmeService, admission)

	// setup server and define all routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &http.Server{
		Addr:    ":" + cfg.API.ListenPort,
		Handler: router,
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins: cfg.API.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Content-Length", "Accept-Encoding", "Host", "accept", "Origin", "Cache-Control", "X-Requested-With", "Authorization"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.GET("/", apiController.Health)

	api := router.Group("/api", apiController.RateLimitMiddleware())
	{
		api.POST("/check-repo", apiController.CheckRepository)
		api.POST("/generate-readme", apiController.GenerateReadme)
		api.POST("/generate-readme-detailed", apiController.GenerateReadmeDetailed)
	}

	// start with configuration
	go func() {
		log.Info("server listening on port " + cfg.API.ListenPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("error while starting server")
		}

	}()

	// create context with 15 seconds timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// wait for interrupt signal to gracefully shut down the server with a timeout of 15 seconds.
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	} else {
		log.Info("Application stopped gracefully !")
	}
}
