package controller

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/readmegen/backend/config"
	"github.com/readmegen/backend/limiter"
	"github.com/readmegen/backend/model"
	"github.com/readmegen/backend/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type APIController interface {
	CheckRepository(c *gin.Context)
	GenerateReadme(c *gin.Context)
	GenerateReadmeDetailed(c *gin.Context)
	Health(c *gin.Context)

	RateLimitMiddleware() gin.HandlerFunc
}

type apiController struct {
	githubService service.GithubService
	readmeService service.ReadmeService
	admission     *limiter.FixedWindow
	config        config.Config
}

func NewAPIController(config config.Config, githubService service.GithubService, readmeService service.ReadmeService, admission *limiter.FixedWindow) APIController {
	return apiController{
		githubService: githubService,
		readmeService: readmeService,
		admission:     admission,
		config:        config,
	}
}

// RateLimitMiddleware rejects requests once the fixed window capacity is
// consumed. Denied requests are rejected before any parsing or external call
// happens, the reset time is reported so clients know when to retry.
func (s apiController) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, resetAt := s.admission.Allow()

		if !allowed {
			log.WithField("resetAt", resetAt).Warning("request rejected by the rate limiter")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, please try again later",
				"resetAt": resetAt.UTC().Format(time.RFC3339),
			})

			return
		}

		c.Next()
	}
}

// CheckRepository verifies the repository exists and reports its metadata
// plus whether it already has a README on its default branch
func (s apiController) CheckRepository(c *gin.Context) {
	var request model.CheckRepoRequest

	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.RepoURL) == "" {
		c.JSON(http.StatusBadRequest, model.NewAPIError(fmt.Errorf("INVALID_REQUEST")))
		return
	}

	owner, repo, err := model.ExtractRepoInfo(request.RepoURL)

	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(err))
		return
	}

	metadata, err := s.githubService.GetRepositoryMetadata(c.Request.Context(), owner, repo)

	if err != nil {
		if err.Error() == "REPOSITORY_NOT_FOUND" {
			c.JSON(http.StatusNotFound, gin.H{
				"exists": false,
				"error":  "Repository not found",
			})

			return
		}

		c.JSON(statusForError(err), model.NewAPIError(err))
		return
	}

	// a failed probe only means we cannot tell, never fail the whole check for it
	hasReadme, err := s.githubService.HasReadme(c.Request.Context(), owner, repo, metadata.DefaultBranch)

	if err != nil {
		log.WithError(err).Debug("unable to check for an existing README. assuming there is none")
		hasReadme = false
	}

	c.JSON(http.StatusOK, gin.H{
		"exists":    true,
		"repoData":  metadata,
		"hasReadme": hasReadme,
	})
}

// GenerateReadme runs the generation pipeline with repository metadata only
func (s apiController) GenerateReadme(c *gin.Context) {
	var request model.CheckRepoRequest

	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.RepoURL) == "" {
		c.JSON(http.StatusBadRequest, model.NewAPIError(fmt.Errorf("INVALID_REQUEST")))
		return
	}

	s.generate(c, request.RepoURL, model.AdditionalInfo{})
}

// GenerateReadmeDetailed runs the generation pipeline with the user supplied
// overlay on top of the repository metadata
func (s apiController) GenerateReadmeDetailed(c *gin.Context) {
	var request model.GenerateRequest

	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.RepoURL) == "" {
		c.JSON(http.StatusBadRequest, model.NewAPIError(fmt.Errorf("INVALID_REQUEST")))
		return
	}

	s.generate(c, request.RepoURL, request.AdditionalInfo)
}

func (s apiController) generate(c *gin.Context, repoURL string, info model.AdditionalInfo) {
	owner, repo, err := model.ExtractRepoInfo(repoURL)

	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError(err))
		return
	}

	metadata, err := s.githubService.GetRepositoryMetadata(c.Request.Context(), owner, repo)

	if err != nil {
		c.JSON(statusForError(err), model.NewAPIError(err))
		return
	}

	// generation never fails: any capability error is downgraded to the
	// deterministic fallback inside the service
	result := s.readmeService.Generate(c.Request.Context(), owner, repo, metadata, info)

	c.JSON(http.StatusOK, gin.H{
		"readme":            result.Readme,
		"repoData":          metadata,
		"isGenericFallback": result.UsedFallback,
	})
}

// Health is a cheap liveness probe, not rate limited
func (s apiController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// statusForError maps the errors coming back from the metadata fetch.
// Parsing and request validation errors never reach this point, the handlers
// reject them with a 400 before any service call.
func statusForError(err error) int {
	switch err.Error() {
	case "REPOSITORY_NOT_FOUND":
		return http.StatusNotFound
	case "RATE_LIMIT_REACHED":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
