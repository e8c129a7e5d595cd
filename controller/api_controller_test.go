package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/readmegen/backend/config"
	"github.com/readmegen/backend/limiter"
	"github.com/readmegen/backend/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type githubServiceStub struct {
	metadata    model.RepositoryMetadata
	metadataErr error
	hasReadme   bool
}

func (s githubServiceStub) GetRepositoryMetadata(_ context.Context, _ string, _ string) (model.RepositoryMetadata, error) {
	return s.metadata, s.metadataErr
}

func (s githubServiceStub) HasReadme(_ context.Context, _ string, _ string, _ string) (bool, error) {
	return s.hasReadme, nil
}

func (s githubServiceStub) FetchLanguages(_ context.Context, _ string, _ string, ch chan<- []string) error {
	ch <- s.metadata.Languages
	return nil
}

func (s githubServiceStub) FetchContributors(_ context.Context, _ string, _ string, ch chan<- []model.Contributor) error {
	ch <- s.metadata.Contributors
	return nil
}

func (s githubServiceStub) HandleRequestErrors(err error) error {
	return err
}

type readmeServiceStub struct {
	result model.GenerationResult
}

func (s readmeServiceStub) Generate(_ context.Context, _ string, _ string, _ model.RepositoryMetadata, _ model.AdditionalInfo) model.GenerationResult {
	return s.result
}

func (s readmeServiceStub) BuildPrompt(_ string, _ string, _ model.RepositoryMetadata, _ model.AdditionalInfo) string {
	return ""
}

func setupRouter(githubStub githubServiceStub, readmeStub readmeServiceStub, admission *limiter.FixedWindow) *gin.Engine {
	gin.SetMode(gin.TestMode)

	conf := config.GetDefault()
	apiController := NewAPIController(*conf, githubStub, readmeStub, admission)

	router := gin.New()
	router.GET("/", apiController.Health)

	api := router.Group("/api", apiController.RateLimitMiddleware())
	{
		api.POST("/check-repo", apiController.CheckRepository)
		api.POST("/generate-readme", apiController.GenerateReadme)
		api.POST("/generate-readme-detailed", apiController.GenerateReadmeDetailed)
	}

	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// TestCheckRepository will test the check-repo endpoint
func TestCheckRepository(t *testing.T) {
	metadata := model.RepositoryMetadata{
		Name:          "demo",
		FullName:      "gopher/demo",
		DefaultBranch: "main",
		Stars:         5,
	}

	tests := []struct {
		name           string
		body           map[string]string
		githubStub     githubServiceStub
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Repository exists",
			body:           map[string]string{"repoUrl": "https://github.com/gopher/demo"},
			githubStub:     githubServiceStub{metadata: metadata, hasReadme: true},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing repository URL",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:           "Unparseable repository URL",
			body:           map[string]string{"repoUrl": "https://gitlab.com/gopher/demo"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REPOSITORY_URL",
		},
		{
			name:           "Repository not found",
			body:           map[string]string{"repoUrl": "https://github.com/gopher/missing"},
			githubStub:     githubServiceStub{metadataErr: fmt.Errorf("REPOSITORY_NOT_FOUND")},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(tt.githubStub, readmeServiceStub{}, limiter.NewFixedWindow(100, time.Hour))
			recorder := postJSON(router, "/api/check-repo", tt.body)

			assert.Equal(t, tt.expectedStatus, recorder.Code)

			var response map[string]any
			assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, response["code"])
			}

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, true, response["exists"])
				assert.Equal(t, true, response["hasReadme"])
				assert.NotNil(t, response["repoData"])
			}

			if tt.expectedStatus == http.StatusNotFound {
				assert.Equal(t, false, response["exists"])
			}
		})
	}
}

// TestGenerateReadme will test the generation endpoints response shape
func TestGenerateReadme(t *testing.T) {
	githubStub := githubServiceStub{
		metadata: model.RepositoryMetadata{Name: "demo", FullName: "gopher/demo"},
	}

	readmeStub := readmeServiceStub{
		result: model.GenerationResult{
			Readme:       "# demo\n",
			UsedFallback: true,
		},
	}

	router := setupRouter(githubStub, readmeStub, limiter.NewFixedWindow(100, time.Hour))

	recorder := postJSON(router, "/api/generate-readme", map[string]string{
		"repoUrl": "https://github.com/gopher/demo",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))

	assert.Equal(t, "# demo\n", response["readme"])
	assert.Equal(t, true, response["isGenericFallback"])
	assert.NotNil(t, response["repoData"])

	// the detailed endpoint returns the same shape
	recorder = postJSON(router, "/api/generate-readme-detailed", map[string]string{
		"repoUrl":   "https://github.com/gopher/demo",
		"techStack": "Go, Postgres",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
}

// TestGenerateReadmeErrors checks the status mapping of metadata fetch
// errors on the generation endpoints
func TestGenerateReadmeErrors(t *testing.T) {
	tests := []struct {
		name           string
		metadataErr    error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Repository not found",
			metadataErr:    fmt.Errorf("REPOSITORY_NOT_FOUND"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "REPOSITORY_NOT_FOUND",
		},
		{
			name:           "Github rate limit reached",
			metadataErr:    fmt.Errorf("RATE_LIMIT_REACHED"),
			expectedStatus: http.StatusTooManyRequests,
			expectedCode:   "RATE_LIMIT_REACHED",
		},
		{
			name:           "Upstream fetch failure",
			metadataErr:    fmt.Errorf("METADATA_FETCH_ERROR"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "METADATA_FETCH_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(githubServiceStub{metadataErr: tt.metadataErr}, readmeServiceStub{}, limiter.NewFixedWindow(100, time.Hour))

			recorder := postJSON(router, "/api/generate-readme", map[string]string{
				"repoUrl": "https://github.com/gopher/demo",
			})

			assert.Equal(t, tt.expectedStatus, recorder.Code)

			var response map[string]any
			assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCode, response["code"])
		})
	}
}

// TestRateLimitMiddleware checks that requests past the window capacity are
// rejected before reaching any handler, with the reset time reported
func TestRateLimitMiddleware(t *testing.T) {
	githubStub := githubServiceStub{
		metadata: model.RepositoryMetadata{Name: "demo", DefaultBranch: "main"},
	}

	router := setupRouter(githubStub, readmeServiceStub{}, limiter.NewFixedWindow(2, time.Hour))

	body := map[string]string{"repoUrl": "https://github.com/gopher/demo"}

	for i := 0; i < 2; i++ {
		recorder := postJSON(router, "/api/check-repo", body)
		assert.Equal(t, http.StatusOK, recorder.Code)
	}

	recorder := postJSON(router, "/api/check-repo", body)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "Rate limit exceeded", response["error"])
	assert.NotEmpty(t, response["resetAt"])

	// health endpoint stays reachable, it is not admission controlled
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	healthRecorder := httptest.NewRecorder()
	router.ServeHTTP(healthRecorder, req)
	assert.Equal(t, http.StatusOK, healthRecorder.Code)
}
