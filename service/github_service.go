package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/readmegen/backend/config"
	"github.com/readmegen/backend/model"

	"github.com/google/go-github/v66/github"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

type GithubService interface {
	GetRepositoryMetadata(ctx context.Context, owner string, repo string) (model.RepositoryMetadata, error)
	HasReadme(ctx context.Context, owner string, repo string, branch string) (bool, error)
	FetchLanguages(ctx context.Context, owner string, repo string, ch chan<- []string) error
	FetchContributors(ctx context.Context, owner string, repo string, ch chan<- []model.Contributor) error

	HandleRequestErrors(err error) error
}

type githubService struct {
	githubClient      *github.Client
	githubRateLimiter *rate.Limiter
	config            config.Config
}

// the limiter passed here guards our own calls to the github API
// Repositories.Get / ListLanguages / ListContributors / GetReadme all share
// the core rate limit = 60 calls per hour for non-authenticated and 5000 calls for authenticated
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter) GithubService {
	return githubService{
		githubClient:      githubClient,
		githubRateLimiter: rateLimiter,
		config:            config,
	}
}

// GetRepositoryMetadata will fetch and aggregate everything the generator needs
// for a single repository: base attributes, languages and top contributors
func (s githubService) GetRepositoryMetadata(ctx context.Context, owner string, repo string) (model.RepositoryMetadata, error) {

	// a single metadata fetch performs three github calls
	// consume all of them upfront to avoid loading the repository only partially
	if !s.githubRateLimiter.AllowN(time.Now(), 3) {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return model.RepositoryMetadata{}, fmt.Errorf("RATE_LIMIT_REACHED")
	}

	log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
	}).Info("fetch repository metadata from github")

	repository, resp, err := s.githubClient.Repositories.Get(ctx, owner, repo)

	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			log.WithFields(log.Fields{
				"owner":      owner,
				"repository": repo,
			}).Debug("repository not found on github")

			return model.RepositoryMetadata{}, fmt.Errorf("REPOSITORY_NOT_FOUND")
		}

		return model.RepositoryMetadata{}, s.HandleRequestErrors(err)
	}

	metadata := model.RepositoryMetadata{
		Name:          repository.GetName(),
		FullName:      repository.GetFullName(),
		Description:   repository.GetDescription(),
		Homepage:      repository.GetHomepage(),
		DefaultBranch: repository.GetDefaultBranch(),
		Stars:         repository.GetStargazersCount(),
		Forks:         repository.GetForksCount(),
		Issues:        repository.GetOpenIssuesCount(),
		Topics:        repository.Topics,
		CreatedAt:     repository.GetCreatedAt().Time,
		UpdatedAt:     repository.GetUpdatedAt().Time,
		URL:           repository.GetHTMLURL(),
	}

	// licence can be null or empty for some repositories
	if repository.License != nil {
		metadata.License = repository.License.SPDXID
	}

	// languages and contributors are independant requests, fetch them in parallel
	// a language fetch error fails the whole metadata fetch, a contributor
	// fetch error does not: the document renders fine without contributors
	swg := sizedwaitgroup.New(s.config.Tasks.MaxParallelTasksAllowed)

	languagesResult := make(chan []string, 1)
	contributorsResult := make(chan []model.Contributor, 1)
	fetchErrors := make(chan error, 1)

	// each goroutine owns its Done and sends its result (or error) before
	// returning, so every send happens before Wait returns and the channels
	// are never written after they are closed below
	swg.Add()
	go func() {
		defer swg.Done()

		if err := s.FetchLanguages(ctx, owner, repo, languagesResult); err != nil {
			fetchErrors <- err
		}
	}()

	swg.Add()
	go func() {
		defer swg.Done()

		// error already handled inside, contributors are best effort
		_ = s.FetchContributors(ctx, owner, repo, contributorsResult)
	}()

	// wait for all tasks to be finished
	log.Debug("waiting for languages and contributors fetch to be finished")
	swg.Wait()

	close(languagesResult)
	close(contributorsResult)
	close(fetchErrors)

	if err := <-fetchErrors; err != nil {
		log.WithError(err).Error("unable to get repository languages")
		return model.RepositoryMetadata{}, err
	}

	metadata.Languages = <-languagesResult
	metadata.Contributors = <-contributorsResult

	return metadata, nil
}

// FetchLanguages get the languages detected for a specific repository
// It will add the results to a channel and is meant to run as a goroutine
// note: we are not checking the rate limit in this function, because done in the parent function
// note: take care if you call this function from another function
func (s githubService) FetchLanguages(ctx context.Context, owner string, repo string, ch chan<- []string) error {
	log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
	}).Debug("fetch languages for repository")

	res, _, err := s.githubClient.Repositories.ListLanguages(ctx, owner, repo)

	if err != nil {
		return s.HandleRequestErrors(err)
	}

	// keep only the language names, the byte counts are irrelevant here
	languages := make([]string, 0, len(res))
	for language := range res {
		languages = append(languages, language)
	}

	ch <- languages
	return nil
}

// FetchContributors get the top contributors for a specific repository
// Some repositories have no contributor list available (empty repositories for example)
// in that case we continue without contributors instead of failing the whole fetch
func (s githubService) FetchContributors(ctx context.Context, owner string, repo string, ch chan<- []model.Contributor) error {
	log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
	}).Debug("fetch contributors for repository")

	res, _, err := s.githubClient.Repositories.ListContributors(ctx, owner, repo, &github.ListContributorsOptions{
		ListOptions: github.ListOptions{
			PerPage: 10,
		},
	})

	if err != nil {
		log.WithError(err).Debug("no contributors found or error fetching contributors. skipped")
		ch <- []model.Contributor{}
		return s.HandleRequestErrors(err)
	}

	// keep the github ordering: contributions descending
	contributors := make([]model.Contributor, 0, len(res))
	for _, contributor := range res {
		if contributor == nil || contributor.Login == nil {
			continue
		}

		contributors = append(contributors, model.Contributor{
			Login:         contributor.GetLogin(),
			Contributions: contributor.GetContributions(),
		})
	}

	ch <- contributors
	return nil
}

// HasReadme check whether the repository already has a README.md on the given branch
// a 404 is a regular answer here, not an error
func (s githubService) HasReadme(ctx context.Context, owner string, repo string, branch string) (bool, error) {
	if !s.githubRateLimiter.Allow() {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return false, fmt.Errorf("RATE_LIMIT_REACHED")
	}

	log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
		"branch":     branch,
	}).Debug("check whether repository already has a README")

	_, resp, err := s.githubClient.Repositories.GetReadme(ctx, owner, repo, &github.RepositoryContentGetOptions{
		Ref: branch,
	})

	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}

		return false, s.HandleRequestErrors(err)
	}

	return true, nil
}

// HandleRequestErrors manage errors including github rate limit errors at the same location
// If error is a rate limit error, this function will update the local rate limiter to consume all available requests
// this can help us to keep the local rate limiter up to date
func (s githubService) HandleRequestErrors(err error) error {
	if _, ok := err.(*github.RateLimitError); ok {
		if !s.githubRateLimiter.AllowN(time.Now(), s.githubRateLimiter.Burst()) {
			return fmt.Errorf("RATE_LIMITER_ERROR")
		}

		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return fmt.Errorf("RATE_LIMIT_REACHED")
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return fmt.Errorf("METADATA_FETCH_ERROR")
}
