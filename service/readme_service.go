package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/readmegen/backend/config"
	"github.com/readmegen/backend/model"

	log "github.com/sirupsen/logrus"
)

type ReadmeService interface {
	Generate(ctx context.Context, owner string, repo string, metadata model.RepositoryMetadata, info model.AdditionalInfo) model.GenerationResult
	BuildPrompt(owner string, repo string, metadata model.RepositoryMetadata, info model.AdditionalInfo) string
}

type readmeService struct {
	generator TextGenerator
	config    config.Config
	now       func() time.Time
}

func NewReadmeService(config config.Config, generator TextGenerator) ReadmeService {
	return newReadmeService(config, generator, time.Now)
}

// newReadmeService allows tests to inject a fake clock for the fallback footer
func newReadmeService(config config.Config, generator TextGenerator, now func() time.Time) ReadmeService {
	return readmeService{
		generator: generator,
		config:    config,
		now:       now,
	}
}

// Generate makes a single attempt against the text generation capability and
// falls back to the deterministic document on any failure. It never returns
// an error: the caller always receives a renderable document, the result
// only records which path produced it.
func (s readmeService) Generate(ctx context.Context, owner string, repo string, metadata model.RepositoryMetadata, info model.AdditionalInfo) model.GenerationResult {
	prompt := s.BuildPrompt(owner, repo, metadata, info)

	log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
	}).Info("generating README with the text generation capability")

	document, err := s.generator.GenerateText(ctx, prompt)

	// a blank document is a capability failure too, a success response must
	// never carry an empty body
	if err == nil && strings.TrimSpace(document) == "" {
		err = fmt.Errorf("generator returned an empty document")
	}

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"owner":      owner,
			"repository": repo,
		}).Warning("text generation failed. falling back to the deterministic document")

		return model.GenerationResult{
			Readme:       SynthesizeFallback(metadata, info, s.now()),
			UsedFallback: true,
		}
	}

	return model.GenerationResult{
		Readme:       document,
		UsedFallback: false,
	}
}

// BuildPrompt interpolates the repository metadata and the user supplied
// overlay into the generation prompt. Field interpolation only, blank
// optional fields simply omit their line.
func (s readmeService) BuildPrompt(owner string, repo string, metadata model.RepositoryMetadata, info model.AdditionalInfo) string {
	var prompt strings.Builder

	prompt.WriteString("Generate a professional GitHub README.md for the following repository:\n\n")
	prompt.WriteString("# Repository Info\n")

	name := strings.TrimSpace(metadata.Name)
	if name == "" {
		name = repo
	}

	fullName := strings.TrimSpace(metadata.FullName)
	if fullName == "" {
		fullName = owner + "/" + repo
	}

	repoURL := strings.TrimSpace(metadata.URL)
	if repoURL == "" {
		repoURL = "https://github.com/" + owner + "/" + repo
	}

	prompt.WriteString("Name: " + name + "\n")
	prompt.WriteString("Owner: " + owner + "\n")
	prompt.WriteString("Full Name: " + fullName + "\n")
	prompt.WriteString("URL: " + repoURL + "\n")

	description := strings.TrimSpace(metadata.Description)
	if description == "" {
		description = strings.TrimSpace(info.Description)
	}
	if description == "" {
		description = "No description provided"
	}
	prompt.WriteString("Description: " + description + "\n")

	if len(metadata.Languages) > 0 {
		prompt.WriteString("Languages: " + strings.Join(metadata.Languages, ", ") + "\n")
	}

	if techStack := strings.TrimSpace(info.TechStack); techStack != "" {
		prompt.WriteString("Tech Stack: " + techStack + "\n")
	}

	if len(metadata.Topics) > 0 {
		prompt.WriteString("Topics: " + strings.Join(metadata.Topics, ", ") + "\n")
	}

	prompt.WriteString(fmt.Sprintf("Stars: %d\n", metadata.Stars))
	prompt.WriteString(fmt.Sprintf("Forks: %d\n", metadata.Forks))
	prompt.WriteString(fmt.Sprintf("Issues: %d\n", metadata.Issues))

	if !metadata.CreatedAt.IsZero() {
		prompt.WriteString("Created: " + metadata.CreatedAt.Format("2006-01-02") + "\n")
	}

	if !metadata.UpdatedAt.IsZero() {
		prompt.WriteString("Last Updated: " + metadata.UpdatedAt.Format("2006-01-02") + "\n")
	}

	prompt.WriteString("\n# Content Sections\n")

	if features := strings.TrimSpace(info.Features); features != "" {
		prompt.WriteString("Features:\n" + features + "\n")
	}

	if installation := strings.TrimSpace(info.Installation); installation != "" {
		prompt.WriteString("Installation:\n" + installation + "\n")
	}

	if usage := strings.TrimSpace(info.Usage); usage != "" {
		prompt.WriteString("Usage:\n" + usage + "\n")
	}

	if contributing := strings.TrimSpace(info.Contributing); contributing != "" {
		prompt.WriteString("Contributing:\n" + contributing + "\n")
	}

	license := ""
	if metadata.License != nil {
		license = strings.TrimSpace(*metadata.License)
	}
	if license == "" {
		license = strings.TrimSpace(info.License)
	}
	if license != "" {
		prompt.WriteString("License: " + license + "\n")
	}

	if info.HasContact() {
		prompt.WriteString("Contact Information:\n")

		if name := strings.TrimSpace(info.ContactName); name != "" {
			prompt.WriteString("Name: " + name + "\n")
		}
		if email := strings.TrimSpace(info.ContactEmail); email != "" {
			prompt.WriteString("Email: " + email + "\n")
		}
		if website := strings.TrimSpace(info.ContactWebsite); website != "" {
			prompt.WriteString("Website: " + website + "\n")
		}
		if twitter := strings.TrimSpace(info.ContactTwitter); twitter != "" {
			prompt.WriteString("Twitter: " + twitter + "\n")
		}
		if linkedIn := strings.TrimSpace(info.ContactLinkedIn); linkedIn != "" {
			prompt.WriteString("LinkedIn: " + linkedIn + "\n")
		}
	}

	if len(metadata.Contributors) > 0 {
		handles := make([]string, 0, len(metadata.Contributors))
		for _, contributor := range metadata.Contributors {
			handles = append(handles, "@"+contributor.Login)
		}

		prompt.WriteString("Contributors: " + strings.Join(handles, ", ") + "\n")
	}

	return prompt.String()
}
