package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/readmegen/backend/model"
)

// renderContext carries everything a section needs to decide whether it
// renders and what it renders
type renderContext struct {
	metadata model.RepositoryMetadata
	info     model.AdditionalInfo
	now      time.Time
}

// a section either renders its full block (heading included) or opts out,
// so an omitted section never leaves a stray heading behind
type sectionRenderer func(rc renderContext) (string, bool)

// fallbackSections defines the fixed document order. Adding or removing a
// section is a change to this list, not to the rendering control flow.
var fallbackSections = []sectionRenderer{
	renderTitle,
	renderBadges,
	renderDescription,
	renderHomepage,
	renderFeatures,
	renderTechnologies,
	renderInstallation,
	renderUsage,
	renderContributing,
	renderLicense,
	renderContact,
	renderStatistics,
	renderFooter,
}

// SynthesizeFallback renders the deterministic README used when the text
// generation capability is unavailable. Given the same inputs and the same
// clock value it always produces the same document.
func SynthesizeFallback(metadata model.RepositoryMetadata, info model.AdditionalInfo, now time.Time) string {
	rc := renderContext{
		metadata: metadata,
		info:     info,
		now:      now,
	}

	sections := make([]string, 0, len(fallbackSections))

	for _, render := range fallbackSections {
		if block, ok := render(rc); ok {
			sections = append(sections, block)
		}
	}

	return strings.Join(sections, "\n\n") + "\n"
}

func renderTitle(rc renderContext) (string, bool) {
	name := strings.TrimSpace(rc.metadata.Name)

	if name == "" {
		name = "Project README"
	}

	return "# " + name, true
}

func renderBadges(rc renderContext) (string, bool) {
	var badges []string

	if rc.metadata.License != nil && strings.TrimSpace(*rc.metadata.License) != "" {
		badges = append(badges, fmt.Sprintf(
			"![License](https://img.shields.io/badge/License-%s-blue.svg)",
			url.PathEscape(strings.TrimSpace(*rc.metadata.License)),
		))
	}

	for _, language := range rc.metadata.Languages {
		badges = append(badges, fmt.Sprintf(
			"![%s](https://img.shields.io/badge/%s-language-brightgreen.svg)",
			language,
			url.PathEscape(language),
		))
	}

	if len(badges) == 0 {
		return "", false
	}

	return strings.Join(badges, " "), true
}

func renderDescription(rc renderContext) (string, bool) {
	if description := strings.TrimSpace(rc.metadata.Description); description != "" {
		return description, true
	}

	if description := strings.TrimSpace(rc.info.Description); description != "" {
		return description, true
	}

	return "No description provided.", true
}

func renderHomepage(rc renderContext) (string, bool) {
	homepage := strings.TrimSpace(rc.metadata.Homepage)

	if homepage == "" {
		return "", false
	}

	return fmt.Sprintf("**Website:** [%s](%s)", homepage, homepage), true
}

func renderFeatures(rc renderContext) (string, bool) {
	features := splitAndTrim(rc.info.Features, "\n")

	if len(features) == 0 {
		return "", false
	}

	return "## Features\n\n" + bulletList(features), true
}

// renderTechnologies renders the union of the user supplied tech stack and
// the detected languages, in that order. Duplicates are removed with exact
// string equality, no case folding.
func renderTechnologies(rc renderContext) (string, bool) {
	items := splitAndTrim(rc.info.TechStack, ",")
	items = append(items, rc.metadata.Languages...)

	seen := make(map[string]bool, len(items))
	technologies := make([]string, 0, len(items))

	for _, item := range items {
		if seen[item] {
			continue
		}

		seen[item] = true
		technologies = append(technologies, item)
	}

	if len(technologies) == 0 {
		return "", false
	}

	return "## Technologies Used\n\n" + bulletList(technologies), true
}

func renderInstallation(rc renderContext) (string, bool) {
	installation := strings.TrimSpace(rc.info.Installation)

	if installation == "" {
		return "", false
	}

	return "## Installation\n\n```bash\n" + installation + "\n```", true
}

func renderUsage(rc renderContext) (string, bool) {
	usage := strings.TrimSpace(rc.info.Usage)

	if usage == "" {
		return "", false
	}

	return "## Usage\n\n" + usage, true
}

// renderContributing gives user supplied text precedence over the fetched
// contributor list, the two are mutually exclusive
func renderContributing(rc renderContext) (string, bool) {
	if contributing := strings.TrimSpace(rc.info.Contributing); contributing != "" {
		return "## Contributing\n\n" + contributing, true
	}

	if len(rc.metadata.Contributors) == 0 {
		return "", false
	}

	lines := make([]string, 0, len(rc.metadata.Contributors))

	for _, contributor := range rc.metadata.Contributors {
		lines = append(lines, fmt.Sprintf("- [@%s](https://github.com/%s)", contributor.Login, contributor.Login))
	}

	return "## Contributors\n\n" + strings.Join(lines, "\n"), true
}

func renderLicense(rc renderContext) (string, bool) {
	license := ""

	if rc.metadata.License != nil {
		license = strings.TrimSpace(*rc.metadata.License)
	}

	if license == "" {
		license = strings.TrimSpace(rc.info.License)
	}

	if license == "" {
		return "", false
	}

	return fmt.Sprintf("## License\n\nThis project is licensed under the %s License.", license), true
}

func renderContact(rc renderContext) (string, bool) {
	if !rc.info.HasContact() {
		return "", false
	}

	var lines []string

	if name := strings.TrimSpace(rc.info.ContactName); name != "" {
		lines = append(lines, "- Name: "+name)
	}

	if email := strings.TrimSpace(rc.info.ContactEmail); email != "" {
		lines = append(lines, "- Email: "+email)
	}

	if website := strings.TrimSpace(rc.info.ContactWebsite); website != "" {
		lines = append(lines, fmt.Sprintf("- Website: [Personal Website](%s)", website))
	}

	if handle := profileHandle(rc.info.ContactTwitter, "twitter.com/", "x.com/"); handle != "" {
		lines = append(lines, fmt.Sprintf("- Twitter: [@%s](https://twitter.com/%s)", handle, handle))
	}

	if handle := profileHandle(rc.info.ContactLinkedIn, "linkedin.com/in/"); handle != "" {
		lines = append(lines, fmt.Sprintf("- LinkedIn: [Profile](https://www.linkedin.com/in/%s)", handle))
	}

	return "## Contact\n\n" + strings.Join(lines, "\n"), true
}

func renderStatistics(rc renderContext) (string, bool) {
	statistics := fmt.Sprintf(
		"## Repository Statistics\n\n- Stars: %d\n- Forks: %d\n- Open Issues: %d",
		rc.metadata.Stars,
		rc.metadata.Forks,
		rc.metadata.Issues,
	)

	if len(rc.metadata.Topics) > 0 {
		statistics += "\n- Topics: " + strings.Join(rc.metadata.Topics, ", ")
	}

	return statistics, true
}

func renderFooter(rc renderContext) (string, bool) {
	return "---\n*Generated on " + rc.now.Format("2006-01-02") + "*", true
}

// splitAndTrim splits on the separator, trims every item and drops the
// blank ones
func splitAndTrim(value string, separator string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	var items []string

	for _, item := range strings.Split(value, separator) {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))

	for _, item := range items {
		lines = append(lines, "- "+item)
	}

	return strings.Join(lines, "\n")
}

// profileHandle normalizes a contact field that may hold either a bare
// handle or a full profile URL. Passing the full URL into the profile link
// template would double the host, so known prefixes and a leading @ are
// stripped first.
func profileHandle(value string, hostPrefixes ...string) string {
	handle := strings.TrimSpace(value)

	if handle == "" {
		return ""
	}

	handle = strings.TrimPrefix(handle, "https://")
	handle = strings.TrimPrefix(handle, "http://")
	handle = strings.TrimPrefix(handle, "www.")

	for _, prefix := range hostPrefixes {
		handle = strings.TrimPrefix(handle, prefix)
	}

	handle = strings.TrimPrefix(handle, "@")
	return strings.TrimSuffix(handle, "/")
}
