package model

import "strings"

type CheckRepoRequest struct {
	RepoURL string `json:"repoUrl"`
}

type GenerateRequest struct {
	RepoURL string `json:"repoUrl"`
	AdditionalInfo
}

// AdditionalInfo is the optional user-supplied overlay for the generated
// document. Every field may be empty, a blank field simply omits its section.
type AdditionalInfo struct {
	Description     string `json:"description"`
	TechStack       string `json:"techStack"`
	Features        string `json:"features"`
	Installation    string `json:"installation"`
	Usage           string `json:"usage"`
	Contributing    string `json:"contributing"`
	License         string `json:"license"`
	ContactName     string `json:"contactName"`
	ContactEmail    string `json:"contactEmail"`
	ContactWebsite  string `json:"contactWebsite"`
	ContactTwitter  string `json:"contactTwitter"`
	ContactLinkedIn string `json:"contactLinkedIn"`
}

// HasContact reports whether at least one contact field is filled in
func (info AdditionalInfo) HasContact() bool {
	contactFields := []string{
		info.ContactName,
		info.ContactEmail,
		info.ContactWebsite,
		info.ContactTwitter,
		info.ContactLinkedIn,
	}

	for _, field := range contactFields {
		if strings.TrimSpace(field) != "" {
			return true
		}
	}

	return false
}
