package model

import "time"

type RepositoryMetadata struct {
	Name          string        `json:"name"`
	FullName      string        `json:"fullName"`
	Description   string        `json:"description"`
	Homepage      string        `json:"homepage"`
	DefaultBranch string        `json:"defaultBranch"`
	Stars         int           `json:"stars"`
	Forks         int           `json:"forks"`
	Issues        int           `json:"issues"`
	Languages     []string      `json:"languages"`
	Contributors  []Contributor `json:"contributors"`
	License       *string       `json:"license"` // license can be nil for repositories without a detected licence
	Topics        []string      `json:"topics"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	URL           string        `json:"url"`
}

type Contributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
}
