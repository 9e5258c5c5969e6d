package github

import "context"

// Repository identifies a GitHub repository
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ReleaseRequest holds the fields of a release to create
type ReleaseRequest struct {
	TagName         string
	TargetCommitish string
	Name            string
	Body            string
	Draft           bool
	Prerelease      bool
}

// Release represents a release from GitHub
type Release struct {
	ID      int64
	TagName string
	Name    string
	HTMLURL string
}

// ReleaseHost creates and looks up releases of one repository
type ReleaseHost interface {
	// CreateRelease creates a release; the error satisfies IsAlreadyExists when the tag already has one
	CreateRelease(ctx context.Context, req ReleaseRequest) (*Release, error)

	// GetReleaseByTag returns the release for tag; the error satisfies IsNotFound when there is none
	GetReleaseByTag(ctx context.Context, tag string) (*Release, error)
}
