package github

import (
	"errors"
	"net/http"

	"github.com/google/go-github/v57/github"
)

// alreadyExistsCode is the validation error code GitHub returns for a duplicate release
const alreadyExistsCode = "already_exists"

// IsAlreadyExists reports whether err is GitHub's 422 response for a resource that already exists
func IsAlreadyExists(err error) bool {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}

	if errResp.Response == nil || errResp.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}

	for _, e := range errResp.Errors {
		if e.Code == alreadyExistsCode {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a GitHub 404 response
func IsNotFound(err error) bool {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) {
		return false
	}
	return errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}
