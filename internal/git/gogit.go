package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"sort"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// minAbbrevLen is git's fallback abbreviation length for small repositories
const minAbbrevLen = 7

type goGitClient struct {
	dir string
}

// NewGoGit returns a Client that reads the repository in-process without a git binary
func NewGoGit(dir string) Client {
	return &goGitClient{dir: dir}
}

func (c *goGitClient) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(c.dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", c.dir, err)
	}
	return repo, nil
}

func (c *goGitClient) RemoteURL(_ context.Context, remote string) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	r, err := repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("failed to get URL of remote %s: %w", remote, err)
	}

	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", remote)
	}
	return urls[0], nil
}

// LastTag returns the tag with the fewest commits between it and HEAD, the way
// git describe --tags picks one. Ties go to the more recently committed tag.
func (c *goGitClient) LastTag(_ context.Context) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	tagsByCommit, err := tagsByCommit(repo)
	if err != nil {
		return "", err
	}
	if len(tagsByCommit) == 0 {
		return "", nil
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	reachable, err := ancestors(repo, head.Hash())
	if err != nil {
		return "", err
	}

	var best *tagCandidate
	for hash, name := range tagsByCommit {
		if !reachable[hash] {
			continue
		}

		tagged, err := ancestors(repo, hash)
		if err != nil {
			return "", err
		}
		commit, err := repo.CommitObject(hash)
		if err != nil {
			return "", fmt.Errorf("failed to read tagged commit %s: %w", hash, err)
		}

		candidate := &tagCandidate{
			name:  name,
			depth: len(reachable) - len(tagged),
			when:  commit.Committer.When,
		}
		if best == nil || candidate.closerThan(best) {
			best = candidate
		}
	}

	if best == nil {
		return "", nil
	}

	slog.Debug("Resolved last tag", "tag", best.name, "depth", best.depth)
	return best.name, nil
}

type tagCandidate struct {
	name  string
	depth int
	when  time.Time
}

func (t *tagCandidate) closerThan(other *tagCandidate) bool {
	if t.depth != other.depth {
		return t.depth < other.depth
	}
	if !t.when.Equal(other.when) {
		return t.when.After(other.when)
	}
	return t.name > other.name
}

func (c *goGitClient) CommitsSince(_ context.Context, tag string) ([]Commit, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	excluded := map[plumbing.Hash]bool{}
	if tag != "" {
		tagCommit, err := resolveCommit(repo, tag)
		if err != nil {
			return nil, err
		}
		excluded, err = ancestors(repo, tagCommit)
		if err != nil {
			return nil, err
		}
	}

	iter, err := repo.Log(&gogit.LogOptions{From: head.Hash(), Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history: %w", err)
	}
	defer iter.Close()

	abbrev, err := newAbbreviator(repo)
	if err != nil {
		return nil, err
	}

	var commits []Commit
	err = iter.ForEach(func(commit *object.Commit) error {
		if excluded[commit.Hash] {
			return nil
		}
		commits = append(commits, Commit{
			Hash:    abbrev.short(commit.Hash),
			Subject: strings.SplitN(strings.TrimSpace(commit.Message), "\n", 2)[0],
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history: %w", err)
	}

	return commits, nil
}

func (c *goGitClient) ResolveCommit(_ context.Context, rev string) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	hash, err := resolveCommit(repo, rev)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (c *goGitClient) CurrentBranch(_ context.Context) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("unable to determine current branch")
	}
	return head.Name().Short(), nil
}

// resolveCommit resolves rev and peels annotated tags down to their commit
func resolveCommit(repo *gogit.Repository, rev string) (plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve %s: %w", rev, err)
	}

	if tagObject, err := repo.TagObject(*hash); err == nil {
		commit, err := tagObject.Commit()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("failed to peel tag %s: %w", rev, err)
		}
		return commit.Hash, nil
	}

	return *hash, nil
}

// tagsByCommit maps each tagged commit to one of its tag names
func tagsByCommit(repo *gogit.Repository) (map[plumbing.Hash]string, error) {
	refs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer refs.Close()

	tags := map[plumbing.Hash]string{}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tagObject, err := repo.TagObject(target); err == nil {
			commit, err := tagObject.Commit()
			if err != nil {
				// Tags of trees or blobs cannot bound a commit range
				return nil
			}
			target = commit.Hash
		}
		tags[target] = ref.Name().Short()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}

// ancestors returns from and every commit reachable from it
func ancestors(repo *gogit.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history from %s: %w", from, err)
	}
	defer iter.Close()

	seen := map[plumbing.Hash]bool{}
	err = iter.ForEach(func(commit *object.Commit) error {
		seen[commit.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history from %s: %w", from, err)
	}

	return seen, nil
}

// abbreviator shortens hashes the way git log %h does: at least the length
// core.abbrev=auto derives from the object count, then long enough to be unique
type abbreviator struct {
	hashes []string
	minLen int
}

func newAbbreviator(repo *gogit.Repository) (*abbreviator, error) {
	iter, err := repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer iter.Close()

	var hashes []string
	err = iter.ForEach(func(obj plumbing.EncodedObject) error {
		hashes = append(hashes, obj.Hash().String())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	return newAbbreviatorFromHashes(hashes), nil
}

func newAbbreviatorFromHashes(hashes []string) *abbreviator {
	sorted := append([]string(nil), hashes...)
	sort.Strings(sorted)
	return &abbreviator{hashes: sorted, minLen: autoAbbrevLen(len(sorted))}
}

// autoAbbrevLen expects a collision around 2^(bits/2) objects, at 4 bits per hex digit
func autoAbbrevLen(count int) int {
	n := (bits.Len(uint(count)) + 1) / 2
	if n < minAbbrevLen {
		return minAbbrevLen
	}
	return n
}

func (a *abbreviator) short(hash plumbing.Hash) string {
	full := hash.String()
	n := a.minLen

	i := sort.SearchStrings(a.hashes, full)
	for _, j := range []int{i - 1, i, i + 1} {
		if j < 0 || j >= len(a.hashes) || a.hashes[j] == full {
			continue
		}
		if shared := commonPrefixLen(full, a.hashes[j]); shared+1 > n {
			n = shared + 1
		}
	}

	if n > len(full) {
		n = len(full)
	}
	return full[:n]
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
