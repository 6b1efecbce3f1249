package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/glorpus-work/addonctl/pkg/sink"
)

// fallbackBranches are tried when the channel has no branch of its own.
var fallbackBranches = []string{"main", "master"}

// IsGitURL reports whether remoteURL points at a git repository.
func IsGitURL(remoteURL string) bool {
	u := strings.ToLower(remoteURL)
	return strings.HasSuffix(u, ".git") || strings.HasPrefix(u, "git@") || strings.HasPrefix(u, "git://")
}

// GitAgent serves add-ons hosted in git repositories. The channel selects
// the branch.
type GitAgent struct{}

// NewGitAgent creates a git agent.
func NewGitAgent() *GitAgent { return &GitAgent{} }

// Create returns a session for one add-on.
func (a *GitAgent) Create(codeName, remoteURL, destDir, channel string) (Session, error) {
	if err := validateArgs(codeName, remoteURL, destDir); err != nil {
		return nil, err
	}
	return &gitSession{
		events:    events{name: codeName},
		codeName:  codeName,
		remoteURL: remoteURL,
		destDir:   destDir,
		channel:   channel,
	}, nil
}

type gitSession struct {
	events
	codeName  string
	remoteURL string
	destDir   string
	channel   string

	mu         sync.Mutex
	branch     string
	remoteHead plumbing.Hash
}

func (s *gitSession) Name() string { return s.codeName }

func (s *gitSession) dir() string { return filepath.Join(s.destDir, s.codeName) }

// LoadRemoteVersion lists the remote's refs without touching the local copy.
func (s *gitSession) LoadRemoteVersion(ctx context.Context) error {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{s.remoteURL},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return fmt.Errorf("list refs of %s: %w", s.remoteURL, err)
	}

	heads := make(map[string]plumbing.Hash, len(refs))
	for _, ref := range refs {
		if ref.Name().IsBranch() {
			heads[ref.Name().Short()] = ref.Hash()
		}
	}
	candidates := append([]string{s.channel}, fallbackBranches...)
	for _, branch := range candidates {
		if hash, ok := heads[branch]; ok && branch != "" {
			s.mu.Lock()
			s.branch, s.remoteHead = branch, hash
			s.mu.Unlock()
			s.emit(sink.Info, "remote %s of %s is at %s", branch, s.codeName, hash.String()[:8])
			return nil
		}
	}
	return fmt.Errorf("%w: %s has none of %v", ErrBranchNotFound, s.remoteURL, candidates)
}

func (s *gitSession) remote() (string, plumbing.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.branch, s.remoteHead
}

func (s *gitSession) head() (plumbing.Hash, bool) {
	repo, err := git.PlainOpen(s.dir())
	if err != nil {
		return plumbing.ZeroHash, false
	}
	ref, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, false
	}
	return ref.Hash(), true
}

func (s *gitSession) IsCurrent() bool {
	_, want := s.remote()
	got, ok := s.head()
	return ok && !want.IsZero() && got == want
}

// InstalledVersion is the abbreviated HEAD hash in git describe's g<hash>
// form, so it never parses as a release number.
func (s *gitSession) InstalledVersion() string {
	if h, ok := s.head(); ok {
		return "g" + h.String()[:8]
	}
	return ""
}

func (s *gitSession) EstimatedSize() int64 { return 0 }

func (s *gitSession) UpdateSync(ctx context.Context, force bool) error {
	if _, h := s.remote(); h.IsZero() {
		if err := s.LoadRemoteVersion(ctx); err != nil {
			s.emit(sink.Error, "%v", err)
			return err
		}
	}
	if !force && s.IsCurrent() {
		s.emit(sink.Info, "%s is already current", s.codeName)
		return nil
	}

	branch, hash := s.remote()
	var err error
	if _, statErr := os.Stat(filepath.Join(s.dir(), ".git")); statErr == nil {
		err = s.pull(ctx, branch, hash)
	} else {
		err = s.clone(ctx, branch)
	}
	if err != nil {
		s.emit(sink.Error, "transfer of %s failed: %v", s.codeName, err)
		return err
	}
	s.emit(sink.Info, "%s updated to %s", s.codeName, hash.String()[:8])
	return nil
}

func (s *gitSession) clone(ctx context.Context, branch string) error {
	if err := os.RemoveAll(s.dir()); err != nil {
		return err
	}
	_, err := git.PlainCloneContext(ctx, s.dir(), false, &git.CloneOptions{
		URL:           s.remoteURL,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	})
	if err != nil {
		_ = os.RemoveAll(s.dir())
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	return nil
}

// pull fetches the branch and hard-resets the worktree to it, discarding
// local modifications.
func (s *gitSession) pull(ctx context.Context, branch string, hash plumbing.Hash) error {
	repo, err := git.PlainOpen(s.dir())
	if err != nil {
		return err
	}
	spec := config.RefSpec(fmt.Sprintf("+refs/heads/%[1]s:refs/remotes/origin/%[1]s", branch))
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []config.RefSpec{spec},
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := worktree.Reset(&git.ResetOptions{Commit: hash, Mode: git.HardReset}); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", hash, err)
	}
	return nil
}
