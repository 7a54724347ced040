package trigger

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// FromRepository reads HEAD of the git working copy containing path. A
// detached HEAD yields Ref "HEAD", which never matches a branch.
func FromRepository(path string) (PushEvent, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return PushEvent{}, fmt.Errorf("open repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return PushEvent{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	ev := PushEvent{
		Ref:    head.Name().String(),
		After:  head.Hash().String(),
		Source: SourceLocal,
	}
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		ev.Repository = remote.Config().URLs[0]
	}
	return ev, nil
}
