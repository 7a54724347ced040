package trigger

// FromEnv derives the event from CI environment variables. GitHub Actions
// (GITHUB_REF, GITHUB_SHA, GITHUB_REPOSITORY) and GitLab CI
// (CI_COMMIT_BRANCH, CI_COMMIT_SHA, CI_PROJECT_PATH) are recognised.
func FromEnv(lookup func(string) (string, bool)) (PushEvent, bool) {
	if ref, ok := lookup("GITHUB_REF"); ok && ref != "" {
		sha, _ := lookup("GITHUB_SHA")
		repo, _ := lookup("GITHUB_REPOSITORY")
		actor, _ := lookup("GITHUB_ACTOR")
		return PushEvent{Ref: ref, After: sha, Repository: repo, Pusher: actor, Source: SourceCI}, true
	}
	if branch, ok := lookup("CI_COMMIT_BRANCH"); ok && branch != "" {
		sha, _ := lookup("CI_COMMIT_SHA")
		repo, _ := lookup("CI_PROJECT_PATH")
		before, _ := lookup("CI_COMMIT_BEFORE_SHA")
		user, _ := lookup("GITLAB_USER_LOGIN")
		return PushEvent{Ref: BranchRef(branch), Before: before, After: sha, Repository: repo, Pusher: user, Source: SourceCI}, true
	}
	return PushEvent{}, false
}
