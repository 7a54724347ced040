package config

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// ExampleYAML is written by `blogbuilder init`.
const ExampleYAML = `# blogbuilder configuration
site:
  title: "My Blog"
  base_url: "https://example.com/"
  description: "Notes on build systems and testing"
  author: "Jane Doe"
  permalink: "posts/:slug/"
  feed_limit: 20

content:
  dir: "_posts"
  drafts: false

markdown:
  highlight_style: "github"
  excerpt_length: 280

build:
  main_branch: "main"
  templates_dir: ""   # optional overrides for base/index/post/tag/tags.html
  static_dir: "static"
  lock_file: "go.sum"

cache:
  backend: "fs"       # fs | nats | none
  dir: ".blogbuilder/cache"
  nats:
    url: "${NATS_URL}"
    bucket: "blogbuilder-cache"

publish:
  target: "dir"       # dir | git | none
  dir: "public"
  git:
    url: "https://github.com/example/example.github.io.git"
    branch: "gh-pages"
    token: "${GITHUB_TOKEN}"

history:
  enabled: true
  path: ".blogbuilder/history.db"

server:
  addr: ":8080"
  webhook_secret: "${WEBHOOK_SECRET}"
  queue_size: 16
  schedule: "0s"

logging:
  level: "info"
  format: "text"

metrics:
  enabled: true
`

// WriteExample writes ExampleYAML to path, refusing to overwrite unless force.
func WriteExample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
				WithContext("path", path).
				Build()
		}
	}
	if err := os.WriteFile(path, []byte(ExampleYAML), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config").
			WithContext("path", path).
			Build()
	}
	return nil
}
