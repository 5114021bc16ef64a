package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# blogbuilder configuration
site:
  title: "My Blog"
  description: "Notes on software and other things"
  base_url: "https://example.com"
  author: "Jane Doe"
  language: "en"
  icon: "/assets/icon.png"
  favicon: "/assets/favicon.ico"

content:
  dir: ./content
  posts_dir: posts
  drafts_dir: drafts
  # Optional: pull content from a Git repository instead of a local directory.
  # repository:
  #   url: https://git.example.com/me/blog-content.git
  #   branch: main
  #   path: content
  #   auth:
  #     type: token
  #     token: ${CONTENT_REPO_TOKEN}

output:
  directory: ./site
  clean: true

feed:
  path: feed.json
  limit: 15

serve:
  addr: ":8080"
  metrics: true
  rebuild_interval: 10m
  # history_db: ./blogbuilder-history.db

# notifications:
#   nats:
#     url: nats://localhost:4222
#     subject: blog.builds

logging:
  level: info
  format: text
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	// #nosec G306 -- configuration template contains no secrets
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
