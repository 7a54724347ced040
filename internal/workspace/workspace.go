// Package workspace manages per-build staging directories. A build renders
// into its own workspace so a failed render never touches the published site.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Manager creates and removes build workspaces under a base directory.
type Manager struct {
	baseDir string
	keep    bool
}

// NewManager returns a Manager creating workspaces under baseDir, or the
// system temp directory when baseDir is empty.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// KeepWorkspaces disables removal in Cleanup, for inspecting failed builds.
func (m *Manager) KeepWorkspaces(keep bool) *Manager {
	m.keep = keep
	return m
}

// Workspace is one build's staging area.
type Workspace struct {
	// Path is the workspace root.
	Path string
	// SiteDir is where the rendered tree is written.
	SiteDir string

	manager *Manager
}

// Create makes a fresh, uniquely named workspace for buildID.
func (m *Manager) Create(buildID string) (*Workspace, error) {
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	dir, err := os.MkdirTemp(m.baseDir, "build-"+buildID+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	site := filepath.Join(dir, "site")
	if err := os.Mkdir(site, 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create site directory: %w", err)
	}
	slog.Debug("Created workspace", logfields.BuildID(buildID), logfields.Path(dir))
	return &Workspace{Path: dir, SiteDir: site, manager: m}, nil
}

// Cleanup removes the workspace unless the manager keeps workspaces.
func (w *Workspace) Cleanup() error {
	if w == nil || w.Path == "" {
		return nil
	}
	if w.manager != nil && w.manager.keep {
		slog.Info("Keeping workspace", logfields.Path(w.Path))
		return nil
	}
	if err := os.RemoveAll(w.Path); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	slog.Debug("Removed workspace", logfields.Path(w.Path))
	return nil
}
