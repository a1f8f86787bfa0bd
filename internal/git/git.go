// Package git provides shell-based wrappers for the git commands specrunner
// needs. It shells out instead of linking a git library so the user's SSH
// keys and signing config keep working.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotRepository is returned when the working directory is not inside a
// git repository.
var ErrNotRepository = errors.New("not a git repository")

// Commander is an interface for executing commands. It allows mocking in
// tests.
type Commander interface {
	Run(dir, name string, args ...string) (string, error)
}

// ShellCommander executes real shell commands.
type ShellCommander struct{}

// Run executes a command in the specified directory.
func (c *ShellCommander) Run(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Client wraps git operations for one working directory.
type Client struct {
	commander Commander
	workDir   string
}

// NewClient creates a git client for the given directory.
func NewClient(workDir string) *Client {
	return &Client{commander: &ShellCommander{}, workDir: workDir}
}

// NewClientWithCommander creates a client with a custom commander (for
// testing).
func NewClientWithCommander(workDir string, commander Commander) *Client {
	return &Client{commander: commander, workDir: workDir}
}

// IsRepository checks if the working directory is a git repository.
func (c *Client) IsRepository() bool {
	_, err := c.commander.Run(c.workDir, "git", "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// CurrentBranch returns the checked-out branch name.
func (c *Client) CurrentBranch() (string, error) {
	out, err := c.commander.Run(c.workDir, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", ErrNotRepository
	}
	return out, nil
}

// ListBranches returns all local branch names.
func (c *Client) ListBranches() ([]string, error) {
	out, err := c.commander.Run(c.workDir, "git", "branch", "--list", "--format=%(refname:short)")
	if err != nil {
		return nil, ErrNotRepository
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}
