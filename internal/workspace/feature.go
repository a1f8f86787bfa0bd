// Package workspace resolves the feature being worked on from the git
// branch and the specs directory layout.
package workspace

import (
	"path/filepath"
	"regexp"

	"github.com/spf13/afero"

	"github.com/specrunner/specrunner/internal/git"
	"github.com/specrunner/specrunner/internal/models"
)

// branchPattern matches feature branches of the form "001-login".
var branchPattern = regexp.MustCompile(`^(\d{3})-([a-z0-9-]+)$`)

// Detector derives the current feature from git and the filesystem.
type Detector struct {
	fs       afero.Fs
	git      *git.Client
	root     string
	specsDir string
}

// NewDetector creates a detector rooted at the workspace directory.
func NewDetector(fs afero.Fs, gitClient *git.Client, root string) *Detector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Detector{
		fs:       fs,
		git:      gitClient,
		root:     root,
		specsDir: filepath.Join(root, "specs"),
	}
}

// Root returns the workspace root directory.
func (d *Detector) Root() string { return d.root }

// Detect derives the feature from the current git branch. It returns ok ==
// false when the branch does not follow the feature naming convention or no
// repository is present.
func (d *Detector) Detect() (models.Feature, bool) {
	if d.git == nil {
		return models.Feature{}, false
	}
	branch, err := d.git.CurrentBranch()
	if err != nil {
		return models.Feature{}, false
	}
	m := branchPattern.FindStringSubmatch(branch)
	if m == nil {
		return models.Feature{}, false
	}
	return d.feature(m[1], m[2], branch), true
}

// GetOrCreate builds the feature for an explicit id and name. The branch is
// assumed to follow the same slug convention.
func (d *Detector) GetOrCreate(id, name string) (models.Feature, error) {
	f := d.feature(id, name, id+"-"+name)
	if err := models.ValidateStruct(f); err != nil {
		return models.Feature{}, err
	}
	return f, nil
}

func (d *Detector) feature(id, name, branch string) models.Feature {
	specDir := filepath.Join(d.specsDir, id+"-"+name)
	f := models.Feature{
		ID:      id,
		Name:    name,
		Branch:  branch,
		SpecDir: specDir,
	}
	f.Status = d.status(f)
	return f
}

// status derives how far a feature has progressed from which artifacts
// exist.
func (d *Detector) status(f models.Feature) models.FeatureStatus {
	exists := func(path string) bool {
		ok, err := afero.Exists(d.fs, path)
		return err == nil && ok
	}
	switch {
	case exists(f.TasksFile()):
		return models.StatusTasked
	case exists(f.PlanFile()):
		return models.StatusPlanned
	case exists(f.SpecFile()):
		return models.StatusSpecified
	default:
		return models.StatusDraft
	}
}
