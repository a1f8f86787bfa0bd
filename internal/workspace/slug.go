package workspace

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugWordLimit keeps generated feature names short enough for branch names.
const slugWordLimit = 4

// Slugify turns free text into a kebab-case feature name, keeping at most
// the first few words.
func Slugify(text string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(text), "-")
	s = strings.Trim(s, "-")
	words := strings.Split(s, "-")
	if len(words) > slugWordLimit {
		words = words[:slugWordLimit]
	}
	return strings.Join(words, "-")
}

// NextID returns the next free 3-digit feature id by scanning the specs
// directory for existing "NNN-name" entries.
func (d *Detector) NextID() string {
	entries, err := afero.ReadDir(d.fs, d.specsDir)
	if err != nil {
		return "001"
	}
	var ids []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := branchPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		ids = append(ids, n)
	}
	if len(ids) == 0 {
		return "001"
	}
	sort.Ints(ids)
	return fmt.Sprintf("%03d", ids[len(ids)-1]+1)
}
