package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/hupe1980/agentdoc/prompt"
)

// FragmentsDir is the subdirectory scanned for prompt fragments.
const FragmentsDir = "fragments"

// Load scans fsys for agent documents and prompt fragments. Markdown files
// at the root become catalog entries keyed by their filename stem; markdown
// and text files under FragmentsDir become fragments keyed the same way.
// Missing directories are not an error, an empty tree just loads nothing.
func Load(fsys fs.FS) (*Catalog, prompt.Registry, error) {
	cat := New()
	fragments := prompt.MapRegistry{}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog root: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		cat.Register(stem(entry.Name()), data)
	}

	fragEntries, err := fs.ReadDir(fsys, FragmentsDir)
	if err != nil {
		// No fragments directory.
		return cat, fragments, nil
	}
	for _, entry := range fragEntries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".md") && !strings.HasSuffix(name, ".txt") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(FragmentsDir, name))
		if err != nil {
			return nil, nil, fmt.Errorf("read fragment %s: %w", name, err)
		}
		fragments[stem(name)] = strings.TrimRight(string(data), "\n")
	}

	return cat, fragments, nil
}

func stem(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
