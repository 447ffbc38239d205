package nidm

// bundle.go — lays a Document out on disk.
//
// Bundle layout:
//   nidm.yaml   — the full document
//   index.md    — YAML frontmatter (software, version, counts) + summary

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"nidmafni/internal/frontmatter"
)

const (
	DocumentFile = "nidm.yaml"
	IndexFile    = "index.md"
)

// Bundle holds pre-rendered file contents (relative path → bytes).
type Bundle struct {
	files map[string][]byte
}

// Paths returns the bundle's file paths in sorted order.
func (b *Bundle) Paths() []string {
	paths := make([]string, 0, len(b.files))
	for p := range b.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// File returns the contents of one bundle file.
func (b *Bundle) File(path string) ([]byte, bool) {
	data, ok := b.files[path]
	return data, ok
}

// IndexMeta is the frontmatter of index.md.
type IndexMeta struct {
	NIDMVersion     string `yaml:"nidm_version"`
	Software        string `yaml:"software"`
	SoftwareVersion string `yaml:"software_version"`
	SoftwareID      QName  `yaml:"software_id"`
	ModelFittings   int    `yaml:"model_fittings"`
	Contrasts       int    `yaml:"contrasts"`
	Inferences      int    `yaml:"inferences"`
}

// GenerateBundle renders doc. No files are written.
func GenerateBundle(doc *Document) (*Bundle, error) {
	if doc == nil || doc.Software == nil {
		return nil, fmt.Errorf("nidm: document has no software agent")
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("nidm: marshal document: %w", err)
	}

	index, err := frontmatter.Write(IndexMeta{
		NIDMVersion:     doc.Meta.NIDMVersion,
		Software:        doc.Software.Name,
		SoftwareVersion: doc.Software.Version,
		SoftwareID:      doc.Software.ID,
		ModelFittings:   len(doc.ModelFittings),
		Contrasts:       len(doc.Contrasts),
		Inferences:      len(doc.Inferences),
	}, buildIndexBody(doc))
	if err != nil {
		return nil, fmt.Errorf("nidm: render index: %w", err)
	}

	return &Bundle{files: map[string][]byte{
		DocumentFile: data,
		IndexFile:    index,
	}}, nil
}

func buildIndexBody(doc *Document) string {
	var b strings.Builder
	b.WriteString("# NIDM-Results export\n\n")
	fmt.Fprintf(&b, "- **Software**: %s\n", doc.Software.Name)
	fmt.Fprintf(&b, "- **Version**: %s\n", firstLine(doc.Software.Version))
	if !doc.Meta.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- **Generated**: %s\n", doc.Meta.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}

	roles := make([]string, 0, len(doc.Meta.Inputs))
	for r := range doc.Meta.Inputs {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	if len(roles) > 0 {
		b.WriteString("\n## Inputs\n\n")
		for _, r := range roles {
			fmt.Fprintf(&b, "- %s: `%s`\n", r, doc.Meta.Inputs[r])
		}
	}

	b.WriteString("\n## Results\n\n")
	fmt.Fprintf(&b, "- Model fittings: %d\n", len(doc.ModelFittings))
	fmt.Fprintf(&b, "- Contrasts: %d\n", len(doc.Contrasts))
	fmt.Fprintf(&b, "- Inferences: %d\n", len(doc.Inferences))
	if doc.Empty() {
		b.WriteString("\nNo analysis results were extracted.\n")
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// WriteBundle creates outputDir and writes every file of bundle into it in
// sorted path order. It refuses to write into an existing directory so an
// earlier export is never overwritten.
func WriteBundle(bundle *Bundle, outputDir string) error {
	if _, err := os.Stat(outputDir); err == nil {
		return fmt.Errorf("nidm: export directory %s already exists", outputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("nidm: create %s: %w", outputDir, err)
	}
	for _, p := range bundle.Paths() {
		abs := filepath.Join(outputDir, filepath.FromSlash(p))
		if err := os.WriteFile(abs, bundle.files[p], 0o644); err != nil {
			return fmt.Errorf("nidm: write %s: %w", p, err)
		}
	}
	return nil
}

// ReadIndex decodes the index.md frontmatter of an export written by
// WriteBundle.
func ReadIndex(exportDir string) (*IndexMeta, error) {
	data, err := os.ReadFile(filepath.Join(exportDir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("nidm: read index: %w", err)
	}
	var meta IndexMeta
	if _, err := frontmatter.Decode(data, &meta); err != nil {
		return nil, fmt.Errorf("nidm: %s: %w", filepath.Join(exportDir, IndexFile), err)
	}
	return &meta, nil
}
