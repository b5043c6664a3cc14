// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"match-workers/internal/common/validation"
	"match-workers/internal/models"
)

// ErrInvalidRegistry wraps every structural problem found in a registry file.
var ErrInvalidRegistry = errors.New("invalid domain registry")

var fileSchema = validation.MustCompile("domain-registry", FileSchema)

// Load reads and validates a registry file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates raw against FileSchema and decodes it.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := fileSchema.Decode(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}
	if _, err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// New returns an empty registry file.
func New(version string) *File {
	return &File{Version: version, Domains: []models.TechDomain{}}
}

// Validate checks cross-domain rules the schema cannot express. Duplicate
// keys are errors; references to unknown domains are returned as warnings
// because evaluation skips them.
func (f *File) Validate() ([]string, error) {
	var (
		problems []string
		warnings []string
	)
	keys := make(map[string]struct{}, len(f.Domains))
	for _, d := range f.Domains {
		if _, dup := keys[d.Key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate domain key %q", d.Key))
		}
		keys[d.Key] = struct{}{}
	}

	for _, d := range f.Domains {
		for _, ref := range d.TransferableTo {
			if ref == d.Key {
				problems = append(problems, fmt.Sprintf("%s: transferable_to references itself", d.Key))
			} else if _, ok := keys[ref]; !ok {
				warnings = append(warnings, fmt.Sprintf("%s: transferable_to references unknown domain %q", d.Key, ref))
			}
		}
		for _, ref := range d.IncompatibleWith {
			if ref == d.Key {
				problems = append(problems, fmt.Sprintf("%s: incompatible_with references itself", d.Key))
			} else if _, ok := keys[ref]; !ok {
				warnings = append(warnings, fmt.Sprintf("%s: incompatible_with references unknown domain %q", d.Key, ref))
			}
		}
		for _, ref := range d.TransferableTo {
			if contains(d.IncompatibleWith, ref) {
				problems = append(problems, fmt.Sprintf("%s: %q is both transferable and incompatible", d.Key, ref))
			}
		}
	}

	if len(problems) > 0 {
		return warnings, fmt.Errorf("%w: %s", ErrInvalidRegistry, strings.Join(problems, "; "))
	}
	return warnings, nil
}

// Save writes the file atomically with sorted domains and a fresh lastUpdated.
func (f *File) Save(path string, now time.Time) error {
	sort.SliceStable(f.Domains, func(i, j int) bool { return f.Domains[i].Key < f.Domains[j].Key })
	f.LastUpdated = now.UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if res := fileSchema.ValidateJSON(data); !res.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidRegistry, res.Err())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Add appends a new domain.
func (f *File) Add(d models.TechDomain) error {
	if f.find(d.Key) >= 0 {
		return fmt.Errorf("domain %s already exists", d.Key)
	}
	f.Domains = append(f.Domains, d)
	return nil
}

// SetField updates one field of a domain. List fields take a comma separated value.
func (f *File) SetField(key, field, value string) error {
	i := f.find(key)
	if i < 0 {
		return fmt.Errorf("domain %s not found", key)
	}
	d := &f.Domains[i]

	switch field {
	case "display_names":
		d.DisplayNames = splitList(value)
	case "primary_skills":
		d.PrimarySkills = splitList(value)
	case "secondary_skills":
		d.SecondarySkills = splitList(value)
	case "title_keywords":
		d.TitleKeywords = splitList(value)
	case "transferable_to":
		d.TransferableTo = splitList(value)
	case "incompatible_with":
		d.IncompatibleWith = splitList(value)
	case "weight":
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid weight value: %w", err)
		}
		d.Weight = w
	case "active":
		a, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid active value: %w", err)
		}
		d.Active = a
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// Snapshot converts the file into the registry snapshot the engine consumes.
func (f *File) Snapshot() models.DomainRegistrySnapshot {
	return models.DomainRegistrySnapshot{
		Version: "file-" + f.Version,
		Domains: append([]models.TechDomain(nil), f.Domains...),
	}
}

func (f *File) find(key string) int {
	for i := range f.Domains {
		if f.Domains[i].Key == key {
			return i
		}
	}
	return -1
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
