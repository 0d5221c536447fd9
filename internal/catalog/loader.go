package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ValidationError is a catalog that cannot be served
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a YAML catalog. Unknown fields are rejected so typos fail fast.
// An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := applyDefaults(&cat); err != nil {
		return nil, err
	}

	if err := Validate(&cat); err != nil {
		return nil, err
	}

	return &cat, nil
}

func applyDefaults(cat *Catalog) error {
	if err := defaults.Set(cat); err != nil {
		return fmt.Errorf("catalog defaults: %w", err)
	}
	for i := range cat.Pages {
		for j := range cat.Pages[i].Views {
			if err := defaults.Set(&cat.Pages[i].Views[j]); err != nil {
				return fmt.Errorf("catalog defaults: %w", err)
			}
		}
	}
	return nil
}

// Validate checks struct constraints plus key/slug uniqueness
func Validate(cat *Catalog) error {
	if err := validate.Struct(cat); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return ValidationError{Field: fieldPath(fe.Namespace()), Message: fmt.Sprintf("failed %q", fe.Tag())}
		}
		return err
	}

	slugs := make(map[string]bool)
	keys := make(map[string]bool)
	for _, p := range cat.Pages {
		if slugs[p.Slug] {
			return ValidationError{Field: "pages.slug", Message: fmt.Sprintf("duplicate slug %q", p.Slug)}
		}
		slugs[p.Slug] = true

		for _, v := range p.Views {
			if keys[v.Key] {
				return ValidationError{Field: "views.key", Message: fmt.Sprintf("duplicate view key %q", v.Key)}
			}
			keys[v.Key] = true
		}
	}

	return nil
}

// "Catalog.Pages[1].Views[0].Path" -> "pages[1].views[0].path"
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Catalog.")
	return strings.ToLower(ns)
}
