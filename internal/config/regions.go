package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Regions maps the logical UI regions to the lookup keys used by the page
// model. Nothing outside this file knows the concrete keys.
type Regions struct {
	Gallery        string `yaml:"gallery"`
	Filters        string `yaml:"filters"`
	DialogRoot     string `yaml:"dialogRoot"`
	DialogContent  string `yaml:"dialogContent"`
	DialogClose    string `yaml:"dialogClose"`
	ModalGallery   string `yaml:"modalGallery"`
	AddForm        string `yaml:"addForm"`
	PhotoInput     string `yaml:"photoInput"`
	CategorySelect string `yaml:"categorySelect"`
	PhotoPreview   string `yaml:"photoPreview"`
	FormError      string `yaml:"formError"`
}

// DefaultRegions returns the stock locators.
func DefaultRegions() Regions {
	return Regions{
		Gallery:        ".gallery",
		Filters:        ".filters",
		DialogRoot:     "#modal",
		DialogContent:  "#modal .modal-content",
		DialogClose:    "#modal .modal-close",
		ModalGallery:   "#modal .modal-gallery",
		AddForm:        "#add-photo-form",
		PhotoInput:     "#photo-input",
		CategorySelect: "#category-select",
		PhotoPreview:   "#photo-preview",
		FormError:      "#add-photo-form .error",
	}
}

// LoadRegions overlays the YAML file at path on the defaults. An empty path
// returns the defaults.
func LoadRegions(path string) (Regions, error) {
	regions := DefaultRegions()
	if path == "" {
		return regions, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Regions{}, fmt.Errorf("failed to read regions file: %w", err)
	}

	var override Regions
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Regions{}, fmt.Errorf("failed to parse regions file: %w", err)
	}
	regions.merge(override)

	if err := regions.Validate(); err != nil {
		return Regions{}, err
	}
	return regions, nil
}

func (r *Regions) merge(o Regions) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&r.Gallery, o.Gallery)
	set(&r.Filters, o.Filters)
	set(&r.DialogRoot, o.DialogRoot)
	set(&r.DialogContent, o.DialogContent)
	set(&r.DialogClose, o.DialogClose)
	set(&r.ModalGallery, o.ModalGallery)
	set(&r.AddForm, o.AddForm)
	set(&r.PhotoInput, o.PhotoInput)
	set(&r.CategorySelect, o.CategorySelect)
	set(&r.PhotoPreview, o.PhotoPreview)
	set(&r.FormError, o.FormError)
}

// Validate rejects two regions sharing one key.
func (r Regions) Validate() error {
	seen := make(map[string]string)
	for _, e := range []struct{ name, key string }{
		{"gallery", r.Gallery},
		{"filters", r.Filters},
		{"dialogRoot", r.DialogRoot},
		{"dialogContent", r.DialogContent},
		{"dialogClose", r.DialogClose},
		{"modalGallery", r.ModalGallery},
		{"addForm", r.AddForm},
		{"photoInput", r.PhotoInput},
		{"categorySelect", r.CategorySelect},
		{"photoPreview", r.PhotoPreview},
		{"formError", r.FormError},
	} {
		if e.key == "" {
			return fmt.Errorf("region %s has an empty key", e.name)
		}
		if other, dup := seen[e.key]; dup {
			return fmt.Errorf("regions %s and %s share key %q", other, e.name, e.key)
		}
		seen[e.key] = e.name
	}
	return nil
}
