package dashboard

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ViewManifestDocument models a YAML manifest that tunes dashboard views.
type ViewManifestDocument struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Views   []ManifestView `json:"views" yaml:"views"`
	Source  string         `json:"-" yaml:"-"`
}

// ManifestView overrides or adds a view. Empty fields keep the registered value.
type ManifestView struct {
	Code         string         `json:"code" yaml:"code"`
	Name         string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Interval     string         `json:"interval,omitempty" yaml:"interval,omitempty"`
	LoadOnce     *bool          `json:"load_once,omitempty" yaml:"load_once,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Slots        []ManifestSlot `json:"slots,omitempty" yaml:"slots,omitempty"`
}

// ManifestSlot overrides a slot's title or error text, or adds a slot.
type ManifestSlot struct {
	Code         string    `json:"code" yaml:"code"`
	Title        string    `json:"title,omitempty" yaml:"title,omitempty"`
	Kind         ChartKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// LoadManifestFile reads a manifest from disk, applies it to the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*ViewManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument merges the manifest views into the registry.
func (r *Registry) LoadManifestDocument(doc *ViewManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, view := range doc.Views {
		base, _ := r.View(view.Code)
		merged, err := view.merge(base)
		if err != nil {
			return fmt.Errorf("dashboard: view %s from %s: %w", view.Code, doc.Source, err)
		}
		if err := r.RegisterView(merged); err != nil {
			return fmt.Errorf("dashboard: register view %s from %s: %w", view.Code, doc.Source, err)
		}
	}
	return nil
}

func (m ManifestView) merge(base ViewDefinition) (ViewDefinition, error) {
	out := base
	out.Code = m.Code
	if m.Name != "" {
		out.Name = m.Name
	}
	if m.Description != "" {
		out.Description = m.Description
	}
	if m.Interval != "" {
		d, err := time.ParseDuration(m.Interval)
		if err != nil {
			return ViewDefinition{}, fmt.Errorf("invalid interval %q: %w", m.Interval, err)
		}
		out.Interval = d
	}
	if m.LoadOnce != nil {
		out.LoadOnce = *m.LoadOnce
	}
	if m.ErrorMessage != "" {
		out.ErrorMessage = m.ErrorMessage
	}

	out.Slots = append([]SlotDefinition(nil), base.Slots...)
	for _, slot := range m.Slots {
		code := normalizeCode(slot.Code)
		idx := -1
		for i := range out.Slots {
			if out.Slots[i].Code == code {
				idx = i
				break
			}
		}
		if idx < 0 {
			out.Slots = append(out.Slots, SlotDefinition{Code: code})
			idx = len(out.Slots) - 1
		}
		if slot.Title != "" {
			out.Slots[idx].Title = slot.Title
		}
		if slot.Kind != "" {
			out.Slots[idx].Kind = slot.Kind
		}
		if slot.ErrorMessage != "" {
			out.Slots[idx].ErrorMessage = slot.ErrorMessage
		}
	}
	return out, nil
}

// ReadManifest loads a manifest file from disk without applying it.
func ReadManifest(path string) (*ViewManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ViewManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ViewManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ViewManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Views))
	for idx, view := range doc.Views {
		code := normalizeCode(view.Code)
		if code == "" {
			return fmt.Errorf("dashboard: manifest view at index %d is missing code", idx)
		}
		if _, exists := seen[code]; exists {
			return fmt.Errorf("dashboard: manifest duplicates view code %s", code)
		}
		seen[code] = struct{}{}
		for sIdx, slot := range view.Slots {
			if strings.TrimSpace(slot.Code) == "" {
				return fmt.Errorf("dashboard: manifest view %s slot %d is missing code", code, sIdx)
			}
			switch slot.Kind {
			case "", ChartBar, ChartHeatmap, ChartDoughnut:
			default:
				return fmt.Errorf("dashboard: manifest view %s slot %s has unknown kind %q", code, slot.Code, slot.Kind)
			}
		}
	}
	return nil
}

func (doc *ViewManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
