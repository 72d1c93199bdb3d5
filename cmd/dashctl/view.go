package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-retail-dashboard/components/dashboard"
)

type viewCmd struct {
	Add viewAddCmd `cmd:"" help:"Add or update a view entry in a manifest."`
}

type viewAddCmd struct {
	Code         string   `required:"" help:"View code (normalized to kebab-case)."`
	Name         string   `help:"Display name."`
	Description  string   `help:"One-line description."`
	Interval     string   `help:"Refresh interval (Go duration, e.g. 30s)."`
	LoadOnce     bool     `name:"load-once" help:"Refresh once when the view starts."`
	ErrorMessage string   `name:"error-message" help:"Static text shown when a refresh fails."`
	Slot         []string `sep:"none" help:"Slot as code[:kind[:title]] (repeat the flag)."`
	ManifestPath string   `required:"" name:"manifest" type:"path" help:"Manifest YAML file to create or update."`
	Overwrite    bool     `help:"Replace an existing entry with the same code."`
}

func (cmd *viewAddCmd) Run(*Globals) error {
	entry, err := cmd.entry()
	if err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("dashctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if err := upsertView(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added view %s to %s\n", entry.Code, manifestPath)
	return nil
}

func (cmd *viewAddCmd) entry() (dashboard.ManifestView, error) {
	code := strcase.ToKebab(strings.TrimSpace(cmd.Code))
	if code == "" {
		return dashboard.ManifestView{}, errors.New("dashctl: view code is required")
	}
	if cmd.Interval != "" {
		d, err := time.ParseDuration(cmd.Interval)
		if err != nil || d < 0 {
			return dashboard.ManifestView{}, fmt.Errorf("dashctl: invalid interval %q", cmd.Interval)
		}
	}
	entry := dashboard.ManifestView{
		Code:         code,
		Name:         cmd.Name,
		Description:  cmd.Description,
		Interval:     cmd.Interval,
		ErrorMessage: cmd.ErrorMessage,
	}
	if entry.Name == "" {
		entry.Name = displayName(code)
	}
	if cmd.LoadOnce {
		entry.LoadOnce = &cmd.LoadOnce
	}
	for _, raw := range cmd.Slot {
		slot, err := parseSlot(raw)
		if err != nil {
			return dashboard.ManifestView{}, err
		}
		entry.Slots = append(entry.Slots, slot)
	}
	return entry, nil
}

// parseSlot reads "code[:kind[:title]]".
func parseSlot(raw string) (dashboard.ManifestSlot, error) {
	parts := strings.SplitN(raw, ":", 3)
	slot := dashboard.ManifestSlot{Code: strcase.ToKebab(strings.TrimSpace(parts[0]))}
	if slot.Code == "" {
		return slot, fmt.Errorf("dashctl: slot %q is missing a code", raw)
	}
	if len(parts) > 1 {
		slot.Kind = dashboard.ChartKind(strings.TrimSpace(parts[1]))
	}
	if len(parts) > 2 {
		slot.Title = strings.TrimSpace(parts[2])
	}
	return slot, nil
}

func displayName(code string) string {
	words := strings.Split(code, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func upsertView(doc *dashboard.ViewManifestDocument, entry dashboard.ManifestView, overwrite bool) error {
	replaced := false
	for idx := range doc.Views {
		if doc.Views[idx].Code != entry.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("dashctl: manifest already defines view %s (use --overwrite to replace)", entry.Code)
		}
		doc.Views[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Views = append(doc.Views, entry)
	}
	sort.Slice(doc.Views, func(i, j int) bool {
		return doc.Views[i].Code < doc.Views[j].Code
	})
	return nil
}

func loadOrInitManifest(path string) (*dashboard.ViewManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.ViewManifestDocument{
				Version: dashboard.ManifestVersion,
				Views:   []dashboard.ManifestView{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("dashctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.ViewManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dashctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashctl: write manifest: %w", err)
	}
	return nil
}
