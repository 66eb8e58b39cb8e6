package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"saavi_admin/internal/app"
	"saavi_admin/internal/domain"
)

// Entry is one hotel in an import manifest. Image paths are relative to the
// manifest file.
type Entry struct {
	Name                string             `json:"name"`
	Address             string             `json:"address"`
	City                string             `json:"city"`
	State               string             `json:"state"`
	Country             string             `json:"country"`
	Location            string             `json:"location"`
	Rating              string             `json:"rating"`
	HomeDescription     string             `json:"homeDescription"`
	Description         string             `json:"description"`
	DescriptionMarkdown string             `json:"descriptionMarkdown"`
	PricePerNight       float64            `json:"pricePerNight"`
	Type                []domain.SuiteType `json:"type"`
	Facilities          []string           `json:"facilities"`
	Amenities           []string           `json:"amenities"`
	RatePlans           []domain.RatePlan  `json:"ratePlans"`
	HomeImage           string             `json:"homeImage"`
	Images              []string           `json:"images"`
}

var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func loadManifest(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return entries, nil
}

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func readUpload(dir, p string) (domain.Upload, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{Name: filepath.Base(p), Data: data}, nil
}

// buildForm fills a create form from e the way an operator would through the
// Add Hotel modal.
func buildForm(ctx context.Context, e Entry, dir string, opts app.FormOptions) (*app.HotelForm, error) {
	desc := e.Description
	if e.DescriptionMarkdown != "" {
		html, err := renderMarkdown(e.DescriptionMarkdown)
		if err != nil {
			return nil, fmt.Errorf("description: %w", err)
		}
		desc = html
	}

	f := app.NewCreateForm(opts)
	types := e.Type
	if err := f.SetFields(app.FieldPatch{
		Name:            &e.Name,
		Address:         &e.Address,
		City:            &e.City,
		State:           &e.State,
		Country:         &e.Country,
		Location:        &e.Location,
		Rating:          &e.Rating,
		HomeDescription: &e.HomeDescription,
		Description:     &desc,
		PricePerNight:   &e.PricePerNight,
		Type:            &types,
	}); err != nil {
		return nil, err
	}

	selected := map[string]bool{}
	for _, fac := range f.Facilities.Selected() {
		selected[fac] = true
	}
	for _, fac := range e.Facilities {
		fac = strings.TrimSpace(fac)
		if selected[fac] {
			continue
		}
		f.Facilities.AddOption(fac)
		if err := f.Facilities.Toggle(fac); err != nil {
			return nil, fmt.Errorf("facility %q: %w", fac, err)
		}
		selected[fac] = true
	}
	for _, a := range e.Amenities {
		f.Amenities.Add(a)
	}
	for _, rp := range e.RatePlans {
		f.RatePlans.SetDraft(rp)
		if err := f.RatePlans.Commit(); err != nil {
			return nil, fmt.Errorf("rate plan %q: %w", rp.Name, err)
		}
	}

	if e.HomeImage != "" {
		u, err := readUpload(dir, e.HomeImage)
		if err != nil {
			return nil, fmt.Errorf("home image: %w", err)
		}
		if err := f.SetHomeImage(u); err != nil {
			return nil, err
		}
	}
	var ups []domain.Upload
	for _, p := range e.Images {
		u, err := readUpload(dir, p)
		if err != nil {
			return nil, fmt.Errorf("image: %w", err)
		}
		ups = append(ups, u)
	}
	if err := f.Images.Add(ctx, ups); err != nil {
		return nil, err
	}
	return f, nil
}
