package app

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"saavi_admin/internal/domain"
)

type ImageKind string

const (
	ImageExisting ImageKind = "existing"
	ImageStaged   ImageKind = "staged"
)

type PreviewState string

const (
	PreviewPending PreviewState = "pending"
	PreviewReady   PreviewState = "ready"
)

// ImageEntry is one gallery slot. Existing entries reference a persisted URL;
// staged entries own an upload and its data-URI preview.
type ImageEntry struct {
	Kind    ImageKind
	URL     string
	Upload  *domain.Upload
	State   PreviewState
	DataURI string
}

// Src is what a preview renders.
func (e ImageEntry) Src() string {
	if e.Kind == ImageExisting {
		return e.URL
	}
	return e.DataURI
}

// ImageSet is the ordered gallery of a hotel form.
type ImageSet struct {
	max     int
	entries []ImageEntry
}

func NewImageSet(max int, existing []string) *ImageSet {
	s := &ImageSet{max: max, entries: make([]ImageEntry, 0, max)}
	for _, u := range existing {
		if strings.TrimSpace(u) == "" {
			continue
		}
		s.entries = append(s.entries, ImageEntry{Kind: ImageExisting, URL: u, State: PreviewReady})
	}
	return s
}

func (s *ImageSet) Len() int { return len(s.entries) }

func (s *ImageSet) Max() int { return s.max }

// Add stages a batch of uploads. The batch is all-or-nothing: it is rejected
// when it would exceed the maximum or when any file is not an image. Slots
// are reserved in selection order before previews are encoded, so preview
// order always matches file order.
func (s *ImageSet) Add(ctx context.Context, uploads []domain.Upload) error {
	if len(uploads) == 0 {
		return nil
	}
	if len(s.entries)+len(uploads) > s.max {
		return invalid("images", "Maximum %d images allowed", s.max)
	}
	staged := make([]ImageEntry, len(uploads))
	for i, u := range uploads {
		sniffed, err := sniffImage(u)
		if err != nil {
			return err
		}
		staged[i] = ImageEntry{Kind: ImageStaged, Upload: &sniffed, State: PreviewPending}
	}

	base := len(s.entries)
	s.entries = append(s.entries, staged...)

	g, gctx := errgroup.WithContext(ctx)
	for i := base; i < len(s.entries); i++ {
		e := &s.entries[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.DataURI = dataURI(e.Upload)
			e.State = PreviewReady
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.entries = s.entries[:base]
		return err
	}
	return nil
}

// RemoveAt drops the entry shown at index i, whichever kind it is.
func (s *ImageSet) RemoveAt(i int) error {
	if i < 0 || i >= len(s.entries) {
		return invalid("images", "No image at position %d", i+1)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// KeptURLs lists the persisted images still in the gallery, in order.
func (s *ImageSet) KeptURLs() []string {
	out := []string{}
	for _, e := range s.entries {
		if e.Kind == ImageExisting {
			out = append(out, e.URL)
		}
	}
	return out
}

// Staged lists uploads waiting to be sent, in order.
func (s *ImageSet) Staged() []domain.Upload {
	var out []domain.Upload
	for _, e := range s.entries {
		if e.Kind == ImageStaged {
			out = append(out, *e.Upload)
		}
	}
	return out
}

func (s *ImageSet) Entries() []ImageEntry {
	return append([]ImageEntry(nil), s.entries...)
}

// sniffImage fills in the content type from the bytes and refuses anything
// that is not an image.
func sniffImage(u domain.Upload) (domain.Upload, error) {
	mt := mimetype.Detect(u.Data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return u, invalid("images", "%s is not an image", displayName(u))
	}
	u.ContentType = mt.String()
	return u, nil
}

func dataURI(u *domain.Upload) string {
	return "data:" + u.ContentType + ";base64," + base64.StdEncoding.EncodeToString(u.Data)
}

func displayName(u domain.Upload) string {
	if u.Name == "" {
		return "file"
	}
	return u.Name
}

// Preview is the render-ready form of an entry.
type Preview struct {
	Index int          `json:"index"`
	Kind  ImageKind    `json:"kind"`
	Src   string       `json:"src"`
	State PreviewState `json:"state"`
	Name  string       `json:"name,omitempty"`
}

func (s *ImageSet) Previews() []Preview {
	out := make([]Preview, len(s.entries))
	for i, e := range s.entries {
		p := Preview{Index: i, Kind: e.Kind, Src: e.Src(), State: e.State}
		if e.Upload != nil {
			p.Name = e.Upload.Name
		}
		out[i] = p
	}
	return out
}
