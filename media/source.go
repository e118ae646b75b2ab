// Package media models the encodings a lecture video is available in and picks the one to play.
package media

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
)

// Kind is the encoding family of a Source.
type Kind int

const (
	// KindHLS is a manifest-based adaptive stream.
	KindHLS Kind = iota
	// KindResolution is a single fixed-quality file.
	KindResolution
	// KindOriginal is the uploaded source file.
	KindOriginal
)

func (k Kind) String() string {
	switch k {
	case KindHLS:
		return "hls"
	case KindResolution:
		return "resolution"
	case KindOriginal:
		return "original"
	default:
		return "unknown"
	}
}

// QualityAuto lets the adaptive stream pick its own rendition.
const QualityAuto = "auto"

// Source is one playable encoding. Values are immutable once produced.
type Source struct {
	URL     string `json:"url" jsonschema:"description=Playable URL of this encoding."`
	Kind    Kind   `json:"kind" jsonschema:"description=0 = hls, 1 = resolution, 2 = original."`
	Quality string `json:"quality" jsonschema:"description=Quality label such as 720p. auto for adaptive streams."`
	Format  string `json:"format,omitempty" jsonschema:"description=Container format, e.g. mp4."`
}

func (s Source) String() string {
	return fmt.Sprintf("%s [%s] %s", s.Quality, s.Kind, s.URL)
}

// Variant is a resolution-specific file as described in a lecture manifest.
type Variant struct {
	Quality string `json:"quality" jsonschema:"description=Quality label, e.g. 1080p."`
	URL     string `json:"url" jsonschema:"description=URL of the encoded file."`
	Format  string `json:"format,omitempty" jsonschema:"description=Container format, e.g. mp4."`
}

// Manifest describes a lecture video as handed over by the upload pipeline.
type Manifest struct {
	VideoID         string    `json:"video_id" jsonschema:"description=Stable identifier used to key the resume position."`
	Title           string    `json:"title,omitempty" jsonschema:"description=Human readable title."`
	Poster          string    `json:"poster,omitempty" jsonschema:"description=Poster image reference."`
	HLS             string    `json:"hls,omitempty" jsonschema:"description=Adaptive stream manifest URL."`
	Resolutions     []Variant `json:"resolutions,omitempty" jsonschema:"description=Per-resolution encodings in preference order."`
	Original        string    `json:"original,omitempty" jsonschema:"description=Original upload URL."`
	InitialPosition float64   `json:"initial_position,omitempty" jsonschema:"description=Seconds to resume from. Zero defers to the stored position."`
}

// DecodeManifest reads a JSON lecture manifest.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if m.VideoID == "" {
		return nil, fmt.Errorf("manifest has no video_id")
	}

	return &m, nil
}

// Candidates flattens the manifest into the candidate list, adaptive stream first.
func (m *Manifest) Candidates() []Source {
	return Candidates(m.HLS, m.Resolutions, m.Original)
}

// Candidates builds the candidate list from its parts, skipping empty URLs.
func Candidates(hls string, resolutions []Variant, original string) []Source {
	var out []Source

	if hls = strings.TrimSpace(hls); hls != "" {
		out = append(out, Source{URL: hls, Kind: KindHLS, Quality: QualityAuto, Format: "m3u8"})
	}

	for _, v := range resolutions {
		if strings.TrimSpace(v.URL) == "" {
			continue
		}
		out = append(out, Source{URL: v.URL, Kind: KindResolution, Quality: v.Quality, Format: v.Format})
	}

	if original = strings.TrimSpace(original); original != "" {
		out = append(out, Source{URL: original, Kind: KindOriginal, Quality: "original"})
	}

	return out
}

// Qualities lists the labels a viewer can pick from, in candidate order.
func Qualities(candidates []Source) []string {
	return lo.Uniq(lo.Map(candidates, func(s Source, _ int) string {
		return s.Quality
	}))
}
