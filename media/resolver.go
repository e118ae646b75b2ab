package media

import (
	"errors"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrNoSource is returned when the candidate list holds nothing playable.
var ErrNoSource = errors.New("no playable source")

// Capabilities describes what the native backend can play.
type Capabilities struct {
	// Adaptive reports whether adaptive (HLS) streams are supported and preferred.
	Adaptive bool
}

// Resolve picks the single active source:
// the adaptive stream when present and supported, then the resolution matching
// quality (or the first resolution), then the original upload.
func Resolve(candidates []Source, quality string, caps Capabilities) (Source, error) {
	if caps.Adaptive {
		if hls, ok := lo.Find(candidates, ofKind(KindHLS)); ok {
			return hls, nil
		}
	}

	if res := resolution(candidates, quality); res.IsPresent() {
		return res.MustGet(), nil
	}

	if original, ok := lo.Find(candidates, ofKind(KindOriginal)); ok {
		return original, nil
	}

	return Source{}, ErrNoSource
}

func resolution(candidates []Source, quality string) mo.Option[Source] {
	variants := lo.Filter(candidates, func(s Source, _ int) bool {
		return ofKind(KindResolution)(s)
	})
	if len(variants) == 0 {
		return mo.None[Source]()
	}

	if exact, ok := lo.Find(variants, func(s Source) bool {
		return strings.EqualFold(s.Quality, quality)
	}); ok {
		return mo.Some(exact)
	}

	return mo.Some(variants[0])
}

func ofKind(k Kind) func(Source) bool {
	return func(s Source) bool {
		return s.Kind == k && s.URL != ""
	}
}

// MatchQuality normalises free-form quality input ("720", "hd 1080") against the
// available labels. Exact matches win; otherwise the shortest fuzzy match.
func MatchQuality(input string, available []string) mo.Option[string] {
	input = strings.TrimSpace(input)
	if input == "" {
		return mo.None[string]()
	}

	if exact, ok := lo.Find(available, func(label string) bool {
		return strings.EqualFold(label, input)
	}); ok {
		return mo.Some(exact)
	}

	matches := lo.Filter(available, func(label string, _ int) bool {
		return fuzzy.MatchNormalizedFold(input, label)
	})
	if len(matches) == 0 {
		return mo.None[string]()
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i]) < len(matches[j])
	})
	return mo.Some(matches[0])
}
