package media

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

const cloudinaryUpload = "/video/upload/"

var cloudinaryVersion = regexp.MustCompile(`^v\d+$`)

// CloudinaryCandidates derives the adaptive stream and per-height variants from a
// Cloudinary video upload URL. The original URL is kept as the last resort.
func CloudinaryCandidates(original string, heights []int) ([]Source, error) {
	u, err := url.Parse(original)
	if err != nil {
		return nil, fmt.Errorf("parse cloudinary url: %w", err)
	}

	idx := strings.Index(u.Path, cloudinaryUpload)
	if idx < 0 || !strings.Contains(u.Host, "cloudinary") {
		return nil, fmt.Errorf("not a cloudinary video upload url: %s", original)
	}

	prefix := u.Path[:idx+len(cloudinaryUpload)]
	asset := stripTransformations(u.Path[idx+len(cloudinaryUpload):])
	stem := strings.TrimSuffix(asset, path.Ext(asset))

	build := func(transform, file string) string {
		v := *u
		v.Path = prefix + transform + "/" + file
		v.RawQuery = ""
		return v.String()
	}

	variants := make([]Variant, 0, len(heights))
	for _, h := range heights {
		variants = append(variants, Variant{
			Quality: fmt.Sprintf("%dp", h),
			URL:     build(fmt.Sprintf("h_%d,c_scale,q_auto", h), stem+".mp4"),
			Format:  "mp4",
		})
	}

	return Candidates(build("sp_auto", stem+".m3u8"), variants, original), nil
}

// stripTransformations drops the transformation segments that precede the version
// or public id of an upload path.
func stripTransformations(rest string) string {
	segments := strings.Split(rest, "/")
	for i, seg := range segments {
		if cloudinaryVersion.MatchString(seg) || i == len(segments)-1 || !strings.Contains(seg, "_") {
			return strings.Join(segments[i:], "/")
		}
	}
	return rest
}
