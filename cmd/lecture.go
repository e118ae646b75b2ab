package cmd

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/lectern-player/lectern/filesystem"
	"github.com/lectern-player/lectern/media"
	"github.com/lectern-player/lectern/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// lecture is everything needed to open a playback session.
type lecture struct {
	ID         string
	Title      string
	Initial    float64
	Candidates []media.Source
}

func addLectureFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Video id used to key the resume position. Defaults to the file name of the URL")
	cmd.Flags().String("title", "", "Title shown in the player window")
	cmd.Flags().Bool("cloudinary", false, "Derive the adaptive stream and resolutions from a Cloudinary upload URL")
	cmd.Flags().IntSlice("heights", []int{1080, 720, 480, 360}, "Resolution heights derived with --cloudinary")
}

// loadLecture reads target as a JSON manifest when it is a file, otherwise as a media URL.
func loadLecture(cmd *cobra.Command, target string) (*lecture, error) {
	var (
		id    = lo.Must(cmd.Flags().GetString("id"))
		title = lo.Must(cmd.Flags().GetString("title"))
	)

	l, err := readLecture(cmd, target)
	if err != nil {
		return nil, err
	}

	if id != "" {
		l.ID = id
	}
	if title != "" {
		l.Title = title
	}
	if l.Title == "" {
		l.Title = l.ID
	}

	if len(l.Candidates) == 0 {
		return nil, media.ErrNoSource
	}

	return l, nil
}

func readLecture(cmd *cobra.Command, target string) (*lecture, error) {
	if exists, _ := filesystem.API().Exists(target); exists {
		f, err := filesystem.API().Open(target)
		if err != nil {
			return nil, err
		}
		defer util.Ignore(f.Close)

		manifest, err := media.DecodeManifest(f)
		if err != nil {
			return nil, err
		}

		return &lecture{
			ID:         manifest.VideoID,
			Title:      manifest.Title,
			Initial:    manifest.InitialPosition,
			Candidates: manifest.Candidates(),
		}, nil
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("%s is neither a manifest file nor a media url", target)
	}

	l := &lecture{ID: util.SanitizeFilename(util.FileStem(u.Path))}

	if lo.Must(cmd.Flags().GetBool("cloudinary")) {
		heights := lo.Must(cmd.Flags().GetIntSlice("heights"))
		l.Candidates, err = media.CloudinaryCandidates(target, heights)
		return l, err
	}

	if strings.EqualFold(path.Ext(u.Path), ".m3u8") {
		l.Candidates = media.Candidates(target, nil, "")
	} else {
		l.Candidates = media.Candidates("", nil, target)
	}

	return l, nil
}
