package blocks

import (
	"regexp"
	"strings"
)

var youTubePattern = regexp.MustCompile(
	`(?:youtube(?:-nocookie)?\.com/(?:watch\?(?:[^#\s]*&)?v=|embed/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`,
)

// YouTube identifies a recognised video.
type YouTube struct {
	ID string
}

// ParseYouTube extracts the 11 character video id from watch, youtu.be,
// embed and shorts links. A token that is longer or shorter does not match.
func ParseYouTube(raw string) (YouTube, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return YouTube{}, false
	}
	match := youTubePattern.FindStringSubmatch(raw)
	if len(match) < 2 {
		return YouTube{}, false
	}
	return YouTube{ID: match[1]}, true
}

// EmbedURL is the canonical iframe source for the video.
func (y YouTube) EmbedURL() string {
	return "https://www.youtube.com/embed/" + y.ID + "?rel=0&modestbranding=1"
}

// ThumbnailURL is the high quality preview image for the video.
func (y YouTube) ThumbnailURL() string {
	return "https://img.youtube.com/vi/" + y.ID + "/hqdefault.jpg"
}

// YouTubeURLs returns the embed and thumbnail URLs for raw, or nil for both
// when raw is not a recognised YouTube link.
func YouTubeURLs(raw string) (embed, thumbnail *string) {
	video, ok := ParseYouTube(raw)
	if !ok {
		return nil, nil
	}
	e, t := video.EmbedURL(), video.ThumbnailURL()
	return &e, &t
}
