package blocks

import "strings"

// MediaType is the type of a gallery entry.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaItem drives the lightbox viewer on post pages.
type MediaItem struct {
	Type    MediaType `json:"type"`
	URL     string    `json:"url"`
	Caption string    `json:"caption,omitempty"`
}

// BuildGallery collects the cover image, the cover video, then every image
// and video block in order. Blank URLs are skipped and the first occurrence
// of a URL wins.
func BuildGallery(coverImage, coverVideo string, list List) []MediaItem {
	items := make([]MediaItem, 0, len(list)+2)
	seen := make(map[string]struct{}, len(list)+2)

	add := func(kind MediaType, url, caption string) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		items = append(items, MediaItem{Type: kind, URL: url, Caption: caption})
	}

	add(MediaImage, coverImage, "")
	add(MediaVideo, coverVideo, "")
	for _, block := range list {
		switch block.Kind {
		case KindImage:
			add(MediaImage, block.Value, block.Caption)
		case KindVideo:
			add(MediaVideo, block.Value, block.Caption)
		}
	}
	return items
}
