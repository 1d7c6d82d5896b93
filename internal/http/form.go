package http

import (
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/i18n"
	"github.com/pharmaweb/sitecms/internal/media"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// multipartOverhead leaves room for the form fields next to the image.
const multipartOverhead int64 = 1 << 20

// postPayload is the JSON body of a save request. In multipart requests it
// travels in the "payload" field, next to an optional "image" file.
type postPayload struct {
	Slug          string             `json:"slug"`
	Title         string             `json:"title"`
	Summary       string             `json:"summary"`
	Content       string             `json:"content"`
	TitleI18N     i18n.LocalizedText `json:"title_i18n"`
	SummaryI18N   i18n.LocalizedText `json:"summary_i18n"`
	ContentI18N   i18n.LocalizedText `json:"content_i18n"`
	ContentBlocks blocks.List        `json:"content_blocks"`
	Category      string             `json:"category"`
	Published     bool               `json:"published"`
	VideoURL      string             `json:"video_url"`
	ImageURL      string             `json:"image_url"`
	RemoveImage   bool               `json:"remove_image"`
}

func (p postPayload) input() posts.SaveInput {
	return posts.SaveInput{
		Slug:          p.Slug,
		Title:         p.Title,
		Summary:       p.Summary,
		Content:       p.Content,
		TitleI18N:     p.TitleI18N,
		SummaryI18N:   p.SummaryI18N,
		ContentI18N:   p.ContentI18N,
		ContentBlocks: p.ContentBlocks,
		Category:      p.Category,
		Published:     p.Published,
		VideoURL:      p.VideoURL,
		ImageURL:      p.ImageURL,
		RemoveImage:   p.RemoveImage,
	}
}

type postForm struct {
	input posts.SaveInput
	file  multipart.File
}

func (f *postForm) Close() {
	if f != nil && f.file != nil {
		_ = f.file.Close()
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// readPostForm decodes either a JSON body or a multipart form carrying a
// cover image.
func readPostForm(w http.ResponseWriter, r *http.Request, limit int64) (*postForm, error) {
	if !isMultipart(r) {
		var payload postPayload
		if err := decodeJSON(r, &payload); err != nil {
			return nil, err
		}
		return &postForm{input: payload.input()}, nil
	}

	if err := parseMultipart(w, r, limit); err != nil {
		return nil, err
	}
	var payload postPayload
	if raw := strings.TrimSpace(r.FormValue("payload")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, errors.Join(ErrBodyInvalid, err)
		}
	}
	form := &postForm{input: payload.input()}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil
	case err != nil:
		return nil, errors.Join(ErrBodyInvalid, err)
	}
	form.file = file
	form.input.Image = &interfaces.ImageUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return form, nil
}

// readUpload extracts a required image file from a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64, field string) (*interfaces.ImageUpload, func(), error) {
	if !isMultipart(r) {
		return nil, nil, ErrFileRequired
	}
	if err := parseMultipart(w, r, limit); err != nil {
		return nil, nil, err
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, ErrFileRequired
		}
		return nil, nil, errors.Join(ErrBodyInvalid, err)
	}
	upload := &interfaces.ImageUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return upload, func() { _ = file.Close() }, nil
}

func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	if limit <= 0 {
		limit = media.DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return media.ErrUploadTooLarge
		}
		return errors.Join(ErrBodyInvalid, err)
	}
	return nil
}
