package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/commands"
	"github.com/pharmaweb/sitecms/internal/listing"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/media"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// DefaultAdminPageSize is the admin list page size when none is configured.
const DefaultAdminPageSize = 30

var ErrServicesRequired = errors.New("http: post services are required")

// AdminAPI registers the editor endpoints for blog posts and company news.
// Reads hit the services directly; every mutation runs through a command.
type AdminAPI struct {
	basePath       string
	services       commands.PostServices
	save           command.Commander[commands.SavePostCommand]
	remove         command.Commander[commands.DeletePostCommand]
	publish        command.Commander[commands.PublishPostCommand]
	storage        interfaces.ImageStorage
	maxUploadBytes int64
	pageSize       int
	strictCategory bool
	logger         interfaces.Logger
	editorLogger   interfaces.Logger
	editors        *editorSessions
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath:       "/admin/api",
		maxUploadBytes: media.DefaultMaxUploadBytes,
		pageSize:       DefaultAdminPageSize,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPostServices wires the collections served under /{kind}.
func WithPostServices(services commands.PostServices) AdminOption {
	return func(api *AdminAPI) {
		api.services = services
	}
}

// WithSaveCommand overrides the create/update command. Defaults to
// commands.NewSavePostHandler over the configured services.
func WithSaveCommand(cmd command.Commander[commands.SavePostCommand]) AdminOption {
	return func(api *AdminAPI) {
		api.save = cmd
	}
}

// WithDeleteCommand overrides the delete command.
func WithDeleteCommand(cmd command.Commander[commands.DeletePostCommand]) AdminOption {
	return func(api *AdminAPI) {
		api.remove = cmd
	}
}

// WithPublishCommand overrides the publish command.
func WithPublishCommand(cmd command.Commander[commands.PublishPostCommand]) AdminOption {
	return func(api *AdminAPI) {
		api.publish = cmd
	}
}

// WithImageStorage enables the editor upload endpoint.
func WithImageStorage(storage interfaces.ImageStorage) AdminOption {
	return func(api *AdminAPI) {
		api.storage = storage
	}
}

// WithMaxUploadBytes bounds multipart request bodies.
func WithMaxUploadBytes(limit int64) AdminOption {
	return func(api *AdminAPI) {
		if limit > 0 {
			api.maxUploadBytes = limit
		}
	}
}

// WithAdminPageSize sets the admin list page size.
func WithAdminPageSize(size int, strictCategory bool) AdminOption {
	return func(api *AdminAPI) {
		if size > 0 {
			api.pageSize = size
		}
		api.strictCategory = strictCategory
	}
}

// WithAdminLogger sets the logger used for request failures.
func WithAdminLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithEditorSessionLogger sets the logger handed to block editor sessions.
func WithEditorSessionLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		api.editorLogger = logger
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}
	if len(api.services) == 0 {
		return ErrServicesRequired
	}
	if api.save == nil {
		api.save = commands.NewSavePostHandler(api.services, api.logger)
	}
	if api.remove == nil {
		api.remove = commands.NewDeletePostHandler(api.services, api.logger)
	}
	if api.publish == nil {
		api.publish = commands.NewPublishPostHandler(api.services, api.logger)
	}

	api.editors = newEditorSessions(api.uploaderFor, api.editorLogger)

	root := joinPath(api.basePath, "{kind}")
	item := root + "/{id}"
	editor := root + "/editor/{session}"

	mux.HandleFunc("GET "+root, api.handleList)
	mux.HandleFunc("POST "+root, api.handleCreate)
	mux.HandleFunc("POST "+root+"/uploads", api.handleUpload)
	mux.HandleFunc("GET "+item, api.handleGet)
	mux.HandleFunc("PUT "+item, api.handleUpdate)
	mux.HandleFunc("DELETE "+item, api.handleDelete)
	mux.HandleFunc("POST "+item+"/publish", api.handlePublish)
	mux.HandleFunc("GET "+editor, api.handleEditorGet)
	mux.HandleFunc("DELETE "+editor, api.handleEditorDiscard)

	return nil
}

func (api *AdminAPI) service(r *http.Request) (posts.Kind, posts.Service, error) {
	kind, err := parseKind(r)
	if err != nil {
		return "", nil, err
	}
	svc, ok := api.services[kind]
	if !ok || svc == nil {
		return "", nil, ErrKindUnknown
	}
	return kind, svc, nil
}

type adminListResponse struct {
	Kind       posts.Kind         `json:"kind"`
	Items      []*posts.Record    `json:"items"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Total      int                `json:"total"`
	Window     []listing.PageLink `json:"pages"`
	Categories []string           `json:"categories"`
	Query      string             `json:"query,omitempty"`
	Category   string             `json:"category,omitempty"`
}

// adminFields searches the English texts editors author first.
func adminFields(rec *posts.Record) listing.Fields {
	title, ok := rec.TitleI18N.Get("en")
	if !ok {
		title = rec.Title
	}
	return listing.Fields{Title: title, Excerpt: rec.Summary, Category: rec.Category}
}

func (api *AdminAPI) handleList(w http.ResponseWriter, r *http.Request) {
	kind, svc, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	records, err := svc.List(r.Context(), posts.ListOptions{})
	if err != nil {
		api.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	ctrl := listing.New(adminFields, listing.Options{PageSize: api.pageSize, StrictCategory: api.strictCategory})
	ctrl.SetQuery(query.Get("q"))
	ctrl.SetCategory(query.Get("category"))
	ctrl.SetPage(parsePage(query.Get("page")))
	page := ctrl.Apply(records)

	writeJSON(w, http.StatusOK, adminListResponse{
		Kind:       kind,
		Items:      page.Items,
		Page:       page.Number,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Window:     page.Window,
		Categories: listing.Categories(records, adminFields),
		Query:      ctrl.Query(),
		Category:   ctrl.Category(),
	})
}

func (api *AdminAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	_, svc, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	record, err := svc.Get(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	api.handleSave(w, r, false)
}

func (api *AdminAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	api.handleSave(w, r, true)
}

func (api *AdminAPI) handleSave(w http.ResponseWriter, r *http.Request, update bool) {
	kind, _, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	msg := commands.SavePostCommand{Kind: kind, Result: &commands.SaveResult{}}
	if update {
		if msg.ID, err = parseUUID(r.PathValue("id")); err != nil {
			api.fail(w, r, err)
			return
		}
	}

	form, err := readPostForm(w, r, api.maxUploadBytes)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	defer form.Close()
	msg.Input = form.input

	if err := api.save.Execute(r.Context(), msg); err != nil {
		api.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if msg.Result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, msg.Result.Record)
}

func (api *AdminAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, _, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if err := api.remove.Execute(r.Context(), commands.DeletePostCommand{Kind: kind, ID: id}); err != nil {
		api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type publishRequest struct {
	Published *bool `json:"published"`
}

func (api *AdminAPI) handlePublish(w http.ResponseWriter, r *http.Request) {
	kind, _, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	published := parseBoolQuery(r.URL.Query().Get("published"), true)
	// Chunked bodies report no content length; an empty body keeps the default.
	if r.Body != nil && r.Body != http.NoBody {
		var req publishRequest
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			api.fail(w, r, err)
			return
		}
		if req.Published != nil {
			published = *req.Published
		}
	}

	msg := commands.PublishPostCommand{Kind: kind, ID: id, Published: published, Result: &commands.SaveResult{}}
	if err := api.publish.Execute(r.Context(), msg); err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg.Result.Record)
}

type uploadResponse struct {
	URL     string       `json:"url"`
	Block   blocks.Block `json:"block"`
	Session string       `json:"session"`
	Blocks  blocks.List  `json:"blocks"`
}

func (api *AdminAPI) uploaderFor(kind posts.Kind) blocks.ImageUploader {
	bucket := ""
	if svc, ok := api.services[kind]; ok && svc != nil {
		bucket = svc.Schema().Bucket
	}
	return media.NewBlockUploader(api.storage, bucket)
}

func editorSession(r *http.Request) string {
	if session := strings.TrimSpace(r.URL.Query().Get("session")); session != "" {
		return session
	}
	return sessionFromPath(r.Header.Get(EditorSessionHeader))
}

// handleUpload stores one image in the collection bucket through the
// session's block editor and returns the appended image block. A second
// upload on the same session while one is running gets 409.
func (api *AdminAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind, _, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if api.storage == nil {
		api.fail(w, r, posts.ErrStorageUnavailable)
		return
	}
	upload, closer, err := readUpload(w, r, api.maxUploadBytes, "file")
	if err != nil {
		api.fail(w, r, err)
		return
	}
	defer closer()

	session := editorSession(r)
	editor := api.editors.get(kind, session)
	block, err := editor.AddImageFromUpload(r.Context(), *upload)
	if err != nil {
		if !errors.Is(err, blocks.ErrUploadInFlight) {
			err = fmt.Errorf("%w: %w", posts.ErrUploadFailed, err)
		}
		api.fail(w, r, err)
		return
	}
	if caption := strings.TrimSpace(r.FormValue("caption")); caption != "" {
		block.Caption = caption
		if last := editor.Len() - 1; last >= 0 {
			_ = editor.Update(last, blocks.Patch{Caption: &caption})
		}
	}
	writeJSON(w, http.StatusCreated, uploadResponse{
		URL:     block.Value,
		Block:   block,
		Session: session,
		Blocks:  editor.Blocks(),
	})
}

// handleEditorGet returns the working block list of an editor session.
func (api *AdminAPI) handleEditorGet(w http.ResponseWriter, r *http.Request) {
	kind, _, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	session := sessionFromPath(r.PathValue("session"))
	editor, ok := api.editors.lookup(kind, session)
	if !ok {
		api.fail(w, r, &posts.NotFoundError{Resource: "editor_session", Key: session})
		return
	}
	writeJSON(w, http.StatusOK, editorResponse{Session: session, Blocks: editor.Blocks(), Uploading: editor.Uploading()})
}

// handleEditorDiscard drops an editor session once its blocks were saved.
func (api *AdminAPI) handleEditorDiscard(w http.ResponseWriter, r *http.Request) {
	kind, _, err := api.service(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	session := sessionFromPath(r.PathValue("session"))
	if !api.editors.discard(kind, session) {
		api.fail(w, r, &posts.NotFoundError{Resource: "editor_session", Key: session})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.admin.request_failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, payload)
}
