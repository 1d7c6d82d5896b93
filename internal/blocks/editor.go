package blocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, upload interfaces.ImageUpload) (string, error)
}

// ImageUploaderFunc adapts a function into an ImageUploader.
type ImageUploaderFunc func(ctx context.Context, upload interfaces.ImageUpload) (string, error)

// UploadImage calls f.
func (f ImageUploaderFunc) UploadImage(ctx context.Context, upload interfaces.ImageUpload) (string, error) {
	return f(ctx, upload)
}

// Patch carries the fields to merge into a block. Nil fields are left alone.
type Patch struct {
	Value   *string `json:"value,omitempty"`
	Caption *string `json:"caption,omitempty"`
}

// Editor holds the working block list of one authoring session. Empty blocks
// are allowed while editing and rejected by Validate.
type Editor struct {
	mu        sync.Mutex
	blocks    List
	uploading bool
	uploader  ImageUploader
	logger    interfaces.Logger
}

// EditorOption customises an Editor.
type EditorOption func(*Editor)

// WithEditorLogger sets the logger used for upload events.
func WithEditorLogger(logger interfaces.Logger) EditorOption {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithImageUploader sets the collaborator used by AddImageFromUpload.
func WithImageUploader(uploader ImageUploader) EditorOption {
	return func(e *Editor) {
		e.uploader = uploader
	}
}

// NewEditor starts a session from initial, which is copied.
func NewEditor(initial List, opts ...EditorOption) *Editor {
	e := &Editor{
		blocks: initial.Clone(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Load replaces the working list with a copy of list.
func (e *Editor) Load(list List) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocks = list.Clone()
}

// Blocks returns a copy of the working list.
func (e *Editor) Blocks() List {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.blocks.Clone()
	if out == nil {
		out = List{}
	}
	return out
}

// Len returns the number of blocks.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.blocks)
}

// Uploading reports whether an image upload is in flight.
func (e *Editor) Uploading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.uploading
}

// AddText appends an empty text block and returns its index.
func (e *Editor) AddText() int {
	return e.append(Block{Kind: KindText})
}

// AddVideo appends an empty video block with an empty caption.
func (e *Editor) AddVideo() int {
	return e.append(Block{Kind: KindVideo, Caption: ""})
}

func (e *Editor) append(block Block) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blocks = append(e.blocks, block)
	return len(e.blocks) - 1
}

// AddImageFromUpload uploads the image and appends an image block pointing at
// its public URL. The list is untouched when the upload fails. Only one upload
// may run at a time.
func (e *Editor) AddImageFromUpload(ctx context.Context, upload interfaces.ImageUpload) (Block, error) {
	e.mu.Lock()
	if e.uploading {
		e.mu.Unlock()
		return Block{}, ErrUploadInFlight
	}
	if e.uploader == nil {
		e.mu.Unlock()
		return Block{}, ErrUploaderRequired
	}
	e.uploading = true
	uploader := e.uploader
	e.mu.Unlock()

	url, err := uploader.UploadImage(ctx, upload)
	if err == nil && strings.TrimSpace(url) == "" {
		err = ErrUploadURLMissing
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.uploading = false
	if err != nil {
		e.logger.Warn("editor.upload.failed", "file", upload.Name, "error", err)
		return Block{}, fmt.Errorf("blocks: image upload failed: %w", err)
	}
	block := Block{Kind: KindImage, Value: url}
	e.blocks = append(e.blocks, block)
	e.logger.Debug("editor.upload.completed", "file", upload.Name, "url", url, "index", len(e.blocks)-1)
	return block, nil
}

// Remove deletes the block at index.
func (e *Editor) Remove(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.blocks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	e.blocks = append(e.blocks[:index], e.blocks[index+1:]...)
	return nil
}

// MoveUp swaps the block at index with its predecessor. It reports whether
// anything moved; index 0 and out of range indices are no-ops.
func (e *Editor) MoveUp(index int) bool {
	return e.swap(index, index-1)
}

// MoveDown swaps the block at index with its successor. The last index is a no-op.
func (e *Editor) MoveDown(index int) bool {
	return e.swap(index, index+1)
}

func (e *Editor) swap(i, j int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || j < 0 || i >= len(e.blocks) || j >= len(e.blocks) {
		return false
	}
	e.blocks[i], e.blocks[j] = e.blocks[j], e.blocks[i]
	return true
}

// Update merges patch into the block at index. The kind never changes.
func (e *Editor) Update(index int, patch Patch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.blocks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	block := e.blocks[index]
	if patch.Value != nil {
		block.Value = *patch.Value
	}
	if patch.Caption != nil {
		block.Caption = *patch.Caption
	}
	e.blocks[index] = block
	return nil
}

// Validate applies the save-time block rules to the working list.
func (e *Editor) Validate() error {
	return e.Blocks().Validate()
}
