package http

import (
	"strings"
	"sync"

	"github.com/pharmaweb/sitecms/internal/blocks"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// EditorSessionHeader names the authoring session an upload belongs to. The
// session query parameter takes precedence.
const EditorSessionHeader = "X-Editor-Session"

const defaultEditorSession = "default"

// editorSessions keeps one block editor per collection and authoring session
// so uploads from the same session are serialised.
type editorSessions struct {
	mu       sync.Mutex
	editors  map[string]*blocks.Editor
	uploader func(kind posts.Kind) blocks.ImageUploader
	logger   interfaces.Logger
}

func newEditorSessions(uploader func(kind posts.Kind) blocks.ImageUploader, logger interfaces.Logger) *editorSessions {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &editorSessions{
		editors:  make(map[string]*blocks.Editor),
		uploader: uploader,
		logger:   logger,
	}
}

func editorKey(kind posts.Kind, session string) string {
	return string(kind) + "/" + session
}

// get returns the editor of session, creating an empty one on first use.
func (s *editorSessions) get(kind posts.Kind, session string) *blocks.Editor {
	key := editorKey(kind, session)
	s.mu.Lock()
	defer s.mu.Unlock()
	if editor, ok := s.editors[key]; ok {
		return editor
	}
	editor := blocks.NewEditor(nil,
		blocks.WithImageUploader(s.uploader(kind)),
		blocks.WithEditorLogger(logging.WithFields(s.logger, map[string]any{
			"post_kind":      string(kind),
			"editor_session": session,
		})),
	)
	s.editors[key] = editor
	return editor
}

// lookup returns the editor of session without creating it.
func (s *editorSessions) lookup(kind posts.Kind, session string) (*blocks.Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	editor, ok := s.editors[editorKey(kind, session)]
	return editor, ok
}

func (s *editorSessions) discard(kind posts.Kind, session string) bool {
	key := editorKey(kind, session)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.editors[key]
	delete(s.editors, key)
	return ok
}

func sessionFromPath(value string) string {
	if session := strings.TrimSpace(value); session != "" {
		return session
	}
	return defaultEditorSession
}

type editorResponse struct {
	Session   string      `json:"session"`
	Blocks    blocks.List `json:"blocks"`
	Uploading bool        `json:"uploading"`
}
