package commands

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/internal/posts"
)

const (
	savePostMessageType    = "sitecms.posts.save"
	deletePostMessageType  = "sitecms.posts.delete"
	publishPostMessageType = "sitecms.posts.publish"
	importPostsMessageType = "sitecms.posts.import"
)

// SaveResult receives the stored record of a SavePostCommand.
type SaveResult struct {
	Record  *posts.Record
	Created bool
}

// SavePostCommand creates a post when ID is nil and updates it otherwise.
type SavePostCommand struct {
	Kind  posts.Kind      `json:"kind"`
	ID    uuid.UUID       `json:"id,omitempty"`
	Input posts.SaveInput `json:"-"`
	// Result is filled on success when non-nil.
	Result *SaveResult `json:"-"`
}

func (SavePostCommand) Type() string { return savePostMessageType }

func (cmd SavePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.By(validKind)),
		validation.Field(&cmd.Input, validation.By(func(any) error {
			title, _ := cmd.Input.TitleI18N.Get("en")
			if title == "" && strings.TrimSpace(cmd.Input.Title) == "" {
				return validation.NewError("sitecms.posts.title_required", "english title is required")
			}
			if cmd.Input.Image != nil && cmd.Input.Image.Body == nil {
				return validation.NewError("sitecms.posts.image_body_required", "image upload has no body")
			}
			return nil
		})),
	)
}

// DeletePostCommand removes a post and its cover image.
type DeletePostCommand struct {
	Kind posts.Kind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

func (DeletePostCommand) Type() string { return deletePostMessageType }

func (cmd DeletePostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.By(validKind)),
		validation.Field(&cmd.ID, validation.By(requiredUUID)),
	)
}

// PublishPostCommand toggles public visibility.
type PublishPostCommand struct {
	Kind      posts.Kind  `json:"kind"`
	ID        uuid.UUID   `json:"id"`
	Published bool        `json:"published"`
	Result    *SaveResult `json:"-"`
}

func (PublishPostCommand) Type() string { return publishPostMessageType }

func (cmd PublishPostCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.By(validKind)),
		validation.Field(&cmd.ID, validation.By(requiredUUID)),
	)
}

// ImportPostsCommand imports a markdown directory into one collection.
type ImportPostsCommand struct {
	Kind      posts.Kind    `json:"kind"`
	Directory string        `json:"directory"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Recursive bool          `json:"recursive,omitempty"`
	Pattern   string        `json:"pattern,omitempty"`
	Result    *ImportReport `json:"-"`
}

func (ImportPostsCommand) Type() string { return importPostsMessageType }

func (cmd ImportPostsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.By(validKind)),
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("sitecms.posts.import.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

var errKindUnknown = validation.NewError("sitecms.posts.kind_unknown", "must be blog or news")

func validKind(value any) error {
	kind, _ := value.(posts.Kind)
	if _, ok := posts.ParseKind(string(kind)); !ok {
		return errKindUnknown
	}
	return nil
}

func requiredUUID(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("sitecms.posts.id_required", "id is required")
	}
	return nil
}

// ErrServiceMissing is returned when no service is registered for a kind.
var ErrServiceMissing = errors.New("commands: no post service for kind")
