package commands

import (
	"context"
	"fmt"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/pharmaweb/sitecms/internal/importer"
	"github.com/pharmaweb/sitecms/internal/logging"
	"github.com/pharmaweb/sitecms/internal/posts"
	"github.com/pharmaweb/sitecms/pkg/interfaces"
)

// PostServices resolves the service of each collection.
type PostServices map[posts.Kind]posts.Service

func (s PostServices) lookup(kind posts.Kind) (posts.Service, error) {
	svc, ok := s[kind]
	if !ok || svc == nil {
		return nil, fmt.Errorf("%w: %q", ErrServiceMissing, kind)
	}
	return svc, nil
}

// DirectoryImporter is the part of importer.Importer the import command uses.
type DirectoryImporter interface {
	ImportDirectory(ctx context.Context, dir string, opts importer.Options) (*importer.Result, error)
}

// ImportReport receives the outcome of an ImportPostsCommand.
type ImportReport struct {
	Result *importer.Result
}

var (
	_ command.Commander[SavePostCommand]    = (*Handler[SavePostCommand])(nil)
	_ command.Commander[DeletePostCommand]  = (*Handler[DeletePostCommand])(nil)
	_ command.Commander[PublishPostCommand] = (*Handler[PublishPostCommand])(nil)
	_ command.Commander[ImportPostsCommand] = (*Handler[ImportPostsCommand])(nil)
)

func postFields(kind posts.Kind, id uuid.UUID) map[string]any {
	fields := map[string]any{"kind": string(kind)}
	if id != uuid.Nil {
		fields["post_id"] = id.String()
	}
	return fields
}

// NewSavePostHandler creates or updates posts.
func NewSavePostHandler(services PostServices, logger interfaces.Logger, opts ...HandlerOption[SavePostCommand]) *Handler[SavePostCommand] {
	exec := func(ctx context.Context, msg SavePostCommand) error {
		svc, err := services.lookup(msg.Kind)
		if err != nil {
			return err
		}
		var (
			record  *posts.Record
			created = msg.ID == uuid.Nil
		)
		if created {
			record, err = svc.Create(ctx, msg.Input)
		} else {
			record, err = svc.Update(ctx, msg.ID, msg.Input)
		}
		if err != nil {
			return err
		}
		if msg.Result != nil {
			msg.Result.Record = record
			msg.Result.Created = created
		}
		return nil
	}
	return NewHandler(exec, append([]HandlerOption[SavePostCommand]{
		WithLogger[SavePostCommand](logger),
		WithOperation[SavePostCommand]("posts.save"),
		WithMessageFields(func(msg SavePostCommand) map[string]any {
			fields := postFields(msg.Kind, msg.ID)
			if msg.Input.Image != nil {
				fields["upload"] = msg.Input.Image.Name
			}
			return fields
		}),
	}, opts...)...)
}

// NewDeletePostHandler deletes posts.
func NewDeletePostHandler(services PostServices, logger interfaces.Logger, opts ...HandlerOption[DeletePostCommand]) *Handler[DeletePostCommand] {
	exec := func(ctx context.Context, msg DeletePostCommand) error {
		svc, err := services.lookup(msg.Kind)
		if err != nil {
			return err
		}
		return svc.Delete(ctx, msg.ID)
	}
	return NewHandler(exec, append([]HandlerOption[DeletePostCommand]{
		WithLogger[DeletePostCommand](logger),
		WithOperation[DeletePostCommand]("posts.delete"),
		WithMessageFields(func(msg DeletePostCommand) map[string]any {
			return postFields(msg.Kind, msg.ID)
		}),
	}, opts...)...)
}

// NewPublishPostHandler toggles the published flag.
func NewPublishPostHandler(services PostServices, logger interfaces.Logger, opts ...HandlerOption[PublishPostCommand]) *Handler[PublishPostCommand] {
	exec := func(ctx context.Context, msg PublishPostCommand) error {
		svc, err := services.lookup(msg.Kind)
		if err != nil {
			return err
		}
		record, err := svc.SetPublished(ctx, msg.ID, msg.Published)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			msg.Result.Record = record
		}
		return nil
	}
	return NewHandler(exec, append([]HandlerOption[PublishPostCommand]{
		WithLogger[PublishPostCommand](logger),
		WithOperation[PublishPostCommand]("posts.publish"),
		WithMessageFields(func(msg PublishPostCommand) map[string]any {
			fields := postFields(msg.Kind, msg.ID)
			fields["published"] = msg.Published
			return fields
		}),
	}, opts...)...)
}

// NewImportPostsHandler runs markdown imports. Per-file failures are
// reported through the result and the joined error.
func NewImportPostsHandler(imp DirectoryImporter, logger interfaces.Logger, opts ...HandlerOption[ImportPostsCommand]) *Handler[ImportPostsCommand] {
	if logger == nil {
		logger = logging.NoOp()
	}
	exec := func(ctx context.Context, msg ImportPostsCommand) error {
		result, err := imp.ImportDirectory(ctx, msg.Directory, importer.Options{
			Kind:      msg.Kind,
			DryRun:    msg.DryRun,
			Pattern:   msg.Pattern,
			Recursive: msg.Recursive,
		})
		if msg.Result != nil {
			msg.Result.Result = result
		}
		if err != nil {
			return err
		}
		return result.Err()
	}
	return NewHandler(exec, append([]HandlerOption[ImportPostsCommand]{
		WithLogger[ImportPostsCommand](logger),
		WithOperation[ImportPostsCommand]("posts.import"),
		WithMessageFields(func(msg ImportPostsCommand) map[string]any {
			return map[string]any{
				"kind":      string(msg.Kind),
				"directory": msg.Directory,
				"dry_run":   msg.DryRun,
			}
		}),
	}, opts...)...)
}
