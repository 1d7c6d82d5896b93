package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/pharmaweb/sitecms/internal/posts"
)

const (
	codeValidation     = "COMMAND_VALIDATION_FAILED"
	codePostValidation = "POST_VALIDATION_FAILED"
	codeSlugExists     = "POST_SLUG_EXISTS"
	codeNotFound       = "POST_NOT_FOUND"
	codeUploadFailed   = "POST_UPLOAD_FAILED"
	codeCanceled       = "COMMAND_CONTEXT_CANCELED"
	codeTimeout        = "COMMAND_CONTEXT_TIMEOUT"
	codeContext        = "COMMAND_CONTEXT_ERROR"
	codeExecute        = "COMMAND_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(codeValidation)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(codeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(codeContext)
	}
}

// wrapExecuteError keeps save-time rejections in the validation category so
// callers can tell bad input from failed execution.
func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapContextError(err)
	case errors.Is(err, posts.ErrSlugExists):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "slug already in use").
			WithTextCode(codeSlugExists)
	case posts.IsValidation(err):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "post validation failed").
			WithTextCode(codePostValidation)
	case posts.IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "post not found").
			WithTextCode(codeNotFound)
	case errors.Is(err, posts.ErrUploadFailed):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "image upload failed").
			WithTextCode(codeUploadFailed)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(codeExecute)
	}
}
