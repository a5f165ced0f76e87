package application

import (
	"net/http"

	"github.com/philly/postboard/internal/platform/apperror"
	"github.com/philly/postboard/internal/posts/ports"
)

// Error definitions for feed and composer operations
var (
	ErrEmptyContent = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeEmptyContent,
		"post content cannot be empty",
		http.StatusBadRequest,
	)

	ErrSubmissionInFlight = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeSubmissionInFlight,
		"a post is already being submitted",
		http.StatusConflict,
	)

	ErrFetchFailed = apperror.New(
		apperror.CodeRequestFailed,
		apperror.BusinessCodeFetchFailed,
		"could not load posts",
		http.StatusBadGateway,
	)

	ErrInsertFailed = apperror.New(
		apperror.CodeRequestFailed,
		apperror.BusinessCodeInsertFailed,
		"could not create post",
		http.StatusBadGateway,
	)

	ErrSubscribeFailed = apperror.New(
		apperror.CodeChannelFailed,
		apperror.BusinessCodeSubscribeFailed,
		"could not subscribe to post changes",
		http.StatusServiceUnavailable,
	)

	ErrUnknownChangeKind = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeUnknownChangeKind,
		"unknown change kind",
		http.StatusBadRequest,
	)

	ErrFeedAlreadyActive = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeFeedAlreadyActive,
		"feed view is already active",
		http.StatusConflict,
	)
)

// requestError wraps a backend failure so its message reaches the user as is.
func requestError(sentinel *apperror.AppError, err error) *apperror.AppError {
	msg := ports.UserMessage(err)
	if msg == "" {
		msg = sentinel.Message
	}
	return apperror.Wrap(err, sentinel.Code, sentinel.BusinessCode, msg, sentinel.HTTPStatus)
}
