package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagMissingContext marks errors caused by an event without pull request data
	ErrTagMissingContext = goerr.NewTag("missing_context")

	// ErrTagManifestRead marks failures reading a theme manifest that passed the existence check
	ErrTagManifestRead = goerr.NewTag("manifest_read")

	// ErrTagPlatformAPI marks failed calls to the comment platform (list, create, update, delete)
	ErrTagPlatformAPI = goerr.NewTag("platform_api")

	// ErrTagInvalidConfig marks invalid CLI flags or settings file content
	ErrTagInvalidConfig = goerr.NewTag("invalid_config")
)
