package email

import "errors"

var (
	// ErrTemplateFetch indicates the template could not be downloaded.
	ErrTemplateFetch = errors.New("failed to fetch template")

	// ErrTemplateSyntax indicates the downloaded template does not parse.
	ErrTemplateSyntax = errors.New("invalid template syntax")

	// ErrTemplateRender indicates template execution failed, usually a missing variable.
	ErrTemplateRender = errors.New("failed to render template")

	// ErrNoRecipient indicates a message without any To address.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNotAccepted indicates the mail API did not accept the message.
	ErrNotAccepted = errors.New("mail api did not accept the message")
)
