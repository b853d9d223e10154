package emailer

import "errors"

// Configuration-level failures. Each one skips the whole configuration
// before any row is written.
var (
	ErrInvalidConfiguration = errors.New("invalid emailer configuration")
	ErrFieldNotFound        = errors.New("field not found in source table")
	ErrTriggerFieldType     = errors.New("trigger field must be of type single_select")
	ErrStatusOptionMissing  = errors.New("status option not found on trigger field")
	ErrTemplateMissing      = errors.New("email template URL is missing in the configuration")
)

// Load-level failures.
var (
	ErrEmptyList = errors.New("expected a non-empty list")
)

// Row-level failures.
var (
	ErrNoRecipients = errors.New("no recipients found")
)
