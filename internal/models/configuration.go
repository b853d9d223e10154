package models

// DefaultSubject is used when a configuration leaves Subject empty.
const DefaultSubject = "No Subject"

// Column names of the configuration table.
const (
	ColumnSourceTableID         = "Source Table ID"
	ColumnTriggerField          = "Email Trigger Field"
	ColumnTriggerOnBlank        = "Trigger On Blank"
	ColumnRecipientField        = "Email Recipient Field"
	ColumnCCRecipients          = "CC Recipients"
	ColumnMessageTemplateFields = "Message Template Fields"
	ColumnMessageTemplate       = "Message Template"
	ColumnSubject               = "Subject"
	ColumnActive                = "Active"
)

// Configuration describes one email-sending job over a source table.
type Configuration struct {
	ID                    int
	SourceTableID         string `validate:"required,numeric"`
	TriggerField          string `validate:"required"`
	TriggerOnBlank        bool
	RecipientField        string `validate:"required"`
	MessageTemplateFields []string
	MessageTemplate       string
	Subject               string
	CCRecipients          []string
	Active                bool
}
