package email

// Email is a single outgoing message. From defaults to the configured sender.
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData is passed to html templates.
type TemplateData map[string]interface{}
