// Package personalize substitutes placeholder tokens in campaign text with
// recipient-specific or configured values.
package personalize

import (
	"fmt"
	"html"
	"strings"

	"github.com/lunamail/lunamail/internal/models"
)

// Fixed holds the configuration-supplied placeholder values. They are the
// same for every recipient of a send.
type Fixed struct {
	CompanyName        string
	NewsletterSubtitle string
	CompanyAddress     string
}

const (
	fallbackName      = "Valued Customer"
	fallbackFirstName = "Friend"
)

// Apply performs global literal replacement of every recognized token in
// text. Unrecognized {{...}} markers are left as-is.
func Apply(text string, recipient models.Recipient, fixed Fixed) string {
	name := strings.TrimSpace(recipient.Name)

	fullName := name
	if fullName == "" {
		fullName = fallbackName
	}

	firstName := fallbackFirstName
	if fields := strings.Fields(name); len(fields) > 0 {
		firstName = fields[0]
	}

	replacer := strings.NewReplacer(
		"{{NAME}}", fullName,
		"{{FIRST_NAME}}", firstName,
		"{{EMAIL}}", recipient.Email,
		"{{COMPANY_NAME}}", fixed.CompanyName,
		"{{NEWSLETTER_SUBTITLE}}", fixed.NewsletterSubtitle,
		"{{COMPANY_ADDRESS}}", fixed.CompanyAddress,
	)
	return replacer.Replace(text)
}

// WrapHTML wraps a personalized body in a minimal HTML document shell with
// the personalized subject as the document title.
func WrapHTML(subject, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`, html.EscapeString(subject), body)
}
