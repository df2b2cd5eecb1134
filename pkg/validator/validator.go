package validator

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const maxBodyLength = 4000

func ValidateTextMessage(body string) ValidationErrors {
	errs := make(ValidationErrors)

	body = strings.TrimSpace(body)
	if body == "" {
		errs.Add("body", "Message cannot be empty")
	} else if utf8.RuneCountInString(body) > maxBodyLength {
		errs.Add("body", "Message is too long")
	}

	return errs
}

func ValidateAttachment(rawURL, filename, mimeType string) ValidationErrors {
	errs := make(ValidationErrors)

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		errs.Add("url", "Attachment URL is required")
	} else if u, err := url.Parse(rawURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs.Add("url", "Attachment URL must be a valid http(s) URL")
	}

	filename = strings.TrimSpace(filename)
	if filename == "" {
		errs.Add("filename", "Attachment filename is required")
	} else if len(filename) > 255 {
		errs.Add("filename", "Attachment filename is too long")
	}

	if mimeType != "" && !strings.Contains(mimeType, "/") {
		errs.Add("mime_type", "Invalid content type")
	}

	return errs
}
