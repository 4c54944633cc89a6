package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxgroups/internal/cluster"
)

// HeaderValue returns the value of the named header from a message,
// or the empty string if the header is not present.
func HeaderValue(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// messageToRawEmail converts a full-format Gmail message into the raw
// record the clustering pipeline consumes.
func messageToRawEmail(msg *gmail.Message) cluster.RawEmail {
	archived := true
	for _, label := range msg.LabelIds {
		if label == "INBOX" {
			archived = false
			break
		}
	}

	return cluster.RawEmail{
		GmailID:      msg.Id,
		Subject:      HeaderValue(msg, "Subject"),
		Sender:       HeaderValue(msg, "From"),
		Body:         messageBody(msg),
		DateReceived: messageDate(msg),
		IsArchived:   archived,
	}
}

// messageDate returns the message date from the Date header, falling
// back to the Gmail internal timestamp.
func messageDate(msg *gmail.Message) time.Time {
	if raw := HeaderValue(msg, "Date"); raw != "" {
		if t, err := mail.ParseDate(raw); err == nil {
			return t
		}
	}
	if msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate)
	}
	return time.Time{}
}

// messageBody extracts the decoded body text of a message, preferring
// text/plain parts and falling back to text/html. The caller is
// responsible for stripping HTML.
func messageBody(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	if body := findPartBody(msg.Payload, "text/plain"); body != "" {
		return body
	}
	return findPartBody(msg.Payload, "text/html")
}

// findPartBody walks the MIME tree depth-first and returns the decoded
// body of the first part with the given MIME type.
func findPartBody(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, p := range part.Parts {
		if body := findPartBody(p, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody decodes the base64url body data Gmail returns. Padding is
// usually absent but some messages carry it.
func decodeBody(data string) string {
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
