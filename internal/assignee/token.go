package assignee

import (
	"strings"

	"github.com/google/uuid"
)

// Kind tags a parsed recipient token.
type Kind string

const (
	KindInternal      Kind = "internal"
	KindBroadcast     Kind = "broadcast"
	KindExternalEmail Kind = "external_email"
	KindExternalName  Kind = "external_name"
)

const (
	emailPrefix = "external-email:"
	namePrefix  = "external-name:"
)

// Token is one recipient token parsed into its tagged variant. Raw
// tokens are parsed exactly once, at this boundary.
type Token struct {
	Kind   Kind
	UserID uuid.UUID // internal only
	Value  string    // email address or free-text name
}

// ParseToken classifies a raw recipient token. Tagged tokens carry an
// explicit prefix; an untagged legacy token is an internal user id
// when it parses as a UUID, an email address when it contains "@",
// and a free-text external name otherwise.
func ParseToken(raw, broadcastAlias string) Token {
	raw = strings.TrimSpace(raw)

	if strings.EqualFold(raw, broadcastAlias) {
		return Token{Kind: KindBroadcast}
	}

	if value, ok := strings.CutPrefix(raw, emailPrefix); ok {
		return Token{Kind: KindExternalEmail, Value: strings.TrimSpace(value)}
	}

	if value, ok := strings.CutPrefix(raw, namePrefix); ok {
		return Token{Kind: KindExternalName, Value: strings.TrimSpace(value)}
	}

	if id, err := uuid.Parse(raw); err == nil {
		return Token{Kind: KindInternal, UserID: id}
	}

	if strings.Contains(raw, "@") {
		return Token{Kind: KindExternalEmail, Value: raw}
	}

	return Token{Kind: KindExternalName, Value: raw}
}
