package assignee

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/opsdesk-cloud/opsdesk/internal/fault"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"gorm.io/gorm"
)

// Assignee is one resolved recipient of a task or notice.
type Assignee struct {
	Kind        Kind      `json:"kind"`
	UserID      uuid.UUID `json:"user_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name"`
}

// Internal reports whether the assignee is an internal user.
func (a Assignee) Internal() bool {
	return a.Kind == KindInternal
}

// Resolver turns raw recipient tokens into a deduplicated, ordered
// list of typed assignees.
type Resolver struct {
	db             *gorm.DB
	broadcastAlias string
}

func NewResolver(conn *gorm.DB, broadcastAlias string) *Resolver {
	return &Resolver{db: conn, broadcastAlias: broadcastAlias}
}

// Resolve parses and resolves the token list. Unknown internal ids
// are silently dropped; the broadcast alias expands, once per call,
// to every user opted into broadcasts; emails normalize to lowercase
// and free-text names to uppercase; duplicates collapse to their
// first occurrence. An empty result is a validation failure: callers
// must guarantee at least one recipient survives resolution.
func (r *Resolver) Resolve(ctx context.Context, raws []string) ([]Assignee, error) {
	var (
		resolved = make([]Assignee, 0, len(raws))
		seen     = map[string]bool{}
		expanded bool
	)

	add := func(a Assignee) {
		key := r.dedupKey(a)
		if seen[key] {
			return
		}
		seen[key] = true
		resolved = append(resolved, a)
	}

	for _, raw := range raws {
		token := ParseToken(raw, r.broadcastAlias)

		switch token.Kind {
		case KindInternal:
			user, err := r.user(ctx, token.UserID)
			if err != nil {
				return nil, err
			}
			if user == nil {
				// unknown id, not an error
				continue
			}
			add(fromUser(user))

		case KindBroadcast:
			if expanded {
				continue
			}
			expanded = true

			users, err := r.broadcastUsers(ctx)
			if err != nil {
				return nil, err
			}
			for _, user := range users {
				add(fromUser(user))
			}

		case KindExternalEmail:
			if token.Value == "" {
				continue
			}
			email := strings.ToLower(token.Value)
			add(Assignee{Kind: KindExternalEmail, Email: email, DisplayName: email})

		case KindExternalName:
			if token.Value == "" {
				continue
			}
			name := strings.ToUpper(token.Value)
			add(Assignee{Kind: KindExternalName, DisplayName: name})
		}
	}

	if len(resolved) == 0 {
		return nil, fault.Validationf("no recipients survived resolution")
	}

	return resolved, nil
}

func (r *Resolver) dedupKey(a Assignee) string {
	switch a.Kind {
	case KindInternal:
		return string(a.Kind) + "\x00" + a.UserID.String()
	case KindExternalEmail:
		return string(a.Kind) + "\x00" + a.Email
	default:
		return string(a.Kind) + "\x00" + a.DisplayName
	}
}

func (r *Resolver) user(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := new(models.User)

	err := r.db.WithContext(ctx).First(user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	return user, err
}

func (r *Resolver) broadcastUsers(ctx context.Context) (models.Users, error) {
	users := make(models.Users, 0)

	err := r.db.WithContext(ctx).
		Where("broadcast_opt_in = ?", true).
		Order("created_at asc").
		Find(&users).Error

	return users, err
}

func fromUser(user *models.User) Assignee {
	return Assignee{
		Kind:        KindInternal,
		UserID:      user.ID,
		Email:       strings.ToLower(user.Email),
		DisplayName: user.Name,
	}
}
