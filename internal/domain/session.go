package domain

import "time"

// SessionStatus tracks a content project through its lifecycle. Only
// published sessions participate in performance aggregation.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusReady     SessionStatus = "ready"
	SessionStatusPublished SessionStatus = "published"
	SessionStatusArchived  SessionStatus = "archived"
)

// ContentKind enumerates the copy variants a generation pass produces.
type ContentKind string

const (
	ContentKindHook    ContentKind = "hook"
	ContentKindCaption ContentKind = "caption"
	ContentKindTitle   ContentKind = "title"
	ContentKindCTA     ContentKind = "cta"
)

// Session is one content project: a raw idea plus everything generated,
// refined and eventually published from it.
type Session struct {
	ID          string
	UserID      string
	Title       string
	Idea        string
	Status      SessionStatus
	BriefJSON   []byte
	RemixedFrom string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidTransition reports whether a session may move between the two
// statuses. Published sessions can only be archived; drafts cannot be
// published before they are ready.
func ValidTransition(from, to SessionStatus) bool {
	switch from {
	case SessionStatusDraft:
		return to == SessionStatusReady || to == SessionStatusArchived
	case SessionStatusReady:
		return to == SessionStatusDraft || to == SessionStatusPublished || to == SessionStatusArchived
	case SessionStatusPublished:
		return to == SessionStatusArchived
	default:
		return false
	}
}

// ContentVariant is a single generated copy unit attached to a session.
type ContentVariant struct {
	ID        string
	SessionID string
	Kind      ContentKind
	Body      string
	Provider  string
	CreatedAt time.Time
}
