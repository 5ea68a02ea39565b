// Package ports declares the collaborator interfaces the form core
// depends on. Implementations live under internal/adapters; the core
// never sees a wire format, only these contracts.
package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrListNotFound   = errors.New("list not found")
	ErrRecordNotFound = errors.New("record not found")
)

// Group is a membership the acting user holds.
type Group struct {
	ID   int
	Name string
}

// User identifies the acting user or a record author/editor.
type User struct {
	ID          int
	DisplayName string
	Login       string
	Email       string
	Groups      []Group
}

// RecordRef addresses one record of one list.
type RecordRef struct {
	ListName string
	ID       int
}

// AttachmentRef points at one uploaded attachment of a record.
type AttachmentRef struct {
	FileName   string
	URL        string
	MetadataID string
}

// RecordSnapshot is the last-fetched server representation of a
// record. It is replaced wholesale after every successful save, never
// partially mutated.
type RecordSnapshot struct {
	ID          int
	FieldValues map[string]string
	CreatedBy   string
	ModifiedBy  string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	Attachments []AttachmentRef
	ETag        string
}

// HistoryItem is one workflow-history entry, immutable once fetched.
type HistoryItem struct {
	Description string
	OccurredAt  time.Time
}

// PersonCandidate is one people-search result.
type PersonCandidate struct {
	ID          int
	AccountName string
	DisplayName string
	Email       string
}

type IdentityService interface {
	CurrentUser(ctx context.Context) (User, error)
	// UserByID resolves a profile for author/editor enrichment.
	UserByID(ctx context.Context, id int) (User, error)
}

type RecordService interface {
	Get(ctx context.Context, listName string, id int) (RecordSnapshot, error)
	Create(ctx context.Context, listName string, fields map[string]string) (int, error)
	Update(ctx context.Context, ref RecordRef, fields map[string]string) error
	Delete(ctx context.Context, ref RecordRef) error
	DeleteAttachment(ctx context.Context, ref RecordRef, metadataID string) error
}

type HistoryService interface {
	History(ctx context.Context, listName string, recordID int) ([]HistoryItem, error)
}

type PeopleSearch interface {
	Search(ctx context.Context, term string) ([]PersonCandidate, error)
}

// ErrorSink receives failures worth recording. Implementations must
// never panic or return: a broken sink cannot be allowed to take the
// form down with it.
type ErrorSink interface {
	LogError(msg string, keysAndValues ...any)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
