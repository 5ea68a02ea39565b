// Package listfile implements every collaborator port against a
// single TOML list document, so a form works end-to-end without a
// server. It backs the CLI's offline mode and the end-to-end tests.
package listfile

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/fieldglass/listform/internal/ports"
	"github.com/fieldglass/listform/internal/schema"
)

const fileMode = 0o600

// Document is the on-disk shape of a list file.
type Document struct {
	List        ListDoc      `toml:"list"`
	CurrentUser int          `toml:"current_user"`
	Users       []UserDoc    `toml:"users"`
	Records     []RecordDoc  `toml:"records"`
	History     []HistoryDoc `toml:"history"`
}

type ListDoc struct {
	ID                 string     `toml:"id"`
	Title              string     `toml:"title"`
	RequiresCheckout   bool       `toml:"requires_checkout"`
	AttachmentsEnabled bool       `toml:"attachments_enabled"`
	Fields             []FieldDoc `toml:"fields"`
}

type FieldDoc struct {
	WireName    string   `toml:"wire_name"`
	DisplayName string   `toml:"display_name"`
	Type        string   `toml:"type"`
	Format      string   `toml:"format,omitempty"`
	Required    bool     `toml:"required,omitempty"`
	ReadOnly    bool     `toml:"read_only,omitempty"`
	Hidden      bool     `toml:"hidden,omitempty"`
	Description string   `toml:"description,omitempty"`
	Default     string   `toml:"default,omitempty"`
	Choices     []string `toml:"choices,omitempty"`
	FillIn      bool     `toml:"fill_in,omitempty"`
}

type UserDoc struct {
	ID          int        `toml:"id"`
	DisplayName string     `toml:"display_name"`
	Login       string     `toml:"login"`
	Email       string     `toml:"email,omitempty"`
	Groups      []GroupDoc `toml:"groups,omitempty"`
}

type GroupDoc struct {
	ID   int    `toml:"id"`
	Name string `toml:"name"`
}

type RecordDoc struct {
	ID          int               `toml:"id"`
	CreatedBy   string            `toml:"created_by,omitempty"`
	ModifiedBy  string            `toml:"modified_by,omitempty"`
	CreatedAt   time.Time         `toml:"created_at,omitempty"`
	ModifiedAt  time.Time         `toml:"modified_at,omitempty"`
	ETag        string            `toml:"etag,omitempty"`
	Values      map[string]string `toml:"values"`
	Attachments []AttachmentDoc   `toml:"attachments,omitempty"`
}

type AttachmentDoc struct {
	FileName   string `toml:"file_name"`
	URL        string `toml:"url"`
	MetadataID string `toml:"metadata_id"`
}

type HistoryDoc struct {
	Record      int       `toml:"record"`
	Description string    `toml:"description"`
	OccurredAt  time.Time `toml:"occurred_at"`
}

// Store serves all ports from one list document. Reads and writes go
// through the file on every call, guarded by a process-local lock;
// concurrent form instances in one process see each other's saves.
type Store struct {
	path  string
	clock ports.Clock
	mu    sync.Mutex
}

var (
	_ ports.IdentityService  = (*Store)(nil)
	_ ports.RecordService    = (*Store)(nil)
	_ ports.HistoryService   = (*Store)(nil)
	_ ports.PeopleSearch     = (*Store)(nil)
	_ schema.MetadataService = (*Store)(nil)
)

func Open(path string, clock ports.Clock) (*Store, error) {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	s := &Store{path: path, clock: clock}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}, fmt.Errorf("read list file: %w", err)
	}
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse list file %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) save(doc Document) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode list file: %w", err)
	}
	return atomicWriteFile(s.path, data, fileMode)
}

// --- identity ---

func (s *Store) CurrentUser(ctx context.Context) (ports.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return ports.User{}, err
	}
	return s.userByID(doc, doc.CurrentUser)
}

func (s *Store) UserByID(ctx context.Context, id int) (ports.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return ports.User{}, err
	}
	return s.userByID(doc, id)
}

func (s *Store) userByID(doc Document, id int) (ports.User, error) {
	for _, u := range doc.Users {
		if u.ID == id {
			return userFromDoc(u), nil
		}
	}
	return ports.User{}, fmt.Errorf("user %d: %w", id, ports.ErrRecordNotFound)
}

func userFromDoc(u UserDoc) ports.User {
	groups := make([]ports.Group, 0, len(u.Groups))
	for _, g := range u.Groups {
		groups = append(groups, ports.Group{ID: g.ID, Name: g.Name})
	}
	return ports.User{ID: u.ID, DisplayName: u.DisplayName, Login: u.Login, Email: u.Email, Groups: groups}
}

// --- schema ---

func (s *Store) ListSchema(ctx context.Context, listName string) (schema.ListInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return schema.ListInfo{}, err
	}
	if !strings.EqualFold(doc.List.Title, listName) {
		return schema.ListInfo{}, fmt.Errorf("list %q: %w", listName, ports.ErrListNotFound)
	}
	info := schema.ListInfo{
		ListID:             doc.List.ID,
		Title:              doc.List.Title,
		RequiresCheckout:   doc.List.RequiresCheckout,
		AttachmentsEnabled: doc.List.AttachmentsEnabled,
	}
	for _, f := range doc.List.Fields {
		info.Fields = append(info.Fields, schema.Entry{
			WireName:     f.WireName,
			DisplayName:  f.DisplayName,
			TypeName:     f.Type,
			Format:       f.Format,
			Required:     f.Required,
			ReadOnly:     f.ReadOnly,
			Hidden:       f.Hidden,
			Description:  f.Description,
			DefaultValue: f.Default,
			Choices:      f.Choices,
			FillIn:       f.FillIn,
		})
	}
	return info, nil
}

// --- records ---

func (s *Store) Get(ctx context.Context, listName string, id int) (ports.RecordSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return ports.RecordSnapshot{}, err
	}
	for _, r := range doc.Records {
		if r.ID == id {
			return snapshotFromDoc(r), nil
		}
	}
	return ports.RecordSnapshot{}, fmt.Errorf("record %d: %w", id, ports.ErrRecordNotFound)
}

func snapshotFromDoc(r RecordDoc) ports.RecordSnapshot {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	attachments := make([]ports.AttachmentRef, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		attachments = append(attachments, ports.AttachmentRef{
			FileName: a.FileName, URL: a.URL, MetadataID: a.MetadataID,
		})
	}
	return ports.RecordSnapshot{
		ID:          r.ID,
		FieldValues: values,
		CreatedBy:   r.CreatedBy,
		ModifiedBy:  r.ModifiedBy,
		CreatedAt:   r.CreatedAt,
		ModifiedAt:  r.ModifiedAt,
		Attachments: attachments,
		ETag:        r.ETag,
	}
}

func (s *Store) Create(ctx context.Context, listName string, fields map[string]string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	id := 0
	for _, r := range doc.Records {
		if r.ID > id {
			id = r.ID
		}
	}
	id++
	now := s.clock.Now().UTC()
	author := s.encodeUser(doc, doc.CurrentUser)
	doc.Records = append(doc.Records, RecordDoc{
		ID:         id,
		CreatedBy:  author,
		ModifiedBy: author,
		CreatedAt:  now,
		ModifiedAt: now,
		ETag:       uuid.NewString(),
		Values:     copyValues(fields),
	})
	if err := s.save(doc); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, ref ports.RecordRef, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i, r := range doc.Records {
		if r.ID != ref.ID {
			continue
		}
		if r.Values == nil {
			r.Values = map[string]string{}
		}
		for k, v := range fields {
			r.Values[k] = v
		}
		r.ModifiedAt = s.clock.Now().UTC()
		r.ModifiedBy = s.encodeUser(doc, doc.CurrentUser)
		r.ETag = uuid.NewString()
		doc.Records[i] = r
		return s.save(doc)
	}
	return fmt.Errorf("record %d: %w", ref.ID, ports.ErrRecordNotFound)
}

func (s *Store) Delete(ctx context.Context, ref ports.RecordRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i, r := range doc.Records {
		if r.ID == ref.ID {
			doc.Records = append(doc.Records[:i], doc.Records[i+1:]...)
			return s.save(doc)
		}
	}
	return fmt.Errorf("record %d: %w", ref.ID, ports.ErrRecordNotFound)
}

func (s *Store) DeleteAttachment(ctx context.Context, ref ports.RecordRef, metadataID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i, r := range doc.Records {
		if r.ID != ref.ID {
			continue
		}
		for j, a := range r.Attachments {
			if a.MetadataID == metadataID {
				r.Attachments = append(r.Attachments[:j], r.Attachments[j+1:]...)
				doc.Records[i] = r
				return s.save(doc)
			}
		}
		return fmt.Errorf("attachment %s: %w", metadataID, ports.ErrRecordNotFound)
	}
	return fmt.Errorf("record %d: %w", ref.ID, ports.ErrRecordNotFound)
}

// AddAttachment registers an uploaded file on a record and returns
// its metadata id.
func (s *Store) AddAttachment(ctx context.Context, ref ports.RecordRef, fileName, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return "", err
	}
	for i, r := range doc.Records {
		if r.ID != ref.ID {
			continue
		}
		metadataID := uuid.NewString()
		r.Attachments = append(r.Attachments, AttachmentDoc{
			FileName: fileName, URL: url, MetadataID: metadataID,
		})
		doc.Records[i] = r
		if err := s.save(doc); err != nil {
			return "", err
		}
		return metadataID, nil
	}
	return "", fmt.Errorf("record %d: %w", ref.ID, ports.ErrRecordNotFound)
}

// --- history ---

func (s *Store) History(ctx context.Context, listName string, recordID int) ([]ports.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	var items []ports.HistoryItem
	for _, h := range doc.History {
		if h.Record == recordID {
			items = append(items, ports.HistoryItem{Description: h.Description, OccurredAt: h.OccurredAt})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OccurredAt.Before(items[j].OccurredAt) })
	return items, nil
}

// --- people search ---

func (s *Store) Search(ctx context.Context, term string) ([]ports.PersonCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil, nil
	}
	var out []ports.PersonCandidate
	for _, u := range doc.Users {
		if strings.Contains(strings.ToLower(u.DisplayName), needle) ||
			strings.Contains(strings.ToLower(u.Login), needle) {
			out = append(out, ports.PersonCandidate{
				ID:          u.ID,
				AccountName: u.Login,
				DisplayName: u.DisplayName,
				Email:       u.Email,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (s *Store) encodeUser(doc Document, id int) string {
	for _, u := range doc.Users {
		if u.ID == id {
			return fmt.Sprintf("%d;#%s", u.ID, u.Login)
		}
	}
	return fmt.Sprintf("%d;#unknown", id)
}

func copyValues(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
