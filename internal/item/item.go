// Package item provides the item/task record system: typed item records,
// a sqlite-backed store, and lifecycle hook registration for copy and
// delete operations.
package item

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type tags an item with its kind. Each type carries exactly one payload
// variant.
type Type string

const (
	// TypeFile marks items backed by an object in the store.
	TypeFile Type = "file"
	// TypeNote marks plain text items with no backing object.
	TypeNote Type = "note"
)

// FileDescriptor ties an item to an object store key plus lazily cached
// size and content type. Size and ContentType are either both present or
// both absent: they are filled together from one head-request result.
type FileDescriptor struct {
	DisplayName string  `json:"displayName"`
	Key         string  `json:"key"`
	Size        *int64  `json:"size,omitempty"`
	ContentType *string `json:"contentType,omitempty"`
}

// Resolved reports whether size and content type have been filled in.
func (d *FileDescriptor) Resolved() bool {
	return d.Size != nil && d.ContentType != nil
}

// Payload is the typed metadata variant carried by an item.
type Payload interface {
	payloadType() Type
}

// FilePayload is the payload variant of stored-file items.
type FilePayload struct {
	File FileDescriptor `json:"file"`
}

func (*FilePayload) payloadType() Type { return TypeFile }

// NotePayload is the payload variant of note items.
type NotePayload struct {
	Text string `json:"text"`
}

func (*NotePayload) payloadType() Type { return TypeNote }

// Item is one record in the item store.
type Item struct {
	ID        uuid.UUID
	Type      Type
	Title     string
	ParentID  *uuid.UUID
	Payload   Payload
	CreatedAt time.Time
	UpdatedAt time.Time
}

// File returns the item's file descriptor when the item is a stored-file
// item. Items of other types return false even if their payload happens to
// be similarly shaped.
func (it *Item) File() (*FileDescriptor, bool) {
	if it.Type != TypeFile {
		return nil, false
	}
	fp, ok := it.Payload.(*FilePayload)
	if !ok {
		return nil, false
	}
	return &fp.File, true
}

// Clone returns a deep copy of the item with a fresh identity.
func (it *Item) Clone() *Item {
	cp := *it
	cp.ID = uuid.New()
	if it.ParentID != nil {
		pid := *it.ParentID
		cp.ParentID = &pid
	}
	cp.Payload = clonePayload(it.Payload)
	return &cp
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case *FilePayload:
		cp := *v
		if v.File.Size != nil {
			size := *v.File.Size
			cp.File.Size = &size
		}
		if v.File.ContentType != nil {
			ct := *v.File.ContentType
			cp.File.ContentType = &ct
		}
		return &cp
	case *NotePayload:
		cp := *v
		return &cp
	default:
		return p
	}
}

// PreCopyHook runs before a copied item record is persisted. src is the
// item being copied, dst the in-flight copy; the hook may mutate dst. An
// error aborts the whole copy operation.
type PreCopyHook func(ctx context.Context, src, dst *Item, actor string) error

// PostDeleteHook runs after an item record deletion has committed. The
// deletion is irreversible at this point, so the hook cannot fail it.
type PostDeleteHook func(ctx context.Context, deleted *Item, actor string)

// Service is the item system interface consumed by the synchronization
// core and the HTTP layer.
type Service interface {
	// Create persists a new item, assigning identity and timestamps.
	Create(ctx context.Context, actor string, it *Item) (*Item, error)

	// Get returns the item with the given id.
	Get(ctx context.Context, actor string, id uuid.UUID) (*Item, error)

	// UpdatePayload replaces the item's payload. The payload variant must
	// match the item's type.
	UpdatePayload(ctx context.Context, actor string, id uuid.UUID, payload Payload) (*Item, error)

	// Copy duplicates the item under parentID, running registered pre-copy
	// hooks before the copy is persisted.
	Copy(ctx context.Context, actor string, id uuid.UUID, parentID *uuid.UUID) (*Item, error)

	// Delete removes the item record, then runs registered post-delete
	// hooks. Hook outcomes do not affect the result.
	Delete(ctx context.Context, actor string, id uuid.UUID) error

	// OnPreCopy registers a pre-copy hook for items of type t.
	OnPreCopy(t Type, hook PreCopyHook)

	// OnPostDelete registers a post-delete hook for items of type t.
	OnPostDelete(t Type, hook PostDeleteHook)
}

// marshalPayload serializes a payload for storage.
func marshalPayload(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

// unmarshalPayload deserializes a stored payload by item type tag.
func unmarshalPayload(t Type, data []byte) (Payload, error) {
	switch t {
	case TypeFile:
		var p FilePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	case TypeNote:
		var p NotePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown item type: %s", t)
	}
}
