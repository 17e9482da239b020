package item

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	ferrors "github.com/filehook/filehook/internal/errors"
)

// SQLiteService implements Service using a SQLite database.
type SQLiteService struct {
	db     *sql.DB
	logger *zap.Logger

	mu sync.Mutex // serializes writers

	hooksMu    sync.RWMutex
	preCopy    map[Type][]PreCopyHook
	postDelete map[Type][]PostDeleteHook
}

// NewSQLiteService opens (or creates) the item database at dbPath.
func NewSQLiteService(dbPath string, logger *zap.Logger) (*SQLiteService, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("item: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	svc := &SQLiteService{
		db:         db,
		logger:     logger,
		preCopy:    make(map[Type][]PreCopyHook),
		postDelete: make(map[Type][]PostDeleteHook),
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("item: failed to initialize schema: %w", err)
	}

	return svc, nil
}

func (s *SQLiteService) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id         TEXT PRIMARY KEY,
		type       TEXT NOT NULL,
		title      TEXT NOT NULL,
		parent_id  TEXT,
		payload    TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the item database.
func (s *SQLiteService) Close() error {
	return s.db.Close()
}

// OnPreCopy registers a pre-copy hook for items of type t.
func (s *SQLiteService) OnPreCopy(t Type, hook PreCopyHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.preCopy[t] = append(s.preCopy[t], hook)
}

// OnPostDelete registers a post-delete hook for items of type t.
func (s *SQLiteService) OnPostDelete(t Type, hook PostDeleteHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.postDelete[t] = append(s.postDelete[t], hook)
}

// Create persists a new item, assigning identity and timestamps.
func (s *SQLiteService) Create(ctx context.Context, actor string, it *Item) (*Item, error) {
	if it.Payload == nil {
		return nil, ferrors.NewValidationError(ferrors.CodeInvalidPayload, "item payload is required")
	}
	if it.Payload.payloadType() != it.Type {
		return nil, ferrors.NewValidationError(ferrors.CodeInvalidPayload,
			fmt.Sprintf("payload variant %s does not match item type %s", it.Payload.payloadType(), it.Type))
	}

	cp := *it
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	if err := s.insert(ctx, &cp); err != nil {
		return nil, err
	}

	s.logger.Debug("item created",
		zap.String("id", cp.ID.String()),
		zap.String("type", string(cp.Type)),
		zap.String("actor", actor))

	return &cp, nil
}

func (s *SQLiteService) insert(ctx context.Context, it *Item) error {
	payload, err := marshalPayload(it.Payload)
	if err != nil {
		return ferrors.NewInternalError("failed to serialize item payload", err)
	}

	var parentID interface{}
	if it.ParentID != nil {
		parentID = it.ParentID.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, type, title, parent_id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.ID.String(), string(it.Type), it.Title, parentID, string(payload),
		it.CreatedAt.UnixMilli(), it.UpdatedAt.UnixMilli())
	if err != nil {
		return ferrors.Wrap(ferrors.ErrCategoryItem, ferrors.CodeItemConflict, "failed to insert item", err)
	}
	return nil
}

// Get returns the item with the given id.
func (s *SQLiteService) Get(ctx context.Context, actor string, id uuid.UUID) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, title, parent_id, payload, created_at, updated_at
		FROM items WHERE id = ?`, id.String())
	return scanItem(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		idStr, typeStr, title, payload string
		parentID                       sql.NullString
		createdAt, updatedAt           int64
	)
	if err := row.Scan(&idStr, &typeStr, &title, &parentID, &payload, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ferrors.NewItemError(ferrors.CodeItemNotFound, "item not found")
		}
		return nil, ferrors.NewInternalError("failed to read item", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, ferrors.NewInternalError("corrupt item id", err)
	}

	it := &Item{
		ID:        id,
		Type:      Type(typeStr),
		Title:     title,
		CreatedAt: time.UnixMilli(createdAt).UTC(),
		UpdatedAt: time.UnixMilli(updatedAt).UTC(),
	}

	if parentID.Valid {
		pid, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, ferrors.NewInternalError("corrupt parent id", err)
		}
		it.ParentID = &pid
	}

	it.Payload, err = unmarshalPayload(it.Type, []byte(payload))
	if err != nil {
		return nil, ferrors.NewInternalError("corrupt item payload", err)
	}

	return it, nil
}

// ListByParent returns items under the given parent, or root items when
// parentID is nil.
func (s *SQLiteService) ListByParent(ctx context.Context, actor string, parentID *uuid.UUID) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID != nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, title, parent_id, payload, created_at, updated_at
			FROM items WHERE parent_id = ? ORDER BY created_at`, parentID.String())
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, title, parent_id, payload, created_at, updated_at
			FROM items WHERE parent_id IS NULL ORDER BY created_at`)
	}
	if err != nil {
		return nil, ferrors.NewInternalError("failed to list items", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.NewInternalError("failed to list items", err)
	}
	return items, nil
}

// UpdatePayload replaces the item's payload. The payload variant must match
// the item's type.
func (s *SQLiteService) UpdatePayload(ctx context.Context, actor string, id uuid.UUID, payload Payload) (*Item, error) {
	it, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if payload.payloadType() != it.Type {
		return nil, ferrors.NewValidationError(ferrors.CodeInvalidPayload,
			fmt.Sprintf("payload variant %s does not match item type %s", payload.payloadType(), it.Type))
	}

	data, err := marshalPayload(payload)
	if err != nil {
		return nil, ferrors.NewInternalError("failed to serialize item payload", err)
	}

	now := time.Now().UTC()

	s.mu.Lock()
	_, err = s.db.ExecContext(ctx, `
		UPDATE items SET payload = ?, updated_at = ? WHERE id = ?`,
		string(data), now.UnixMilli(), id.String())
	s.mu.Unlock()
	if err != nil {
		return nil, ferrors.NewInternalError("failed to update item", err)
	}

	it.Payload = payload
	it.UpdatedAt = now
	return it, nil
}

// Copy duplicates the item under parentID. Registered pre-copy hooks for the
// item's type run first and may mutate the in-flight copy; a hook error
// aborts the operation before anything is persisted.
func (s *SQLiteService) Copy(ctx context.Context, actor string, id uuid.UUID, parentID *uuid.UUID) (*Item, error) {
	src, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	dst := src.Clone()
	if parentID != nil {
		pid := *parentID
		dst.ParentID = &pid
	}
	now := time.Now().UTC()
	dst.CreatedAt = now
	dst.UpdatedAt = now

	s.hooksMu.RLock()
	hooks := s.preCopy[src.Type]
	s.hooksMu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, src, dst, actor); err != nil {
			return nil, err
		}
	}

	if err := s.insert(ctx, dst); err != nil {
		return nil, err
	}

	s.logger.Debug("item copied",
		zap.String("source", src.ID.String()),
		zap.String("copy", dst.ID.String()),
		zap.String("actor", actor))

	return dst, nil
}

// Delete removes the item record, then runs registered post-delete hooks for
// the item's type. The record removal has committed by the time hooks run.
func (s *SQLiteService) Delete(ctx context.Context, actor string, id uuid.UUID) error {
	it, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id.String())
	s.mu.Unlock()
	if err != nil {
		return ferrors.NewInternalError("failed to delete item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ferrors.NewItemError(ferrors.CodeItemNotFound, "item not found")
	}

	s.logger.Debug("item deleted",
		zap.String("id", id.String()),
		zap.String("actor", actor))

	s.hooksMu.RLock()
	hooks := s.postDelete[it.Type]
	s.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, it, actor)
	}

	return nil
}
