package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mindstash/mindstash/internal/core"
)

// MemoryRepo implements core.MemoryRepository on SQLite.
type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

const memoryColumns = `id, content, compressed_content, scope, type,
	user_id, session_id, agent_id, workspace_id, embedding,
	importance, access_count, last_accessed, created_at, updated_at,
	expires_at, tags, metadata, version, feedback`

func (r *MemoryRepo) Insert(ctx context.Context, m *core.Memory) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("%w: record without id", core.ErrInvalidInput)
	}

	emb, err := serializeVector(m.Embedding)
	if err != nil {
		return err
	}
	tags, metadata, feedback, err := marshalAux(m)
	if err != nil {
		return err
	}

	var expiresAt any
	if m.ExpiresAt != nil {
		expiresAt = m.ExpiresAt.UnixNano()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO memories (`+memoryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Content, m.CompressedContent, string(m.Scope), string(m.Type),
		m.UserID, m.SessionID, m.AgentID, m.WorkspaceID, emb,
		m.Importance, m.AccessCount, m.LastAccessed.UnixNano(),
		m.CreatedAt.UnixNano(), m.UpdatedAt.UnixNano(),
		expiresAt, tags, metadata, m.Version, feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (*core.Memory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id)

	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	return m, err
}

func (r *MemoryRepo) Update(ctx context.Context, m *core.Memory) error {
	emb, err := serializeVector(m.Embedding)
	if err != nil {
		return err
	}
	tags, metadata, feedback, err := marshalAux(m)
	if err != nil {
		return err
	}

	var expiresAt any
	if m.ExpiresAt != nil {
		expiresAt = m.ExpiresAt.UnixNano()
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE memories SET
			content = ?, compressed_content = ?, embedding = ?,
			importance = ?, access_count = ?, last_accessed = ?,
			updated_at = ?, expires_at = ?, tags = ?, metadata = ?,
			version = ?, feedback = ?
		 WHERE id = ?`,
		m.Content, m.CompressedContent, emb,
		m.Importance, m.AccessCount, m.LastAccessed.UnixNano(),
		m.UpdatedAt.UnixNano(), expiresAt, tags, metadata,
		m.Version, feedback, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete memory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MemoryRepo) ByUser(ctx context.Context, userID string) ([]*core.Memory, error) {
	return r.query(ctx,
		`SELECT `+memoryColumns+` FROM memories WHERE user_id = ?`, userID)
}

func (r *MemoryRepo) ByOwner(ctx context.Context, f core.OwnerFilter) ([]*core.Memory, error) {
	var clauses []string
	var args []any

	// A record is excluded only when it carries a different non-empty
	// value for a supplied identifier, mirroring OwnerFilter.Matches.
	add := func(col, val string) {
		if val != "" {
			clauses = append(clauses, fmt.Sprintf("(%s = '' OR %s = ?)", col, col))
			args = append(args, val)
		}
	}
	add("user_id", f.UserID)
	add("session_id", f.SessionID)
	add("agent_id", f.AgentID)
	add("workspace_id", f.WorkspaceID)

	query := `SELECT ` + memoryColumns + ` FROM memories`
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	return r.query(ctx, query, args...)
}

func (r *MemoryRepo) All(ctx context.Context) ([]*core.Memory, error) {
	return r.query(ctx, `SELECT `+memoryColumns+` FROM memories`)
}

func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear user memories: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *MemoryRepo) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM memories WHERE session_id = ? AND scope = ?`,
		sessionID, string(core.ScopeSession))
	if err != nil {
		return 0, fmt.Errorf("failed to clear session: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (r *MemoryRepo) Close() error {
	return r.db.Close()
}

func (r *MemoryRepo) query(ctx context.Context, query string, args ...any) ([]*core.Memory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("memory query failed: %w", err)
	}
	defer rows.Close()

	var out []*core.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMemory(row scannable) (*core.Memory, error) {
	var (
		m            core.Memory
		scope, typ   string
		emb          []byte
		lastAccessed int64
		createdAt    int64
		updatedAt    int64
		expiresAt    sql.NullInt64
		tags         string
		metadata     string
		feedback     sql.NullString
	)

	err := row.Scan(
		&m.ID, &m.Content, &m.CompressedContent, &scope, &typ,
		&m.UserID, &m.SessionID, &m.AgentID, &m.WorkspaceID, &emb,
		&m.Importance, &m.AccessCount, &lastAccessed, &createdAt,
		&updatedAt, &expiresAt, &tags, &metadata, &m.Version, &feedback,
	)
	if err != nil {
		return nil, err
	}

	m.Scope = core.Scope(scope)
	m.Type = core.Type(typ)
	m.LastAccessed = time.Unix(0, lastAccessed)
	m.CreatedAt = time.Unix(0, createdAt)
	m.UpdatedAt = time.Unix(0, updatedAt)
	if expiresAt.Valid {
		t := time.Unix(0, expiresAt.Int64)
		m.ExpiresAt = &t
	}

	if m.Embedding, err = deserializeVector(emb); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &m.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if feedback.Valid && feedback.String != "" {
		m.Feedback = &core.Feedback{}
		if err := json.Unmarshal([]byte(feedback.String), m.Feedback); err != nil {
			return nil, fmt.Errorf("failed to decode feedback: %w", err)
		}
	}

	return &m, nil
}

func marshalAux(m *core.Memory) (tags, metadata string, feedback any, err error) {
	tagBytes, err := json.Marshal(m.Tags)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode tags: %w", err)
	}
	if m.Tags == nil {
		tagBytes = []byte("[]")
	}

	metaBytes, err := json.Marshal(m.Metadata)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	if m.Metadata == nil {
		metaBytes = []byte("{}")
	}

	if m.Feedback != nil {
		fbBytes, err := json.Marshal(m.Feedback)
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to encode feedback: %w", err)
		}
		feedback = string(fbBytes)
	}

	return string(tagBytes), string(metaBytes), feedback, nil
}
