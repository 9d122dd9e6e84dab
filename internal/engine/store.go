package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/pkg/log"
)

// typeImportance is the default importance per memory type when the
// caller does not supply one.
var typeImportance = map[core.Type]float64{
	core.TypeSkill:        0.9,
	core.TypeDecision:     0.85,
	core.TypePreference:   0.8,
	core.TypeWorkflow:     0.75,
	core.TypeFact:         0.7,
	core.TypeFeedback:     0.7,
	core.TypeContext:      0.6,
	core.TypeConversation: 0.4,
}

// salienceWords nudge default importance upward when present.
var salienceWords = []string{"important", "critical", "key", "essential"}

const longContentChars = 100

// Store creates a memory record: embeds and compresses the content,
// derives a default importance when none is given, and indexes the
// record by its owner fields. The operation is atomic — either the full
// record with its index entries exists afterwards, or nothing does.
func (e *Engine) Store(ctx context.Context, content string, opts core.StoreOptions) (*core.Memory, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", core.ErrInvalidInput)
	}
	if !opts.Scope.Valid() {
		return nil, fmt.Errorf("%w: unknown scope %q", core.ErrInvalidInput, opts.Scope)
	}
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", core.ErrInvalidInput, opts.Type)
	}
	if opts.Importance != nil && (*opts.Importance < 0 || *opts.Importance > 1) {
		return nil, fmt.Errorf("%w: importance must be in [0,1]", core.ErrInvalidInput)
	}
	if opts.ExpiresIn < 0 {
		return nil, fmt.Errorf("%w: expiry must be in the future", core.ErrInvalidInput)
	}

	// Embedding happens before any lock so a slow provider never blocks
	// unrelated engine calls.
	embeddingVec, err := e.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	importance := defaultImportance(opts.Type, content)
	if opts.Importance != nil {
		importance = *opts.Importance
	}

	m := &core.Memory{
		ID:                uuid.NewString(),
		Content:           content,
		CompressedContent: e.compressor.Compress(content),
		Scope:             opts.Scope,
		Type:              opts.Type,
		UserID:            opts.UserID,
		SessionID:         opts.SessionID,
		AgentID:           opts.AgentID,
		WorkspaceID:       opts.WorkspaceID,
		Embedding:         embeddingVec,
		Importance:        importance,
		LastAccessed:      now,
		CreatedAt:         now,
		UpdatedAt:         now,
		Tags:              opts.Tags,
		Metadata:          opts.Metadata,
		Version:           1,
	}
	if opts.ExpiresIn > 0 {
		exp := now.Add(opts.ExpiresIn)
		m.ExpiresAt = &exp
	}

	if err := e.repo.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("id", m.ID).
		Str("scope", string(m.Scope)).
		Str("type", string(m.Type)).
		Float64("importance", m.Importance).
		Msg("stored memory")

	return m, nil
}

// defaultImportance starts from the per-type weight and nudges it for
// long content, digits, and salience words, capped at 1.0.
func defaultImportance(t core.Type, content string) float64 {
	importance, ok := typeImportance[t]
	if !ok {
		importance = 0.5
	}

	if len(content) > longContentChars {
		importance += 0.05
	}
	if strings.ContainsAny(content, "0123456789") {
		importance += 0.05
	}
	lower := strings.ToLower(content)
	for _, w := range salienceWords {
		if strings.Contains(lower, w) {
			importance += 0.10
			break
		}
	}

	if importance > 1 {
		importance = 1
	}
	return importance
}
