package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// nilMessageID stands in for NULL message ids inside the notification
// dedupe index expression.
const nilMessageID = "00000000-0000-0000-0000-000000000000"

type PgInboxRepository struct {
	pool *pgxpool.Pool
}

func NewPgInboxRepository(pool *pgxpool.Pool) *PgInboxRepository {
	return &PgInboxRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.InboxRepository = (*PgInboxRepository)(nil)

const conversationColumns = `id, business_id, customer_phone, customer_name, customer_id,
	source, status, priority, assigned_to, assigned_at, last_message_at,
	created_at, updated_at, resolved_at, archived_at`

func scanConversation(row pgx.Row) (*inbox.Conversation, error) {
	var c inbox.Conversation
	err := row.Scan(
		&c.ID, &c.BusinessID, &c.CustomerPhone, &c.CustomerName, &c.CustomerID,
		&c.Source, &c.Status, &c.Priority, &c.AssignedTo, &c.AssignedAt, &c.LastMessageAt,
		&c.CreatedAt, &c.UpdatedAt, &c.ResolvedAt, &c.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgInboxRepository) GetBusiness(ctx context.Context, id uuid.UUID) (*inbox.Business, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	var b inbox.Business
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, phone, tier FROM businesses WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Phone, &b.Tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrBusinessNotFound
	}
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return &b, nil
}

func (r *PgInboxRepository) CreateConversation(ctx context.Context, c inbox.Conversation) (*inbox.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (
			id, business_id, customer_phone, customer_name, customer_id,
			source, status, priority, assigned_to, assigned_at, last_message_at,
			created_at, updated_at, resolved_at, archived_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, c.ID, c.BusinessID, c.CustomerPhone, c.CustomerName, c.CustomerID,
		c.Source, c.Status, c.Priority, c.AssignedTo, c.AssignedAt, c.LastMessageAt,
		c.CreatedAt, c.UpdatedAt, c.ResolvedAt, c.ArchivedAt)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return &c, nil
}

// getConversationTx loads a conversation and verifies tenant ownership.
// Cross-tenant access is an authorization error, not an empty result.
func getConversationTx(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, businessID, id uuid.UUID, forUpdate bool) (*inbox.Conversation, error) {
	sql := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	c, err := scanConversation(q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrConversationNotFound
	}
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	if c.BusinessID != businessID {
		return nil, apperrors.ErrTenantMismatch
	}
	return c, nil
}

func (r *PgInboxRepository) GetConversation(ctx context.Context, businessID, id uuid.UUID) (*inbox.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	return getConversationTx(ctx, r.pool, businessID, id, false)
}

func (r *PgInboxRepository) FindOpenConversationByPhone(ctx context.Context, businessID uuid.UUID, phone string) (*inbox.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	c, err := scanConversation(r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE business_id = $1 AND customer_phone = $2 AND status <> 'archived'
		ORDER BY last_message_at DESC
		LIMIT 1
	`, businessID, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return c, nil
}

func (r *PgInboxRepository) ListConversations(ctx context.Context, businessID uuid.UUID, f repository.ConversationFilter) ([]inbox.Conversation, inbox.ConversationStats, error) {
	var stats inbox.ConversationStats
	if r == nil || r.pool == nil {
		return nil, stats, errors.New("PgInboxRepository: nil pool")
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	sql := `SELECT ` + conversationColumns + ` FROM conversations WHERE business_id = $1`
	args := []any{businessID}
	if !f.IncludeArchived {
		sql += ` AND status <> 'archived'`
	}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if f.AssignedTo != nil {
		args = append(args, *f.AssignedTo)
		sql += fmt.Sprintf(` AND assigned_to = $%d`, len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		sql += fmt.Sprintf(` AND priority = $%d`, len(args))
	}
	if f.CustomerPhone != "" {
		args = append(args, f.CustomerPhone)
		sql += fmt.Sprintf(` AND customer_phone = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		sql += fmt.Sprintf(` AND (customer_name ILIKE $%d OR customer_phone ILIKE $%d)`, len(args), len(args))
	}
	args = append(args, f.Limit, f.Offset)
	sql += fmt.Sprintf(` ORDER BY last_message_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, stats, apperrors.ErrPersistenceFailed(err)
	}
	defer rows.Close()

	var convs []inbox.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, stats, apperrors.ErrPersistenceFailed(err)
		}
		convs = append(convs, *c)
	}
	if rows.Err() != nil {
		return nil, stats, apperrors.ErrPersistenceFailed(rows.Err())
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'new'),
		       COUNT(*) FILTER (WHERE status = 'open'),
		       COUNT(*) FILTER (WHERE status = 'resolved'),
		       COUNT(*) FILTER (WHERE status = 'archived'),
		       COUNT(*) FILTER (WHERE assigned_to IS NULL AND status <> 'archived')
		FROM conversations WHERE business_id = $1
	`, businessID).Scan(&stats.Total, &stats.New, &stats.Open, &stats.Resolved, &stats.Archived, &stats.Unassigned)
	if err != nil {
		return nil, stats, apperrors.ErrPersistenceFailed(err)
	}
	return convs, stats, nil
}

func (r *PgInboxRepository) UpdateConversation(ctx context.Context, businessID, id uuid.UUID, patch repository.ConversationPatch) (*inbox.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperrors.InvalidArg("unknown priority: " + string(*patch.Priority))
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer tx.Rollback(ctx)

	c, err := getConversationTx(ctx, tx, businessID, id, true)
	if err != nil {
		return nil, err
	}
	if patch.CustomerName != nil {
		c.CustomerName = *patch.CustomerName
	}
	if patch.CustomerID != nil {
		c.CustomerID = patch.CustomerID
	}
	if patch.Priority != nil {
		c.Priority = *patch.Priority
	}
	c.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET customer_name = $2, customer_id = $3, priority = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.CustomerName, c.CustomerID, c.Priority, c.UpdatedAt)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return c, nil
}

func (r *PgInboxRepository) Assign(ctx context.Context, businessID, conversationID, userID, assignedBy uuid.UUID, notes *string) (*inbox.Conversation, *inbox.Assignment, error) {
	if r == nil || r.pool == nil {
		return nil, nil, errors.New("PgInboxRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, apperrors.ErrPersistenceFailed(err)
	}
	defer tx.Rollback(ctx)

	// Row lock serializes concurrent assigns on the same conversation so the
	// complete-prior/insert-new sequence below cannot interleave.
	c, err := getConversationTx(ctx, tx, businessID, conversationID, true)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	if err := c.Assign(userID, now); err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE assignments SET completed_at = $2, completed_by = $3
		WHERE conversation_id = $1 AND completed_at IS NULL
	`, conversationID, now, assignedBy)
	if err != nil {
		return nil, nil, apperrors.ErrPersistenceFailed(err)
	}

	a := inbox.Assignment{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
		AssignedBy:     assignedBy,
		AssignedAt:     now,
		Notes:          notes,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO assignments (id, conversation_id, user_id, assigned_by, assigned_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.ConversationID, a.UserID, a.AssignedBy, a.AssignedAt, a.Notes)
	if err != nil {
		return nil, nil, apperrors.ErrPersistenceFailed(err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET status = $2, assigned_to = $3, assigned_at = $4, resolved_at = NULL, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Status, c.AssignedTo, c.AssignedAt, c.UpdatedAt)
	if err != nil {
		return nil, nil, apperrors.ErrPersistenceFailed(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, apperrors.ErrPersistenceFailed(err)
	}
	return c, &a, nil
}

func (r *PgInboxRepository) Resolve(ctx context.Context, businessID, conversationID, resolvedBy uuid.UUID) (*inbox.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer tx.Rollback(ctx)

	c, err := getConversationTx(ctx, tx, businessID, conversationID, true)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := c.Resolve(now); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE assignments SET completed_at = $2, completed_by = $3
		WHERE conversation_id = $1 AND completed_at IS NULL
	`, conversationID, now, resolvedBy)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	_, err = tx.Exec(ctx, `
		UPDATE conversations SET status = $2, resolved_at = $3, updated_at = $4 WHERE id = $1
	`, c.ID, c.Status, c.ResolvedAt, c.UpdatedAt)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return c, nil
}

func (r *PgInboxRepository) Reopen(ctx context.Context, businessID, conversationID uuid.UUID) (*inbox.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer tx.Rollback(ctx)

	c, err := getConversationTx(ctx, tx, businessID, conversationID, true)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := c.Reopen(c.AssignedTo != nil, now); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE conversations
		SET status = $2, resolved_at = NULL, assigned_to = $3, assigned_at = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Status, c.AssignedTo, c.AssignedAt, c.UpdatedAt)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return c, nil
}

func (r *PgInboxRepository) Archive(ctx context.Context, businessID, conversationID, archivedBy uuid.UUID) (*inbox.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	_ = archivedBy // recorded via audit payloads, not on the row
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer tx.Rollback(ctx)

	c, err := getConversationTx(ctx, tx, businessID, conversationID, true)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := c.Archive(now); err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE conversations SET status = $2, archived_at = $3, updated_at = $4 WHERE id = $1
	`, c.ID, c.Status, c.ArchivedAt, c.UpdatedAt)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return c, nil
}

const assignmentColumns = `id, conversation_id, user_id, assigned_by, assigned_at, completed_at, completed_by, notes`

func (r *PgInboxRepository) ActiveAssignment(ctx context.Context, businessID, conversationID uuid.UUID) (*inbox.Assignment, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	if _, err := r.GetConversation(ctx, businessID, conversationID); err != nil {
		return nil, err
	}
	var a inbox.Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE conversation_id = $1 AND completed_at IS NULL
	`, conversationID).Scan(&a.ID, &a.ConversationID, &a.UserID, &a.AssignedBy, &a.AssignedAt, &a.CompletedAt, &a.CompletedBy, &a.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return &a, nil
}

func (r *PgInboxRepository) CompleteAssignment(ctx context.Context, businessID, assignmentID, completedBy uuid.UUID) error {
	if r == nil || r.pool == nil {
		return errors.New("PgInboxRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE assignments a SET completed_at = $3, completed_by = $4
		FROM conversations c
		WHERE a.id = $1 AND a.conversation_id = c.id AND c.business_id = $2
		  AND a.completed_at IS NULL
	`, assignmentID, businessID, time.Now().UTC(), completedBy)
	if err != nil {
		return apperrors.ErrPersistenceFailed(err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

func (r *PgInboxRepository) AnnotateAssignment(ctx context.Context, businessID, assignmentID uuid.UUID, notes string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgInboxRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE assignments a SET notes = $3
		FROM conversations c
		WHERE a.id = $1 AND a.conversation_id = c.id AND c.business_id = $2
	`, assignmentID, businessID, notes)
	if err != nil {
		return apperrors.ErrPersistenceFailed(err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

func (r *PgInboxRepository) AppendMessage(ctx context.Context, businessID uuid.UUID, m inbox.Message) (*inbox.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer tx.Rollback(ctx)

	// Lock the conversation so the sequence counter cannot race.
	if _, err := getConversationTx(ctx, tx, businessID, m.ConversationID, true); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE conversation_id = $1
	`, m.ConversationID).Scan(&m.Seq)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender, sender_type, message_type, content, metadata, seq, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, m.ID, m.ConversationID, m.Sender, m.SenderType, m.MessageType, m.Content, m.Metadata, m.Seq, m.CreatedAt)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET last_message_at = $2, updated_at = $2 WHERE id = $1
	`, m.ConversationID, m.CreatedAt)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	return &m, nil
}

func (r *PgInboxRepository) ListMessages(ctx context.Context, businessID, conversationID uuid.UUID, q repository.MessageQuery) ([]inbox.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	if _, err := r.GetConversation(ctx, businessID, conversationID); err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	order := `ASC`
	if q.SortDirection == repository.SortDesc {
		order = `DESC`
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender, sender_type, message_type, content, metadata, seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at `+order+`, seq `+order+`
		LIMIT $2 OFFSET $3
	`, conversationID, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer rows.Close()

	var msgs []inbox.Message
	ids := make([]uuid.UUID, 0, q.Limit)
	for rows.Next() {
		var m inbox.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.SenderType, &m.MessageType, &m.Content, &m.Metadata, &m.Seq, &m.CreatedAt); err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
		m.ReadBy = make(map[uuid.UUID]time.Time)
		msgs = append(msgs, m)
		ids = append(ids, m.ID)
	}
	if rows.Err() != nil {
		return nil, apperrors.ErrPersistenceFailed(rows.Err())
	}
	if len(ids) == 0 {
		return msgs, nil
	}

	readRows, err := r.pool.Query(ctx, `
		SELECT message_id, user_id, read_at FROM message_reads WHERE message_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer readRows.Close()

	byID := make(map[uuid.UUID]*inbox.Message, len(msgs))
	for i := range msgs {
		byID[msgs[i].ID] = &msgs[i]
	}
	for readRows.Next() {
		var (
			msgID  uuid.UUID
			userID uuid.UUID
			readAt time.Time
		)
		if err := readRows.Scan(&msgID, &userID, &readAt); err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
		if m := byID[msgID]; m != nil {
			m.ReadBy[userID] = readAt
		}
	}
	if readRows.Err() != nil {
		return nil, apperrors.ErrPersistenceFailed(readRows.Err())
	}
	return msgs, nil
}

func (r *PgInboxRepository) MarkMessagesRead(ctx context.Context, businessID, conversationID, userID uuid.UUID, at time.Time) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgInboxRepository: nil pool")
	}
	if _, err := r.GetConversation(ctx, businessID, conversationID); err != nil {
		return 0, err
	}
	ct, err := r.pool.Exec(ctx, `
		INSERT INTO message_reads (message_id, user_id, read_at)
		SELECT m.id, $2, $3 FROM messages m
		WHERE m.conversation_id = $1
		ON CONFLICT (message_id, user_id) DO NOTHING
	`, conversationID, userID, at)
	if err != nil {
		return 0, apperrors.ErrPersistenceFailed(err)
	}
	return int(ct.RowsAffected()), nil
}

func (r *PgInboxRepository) CreateNotification(ctx context.Context, n inbox.Notification) error {
	if r == nil || r.pool == nil {
		return errors.New("PgInboxRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, business_id, conversation_id, message_id, type, payload, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id, conversation_id, COALESCE(message_id, '`+nilMessageID+`'::uuid), type) DO NOTHING
	`, n.ID, n.UserID, n.BusinessID, n.ConversationID, n.MessageID, n.Type, n.Payload, n.CreatedAt)
	if err != nil {
		return apperrors.ErrNotificationFailed(err)
	}
	return nil
}

func (r *PgInboxRepository) ListNotifications(ctx context.Context, businessID, userID uuid.UUID, q repository.NotificationQuery) ([]inbox.Notification, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgInboxRepository: nil pool")
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sql := `
		SELECT id, user_id, business_id, conversation_id, message_id, type, payload, created_at, read_at
		FROM notifications
		WHERE business_id = $1 AND user_id = $2`
	if q.UnreadOnly {
		sql += ` AND read_at IS NULL`
	}
	sql += ` ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, sql, businessID, userID, q.Limit, q.Offset)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed(err)
	}
	defer rows.Close()

	var out []inbox.Notification
	for rows.Next() {
		var n inbox.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.BusinessID, &n.ConversationID, &n.MessageID, &n.Type, &n.Payload, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, apperrors.ErrPersistenceFailed(err)
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, apperrors.ErrPersistenceFailed(rows.Err())
	}
	return out, nil
}

func (r *PgInboxRepository) MarkNotificationsRead(ctx context.Context, businessID, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgInboxRepository: nil pool")
	}
	sql := `UPDATE notifications SET read_at = $3 WHERE business_id = $1 AND user_id = $2 AND read_at IS NULL`
	args := []any{businessID, userID, at}
	if len(ids) > 0 {
		args = append(args, ids)
		sql += fmt.Sprintf(` AND id = ANY($%d)`, len(args))
	}
	ct, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, apperrors.ErrPersistenceFailed(err)
	}
	return int(ct.RowsAffected()), nil
}
