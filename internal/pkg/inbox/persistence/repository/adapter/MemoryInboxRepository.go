package adapter

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	inbox "textback/internal/pkg/inbox/application/domain"
	repository "textback/internal/pkg/inbox/persistence/repository/port"
	apperrors "textback/pkg/errors"
)

// MemoryInboxRepository is a mutex-guarded in-memory implementation of the
// repository port. It upholds the same invariants as the Postgres adapter
// (single active assignment, per-conversation sequence, tenant scoping) and
// backs the unit test suites.
type MemoryInboxRepository struct {
	mu            sync.Mutex
	businesses    map[uuid.UUID]inbox.Business
	conversations map[uuid.UUID]inbox.Conversation
	assignments   map[uuid.UUID]inbox.Assignment
	messages      map[uuid.UUID][]inbox.Message // conversationID -> ordered log
	notifications []inbox.Notification
}

func NewMemoryInboxRepository() *MemoryInboxRepository {
	return &MemoryInboxRepository{
		businesses:    make(map[uuid.UUID]inbox.Business),
		conversations: make(map[uuid.UUID]inbox.Conversation),
		assignments:   make(map[uuid.UUID]inbox.Assignment),
		messages:      make(map[uuid.UUID][]inbox.Message),
	}
}

var _ repository.InboxRepository = (*MemoryInboxRepository)(nil)

// PutBusiness seeds a tenant. Test helper; the Postgres adapter reads
// businesses provisioned by onboarding.
func (r *MemoryInboxRepository) PutBusiness(b inbox.Business) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.businesses[b.ID] = b
}

func (r *MemoryInboxRepository) GetBusiness(_ context.Context, id uuid.UUID) (*inbox.Business, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.businesses[id]
	if !ok {
		return nil, apperrors.ErrBusinessNotFound
	}
	return &b, nil
}

func (r *MemoryInboxRepository) CreateConversation(_ context.Context, c inbox.Conversation) (*inbox.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[c.ID] = c
	return &c, nil
}

func (r *MemoryInboxRepository) getLocked(businessID, id uuid.UUID) (*inbox.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, apperrors.ErrConversationNotFound
	}
	if c.BusinessID != businessID {
		return nil, apperrors.ErrTenantMismatch
	}
	return &c, nil
}

func (r *MemoryInboxRepository) GetConversation(_ context.Context, businessID, id uuid.UUID) (*inbox.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(businessID, id)
}

func (r *MemoryInboxRepository) FindOpenConversationByPhone(_ context.Context, businessID uuid.UUID, phone string) (*inbox.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *inbox.Conversation
	for id := range r.conversations {
		c := r.conversations[id]
		if c.BusinessID != businessID || c.CustomerPhone != phone || c.Status == inbox.StatusArchived {
			continue
		}
		if best == nil || c.LastMessageAt.After(best.LastMessageAt) {
			cc := c
			best = &cc
		}
	}
	return best, nil
}

func (r *MemoryInboxRepository) ListConversations(_ context.Context, businessID uuid.UUID, f repository.ConversationFilter) ([]inbox.Conversation, inbox.ConversationStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats inbox.ConversationStats
	var all []inbox.Conversation
	for id := range r.conversations {
		c := r.conversations[id]
		if c.BusinessID != businessID {
			continue
		}
		stats.Total++
		switch c.Status {
		case inbox.StatusNew:
			stats.New++
		case inbox.StatusOpen:
			stats.Open++
		case inbox.StatusResolved:
			stats.Resolved++
		case inbox.StatusArchived:
			stats.Archived++
		}
		if c.AssignedTo == nil && c.Status != inbox.StatusArchived {
			stats.Unassigned++
		}
		if !f.IncludeArchived && c.Status == inbox.StatusArchived {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *f.AssignedTo) {
			continue
		}
		if f.Priority != "" && c.Priority != f.Priority {
			continue
		}
		if f.CustomerPhone != "" && c.CustomerPhone != f.CustomerPhone {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.CustomerName), needle) &&
				!strings.Contains(c.CustomerPhone, f.Search) {
				continue
			}
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LastMessageAt.After(all[j].LastMessageAt) })

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return nil, stats, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], stats, nil
}

func (r *MemoryInboxRepository) UpdateConversation(_ context.Context, businessID, id uuid.UUID, patch repository.ConversationPatch) (*inbox.Conversation, error) {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperrors.InvalidArg("unknown priority: " + string(*patch.Priority))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.getLocked(businessID, id)
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
	r.conversations[id] = *c
	return c, nil
}

func (r *MemoryInboxRepository) Assign(_ context.Context, businessID, conversationID, userID, assignedBy uuid.UUID, notes *string) (*inbox.Conversation, *inbox.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.getLocked(businessID, conversationID)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now().UTC()
	if err := c.Assign(userID, now); err != nil {
		return nil, nil, err
	}

	for id := range r.assignments {
		a := r.assignments[id]
		if a.ConversationID == conversationID && a.CompletedAt == nil {
			at := now
			a.CompletedAt = &at
			by := assignedBy
			a.CompletedBy = &by
			r.assignments[id] = a
		}
	}

	a := inbox.Assignment{
		ID:             uuid.New(),
		ConversationID: conversationID,
		UserID:         userID,
		AssignedBy:     assignedBy,
		AssignedAt:     now,
		Notes:          notes,
	}
	r.assignments[a.ID] = a
	r.conversations[conversationID] = *c
	return c, &a, nil
}

func (r *MemoryInboxRepository) Resolve(_ context.Context, businessID, conversationID, resolvedBy uuid.UUID) (*inbox.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.getLocked(businessID, conversationID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := c.Resolve(now); err != nil {
		return nil, err
	}
	for id := range r.assignments {
		a := r.assignments[id]
		if a.ConversationID == conversationID && a.CompletedAt == nil {
			at := now
			a.CompletedAt = &at
			by := resolvedBy
			a.CompletedBy = &by
			r.assignments[id] = a
		}
	}
	r.conversations[conversationID] = *c
	return c, nil
}

func (r *MemoryInboxRepository) Reopen(_ context.Context, businessID, conversationID uuid.UUID) (*inbox.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.getLocked(businessID, conversationID)
	if err != nil {
		return nil, err
	}
	if err := c.Reopen(c.AssignedTo != nil, time.Now().UTC()); err != nil {
		return nil, err
	}
	r.conversations[conversationID] = *c
	return c, nil
}

func (r *MemoryInboxRepository) Archive(_ context.Context, businessID, conversationID, _ uuid.UUID) (*inbox.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.getLocked(businessID, conversationID)
	if err != nil {
		return nil, err
	}
	if err := c.Archive(time.Now().UTC()); err != nil {
		return nil, err
	}
	r.conversations[conversationID] = *c
	return c, nil
}

func (r *MemoryInboxRepository) ActiveAssignment(_ context.Context, businessID, conversationID uuid.UUID) (*inbox.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.getLocked(businessID, conversationID); err != nil {
		return nil, err
	}
	for id := range r.assignments {
		a := r.assignments[id]
		if a.ConversationID == conversationID && a.CompletedAt == nil {
			return &a, nil
		}
	}
	return nil, nil
}

// ActiveAssignmentCount reports how many active assignments exist for the
// conversation. Test helper for the single-active invariant.
func (r *MemoryInboxRepository) ActiveAssignmentCount(conversationID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id := range r.assignments {
		a := r.assignments[id]
		if a.ConversationID == conversationID && a.CompletedAt == nil {
			n++
		}
	}
	return n
}

func (r *MemoryInboxRepository) CompleteAssignment(_ context.Context, businessID, assignmentID, completedBy uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[assignmentID]
	if !ok || a.CompletedAt != nil {
		return apperrors.ErrAssignmentNotFound
	}
	if _, err := r.getLocked(businessID, a.ConversationID); err != nil {
		return apperrors.ErrAssignmentNotFound
	}
	now := time.Now().UTC()
	a.CompletedAt = &now
	a.CompletedBy = &completedBy
	r.assignments[assignmentID] = a
	return nil
}

func (r *MemoryInboxRepository) AnnotateAssignment(_ context.Context, businessID, assignmentID uuid.UUID, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[assignmentID]
	if !ok {
		return apperrors.ErrAssignmentNotFound
	}
	if _, err := r.getLocked(businessID, a.ConversationID); err != nil {
		return apperrors.ErrAssignmentNotFound
	}
	a.Notes = &notes
	r.assignments[assignmentID] = a
	return nil
}

func (r *MemoryInboxRepository) AppendMessage(_ context.Context, businessID uuid.UUID, m inbox.Message) (*inbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.getLocked(businessID, m.ConversationID)
	if err != nil {
		return nil, err
	}
	log := r.messages[m.ConversationID]
	var last int64
	for i := range log {
		if log[i].Seq > last {
			last = log[i].Seq
		}
	}
	m.Seq = last + 1
	if m.ReadBy == nil {
		m.ReadBy = make(map[uuid.UUID]time.Time)
	}
	r.messages[m.ConversationID] = append(log, m)

	c.LastMessageAt = m.CreatedAt
	c.UpdatedAt = m.CreatedAt
	r.conversations[c.ID] = *c
	return &m, nil
}

func (r *MemoryInboxRepository) ListMessages(_ context.Context, businessID, conversationID uuid.UUID, q repository.MessageQuery) ([]inbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getLocked(businessID, conversationID); err != nil {
		return nil, err
	}
	log := r.messages[conversationID]
	out := make([]inbox.Message, len(log))
	for i := range log {
		out[i] = log[i]
		out[i].ReadBy = make(map[uuid.UUID]time.Time, len(log[i].ReadBy))
		for k, v := range log[i].ReadBy {
			out[i].ReadBy[k] = v
		}
	}
	asc := q.SortDirection != repository.SortDesc
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !asc {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Seq < b.Seq
	})

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *MemoryInboxRepository) MarkMessagesRead(_ context.Context, businessID, conversationID, userID uuid.UUID, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getLocked(businessID, conversationID); err != nil {
		return 0, err
	}
	count := 0
	log := r.messages[conversationID]
	for i := range log {
		if log[i].ReadBy == nil {
			log[i].ReadBy = make(map[uuid.UUID]time.Time)
		}
		if _, ok := log[i].ReadBy[userID]; !ok {
			log[i].ReadBy[userID] = at
			count++
		}
	}
	return count, nil
}

func (r *MemoryInboxRepository) CreateNotification(_ context.Context, n inbox.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		e := r.notifications[i]
		if e.UserID == n.UserID && e.ConversationID == n.ConversationID && e.Type == n.Type &&
			equalMessageID(e.MessageID, n.MessageID) {
			return nil // dedupe
		}
	}
	r.notifications = append(r.notifications, n)
	return nil
}

func equalMessageID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *MemoryInboxRepository) ListNotifications(_ context.Context, businessID, userID uuid.UUID, q repository.NotificationQuery) ([]inbox.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []inbox.Notification
	for i := range r.notifications {
		n := r.notifications[i]
		if n.BusinessID != businessID || n.UserID != userID {
			continue
		}
		if q.UnreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *MemoryInboxRepository) MarkNotificationsRead(_ context.Context, businessID, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	count := 0
	for i := range r.notifications {
		n := &r.notifications[i]
		if n.BusinessID != businessID || n.UserID != userID || n.ReadAt != nil {
			continue
		}
		if len(ids) > 0 && !wanted[n.ID] {
			continue
		}
		t := at
		n.ReadAt = &t
		count++
	}
	return count, nil
}
