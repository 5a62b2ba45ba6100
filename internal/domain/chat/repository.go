package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Repository handles all DB operations for the chat domain
type Repository interface {
	// Conversations
	FindConversation(ctx context.Context, assetID, userA, userB int64) (*Conversation, error)
	CreateConversation(ctx context.Context, c *Conversation) error
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context, userID int64, limit, offset int) ([]Conversation, error)

	// Messages
	AppendMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id int64) (*Message, error)
	GetMessagesByIDs(ctx context.Context, ids []int64) (map[int64]Message, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]Message, error)
	Tombstone(ctx context.Context, id, senderID int64, now time.Time) (bool, error)

	// Read state
	MarkRead(ctx context.Context, conversationID string, readerID int64, ids []int64, now time.Time) (int64, error)
	UnreadByConversation(ctx context.Context, userID int64, conversationIDs []string) (map[string]int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindConversation(ctx context.Context, assetID, userA, userB int64) (*Conversation, error) {
	a, b := orderedPair(userA, userB)
	var c Conversation
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND participant_a_id = ? AND participant_b_id = ?", assetID, a, b).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &c, nil
}

// CreateConversation inserts c. A concurrent insert of the same pair surfaces
// as a unique violation from idx_conversation_asset_pair.
func (r *repository) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns the user's active conversations, most recent
// activity first. Conversations without messages sort last.
// ListConversations pages the user's active conversations. Conversations
// whose other participant is deleted are filtered before paging.
func (r *repository) ListConversations(ctx context.Context, userID int64, limit, offset int) ([]Conversation, error) {
	var rows []Conversation
	err := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Select("conversations.*").
		Joins("JOIN users ON users.id = CASE WHEN conversations.participant_a_id = ? THEN conversations.participant_b_id ELSE conversations.participant_a_id END AND users.deleted_at IS NULL", userID).
		Where("(conversations.participant_a_id = ? OR conversations.participant_b_id = ?) AND conversations.is_active = ?", userID, userID, true).
		Order("CASE WHEN conversations.last_message_at IS NULL THEN 1 ELSE 0 END").
		Order("conversations.last_message_at DESC").
		Order("conversations.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return rows, nil
}

// AppendMessage stores msg and moves the conversation's last-message pointer
// in one transaction.
func (r *repository) AppendMessage(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		res := tx.Model(&Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]any{
				"last_message_id": msg.ID,
				"last_message_at": msg.CreatedAt,
				"updated_at":      msg.CreatedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("update conversation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return nil
	})
}

func (r *repository) GetMessage(ctx context.Context, id int64) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

func (r *repository) GetMessagesByIDs(ctx context.Context, ids []int64) (map[int64]Message, error) {
	out := make(map[int64]Message, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

// ListMessages pages newest-first; id breaks ties between equal timestamps.
func (r *repository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]Message, error) {
	var rows []Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return rows, nil
}

// Tombstone replaces the content of senderID's message. It reports false when
// the message belongs to someone else.
func (r *repository) Tombstone(ctx context.Context, id, senderID int64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ? AND sender_id = ?", id, senderID).
		Updates(map[string]any{
			"content":   DeletedContent,
			"media_url": nil,
			"is_edited": true,
			"edited_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("delete message: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkRead flips unread messages not sent by readerID. A nil ids marks the
// whole conversation.
func (r *repository) MarkRead(ctx context.Context, conversationID string, readerID int64, ids []int64, now time.Time) (int64, error) {
	q := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false)
	if ids != nil {
		if len(ids) == 0 {
			return 0, nil
		}
		q = q.Where("id IN ?", ids)
	}
	res := q.Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("mark messages read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository) UnreadByConversation(ctx context.Context, userID int64, conversationIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ConversationID string
		Unread         int64
	}
	err := r.db.WithContext(ctx).
		Model(&Message{}).
		Select("conversation_id, COUNT(*) AS unread").
		Where("conversation_id IN ? AND sender_id <> ? AND is_read = ?", conversationIDs, userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count unread per conversation: %w", err)
	}
	for _, row := range rows {
		out[row.ConversationID] = row.Unread
	}
	return out, nil
}

// CountUnread totals unread messages addressed to userID across the
// conversations they take part in.
func (r *repository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("messages m").
		Joins("JOIN conversations c ON c.id = m.conversation_id").
		Where("(c.participant_a_id = ? OR c.participant_b_id = ?)", userID, userID).
		Where("m.sender_id <> ? AND m.is_read = ?", userID, false).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return total, nil
}
