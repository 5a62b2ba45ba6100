package chat

import (
	"time"

	"rentalmarket/internal/domain"
)

// ParticipantRole is frozen at conversation creation and never re-derived.
type ParticipantRole string

const (
	ParticipantOwner  ParticipantRole = "owner"
	ParticipantRenter ParticipantRole = "renter"
)

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageSystem:
		return true
	}
	return false
}

// DeletedContent replaces the body of a deleted message.
const DeletedContent = "This message was deleted"

// Conversation is the single channel between two users about one asset.
// Participants are stored with the lower user id first so the unique index
// covers the unordered pair.
type Conversation struct {
	ID               string          `gorm:"column:id;primaryKey;size:36" json:"id"`
	AssetID          int64           `gorm:"column:asset_id;not null;uniqueIndex:idx_conversation_asset_pair,priority:1" json:"asset_id"`
	ParticipantAID   int64           `gorm:"column:participant_a_id;not null;index;uniqueIndex:idx_conversation_asset_pair,priority:2" json:"participant_a_id"`
	ParticipantARole ParticipantRole `gorm:"column:participant_a_role;size:20;not null" json:"participant_a_role"`
	ParticipantBID   int64           `gorm:"column:participant_b_id;not null;index;uniqueIndex:idx_conversation_asset_pair,priority:3" json:"participant_b_id"`
	ParticipantBRole ParticipantRole `gorm:"column:participant_b_role;size:20;not null" json:"participant_b_role"`
	LastMessageID    *int64          `gorm:"column:last_message_id" json:"last_message_id,omitempty"`
	LastMessageAt    *time.Time      `gorm:"column:last_message_at;index" json:"last_message_at,omitempty"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt        time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) HasParticipant(userID int64) bool {
	return userID == c.ParticipantAID || userID == c.ParticipantBID
}

// Other returns the participant that is not userID, with their role.
func (c *Conversation) Other(userID int64) (int64, ParticipantRole) {
	if userID == c.ParticipantAID {
		return c.ParticipantBID, c.ParticipantBRole
	}
	return c.ParticipantAID, c.ParticipantARole
}

func (c *Conversation) RoleOf(userID int64) ParticipantRole {
	if userID == c.ParticipantAID {
		return c.ParticipantARole
	}
	return c.ParticipantBRole
}

// orderedPair returns a and b with the lower id first.
func orderedPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

type Message struct {
	ID             int64       `gorm:"column:id;primaryKey" json:"id"`
	ConversationID string      `gorm:"column:conversation_id;size:36;not null;index:idx_messages_conversation_created,priority:1" json:"conversation_id"`
	SenderID       int64       `gorm:"column:sender_id;not null;index" json:"sender_id"`
	Content        string      `gorm:"column:content;type:text;not null" json:"content"`
	MessageType    MessageType `gorm:"column:message_type;size:20;not null;default:text" json:"message_type"`
	MediaURL       *string     `gorm:"column:media_url" json:"media_url,omitempty"`
	IsRead         bool        `gorm:"column:is_read;not null;default:false" json:"is_read"`
	ReadAt         *time.Time  `gorm:"column:read_at" json:"read_at,omitempty"`
	IsEdited       bool        `gorm:"column:is_edited;not null;default:false" json:"is_edited"`
	EditedAt       *time.Time  `gorm:"column:edited_at" json:"edited_at,omitempty"`
	ReplyToID      *int64      `gorm:"column:reply_to_id" json:"reply_to_id,omitempty"`
	CreatedAt      time.Time   `gorm:"column:created_at;not null;index:idx_messages_conversation_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) IsDeleted() bool {
	return m.IsEdited && m.Content == DeletedContent
}

// Models lists the tables owned by this package.
func Models() []any { return []any{&Conversation{}, &Message{}} }

// MessagePreview is the last-message snippet in a conversation list.
type MessagePreview struct {
	ID          int64       `json:"id"`
	SenderID    int64       `json:"sender_id"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ConversationView is one row of a user's inbox.
type ConversationView struct {
	ID            string               `json:"id"`
	Asset         *domain.AssetSummary `json:"asset,omitempty"`
	MyRole        ParticipantRole      `json:"my_role"`
	Other         domain.UserRef       `json:"other_participant"`
	OtherRole     ParticipantRole      `json:"other_role"`
	LastMessage   *MessagePreview      `json:"last_message,omitempty"`
	LastMessageAt *time.Time           `json:"last_message_at,omitempty"`
	UnreadCount   int64                `json:"unread_count"`
	IsActive      bool                 `json:"is_active"`
}
