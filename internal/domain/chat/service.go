package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentalmarket/internal/database"
	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/asset"
	"rentalmarket/internal/domain/user"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/lock"
)

// AssetReader is implemented by the asset repository
type AssetReader interface {
	GetByID(ctx context.Context, id int64) (*asset.Asset, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]domain.AssetSummary, error)
}

// UserDirectory is implemented by the user repository. Summaries omits
// deleted users.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]domain.UserSummary, error)
}

// Service handles chat business logic
type Service struct {
	repo   Repository
	assets AssetReader
	users  UserDirectory
	locker lock.Locker
	now    func() time.Time
	newID  func() string
}

func NewService(repo Repository, assets AssetReader, users UserDirectory, locker lock.Locker) *Service {
	if locker == nil {
		locker = lock.NopLocker{}
	}
	return &Service{
		repo:   repo,
		assets: assets,
		users:  users,
		locker: locker,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// ---- Conversations ----

// GetOrCreate returns the conversation between userA and userB about
// assetID, creating it on first contact. created reports whether this call
// inserted it. The asset owner must be one of the two users; the other one
// is recorded as the renter.
func (s *Service) GetOrCreate(ctx context.Context, assetID, userA, userB int64) (conv *Conversation, created bool, err error) {
	if userA == userB {
		return nil, false, ErrCannotChatSelf
	}

	a, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return nil, false, ErrAssetNotFound
		}
		return nil, false, err
	}
	if a.OwnerID != userA && a.OwnerID != userB {
		return nil, false, ErrOwnerNotParticipant
	}
	for _, id := range []int64{userA, userB} {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return nil, false, ErrUserNotFound
			}
			return nil, false, err
		}
	}

	lo, hi := orderedPair(userA, userB)
	key := fmt.Sprintf("conversation:%d:%d:%d", assetID, lo, hi)
	release, lockErr := s.locker.Acquire(ctx, key)
	if lockErr != nil {
		logger.WarnContext(ctx, "lock unavailable", "key", key, "error", lockErr)
	} else {
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.WarnContext(ctx, "lock release failed", "key", key, "error", err)
			}
		}()
	}

	existing, err := s.repo.FindConversation(ctx, assetID, lo, hi)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	roleOf := func(id int64) ParticipantRole {
		if id == a.OwnerID {
			return ParticipantOwner
		}
		return ParticipantRenter
	}
	now := s.now()
	conv = &Conversation{
		ID:               s.newID(),
		AssetID:          assetID,
		ParticipantAID:   lo,
		ParticipantARole: roleOf(lo),
		ParticipantBID:   hi,
		ParticipantBRole: roleOf(hi),
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, false, fmt.Errorf("create conversation: %w", err)
		}
		// Lost the race to another request; theirs is canonical.
		existing, ferr := s.repo.FindConversation(ctx, assetID, lo, hi)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing == nil {
			return nil, false, fmt.Errorf("create conversation: %w", err)
		}
		return existing, false, nil
	}
	return conv, true, nil
}

// ListForUser returns the user's inbox. Conversations whose other participant
// no longer exists are left out.
func (s *Service) ListForUser(ctx context.Context, userID int64, page, pageSize int) ([]ConversationView, error) {
	page, pageSize = normalizePage(page, pageSize, 20)
	convs, err := s.repo.ListConversations(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []ConversationView{}, nil
	}

	otherIDs := make([]int64, 0, len(convs))
	assetIDs := make([]int64, 0, len(convs))
	lastIDs := make([]int64, 0, len(convs))
	convIDs := make([]string, 0, len(convs))
	for i := range convs {
		other, _ := convs[i].Other(userID)
		otherIDs = append(otherIDs, other)
		assetIDs = append(assetIDs, convs[i].AssetID)
		convIDs = append(convIDs, convs[i].ID)
		if convs[i].LastMessageID != nil {
			lastIDs = append(lastIDs, *convs[i].LastMessageID)
		}
	}

	people, err := s.users.Summaries(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	assets, err := s.assets.Summaries(ctx, assetIDs)
	if err != nil {
		return nil, err
	}
	lastMsgs, err := s.repo.GetMessagesByIDs(ctx, lastIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadByConversation(ctx, userID, convIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationView, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		otherID, otherRole := c.Other(userID)
		person, ok := people[otherID]
		if !ok {
			logger.Debug("skipping conversation with missing participant", "conversation_id", c.ID, "user_id", otherID)
			continue
		}

		view := ConversationView{
			ID:            c.ID,
			MyRole:        c.RoleOf(userID),
			Other:         domain.Resolved(person),
			OtherRole:     otherRole,
			LastMessageAt: c.LastMessageAt,
			UnreadCount:   unread[c.ID],
			IsActive:      c.IsActive,
		}
		if a, ok := assets[c.AssetID]; ok {
			view.Asset = &a
		}
		if c.LastMessageID != nil {
			if m, ok := lastMsgs[*c.LastMessageID]; ok {
				view.LastMessage = &MessagePreview{
					ID:          m.ID,
					SenderID:    m.SenderID,
					Content:     m.Content,
					MessageType: m.MessageType,
					CreatedAt:   m.CreatedAt,
				}
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// conversationFor loads a conversation the user takes part in. Outsiders get
// ErrConversationNotFound.
func (s *Service) conversationFor(ctx context.Context, conversationID string, userID int64) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// ---- Messages ----

type SendMessageInput struct {
	Content     string
	MessageType MessageType
	MediaURL    string
	ReplyToID   *int64
}

// SendMessage appends a message and advances the conversation's last-message
// pointer. Users cannot post system messages.
func (s *Service) SendMessage(ctx context.Context, conversationID string, senderID int64, in SendMessageInput) (*Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	msgType := in.MessageType
	if msgType == "" {
		msgType = MessageText
	}
	if !msgType.Valid() || msgType == MessageSystem {
		return nil, ErrInvalidMessageType
	}
	mediaURL := strings.TrimSpace(in.MediaURL)
	if (msgType == MessageImage || msgType == MessageFile) && mediaURL == "" {
		return nil, ErrMissingMedia
	}

	conv, err := s.conversationFor(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !conv.IsActive {
		return nil, ErrConversationInactive
	}

	if in.ReplyToID != nil {
		target, err := s.repo.GetMessage(ctx, *in.ReplyToID)
		if err != nil {
			if errors.Is(err, ErrMessageNotFound) {
				return nil, ErrInvalidReply
			}
			return nil, err
		}
		if target.ConversationID != conv.ID {
			return nil, ErrInvalidReply
		}
	}

	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    msgType,
		ReplyToID:      in.ReplyToID,
		CreatedAt:      s.now(),
	}
	if mediaURL != "" {
		msg.MediaURL = &mediaURL
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns one page oldest-to-newest. Pages are counted from the
// newest message. Messages on the page addressed to the reader are marked read.
func (s *Service) ListMessages(ctx context.Context, conversationID string, readerID int64, page, pageSize int) ([]Message, error) {
	if _, err := s.conversationFor(ctx, conversationID, readerID); err != nil {
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize, 50)
	msgs, err := s.repo.ListMessages(ctx, conversationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	var unreadIDs []int64
	for i := range msgs {
		if msgs[i].SenderID != readerID && !msgs[i].IsRead {
			unreadIDs = append(unreadIDs, msgs[i].ID)
		}
	}
	if len(unreadIDs) > 0 {
		now := s.now()
		if _, err := s.repo.MarkRead(ctx, conversationID, readerID, unreadIDs, now); err != nil {
			return nil, err
		}
		for i := range msgs {
			if slices.Contains(unreadIDs, msgs[i].ID) {
				msgs[i].IsRead = true
				msgs[i].ReadAt = &now
			}
		}
	}

	slices.Reverse(msgs)
	return msgs, nil
}

// MarkAsRead clears every unread message addressed to the reader.
func (s *Service) MarkAsRead(ctx context.Context, conversationID string, readerID int64) (int64, error) {
	if _, err := s.conversationFor(ctx, conversationID, readerID); err != nil {
		return 0, err
	}
	return s.repo.MarkRead(ctx, conversationID, readerID, nil, s.now())
}

// UnreadCount is derived from the messages on every call.
func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// DeleteMessage tombstones the sender's own message. The record and any
// replies pointing at it stay in place.
func (s *Service) DeleteMessage(ctx context.Context, messageID, requesterID int64) (*Message, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != requesterID {
		if _, err := s.conversationFor(ctx, msg.ConversationID, requesterID); err != nil {
			return nil, ErrMessageNotFound
		}
		return nil, ErrNotSender
	}
	if msg.IsDeleted() {
		return msg, nil
	}

	ok, err := s.repo.Tombstone(ctx, messageID, requesterID, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMessageNotFound
	}
	return s.repo.GetMessage(ctx, messageID)
}

func normalizePage(page, pageSize, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = def
	}
	return page, pageSize
}
