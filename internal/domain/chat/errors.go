package chat

import "rentalmarket/internal/pkg/apperr"

var (
	ErrConversationNotFound = apperr.New(apperr.KindNotFound, "CONVERSATION_NOT_FOUND", "Conversation not found")
	ErrMessageNotFound      = apperr.New(apperr.KindNotFound, "MESSAGE_NOT_FOUND", "Message not found")
	ErrAssetNotFound        = apperr.New(apperr.KindNotFound, "ASSET_NOT_FOUND", "Asset not found")
	ErrUserNotFound         = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrNotSender            = apperr.New(apperr.KindUnauthorized, "NOT_MESSAGE_SENDER", "Only the sender can delete this message")
	ErrCannotChatSelf       = apperr.New(apperr.KindValidation, "CANNOT_CHAT_SELF", "Cannot start a conversation with yourself")
	ErrOwnerNotParticipant  = apperr.New(apperr.KindValidation, "OWNER_NOT_PARTICIPANT", "Conversation must include the asset owner")
	ErrEmptyContent         = apperr.New(apperr.KindValidation, "EMPTY_MESSAGE", "Message content is required")
	ErrInvalidMessageType   = apperr.New(apperr.KindValidation, "INVALID_MESSAGE_TYPE", "Message type must be text, image or file")
	ErrMissingMedia         = apperr.New(apperr.KindValidation, "MISSING_MEDIA_URL", "Image and file messages need a media URL")
	ErrInvalidReply         = apperr.New(apperr.KindValidation, "INVALID_REPLY", "Reply target is not in this conversation")
	ErrConversationInactive = apperr.New(apperr.KindInvalidState, "CONVERSATION_INACTIVE", "Conversation is no longer active")
)
