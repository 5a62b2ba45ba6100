package chat

type startConversationRequest struct {
	AssetID       int64 `json:"asset_id" validate:"required,gt=0"`
	ParticipantID int64 `json:"participant_id" validate:"required,gt=0"`
}

type sendMessageRequest struct {
	Content     string `json:"content" validate:"notblank,max=5000"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text image file"`
	MediaURL    string `json:"media_url" validate:"omitempty,url"`
	ReplyToID   *int64 `json:"reply_to_id" validate:"omitempty,gt=0"`
}

type conversationResponse struct {
	Conversation *Conversation `json:"conversation"`
	Created      bool          `json:"created"`
}
