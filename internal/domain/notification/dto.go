package notification

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
	Total         int64          `json:"total"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
