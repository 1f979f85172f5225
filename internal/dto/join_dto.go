package dto

// JoinRequest is the body of POST /api/v1/events/:code/join.
type JoinRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Avatar      string `json:"avatar"`
}

// JoinResponse is the body returned on a successful join, carrying the
// opaque session_token the client presents on the websocket upgrade
// (participants never hold a JWT).
type JoinResponse struct {
	EventID       string `json:"event_id"`
	EventTitle    string `json:"event_title"`
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	SessionToken  string `json:"session_token"`
	IsRejoining   bool   `json:"is_rejoining"`
	IsLateJoiner  bool   `json:"is_late_joiner"`
}

// JoinLockRequest is the body of PATCH /api/v1/events/:id/join-lock.
type JoinLockRequest struct {
	Locked bool `json:"locked"`
}
