package onebot

import "encoding/json"

const (
	statusOK     = "ok"
	statusAsync  = "async"
	statusFailed = "failed"

	postTypeMessage = "message"

	messageTypePrivate = "private"
	messageTypeGroup   = "group"

	segmentText  = "text"
	segmentAt    = "at"
	segmentReply = "reply"
)

// response is the envelope wrapping every RPC answer.
type response struct {
	Status  string          `json:"status"`
	RetCode int             `json:"retcode"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// segment is one element of an array-schema message.
type segment struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type messageEvent struct {
	MessageID   int64           `json:"message_id"`
	MessageType string          `json:"message_type"`
	GroupID     *int64          `json:"group_id"`
	UserID      int64           `json:"user_id"`
	Message     json.RawMessage `json:"message"`
	Sender      struct {
		Nickname string `json:"nickname"`
	} `json:"sender"`
}

type sendMsgRequest struct {
	MessageType string `json:"message_type"`
	UserID      int64  `json:"user_id,omitempty"`
	GroupID     int64  `json:"group_id,omitempty"`
	// Message is a []segment or a CQ-coded string, depending on the schema.
	Message    any  `json:"message"`
	AutoEscape bool `json:"auto_escape,omitempty"`
}

type sendMsgData struct {
	MessageID int64 `json:"message_id"`
}

type getGroupMemberInfoRequest struct {
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
}

type groupMemberInfo struct {
	Role string `json:"role"`
}

type loginInfo struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
}
