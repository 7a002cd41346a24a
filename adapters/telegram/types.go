package telegram

import "encoding/json"

// Bot API wire types, subset used by the adapter.

const (
	entityMention     = "mention"
	entityTextMention = "text_mention"

	chatTypePrivate = "private"

	statusCreator       = "creator"
	statusAdministrator = "administrator"
)

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

type update struct {
	UpdateID          int64    `json:"update_id"`
	Message           *message `json:"message,omitempty"`
	EditedMessage     *message `json:"edited_message,omitempty"`
	ChannelPost       *message `json:"channel_post,omitempty"`
	EditedChannelPost *message `json:"edited_channel_post,omitempty"`
}

// anyMessage returns the first message-like payload an update carries.
func (u update) anyMessage() *message {
	for _, m := range []*message{u.Message, u.EditedMessage, u.ChannelPost, u.EditedChannelPost} {
		if m != nil {
			return m
		}
	}
	return nil
}

type message struct {
	MessageID       int64    `json:"message_id"`
	From            *user    `json:"from,omitempty"`
	Chat            *chat    `json:"chat,omitempty"`
	Text            string   `json:"text,omitempty"`
	Entities        []entity `json:"entities,omitempty"`
	Caption         string   `json:"caption,omitempty"`
	CaptionEntities []entity `json:"caption_entities,omitempty"`
}

type user struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// entity offsets and lengths count UTF-16 code units.
type entity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	User   *user  `json:"user,omitempty"`
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset"`
	Timeout int   `json:"timeout"`
}

type replyParameters struct {
	MessageID int64 `json:"message_id"`
}

type sendMessageRequest struct {
	ChatID          int64            `json:"chat_id"`
	Text            string           `json:"text"`
	Entities        []entity         `json:"entities,omitempty"`
	ReplyParameters *replyParameters `json:"reply_parameters,omitempty"`
}

type getChatMemberRequest struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

type chatMember struct {
	Status string `json:"status"`
}
