package onebot

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// outSegment is the outbound form of an array-schema segment.
type outSegment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

func decodeMessage(schema Schema, raw json.RawMessage) (domain.MessageContents, error) {
	switch schema {
	case SchemaArray:
		return decodeSegments(raw)
	case SchemaString:
		body := gjson.ParseBytes(raw)
		if body.Type != gjson.String {
			return nil, fmt.Errorf("string schema expects a text message, got %s", body.Type)
		}
		return decodeCQ(body.String()), nil
	default:
		return nil, fmt.Errorf("%q: %w", schema, errors.ErrUnsupportedSchema)
	}
}

// decodeSegments keeps text and at segments. Unknown kinds are skipped.
func decodeSegments(raw json.RawMessage) (domain.MessageContents, error) {
	var segments []segment
	if err := json.Unmarshal(raw, &segments); err != nil {
		return nil, fmt.Errorf("array schema expects a segment list: %w", err)
	}

	var contents domain.MessageContents
	for _, s := range segments {
		switch s.Type {
		case segmentText:
			appendText(&contents, gjson.GetBytes(s.Data, "text").String())
		case segmentAt:
			// qq is a number on some implementations and a string on others
			if qq := gjson.GetBytes(s.Data, "qq"); qq.Exists() {
				contents.AppendMention(domain.NewUser(qq.String()))
			}
		}
	}
	return contents, nil
}

// decodeCQ parses a CQ-coded string. [CQ:at,qq=N] becomes a Mention; every
// other code is dropped.
func decodeCQ(raw string) domain.MessageContents {
	var contents domain.MessageContents
	for raw != "" {
		start := strings.Index(raw, "[CQ:")
		if start < 0 {
			appendText(&contents, unescapeCQ(raw))
			break
		}
		appendText(&contents, unescapeCQ(raw[:start]))

		end := strings.IndexByte(raw[start:], ']')
		if end < 0 {
			appendText(&contents, unescapeCQ(raw[start:]))
			break
		}
		kind, params := splitCQ(raw[start+len("[CQ:") : start+end])
		raw = raw[start+end+1:]

		if kind == segmentAt && params["qq"] != "" {
			contents.AppendMention(domain.NewUser(params["qq"]))
		}
	}
	return contents
}

func splitCQ(code string) (string, map[string]string) {
	fields := strings.Split(code, ",")
	params := make(map[string]string, len(fields)-1)
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, "=")
		if ok {
			params[key] = unescapeCQ(value)
		}
	}
	return fields[0], params
}

// appendText merges consecutive text into one segment.
func appendText(contents *domain.MessageContents, text string) {
	if text == "" {
		return
	}
	if n := len(*contents); n > 0 && (*contents)[n-1].Kind == domain.SegmentText {
		(*contents)[n-1].Text += text
		return
	}
	contents.AppendText(text)
}

var (
	cqEscaper   = strings.NewReplacer("&", "&amp;", "[", "&#91;", "]", "&#93;")
	cqParamEsc  = strings.NewReplacer("&", "&amp;", "[", "&#91;", "]", "&#93;", ",", "&#44;")
	cqUnescaper = strings.NewReplacer("&#91;", "[", "&#93;", "]", "&#44;", ",", "&amp;", "&")
)

func escapeCQ(s string) string { return cqEscaper.Replace(s) }

func unescapeCQ(s string) string { return cqUnescaper.Replace(s) }

// encodeMessage renders contents for send_msg. An optional reply reference
// leads; mentions are at segments in groups and plain names in private chats,
// each followed by one space.
func encodeMessage(schema Schema, contents domain.MessageContents, chat domain.Chat, replyTo *domain.Message) (any, error) {
	var segments []outSegment
	if replyTo != nil {
		segments = append(segments, outSegment{Type: segmentReply, Data: map[string]string{"id": replyTo.ID()}})
	}
	for _, s := range contents {
		switch s.Kind {
		case domain.SegmentText:
			segments = append(segments, outSegment{Type: segmentText, Data: map[string]string{"text": s.Text}})
		case domain.SegmentMention:
			if chat.IsGroup() {
				segments = append(segments, outSegment{Type: segmentAt, Data: map[string]string{"qq": s.User.ID}})
			} else {
				segments = append(segments, outSegment{Type: segmentText, Data: map[string]string{"text": s.User.DisplayName()}})
			}
			segments = append(segments, outSegment{Type: segmentText, Data: map[string]string{"text": " "}})
		}
	}

	switch schema {
	case SchemaArray:
		return segments, nil
	case SchemaString:
		return renderCQ(segments), nil
	default:
		return nil, fmt.Errorf("%q: %w", schema, errors.ErrUnsupportedSchema)
	}
}

func renderCQ(segments []outSegment) string {
	var sb strings.Builder
	for _, s := range segments {
		switch s.Type {
		case segmentText:
			sb.WriteString(escapeCQ(s.Data["text"]))
		case segmentAt:
			sb.WriteString("[CQ:at,qq=" + cqParamEsc.Replace(s.Data["qq"]) + "]")
		case segmentReply:
			sb.WriteString("[CQ:reply,id=" + cqParamEsc.Replace(s.Data["id"]) + "]")
		}
	}
	return sb.String()
}
