package telegram

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// decodeContents splits text into Text and Mention segments using the
// mention entities. Entities are taken in the order given. Other entity kinds
// stay inside the surrounding text.
func decodeContents(text string, entities []entity, self domain.User) (domain.MessageContents, error) {
	units := utf16.Encode([]rune(text))
	var contents domain.MessageContents
	cursor := 0

	for _, e := range entities {
		if e.Type != entityMention && e.Type != entityTextMention {
			continue
		}
		end := e.Offset + e.Length
		if e.Offset < cursor || e.Length <= 0 || end > len(units) {
			return nil, fmt.Errorf("%s entity at %d+%d in %d units: %w",
				e.Type, e.Offset, e.Length, len(units), errors.ErrEntityOutOfRange)
		}

		gap, err := decodeUTF16(units, cursor, e.Offset)
		if err != nil {
			return nil, err
		}
		if gap != "" {
			contents.AppendText(gap)
		}

		mentioned, err := mentionedUser(units, e, self)
		if err != nil {
			return nil, err
		}
		contents.AppendMention(mentioned)
		cursor = end
	}

	tail, err := decodeUTF16(units, cursor, len(units))
	if err != nil {
		return nil, err
	}
	if tail != "" {
		contents.AppendText(tail)
	}
	return contents, nil
}

func mentionedUser(units []uint16, e entity, self domain.User) (domain.User, error) {
	switch e.Type {
	case entityMention:
		// Skip the leading '@'. This entity carries no numeric id, so the
		// username stands in for it.
		username, err := decodeUTF16(units, e.Offset+1, e.Offset+e.Length)
		if err != nil {
			return domain.User{}, err
		}
		if self.Nickname != "" && username == self.Nickname {
			return self, nil
		}
		return domain.NewUser(username), nil
	default:
		if e.User == nil {
			return domain.User{}, fmt.Errorf("text_mention at %d without user", e.Offset)
		}
		mentioned := toDomainUser(e.User)
		if mentioned.ID == self.ID {
			return self, nil
		}
		return mentioned, nil
	}
}

// decodeUTF16 converts units[from:to] back to a string. A slice starting on a
// low surrogate or ending on a high surrogate would split a pair.
func decodeUTF16(units []uint16, from, to int) (string, error) {
	if from < 0 || to > len(units) || from > to {
		return "", fmt.Errorf("slice %d:%d of %d units: %w", from, to, len(units), errors.ErrEntityOutOfRange)
	}
	if from == to {
		return "", nil
	}
	if isLowSurrogate(units[from]) || isHighSurrogate(units[to-1]) {
		return "", fmt.Errorf("slice %d:%d: %w", from, to, errors.ErrInvalidUTF16Boundary)
	}
	return string(utf16.Decode(units[from:to])), nil
}

func isHighSurrogate(u uint16) bool { return u >= 0xd800 && u < 0xdc00 }

func isLowSurrogate(u uint16) bool { return u >= 0xdc00 && u < 0xe000 }

// utf16Len counts the UTF-16 code units of s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// encodeContents renders contents to text plus the mention entities that
// point into it.
func encodeContents(contents domain.MessageContents) (string, []entity) {
	var sb strings.Builder
	var entities []entity
	offset := 0

	for _, s := range contents {
		switch s.Kind {
		case domain.SegmentText:
			sb.WriteString(s.Text)
			offset += utf16Len(s.Text)
		case domain.SegmentMention:
			label := "@" + s.User.DisplayName()
			length := utf16Len(label)
			sb.WriteString(label)
			entities = append(entities, mentionEntity(s.User, offset, length))
			offset += length
		}
	}
	return sb.String(), entities
}

// mentionEntity addresses numeric ids directly. Users only known by username
// fall back to a plain mention of that name.
func mentionEntity(u domain.User, offset, length int) entity {
	id, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		return entity{Type: entityMention, Offset: offset, Length: length}
	}
	return entity{
		Type:   entityTextMention,
		Offset: offset,
		Length: length,
		User:   &user{ID: id, FirstName: u.DisplayName()},
	}
}

func toDomainUser(u *user) domain.User {
	if u == nil {
		return domain.NewUser("")
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return domain.NewUser(strconv.FormatInt(u.ID, 10)).WithNickname(name)
}
