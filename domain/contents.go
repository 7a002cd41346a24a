package domain

import "strings"

type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentMention
)

// Segment is one rendering unit: either Text or a Mention of User.
type Segment struct {
	Kind SegmentKind
	Text string
	User User
}

func Text(s string) Segment {
	return Segment{Kind: SegmentText, Text: s}
}

func Mention(user User) Segment {
	return Segment{Kind: SegmentMention, User: user}
}

// String renders the segment the way it is displayed and sent on text-only wires.
func (s Segment) String() string {
	if s.Kind == SegmentMention {
		return "@" + s.User.DisplayName()
	}
	return s.Text
}

// MessageContents keeps segments in rendering order.
type MessageContents []Segment

func Contents(segments ...Segment) MessageContents {
	return append(MessageContents(nil), segments...)
}

func (c *MessageContents) AppendText(s string) *MessageContents {
	*c = append(*c, Text(s))
	return c
}

func (c *MessageContents) AppendMention(user User) *MessageContents {
	*c = append(*c, Mention(user))
	return c
}

func (c MessageContents) String() string {
	var sb strings.Builder
	for _, s := range c {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// PlainText joins the Text segments only.
func (c MessageContents) PlainText() string {
	var sb strings.Builder
	for _, s := range c {
		if s.Kind == SegmentText {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func (c MessageContents) Mentions() []User {
	var users []User
	for _, s := range c {
		if s.Kind == SegmentMention {
			users = append(users, s.User)
		}
	}
	return users
}
