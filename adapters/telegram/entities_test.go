package telegram

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var self = domain.NewUser("42").WithNickname("maid_bot")

func TestEncodeContents_MentionBetweenTexts(t *testing.T) {
	req := require.New(t)
	contents := domain.Contents(
		domain.Text("a"),
		domain.Mention(domain.NewUser("5")),
		domain.Text("b"),
	)

	text, entities := encodeContents(contents)

	// Rendering is text, then the mention label, then text
	req.Equal("a"+"@5"+"b", text)
	req.Equal(contents.String(), text)
	req.Len(entities, 1)
	req.Equal(entityTextMention, entities[0].Type)
	req.Equal(1, entities[0].Offset)
	req.Equal(2, entities[0].Length)
	req.Equal(int64(5), entities[0].User.ID)
}

func TestEncodeDecode_RoundTripKeepsSegmentBoundaries(t *testing.T) {
	req := require.New(t)
	contents := domain.Contents(
		domain.Text("a"),
		domain.Mention(domain.NewUser("5")),
		domain.Text("b"),
	)

	text, entities := encodeContents(contents)
	decoded, err := decodeContents(text, entities, self)
	req.NoError(err)

	req.Len(decoded, 3)
	req.Equal(domain.SegmentText, decoded[0].Kind)
	req.Equal("a", decoded[0].Text)
	req.Equal(domain.SegmentMention, decoded[1].Kind)
	req.Equal("5", decoded[1].User.ID)
	req.Equal(domain.SegmentText, decoded[2].Kind)
	req.Equal("b", decoded[2].Text)
}

func TestEncodeContents_SurrogatePairsCountTwoUnits(t *testing.T) {
	req := require.New(t)
	contents := domain.Contents(
		domain.Text("😀 hi "),
		domain.Mention(domain.NewUser("7").WithNickname("𝒜lice")),
		domain.Text(" 👋"),
	)

	text, entities := encodeContents(contents)

	// "😀 hi " is 1 pair + 4 units
	req.Equal(6, entities[0].Offset)
	// "@𝒜lice" is '@' + 1 pair + 4 units
	req.Equal(7, entities[0].Length)
	req.Equal(utf16Len(text), 6+7+utf16Len(" 👋"))

	decoded, err := decodeContents(text, entities, self)
	req.NoError(err)
	req.Equal("😀 hi ", decoded[0].Text)
	req.Equal("7", decoded[1].User.ID)
	req.Equal("𝒜lice", decoded[1].User.Nickname)
	req.Equal(" 👋", decoded[2].Text)
	req.Equal(text, decoded.String())
}

func TestDecodeContents_MentionByName(t *testing.T) {
	req := require.New(t)
	text := "hey @someone and @maid_bot 🎉!"
	entities := []entity{
		{Type: entityMention, Offset: 4, Length: 8},
		{Type: entityMention, Offset: 17, Length: 9},
	}

	contents, err := decodeContents(text, entities, self)
	req.NoError(err)

	req.Len(contents, 5)
	req.Equal("hey ", contents[0].Text)
	// Unknown usernames become the user id
	req.Equal(domain.NewUser("someone"), contents[1].User)
	req.Equal(" and ", contents[2].Text)
	// Our own username resolves to the bot identity
	req.Equal(self, contents[3].User)
	req.Equal(" 🎉!", contents[4].Text)
}

func TestDecodeContents_SelfNicknameIsCaseSensitive(t *testing.T) {
	req := require.New(t)
	contents, err := decodeContents("@Maid_Bot", []entity{{Type: entityMention, Offset: 0, Length: 9}}, self)
	req.NoError(err)
	req.Len(contents, 1)
	req.Equal("Maid_Bot", contents[0].User.ID)
}

func TestDecodeContents_TextMentionCarriesID(t *testing.T) {
	req := require.New(t)
	entities := []entity{
		{Type: "bold", Offset: 0, Length: 2},
		{Type: entityTextMention, Offset: 3, Length: 3, User: &user{ID: 99, FirstName: "Bob", LastName: "Stone"}},
		{Type: entityTextMention, Offset: 7, Length: 4, User: &user{ID: 42, FirstName: "Maid"}},
	}

	contents, err := decodeContents("yo Bob Maid", entities, self)
	req.NoError(err)

	req.Len(contents, 4)
	req.Equal("yo ", contents[0].Text)
	req.Equal(domain.NewUser("99").WithNickname("Bob Stone"), contents[1].User)
	req.Equal(" ", contents[2].Text)
	req.Equal(self, contents[3].User)
}

func TestDecodeContents_SplitSurrogateFails(t *testing.T) {
	req := require.New(t)
	// Offset 1 falls between the two units of 😀
	_, err := decodeContents("😀@bob", []entity{{Type: entityMention, Offset: 1, Length: 4}}, self)
	req.ErrorIs(err, errors.ErrInvalidUTF16Boundary)
}

func TestDecodeContents_EntityOutOfRange(t *testing.T) {
	req := require.New(t)
	_, err := decodeContents("@bob", []entity{{Type: entityMention, Offset: 0, Length: 10}}, self)
	req.ErrorIs(err, errors.ErrEntityOutOfRange)

	_, err = decodeContents("@bob @amy", []entity{
		{Type: entityMention, Offset: 5, Length: 4},
		{Type: entityMention, Offset: 0, Length: 4},
	}, self)
	req.ErrorIs(err, errors.ErrEntityOutOfRange)
}

func TestDecodeUTF16_Lossless(t *testing.T) {
	req := require.New(t)
	for _, s := range []string{"", "plain", "😀", "a😀b𝄞c", "中文 and 🇫🇷"} {
		text, entities := encodeContents(domain.Contents(domain.Text(s)))
		req.Empty(entities)
		decoded, err := decodeContents(text, nil, self)
		req.NoError(err)
		req.Equal(s, decoded.String())
	}
}

func TestMentionEntity_UsernameFallsBackToMention(t *testing.T) {
	req := require.New(t)
	text, entities := encodeContents(domain.Contents(domain.Mention(domain.NewUser("someone"))))

	req.Equal("@someone", text)
	req.Equal(entityMention, entities[0].Type)
	req.Nil(entities[0].User)
	req.Equal(8, entities[0].Length)
}
