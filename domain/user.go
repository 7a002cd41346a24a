// Package domain contains core concepts of the chat system.
// This file defines User and Group identities.
// An identity is only unique within the platform that produced it.
package domain

// User is a platform-native account. An empty Nickname means unknown.
type User struct {
	ID       string
	Nickname string
}

func NewUser(id string) User {
	return User{ID: id}
}

func (u User) WithNickname(nickname string) User {
	u.Nickname = nickname
	return u
}

// DisplayName is the nickname when known, the raw id otherwise.
func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.ID
}

type Group struct {
	ID string
}

func NewGroup(id string) Group {
	return Group{ID: id}
}
