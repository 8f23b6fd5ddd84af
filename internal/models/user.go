package models

import (
	"time"
)

// User is the profile document stored in the "users" collection, keyed by
// email. Friends and FriendRequests hold emails of related users; both behave
// as sets (no duplicates).
type User struct {
	UID            string    `json:"uid"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Avatar         *string   `json:"avatar,omitempty"`
	Friends        []string  `json:"friends"`
	FriendRequests []string  `json:"friendRequests"`
	CreatedAt      time.Time `json:"createdAt"`
	LastLogin      time.Time `json:"lastLogin"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasFriend reports whether email is in the user's friends set.
func (u *User) HasFriend(email string) bool {
	for _, e := range u.Friends {
		if e == email {
			return true
		}
	}
	return false
}

// HasFriendRequest reports whether email is in the user's pending requests.
func (u *User) HasFriendRequest(email string) bool {
	for _, e := range u.FriendRequests {
		if e == email {
			return true
		}
	}
	return false
}

// UserSummary is the denormalized display shape used for the cached session
// snapshot, friend lists, pending requests, and search results.
type UserSummary struct {
	UID      string  `json:"uid,omitempty"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar,omitempty"`
}

// Summary returns the display shape for a full user document.
func (u *User) Summary() UserSummary {
	return UserSummary{
		UID:      u.UID,
		Email:    u.Email,
		Name:     u.Name,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}

type UpdateProfileParams struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}
