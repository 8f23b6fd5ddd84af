package services

import "errors"

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrUserNotFound     = errors.New("user not found")
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrNotWishlistOwner = errors.New("you do not own this wishlist")
	ErrCannotFriendSelf = errors.New("cannot send friend request to yourself")
	ErrAlreadyFriends   = errors.New("already friends with this user")

	ErrNameRequired    = errors.New("name is required")
	ErrNegativePrice   = errors.New("price must be non-negative")
	ErrInvalidPriority = errors.New("invalid priority")
)
