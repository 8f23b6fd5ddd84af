package services

import (
	"context"

	"github.com/okovalenko/wishlink/internal/models"
)

// SessionResolver is the slice of the session service the synchronizers need:
// the current user for the session token carried by the context, or nil when
// there is none.
type SessionResolver interface {
	GetCurrentUser(ctx context.Context) (*models.UserSummary, error)
}

// SessionServiceInterface defines the contract for session and account
// operations used by handlers.
type SessionServiceInterface interface {
	GetCurrentUser(ctx context.Context) (*models.UserSummary, error)
	IsAuthenticated(ctx context.Context) bool
	Register(ctx context.Context, email, name, username string) (*models.UserSummary, error)
	Login(ctx context.Context, email, password string) (*models.UserSummary, string, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, params models.UpdateProfileParams) (*models.UserSummary, error)
	UserExists(ctx context.Context, email string) (bool, error)
}

// WishlistServiceInterface defines the contract for wishlist operations used
// by handlers.
type WishlistServiceInterface interface {
	GetUserWishlists(ctx context.Context, forceSync bool) ([]models.Wishlist, error)
	GetWishlistByID(ctx context.Context, id string) (*models.Wishlist, error)
	CreateWishlist(ctx context.Context, params models.CreateWishlistParams) (*models.Wishlist, error)
	AddItem(ctx context.Context, wishlistID string, params models.AddItemParams) (*models.Item, error)
	RemoveItem(ctx context.Context, wishlistID, itemID string) error
	DeleteWishlist(ctx context.Context, id string) bool
	GetFriendWishlists(ctx context.Context, friendEmail string) []models.Wishlist
}

// FriendServiceInterface defines the contract for friend relationship
// operations used by handlers.
type FriendServiceInterface interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SearchUsers(ctx context.Context, query string) []models.UserSummary
	GetFriends(ctx context.Context, forceSync bool) ([]models.UserSummary, error)
	GetFriendRequests(ctx context.Context) ([]models.UserSummary, error)
	SendFriendRequest(ctx context.Context, friendEmail string) error
	AcceptFriendRequest(ctx context.Context, friendEmail string) error
	RejectFriendRequest(ctx context.Context, friendEmail string) error
	RemoveFriend(ctx context.Context, friendEmail string) error
}
