package handlers

import (
	"context"

	"github.com/okovalenko/wishlink/internal/models"
)

type mockSessionService struct {
	GetCurrentUserFunc        func(ctx context.Context) (*models.UserSummary, error)
	IsAuthenticatedFunc       func(ctx context.Context) bool
	RegisterFunc              func(ctx context.Context, email, name, username string) (*models.UserSummary, error)
	LoginFunc                 func(ctx context.Context, email, password string) (*models.UserSummary, string, error)
	LogoutFunc                func(ctx context.Context) error
	ResetPasswordFunc         func(ctx context.Context, email string) error
	VerifyEmailFunc           func(ctx context.Context, token string) error
	CompletePasswordResetFunc func(ctx context.Context, token, newPassword string) error
	UpdateProfileFunc         func(ctx context.Context, params models.UpdateProfileParams) (*models.UserSummary, error)
	UserExistsFunc            func(ctx context.Context, email string) (bool, error)
}

func (m *mockSessionService) GetCurrentUser(ctx context.Context) (*models.UserSummary, error) {
	if m.GetCurrentUserFunc != nil {
		return m.GetCurrentUserFunc(ctx)
	}
	return nil, nil
}

func (m *mockSessionService) IsAuthenticated(ctx context.Context) bool {
	if m.IsAuthenticatedFunc != nil {
		return m.IsAuthenticatedFunc(ctx)
	}
	return false
}

func (m *mockSessionService) Register(ctx context.Context, email, name, username string) (*models.UserSummary, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, name, username)
	}
	return &models.UserSummary{Email: email, Name: name, Username: username}, nil
}

func (m *mockSessionService) Login(ctx context.Context, email, password string) (*models.UserSummary, string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &models.UserSummary{Email: email}, "test_session_token", nil
}

func (m *mockSessionService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *mockSessionService) ResetPassword(ctx context.Context, email string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email)
	}
	return nil
}

func (m *mockSessionService) VerifyEmail(ctx context.Context, token string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil
}

func (m *mockSessionService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if m.CompletePasswordResetFunc != nil {
		return m.CompletePasswordResetFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *mockSessionService) UpdateProfile(ctx context.Context, params models.UpdateProfileParams) (*models.UserSummary, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockSessionService) UserExists(ctx context.Context, email string) (bool, error) {
	if m.UserExistsFunc != nil {
		return m.UserExistsFunc(ctx, email)
	}
	return false, nil
}

type mockWishlistService struct {
	GetUserWishlistsFunc   func(ctx context.Context, forceSync bool) ([]models.Wishlist, error)
	GetWishlistByIDFunc    func(ctx context.Context, id string) (*models.Wishlist, error)
	CreateWishlistFunc     func(ctx context.Context, params models.CreateWishlistParams) (*models.Wishlist, error)
	AddItemFunc            func(ctx context.Context, wishlistID string, params models.AddItemParams) (*models.Item, error)
	RemoveItemFunc         func(ctx context.Context, wishlistID, itemID string) error
	DeleteWishlistFunc     func(ctx context.Context, id string) bool
	GetFriendWishlistsFunc func(ctx context.Context, friendEmail string) []models.Wishlist
}

func (m *mockWishlistService) GetUserWishlists(ctx context.Context, forceSync bool) ([]models.Wishlist, error) {
	if m.GetUserWishlistsFunc != nil {
		return m.GetUserWishlistsFunc(ctx, forceSync)
	}
	return []models.Wishlist{}, nil
}

func (m *mockWishlistService) GetWishlistByID(ctx context.Context, id string) (*models.Wishlist, error) {
	if m.GetWishlistByIDFunc != nil {
		return m.GetWishlistByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockWishlistService) CreateWishlist(ctx context.Context, params models.CreateWishlistParams) (*models.Wishlist, error) {
	if m.CreateWishlistFunc != nil {
		return m.CreateWishlistFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockWishlistService) AddItem(ctx context.Context, wishlistID string, params models.AddItemParams) (*models.Item, error) {
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, wishlistID, params)
	}
	return nil, nil
}

func (m *mockWishlistService) RemoveItem(ctx context.Context, wishlistID, itemID string) error {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, wishlistID, itemID)
	}
	return nil
}

func (m *mockWishlistService) DeleteWishlist(ctx context.Context, id string) bool {
	if m.DeleteWishlistFunc != nil {
		return m.DeleteWishlistFunc(ctx, id)
	}
	return true
}

func (m *mockWishlistService) GetFriendWishlists(ctx context.Context, friendEmail string) []models.Wishlist {
	if m.GetFriendWishlistsFunc != nil {
		return m.GetFriendWishlistsFunc(ctx, friendEmail)
	}
	return []models.Wishlist{}
}

type mockFriendService struct {
	GetUserByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	SearchUsersFunc         func(ctx context.Context, query string) []models.UserSummary
	GetFriendsFunc          func(ctx context.Context, forceSync bool) ([]models.UserSummary, error)
	GetFriendRequestsFunc   func(ctx context.Context) ([]models.UserSummary, error)
	SendFriendRequestFunc   func(ctx context.Context, friendEmail string) error
	AcceptFriendRequestFunc func(ctx context.Context, friendEmail string) error
	RejectFriendRequestFunc func(ctx context.Context, friendEmail string) error
	RemoveFriendFunc        func(ctx context.Context, friendEmail string) error
}

func (m *mockFriendService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockFriendService) SearchUsers(ctx context.Context, query string) []models.UserSummary {
	if m.SearchUsersFunc != nil {
		return m.SearchUsersFunc(ctx, query)
	}
	return []models.UserSummary{}
}

func (m *mockFriendService) GetFriends(ctx context.Context, forceSync bool) ([]models.UserSummary, error) {
	if m.GetFriendsFunc != nil {
		return m.GetFriendsFunc(ctx, forceSync)
	}
	return []models.UserSummary{}, nil
}

func (m *mockFriendService) GetFriendRequests(ctx context.Context) ([]models.UserSummary, error) {
	if m.GetFriendRequestsFunc != nil {
		return m.GetFriendRequestsFunc(ctx)
	}
	return []models.UserSummary{}, nil
}

func (m *mockFriendService) SendFriendRequest(ctx context.Context, friendEmail string) error {
	if m.SendFriendRequestFunc != nil {
		return m.SendFriendRequestFunc(ctx, friendEmail)
	}
	return nil
}

func (m *mockFriendService) AcceptFriendRequest(ctx context.Context, friendEmail string) error {
	if m.AcceptFriendRequestFunc != nil {
		return m.AcceptFriendRequestFunc(ctx, friendEmail)
	}
	return nil
}

func (m *mockFriendService) RejectFriendRequest(ctx context.Context, friendEmail string) error {
	if m.RejectFriendRequestFunc != nil {
		return m.RejectFriendRequestFunc(ctx, friendEmail)
	}
	return nil
}

func (m *mockFriendService) RemoveFriend(ctx context.Context, friendEmail string) error {
	if m.RemoveFriendFunc != nil {
		return m.RemoveFriendFunc(ctx, friendEmail)
	}
	return nil
}
