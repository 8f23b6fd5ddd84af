package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okovalenko/wishlink/internal/models"
	"github.com/okovalenko/wishlink/internal/services"
	"github.com/okovalenko/wishlink/internal/testutil"
)

func TestWishlistHandler_List_SyncFlag(t *testing.T) {
	var gotSync bool
	svc := &mockWishlistService{
		GetUserWishlistsFunc: func(ctx context.Context, forceSync bool) ([]models.Wishlist, error) {
			gotSync = forceSync
			return []models.Wishlist{{ID: "w1", Name: "Birthday"}}, nil
		},
	}
	h := NewWishlistHandler(svc)

	req := testutil.NewTestRequest(http.MethodGet, "/api/wishlists?sync=true", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertTrue(t, gotSync, "sync flag forwarded")
	testutil.AssertContains(t, rr.Body.String(), "Birthday", "body")
}

func TestWishlistHandler_Create(t *testing.T) {
	svc := &mockWishlistService{
		CreateWishlistFunc: func(ctx context.Context, params models.CreateWishlistParams) (*models.Wishlist, error) {
			return &models.Wishlist{ID: "w1", Name: params.Name}, nil
		},
	}
	h := NewWishlistHandler(svc)

	req := testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/wishlists",
		models.CreateWishlistParams{Name: "Birthday"})
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusCreated)
}

func TestWishlistHandler_Create_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized},
		{"name required", services.ErrNameRequired, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockWishlistService{
				CreateWishlistFunc: func(ctx context.Context, params models.CreateWishlistParams) (*models.Wishlist, error) {
					return nil, tc.err
				},
			}
			h := NewWishlistHandler(svc)

			req := testutil.NewTestRequest(http.MethodPost, "/api/wishlists", strings.NewReader(`{}`))
			rr := httptest.NewRecorder()
			h.Create(rr, req)

			testutil.AssertStatusCode(t, rr, tc.want)
		})
	}
}

func TestWishlistHandler_Get_NotFound(t *testing.T) {
	svc := &mockWishlistService{
		GetWishlistByIDFunc: func(ctx context.Context, id string) (*models.Wishlist, error) {
			return nil, services.ErrWishlistNotFound
		},
	}
	h := NewWishlistHandler(svc)

	req := testutil.NewTestRequest(http.MethodGet, "/api/wishlists/w1", nil)
	req.SetPathValue("id", "w1")
	rr := httptest.NewRecorder()
	h.Get(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusNotFound)
}

func TestWishlistHandler_Delete_ReportsOutcome(t *testing.T) {
	svc := &mockWishlistService{
		DeleteWishlistFunc: func(ctx context.Context, id string) bool { return false },
	}
	h := NewWishlistHandler(svc)

	req := testutil.NewTestRequest(http.MethodDelete, "/api/wishlists/w1", nil)
	req.SetPathValue("id", "w1")
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertContains(t, rr.Body.String(), `"deleted":false`, "body")
}

func TestWishlistHandler_AddItem_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not owner", services.ErrNotWishlistOwner, http.StatusForbidden},
		{"not found", services.ErrWishlistNotFound, http.StatusNotFound},
		{"negative price", services.ErrNegativePrice, http.StatusBadRequest},
		{"bad priority", services.ErrInvalidPriority, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockWishlistService{
				AddItemFunc: func(ctx context.Context, wishlistID string, params models.AddItemParams) (*models.Item, error) {
					return nil, tc.err
				},
			}
			h := NewWishlistHandler(svc)

			req := testutil.NewTestRequest(http.MethodPost, "/api/wishlists/w1/items",
				strings.NewReader(`{"name":"X"}`))
			req.SetPathValue("id", "w1")
			rr := httptest.NewRecorder()
			h.AddItem(rr, req)

			testutil.AssertStatusCode(t, rr, tc.want)
		})
	}
}

func TestWishlistHandler_RemoveItem(t *testing.T) {
	var gotWishlist, gotItem string
	svc := &mockWishlistService{
		RemoveItemFunc: func(ctx context.Context, wishlistID, itemID string) error {
			gotWishlist, gotItem = wishlistID, itemID
			return nil
		},
	}
	h := NewWishlistHandler(svc)

	req := testutil.NewTestRequest(http.MethodDelete, "/api/wishlists/w1/items/i1", nil)
	req.SetPathValue("id", "w1")
	req.SetPathValue("itemId", "i1")
	rr := httptest.NewRecorder()
	h.RemoveItem(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertEqual(t, "w1", gotWishlist, "wishlist id")
	testutil.AssertEqual(t, "i1", gotItem, "item id")
}

func TestWishlistHandler_FriendWishlists_RequiresAuth(t *testing.T) {
	h := NewWishlistHandler(&mockWishlistService{})

	req := testutil.NewTestRequest(http.MethodGet, "/api/friends/bob@test.com/wishlists", nil)
	req.SetPathValue("email", "bob@test.com")
	rr := httptest.NewRecorder()
	h.FriendWishlists(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusUnauthorized)
}

func TestWishlistHandler_FriendWishlists(t *testing.T) {
	svc := &mockWishlistService{
		GetFriendWishlistsFunc: func(ctx context.Context, friendEmail string) []models.Wishlist {
			return []models.Wishlist{{ID: "w1", Name: "Public", OwnerEmail: friendEmail}}
		},
	}
	h := NewWishlistHandler(svc)

	req := testutil.NewTestRequest(http.MethodGet, "/api/friends/bob@test.com/wishlists", nil)
	req.SetPathValue("email", "bob@test.com")
	req = req.WithContext(SetUserInContext(req.Context(), &models.UserSummary{Email: "alice@test.com"}))
	rr := httptest.NewRecorder()
	h.FriendWishlists(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertContains(t, rr.Body.String(), "Public", "body")
}
