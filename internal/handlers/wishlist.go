package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/okovalenko/wishlink/internal/models"
	"github.com/okovalenko/wishlink/internal/services"
)

type WishlistHandler struct {
	wishlistService services.WishlistServiceInterface
}

func NewWishlistHandler(wishlistService services.WishlistServiceInterface) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

type WishlistListResponse struct {
	Wishlists []models.Wishlist `json:"wishlists"`
}

type WishlistResponse struct {
	Wishlist *models.Wishlist `json:"wishlist,omitempty"`
	Message  string           `json:"message,omitempty"`
}

type ItemResponse struct {
	Item    *models.Item `json:"item,omitempty"`
	Message string       `json:"message,omitempty"`
}

// List returns the current user's wishlists. ?sync=true forces a refresh from
// the remote store instead of serving the cached copy.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	forceSync := r.URL.Query().Get("sync") == "true"

	wishlists, err := h.wishlistService.GetUserWishlists(r.Context(), forceSync)
	if err != nil {
		log.Printf("Error listing wishlists: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, WishlistListResponse{Wishlists: wishlists})
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Wishlist ID is required")
		return
	}

	wishlist, err := h.wishlistService.GetWishlistByID(r.Context(), id)
	if errors.Is(err, services.ErrWishlistNotFound) {
		writeError(w, http.StatusNotFound, "Wishlist not found")
		return
	}
	if err != nil {
		log.Printf("Error getting wishlist: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, WishlistResponse{Wishlist: wishlist})
}

func (h *WishlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params models.CreateWishlistParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wishlist, err := h.wishlistService.CreateWishlist(r.Context(), params)
	if errors.Is(err, services.ErrUnauthenticated) {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if errors.Is(err, services.ErrNameRequired) {
		writeError(w, http.StatusBadRequest, "Wishlist name is required")
		return
	}
	if err != nil {
		log.Printf("Error creating wishlist: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, WishlistResponse{Wishlist: wishlist})
}

// Delete reports success as a boolean rather than an error so the app can
// keep its local state pruned regardless of the remote outcome.
func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Wishlist ID is required")
		return
	}

	ok := h.wishlistService.DeleteWishlist(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": ok})
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Wishlist ID is required")
		return
	}

	var params models.AddItemParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.wishlistService.AddItem(r.Context(), id, params)
	if err != nil {
		h.writeItemError(w, err, "Error adding item")
		return
	}

	writeJSON(w, http.StatusCreated, ItemResponse{Item: item})
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	itemID := r.PathValue("itemId")
	if id == "" || itemID == "" {
		writeError(w, http.StatusBadRequest, "Wishlist and item IDs are required")
		return
	}

	err := h.wishlistService.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		h.writeItemError(w, err, "Error removing item")
		return
	}

	writeJSON(w, http.StatusOK, ItemResponse{Message: "Item removed"})
}

// FriendWishlists returns a friend's public wishlists.
func (h *WishlistHandler) FriendWishlists(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	email := r.PathValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Friend email is required")
		return
	}

	wishlists := h.wishlistService.GetFriendWishlists(r.Context(), email)
	writeJSON(w, http.StatusOK, WishlistListResponse{Wishlists: wishlists})
}

func (h *WishlistHandler) writeItemError(w http.ResponseWriter, err error, logPrefix string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, services.ErrWishlistNotFound):
		writeError(w, http.StatusNotFound, "Wishlist not found")
	case errors.Is(err, services.ErrNotWishlistOwner):
		writeError(w, http.StatusForbidden, "Only the owner can modify this wishlist")
	case errors.Is(err, services.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "Item name is required")
	case errors.Is(err, services.ErrNegativePrice):
		writeError(w, http.StatusBadRequest, "Item price cannot be negative")
	case errors.Is(err, services.ErrInvalidPriority):
		writeError(w, http.StatusBadRequest, "Priority must be low, medium, or high")
	default:
		log.Printf("%s: %v", logPrefix, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
