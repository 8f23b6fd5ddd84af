package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okovalenko/wishlink/internal/cache"
	"github.com/okovalenko/wishlink/internal/logging"
	"github.com/okovalenko/wishlink/internal/models"
	"github.com/okovalenko/wishlink/internal/store"
)

const wishlistsCollection = "wishlists"

// WishlistService reconciles wishlists between the local cache and the remote
// store: reads prefer cache and degrade back to it on remote failure, writes
// go remote-first and mirror into cache afterwards.
type WishlistService struct {
	store    store.Store
	cache    cache.Cache
	sessions SessionResolver
}

func NewWishlistService(st store.Store, c cache.Cache, sessions SessionResolver) *WishlistService {
	return &WishlistService{store: st, cache: c, sessions: sessions}
}

// GetUserWishlists returns the current user's wishlists. Without forceSync a
// non-empty cached list is returned as-is (stale reads allowed). Remote
// failure degrades to whatever is cached; it is never surfaced.
func (s *WishlistService) GetUserWishlists(ctx context.Context, forceSync bool) ([]models.Wishlist, error) {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil || user == nil {
		return []models.Wishlist{}, nil
	}

	cached := s.readCachedLists(ctx, user.Email)
	if !forceSync && len(cached) > 0 {
		return cached, nil
	}

	docs, err := s.store.Query(ctx, wishlistsCollection, store.Filter{Field: "ownerEmail", Value: user.Email})
	if err != nil {
		logging.Warn("Wishlist sync failed, serving cache", logging.Fields{"error": err.Error()})
		return cached, nil
	}

	lists := make([]models.Wishlist, 0, len(docs))
	for _, doc := range docs {
		var w models.Wishlist
		if err := doc.Decode(&w); err != nil {
			continue
		}
		w.ID = doc.ID
		lists = append(lists, w)
	}

	s.writeCachedLists(ctx, user.Email, lists)
	return lists, nil
}

// GetWishlistByID prefers the remote document and reconciles it into the
// cached list; on remote failure it falls back to the cached copy.
func (s *WishlistService) GetWishlistByID(ctx context.Context, id string) (*models.Wishlist, error) {
	user, _ := s.sessions.GetCurrentUser(ctx)

	doc, err := s.store.Get(ctx, wishlistsCollection, id)
	if err == nil {
		var w models.Wishlist
		if decodeErr := doc.Decode(&w); decodeErr != nil {
			return nil, decodeErr
		}
		w.ID = doc.ID
		if user != nil {
			s.replaceCachedList(ctx, user.Email, &w)
		}
		return &w, nil
	}

	if user != nil {
		for _, w := range s.readCachedLists(ctx, user.Email) {
			if w.ID == id {
				return &w, nil
			}
		}
	}

	return nil, ErrWishlistNotFound
}

// CreateWishlist writes a new wishlist owned by the current user and appends
// it to the cached list.
func (s *WishlistService) CreateWishlist(ctx context.Context, params models.CreateWishlistParams) (*models.Wishlist, error) {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if params.Name == "" {
		return nil, ErrNameRequired
	}

	now := time.Now().UTC()
	w := models.Wishlist{
		ID:            s.store.GenerateID(),
		Name:          params.Name,
		Description:   params.Description,
		IsPrivate:     params.IsPrivate,
		OwnerEmail:    user.Email,
		OwnerName:     user.Name,
		OwnerUsername: user.Username,
		Items:         []models.Item{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Set(ctx, wishlistsCollection, w.ID, &w, false); err != nil {
		return nil, fmt.Errorf("creating wishlist: %w", err)
	}

	lists := append(s.readCachedLists(ctx, user.Email), w)
	s.writeCachedLists(ctx, user.Email, lists)

	return &w, nil
}

// AddItem appends a new item to the wishlist. The read-modify-write of the
// embedded items array runs inside a store transaction, so concurrent adds
// cannot clobber each other.
func (s *WishlistService) AddItem(ctx context.Context, wishlistID string, params models.AddItemParams) (*models.Item, error) {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if err := validateItemParams(&params); err != nil {
		return nil, err
	}

	item := models.Item{
		ID:       s.store.GenerateID(),
		Name:     params.Name,
		Price:    params.Price,
		Link:     params.Link,
		Notes:    params.Notes,
		Priority: params.Priority,
		AddedAt:  time.Now().UTC(),
	}

	var items []models.Item
	err = s.store.RunTransaction(ctx, func(tx store.Tx) error {
		w, err := s.getForUpdate(ctx, tx, wishlistID, user.Email)
		if err != nil {
			return err
		}
		items = append(w.Items, item)
		return tx.Update(ctx, wishlistsCollection, wishlistID, store.Update{
			Set: map[string]any{"items": items, "updatedAt": time.Now().UTC()},
		})
	})
	if err != nil {
		return nil, err
	}

	s.mirrorItems(ctx, user.Email, wishlistID, items)
	return &item, nil
}

// RemoveItem filters the item out of the wishlist. Removing an id that is not
// present is a no-op, matching set-filter semantics.
func (s *WishlistService) RemoveItem(ctx context.Context, wishlistID, itemID string) error {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUnauthenticated
	}

	var items []models.Item
	err = s.store.RunTransaction(ctx, func(tx store.Tx) error {
		w, err := s.getForUpdate(ctx, tx, wishlistID, user.Email)
		if err != nil {
			return err
		}
		items = make([]models.Item, 0, len(w.Items))
		for _, it := range w.Items {
			if it.ID != itemID {
				items = append(items, it)
			}
		}
		return tx.Update(ctx, wishlistsCollection, wishlistID, store.Update{
			Set: map[string]any{"items": items, "updatedAt": time.Now().UTC()},
		})
	})
	if err != nil {
		return err
	}

	s.mirrorItems(ctx, user.Email, wishlistID, items)
	return nil
}

// DeleteWishlist deletes the remote document and prunes the cache entry even
// when the remote delete fails, reporting the outcome as a boolean. The cache
// prune keeps the local view consistent with "this should be gone".
func (s *WishlistService) DeleteWishlist(ctx context.Context, id string) bool {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil || user == nil {
		return false
	}

	// Refuse to delete somebody else's wishlist when the owner is knowable.
	if doc, err := s.store.Get(ctx, wishlistsCollection, id); err == nil {
		var w models.Wishlist
		if doc.Decode(&w) == nil && w.OwnerEmail != user.Email {
			return false
		}
	}

	ok := true
	if err := s.store.Delete(ctx, wishlistsCollection, id); err != nil {
		logging.Warn("Remote wishlist delete failed", logging.Fields{"id": id, "error": err.Error()})
		ok = false
	}

	lists := s.readCachedLists(ctx, user.Email)
	kept := make([]models.Wishlist, 0, len(lists))
	for _, w := range lists {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	s.writeCachedLists(ctx, user.Email, kept)

	return ok
}

// GetFriendWishlists returns a friend's public wishlists straight from the
// remote store; there is no cache path, and any failure yields an empty list.
func (s *WishlistService) GetFriendWishlists(ctx context.Context, friendEmail string) []models.Wishlist {
	docs, err := s.store.Query(ctx, wishlistsCollection,
		store.Filter{Field: "ownerEmail", Value: friendEmail},
		store.Filter{Field: "isPrivate", Value: false},
	)
	if err != nil {
		logging.Warn("Friend wishlist query failed", logging.Fields{"error": err.Error()})
		return []models.Wishlist{}
	}

	lists := make([]models.Wishlist, 0, len(docs))
	for _, doc := range docs {
		var w models.Wishlist
		if err := doc.Decode(&w); err != nil {
			continue
		}
		w.ID = doc.ID
		lists = append(lists, w)
	}
	return lists
}

func (s *WishlistService) getForUpdate(ctx context.Context, tx store.Tx, wishlistID, ownerEmail string) (*models.Wishlist, error) {
	doc, err := tx.Get(ctx, wishlistsCollection, wishlistID)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, ErrWishlistNotFound
	}
	if err != nil {
		return nil, err
	}

	var w models.Wishlist
	if err := doc.Decode(&w); err != nil {
		return nil, err
	}
	w.ID = doc.ID

	if w.OwnerEmail != ownerEmail {
		return nil, ErrNotWishlistOwner
	}
	return &w, nil
}

func validateItemParams(params *models.AddItemParams) error {
	if params.Name == "" {
		return ErrNameRequired
	}
	if params.Price != nil && *params.Price < 0 {
		return ErrNegativePrice
	}
	if params.Priority == "" {
		params.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(params.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

func (s *WishlistService) readCachedLists(ctx context.Context, email string) []models.Wishlist {
	data, err := s.cache.Get(ctx, cache.WishlistsKey(email))
	if err != nil || data == nil {
		return []models.Wishlist{}
	}
	var lists []models.Wishlist
	if err := json.Unmarshal(data, &lists); err != nil {
		return []models.Wishlist{}
	}
	return lists
}

func (s *WishlistService) writeCachedLists(ctx context.Context, email string, lists []models.Wishlist) {
	data, err := json.Marshal(lists)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.WishlistsKey(email), data); err != nil {
		logging.Warn("Failed to cache wishlists", logging.Fields{"error": err.Error()})
	}
}

func (s *WishlistService) replaceCachedList(ctx context.Context, email string, w *models.Wishlist) {
	lists := s.readCachedLists(ctx, email)
	for i := range lists {
		if lists[i].ID == w.ID {
			lists[i] = *w
			s.writeCachedLists(ctx, email, lists)
			return
		}
	}
}

func (s *WishlistService) mirrorItems(ctx context.Context, email, wishlistID string, items []models.Item) {
	lists := s.readCachedLists(ctx, email)
	for i := range lists {
		if lists[i].ID == wishlistID {
			lists[i].Items = items
			lists[i].UpdatedAt = time.Now().UTC()
			s.writeCachedLists(ctx, email, lists)
			return
		}
	}
}
