package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okovalenko/wishlink/internal/cache"
	"github.com/okovalenko/wishlink/internal/logging"
	"github.com/okovalenko/wishlink/internal/models"
	"github.com/okovalenko/wishlink/internal/store"
)

// FriendService keeps the friend graph symmetric: accepting and removing run
// as multi-document store transactions so both users' documents move together.
type FriendService struct {
	store    store.Store
	cache    cache.Cache
	sessions SessionResolver
}

func NewFriendService(st store.Store, c cache.Cache, sessions SessionResolver) *FriendService {
	return &FriendService{store: st, cache: c, sessions: sessions}
}

// GetUserByEmail fetches a user's profile document. A missing document is not
// an error; it returns nil.
func (s *FriendService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	doc, err := s.store.Get(ctx, usersCollection, email)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", email, err)
	}

	var user models.User
	if err := doc.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers does a case-insensitive substring match over name, username and
// email, excluding the searcher. Remote failure yields an empty result.
func (s *FriendService) SearchUsers(ctx context.Context, query string) []models.UserSummary {
	query = strings.ToLower(strings.TrimSpace(query))

	self := ""
	if user, _ := s.sessions.GetCurrentUser(ctx); user != nil {
		self = user.Email
	}

	docs, err := s.store.Query(ctx, usersCollection)
	if err != nil {
		logging.Warn("User search failed", logging.Fields{"error": err.Error()})
		return []models.UserSummary{}
	}

	results := []models.UserSummary{}
	for _, doc := range docs {
		var user models.User
		if err := doc.Decode(&user); err != nil {
			continue
		}
		if user.Email == self {
			continue
		}
		if strings.Contains(strings.ToLower(user.Name), query) ||
			strings.Contains(strings.ToLower(user.Username), query) ||
			strings.Contains(strings.ToLower(user.Email), query) {
			results = append(results, user.Summary())
		}
	}
	return results
}

// GetFriends materializes the current user's friends list into summaries.
// Without forceSync an existing cache entry wins even when empty; remote
// failure degrades to the cache.
func (s *FriendService) GetFriends(ctx context.Context, forceSync bool) ([]models.UserSummary, error) {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil || user == nil {
		return []models.UserSummary{}, nil
	}

	if !forceSync {
		if cached, ok := s.readCachedSummaries(ctx, cache.FriendsKey(user.Email)); ok {
			return cached, nil
		}
	}

	fresh, err := s.GetUserByEmail(ctx, user.Email)
	if err != nil || fresh == nil {
		logging.Warn("Friend sync failed, serving cache", logging.Fields{"email": user.Email})
		cached, _ := s.readCachedSummaries(ctx, cache.FriendsKey(user.Email))
		return cached, nil
	}

	friends := s.materialize(ctx, fresh.Friends)
	s.writeCachedSummaries(ctx, cache.FriendsKey(user.Email), friends)
	return friends, nil
}

// GetFriendRequests returns pending incoming requests. Requests are always
// fetched remote-first; the cache is only a fallback for failures, never a
// way to skip the fetch, since a stale request list is actively misleading.
func (s *FriendService) GetFriendRequests(ctx context.Context) ([]models.UserSummary, error) {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil || user == nil {
		return []models.UserSummary{}, nil
	}

	fresh, err := s.GetUserByEmail(ctx, user.Email)
	if err != nil || fresh == nil {
		cached, _ := s.readCachedSummaries(ctx, cache.RequestsKey(user.Email))
		return cached, nil
	}

	requests := s.materialize(ctx, fresh.FriendRequests)
	s.writeCachedSummaries(ctx, cache.RequestsKey(user.Email), requests)
	return requests, nil
}

// SendFriendRequest adds the sender to the target's pending set. A request
// from someone whose own request is already pending here is treated as an
// acceptance. Re-sending is idempotent through the array-union write.
func (s *FriendService) SendFriendRequest(ctx context.Context, friendEmail string) error {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUnauthenticated
	}

	if friendEmail == user.Email {
		return ErrCannotFriendSelf
	}

	target, err := s.GetUserByEmail(ctx, friendEmail)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	if target.HasFriend(user.Email) {
		return ErrAlreadyFriends
	}

	// The other side already asked; short-circuit into an acceptance.
	self, err := s.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if self != nil && self.HasFriendRequest(friendEmail) {
		return s.AcceptFriendRequest(ctx, friendEmail)
	}

	if err := s.store.Update(ctx, usersCollection, friendEmail, store.Update{
		ArrayUnion: map[string][]string{"friendRequests": {user.Email}},
	}); err != nil {
		return fmt.Errorf("sending friend request: %w", err)
	}
	return nil
}

// AcceptFriendRequest moves friendEmail from the current user's pending set
// into both users' friends sets. Both documents change in one transaction so
// the relation is either mutual or untouched.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, friendEmail string) error {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUnauthenticated
	}

	err = s.store.RunTransaction(ctx, func(tx store.Tx) error {
		if _, err := tx.Get(ctx, usersCollection, user.Email); err != nil {
			return s.asUserNotFound(err)
		}
		if _, err := tx.Get(ctx, usersCollection, friendEmail); err != nil {
			return s.asUserNotFound(err)
		}

		if err := tx.Update(ctx, usersCollection, user.Email, store.Update{
			ArrayUnion:  map[string][]string{"friends": {friendEmail}},
			ArrayRemove: map[string][]string{"friendRequests": {friendEmail}},
		}); err != nil {
			return err
		}
		return tx.Update(ctx, usersCollection, friendEmail, store.Update{
			ArrayUnion: map[string][]string{"friends": {user.Email}},
		})
	})
	if err != nil {
		return err
	}

	s.resync(ctx)
	return nil
}

// RejectFriendRequest drops the pending request without touching the sender's
// document.
func (s *FriendService) RejectFriendRequest(ctx context.Context, friendEmail string) error {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUnauthenticated
	}

	if err := s.store.Update(ctx, usersCollection, user.Email, store.Update{
		ArrayRemove: map[string][]string{"friendRequests": {friendEmail}},
	}); err != nil {
		return fmt.Errorf("rejecting friend request: %w", err)
	}

	if _, err := s.GetFriendRequests(ctx); err != nil {
		logging.Warn("Request resync failed", logging.Fields{"error": err.Error()})
	}
	return nil
}

// RemoveFriend removes the friendship from both sides in one transaction.
func (s *FriendService) RemoveFriend(ctx context.Context, friendEmail string) error {
	user, err := s.sessions.GetCurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUnauthenticated
	}

	err = s.store.RunTransaction(ctx, func(tx store.Tx) error {
		if _, err := tx.Get(ctx, usersCollection, user.Email); err != nil {
			return s.asUserNotFound(err)
		}
		if _, err := tx.Get(ctx, usersCollection, friendEmail); err != nil {
			return s.asUserNotFound(err)
		}

		if err := tx.Update(ctx, usersCollection, user.Email, store.Update{
			ArrayRemove: map[string][]string{"friends": {friendEmail}},
		}); err != nil {
			return err
		}
		return tx.Update(ctx, usersCollection, friendEmail, store.Update{
			ArrayRemove: map[string][]string{"friends": {user.Email}},
		})
	})
	if err != nil {
		return err
	}

	s.resync(ctx)
	return nil
}

func (s *FriendService) asUserNotFound(err error) error {
	if errors.Is(err, store.ErrDocumentNotFound) {
		return ErrUserNotFound
	}
	return err
}

// materialize turns stored email references into summaries, skipping any that
// no longer resolve.
func (s *FriendService) materialize(ctx context.Context, emails []string) []models.UserSummary {
	summaries := make([]models.UserSummary, 0, len(emails))
	for _, email := range emails {
		user, err := s.GetUserByEmail(ctx, email)
		if err != nil || user == nil {
			continue
		}
		summaries = append(summaries, user.Summary())
	}
	return summaries
}

// resync refreshes cached friends and requests after a graph mutation;
// failures here only cost freshness, not correctness.
func (s *FriendService) resync(ctx context.Context) {
	if _, err := s.GetFriends(ctx, true); err != nil {
		logging.Warn("Friend resync failed", logging.Fields{"error": err.Error()})
	}
	if _, err := s.GetFriendRequests(ctx); err != nil {
		logging.Warn("Request resync failed", logging.Fields{"error": err.Error()})
	}
}

func (s *FriendService) readCachedSummaries(ctx context.Context, key string) ([]models.UserSummary, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return []models.UserSummary{}, false
	}
	var summaries []models.UserSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return []models.UserSummary{}, false
	}
	if summaries == nil {
		summaries = []models.UserSummary{}
	}
	return summaries, true
}

func (s *FriendService) writeCachedSummaries(ctx context.Context, key string, summaries []models.UserSummary) {
	data, err := json.Marshal(summaries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		logging.Warn("Failed to cache summaries", logging.Fields{"error": err.Error()})
	}
}
