// Package chattest provides in-memory fakes for the chat service ports,
// shared by the service, gateway and handler tests.
package chattest

import (
	"context"
	"sync"
	"time"

	"github.com/GustavoFrossard/P.A.T.A/internal/domain"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	byRoom   map[int64][]*domain.Message
	inserts  int
	failWith error
}

func NewStore() *Store {
	return &Store{byRoom: make(map[int64][]*domain.Message)}
}

func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Insert(_ context.Context, roomID, senderID int64, content string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	s.nextID++
	s.inserts++
	msg := &domain.Message{
		ID:        s.nextID,
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.byRoom[roomID] = append(s.byRoom[roomID], msg)

	out := *msg
	return &out, nil
}

func (s *Store) ListByRoom(_ context.Context, roomID int64, limit, offset int) ([]*domain.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.byRoom[roomID]
	total := len(all)

	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	out := make([]*domain.Message, 0, end-offset)
	for _, m := range all[offset:end] {
		copied := *m
		out = append(out, &copied)
	}
	return out, total, nil
}

func (s *Store) Inserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

type Users struct {
	mu sync.Mutex
	m  map[int64]*domain.User
}

func NewUsers(users ...*domain.User) *Users {
	u := &Users{m: make(map[int64]*domain.User)}
	for _, user := range users {
		u.m[user.ID] = user
	}
	return u
}

func (u *Users) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.m[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

type Listings struct {
	mu sync.Mutex
	m  map[int64]*domain.Listing
}

func NewListings(listings ...*domain.Listing) *Listings {
	l := &Listings{m: make(map[int64]*domain.Listing)}
	for _, listing := range listings {
		l.m[listing.ID] = listing
	}
	return l
}

func (l *Listings) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	listing, ok := l.m[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	out := *listing
	return &out, nil
}

type roomKey struct {
	pet, a, b int64
}

type Rooms struct {
	mu     sync.Mutex
	nextID int64
	byKey  map[roomKey]*domain.Room
	byID   map[int64]*domain.Room

	Users    *Users
	Listings *Listings
}

func NewRooms(users *Users, listings *Listings) *Rooms {
	return &Rooms{
		byKey:    make(map[roomKey]*domain.Room),
		byID:     make(map[int64]*domain.Room),
		Users:    users,
		Listings: listings,
	}
}

func (r *Rooms) GetOrCreate(_ context.Context, petID, a, b int64) (*domain.Room, bool, error) {
	if a == b {
		return nil, false, domain.ErrInvalidCounterparty
	}

	userA, userB := domain.CanonicalPair(a, b)
	key := roomKey{petID, userA, userB}

	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.byKey[key]; ok {
		out := *room
		return &out, false, nil
	}

	r.nextID++
	room := &domain.Room{
		ID:        r.nextID,
		PetID:     petID,
		UserA:     userA,
		UserB:     userB,
		CreatedAt: time.Now().UTC(),
	}
	r.byKey[key] = room
	r.byID[room.ID] = room

	out := *room
	return &out, true, nil
}

func (r *Rooms) Resolve(_ context.Context, roomID int64) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.byID[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	out := *room
	return &out, nil
}

func (r *Rooms) Summary(ctx context.Context, roomID int64) (*domain.RoomSummary, error) {
	room, err := r.Resolve(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return r.summarize(ctx, room)
}

func (r *Rooms) summarize(ctx context.Context, room *domain.Room) (*domain.RoomSummary, error) {
	s := &domain.RoomSummary{Room: *room}

	if listing, err := r.Listings.GetByID(ctx, room.PetID); err == nil {
		s.PetName = listing.Name
		if owner, err := r.Users.GetByID(ctx, listing.OwnerID); err == nil {
			s.PetOwnerUsername = owner.Username
		}
	}
	if ua, err := r.Users.GetByID(ctx, room.UserA); err == nil {
		s.UserAUsername = ua.Username
	}
	if ub, err := r.Users.GetByID(ctx, room.UserB); err == nil {
		s.UserBUsername = ub.Username
	}
	return s, nil
}

func (r *Rooms) ListForUser(ctx context.Context, userID int64) ([]*domain.RoomSummary, error) {
	r.mu.Lock()
	rooms := make([]*domain.Room, 0)
	for _, room := range r.byID {
		if room.HasParticipant(userID) {
			copied := *room
			rooms = append(rooms, &copied)
		}
	}
	r.mu.Unlock()

	summaries := make([]*domain.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		s, err := r.summarize(ctx, room)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (r *Rooms) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Cache mirrors the real layer's write-through semantics in memory: patch
// the page when one is cached, invalidate the user room lists on room
// creation.
type Cache struct {
	mu        sync.Mutex
	pages     map[int64]*domain.MessagePage
	userRooms map[int64][]domain.RoomView
}

func NewCache() *Cache {
	return &Cache{
		pages:     make(map[int64]*domain.MessagePage),
		userRooms: make(map[int64][]domain.RoomView),
	}
}

func (c *Cache) GetRoomPage(_ context.Context, roomID int64) (*domain.MessagePage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[roomID]
	if !ok {
		return nil, false
	}
	out := domain.MessagePage{Count: page.Count, Results: append([]domain.MessageView(nil), page.Results...)}
	return &out, true
}

func (c *Cache) SetRoomPage(_ context.Context, roomID int64, page *domain.MessagePage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := domain.MessagePage{Count: page.Count, Results: append([]domain.MessageView(nil), page.Results...)}
	c.pages[roomID] = &copied
	return nil
}

func (c *Cache) OnMessageAppended(_ context.Context, roomID int64, view domain.MessageView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[roomID]
	if !ok {
		return nil
	}
	page.Results = append(page.Results, view)
	page.Count++
	return nil
}

func (c *Cache) OnRoomCreated(_ context.Context, userA, userB int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.userRooms, userA)
	delete(c.userRooms, userB)
	return nil
}

func (c *Cache) GetUserRooms(_ context.Context, userID int64) ([]domain.RoomView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms, ok := c.userRooms[userID]
	if !ok {
		return nil, false
	}
	return append([]domain.RoomView(nil), rooms...), true
}

func (c *Cache) SetUserRooms(_ context.Context, userID int64, rooms []domain.RoomView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userRooms[userID] = append([]domain.RoomView(nil), rooms...)
	return nil
}

// Notifier records fan-out attempts and signals each one on C so tests can
// wait for the asynchronous notify without sleeping.
type Notifier struct {
	mu    sync.Mutex
	calls []int64
	err   error

	C chan struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{C: make(chan struct{}, 16)}
}

func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *Notifier) Notify(_ context.Context, roomID int64, _ domain.MessageView) error {
	n.mu.Lock()
	n.calls = append(n.calls, roomID)
	err := n.err
	n.mu.Unlock()

	n.C <- struct{}{}
	return err
}

func (n *Notifier) Calls() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.calls...)
}

// Resolver maps static bearer tokens to users.
type Resolver struct {
	Tokens map[string]*domain.User
}

func NewResolver() *Resolver {
	return &Resolver{Tokens: make(map[string]*domain.User)}
}

func (r *Resolver) Resolve(_ context.Context, token string) (*domain.User, error) {
	user, ok := r.Tokens[token]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *user
	return &out, nil
}
