package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/models"
)

// fakeGroupRepo is an in-memory GroupRepository. Reads hand out copies so a
// service mutation only becomes visible through Update, like the real store.
type fakeGroupRepo struct {
	mu     sync.Mutex
	nextID int
	groups map[string]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[string]*models.Group)}
}

func cloneGroup(g *models.Group) *models.Group {
	cp := *g
	cp.Members = make([]models.GroupMember, len(g.Members))
	copy(cp.Members, g.Members)
	if g.GroupImage != nil {
		img := *g.GroupImage
		cp.GroupImage = &img
	}
	return &cp
}

func (r *fakeGroupRepo) Insert(_ context.Context, g *models.Group) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	g.ID = fmt.Sprintf("group-%d", r.nextID)
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	r.groups[g.ID] = cloneGroup(g)
	return g, nil
}

func (r *fakeGroupRepo) FindByID(_ context.Context, id string) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, apperr.NotFound("group not found")
	}
	return cloneGroup(g), nil
}

func (r *fakeGroupRepo) ListForUser(_ context.Context, userID string) ([]*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Group
	for _, g := range r.groups {
		if _, ok := g.Member(userID); ok {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) Update(_ context.Context, g *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[g.ID]; !ok {
		return apperr.NotFound("group not found")
	}
	g.UpdatedAt = time.Now().UTC()
	r.groups[g.ID] = cloneGroup(g)
	return nil
}

func (r *fakeGroupRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return apperr.NotFound("group not found")
	}
	delete(r.groups, id)
	return nil
}

// fakeStore records uploads and deletes. When failOn is n > 0, the nth
// upload attempt and every one after it fail.
type fakeStore struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	attempts int
	failOn   int
}

func (s *fakeStore) Upload(_ context.Context, folder, filename, _ string, _ []byte) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failOn > 0 && s.attempts >= s.failOn {
		return nil, fmt.Errorf("bucket unavailable")
	}
	key := folder + "/" + filename
	s.uploads = append(s.uploads, key)
	return &models.Image{StorageID: key, URL: "https://cdn.test/" + key}, nil
}

func (s *fakeStore) Delete(_ context.Context, storageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, storageID)
	return nil
}

type fakeDirectRepo struct {
	mu     sync.Mutex
	nextID int
	msgs   []*models.DirectMessage
}

func (r *fakeDirectRepo) Insert(_ context.Context, m *models.DirectMessage) (*models.DirectMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = fmt.Sprintf("dm-%d", r.nextID)
	m.CreatedAt = time.Now().UTC()
	cp := *m
	r.msgs = append(r.msgs, &cp)
	return m, nil
}

func (r *fakeDirectRepo) History(_ context.Context, userA, userB string) ([]*models.DirectMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DirectMessage
	for _, m := range r.msgs {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeGroupMsgRepo struct {
	mu     sync.Mutex
	nextID int
	msgs   []*models.GroupMessage
}

func (r *fakeGroupMsgRepo) Insert(_ context.Context, m *models.GroupMessage) (*models.GroupMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = fmt.Sprintf("gm-%d", r.nextID)
	m.CreatedAt = time.Now().UTC()
	if m.Images == nil {
		m.Images = []string{}
	}
	cp := *m
	r.msgs = append(r.msgs, &cp)
	return m, nil
}

func (r *fakeGroupMsgRepo) History(_ context.Context, groupID string, page, limit int64) ([]*models.GroupMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GroupMessage
	for _, m := range r.msgs {
		if m.GroupID == groupID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeDeliverer struct {
	mu     sync.Mutex
	direct []*models.DirectMessage
	group  []*models.GroupMessage
}

func (d *fakeDeliverer) DeliverDirect(m *models.DirectMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.direct = append(d.direct, m)
}

func (d *fakeDeliverer) DeliverGroup(m *models.GroupMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.group = append(d.group, m)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Insert(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, apperr.Validation("user with this email already exists")
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	u.CreatedAt = time.Now().UTC()
	cp := *u
	r.users[u.ID] = &cp
	return u, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *fakeUserRepo) ListOthers(_ context.Context, excludeID string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.ID != excludeID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, id string, avatar *models.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Avatar = avatar
	return nil
}

func (r *fakeUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.RefreshToken = token
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (s *fakeTokenStore) Save(_ context.Context, userID, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *fakeTokenStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[userID]
	if !ok {
		return "", apperr.Auth("refresh token expired or revoked")
	}
	return token, nil
}

func (s *fakeTokenStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
