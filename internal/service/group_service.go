package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/models"
	"github.com/hassan-khan07/Chat-App/internal/repository"
	"github.com/hassan-khan07/Chat-App/internal/storage"
)

// FileUpload is raw file content handed in by the HTTP layer.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// keyedMutex hands out one mutex per key. Entries are never evicted; the set
// of live group ids is small relative to what the map costs.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// GroupService is the state machine over a group's member list. Every
// mutation of the same group is serialized through a per-group lock so
// concurrent read-modify-write cycles cannot lose updates.
type GroupService struct {
	groups repository.GroupRepository
	store  storage.ObjectStore
	log    *zap.SugaredLogger
	locks  *keyedMutex
}

func NewGroupService(groups repository.GroupRepository, store storage.ObjectStore, log *zap.SugaredLogger) *GroupService {
	return &GroupService{
		groups: groups,
		store:  store,
		log:    log,
		locks:  newKeyedMutex(),
	}
}

// Create makes a new group with the creator as its sole admin.
func (s *GroupService) Create(ctx context.Context, creatorID, name, description string, image *FileUpload) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}

	var groupImage *models.Image
	if image != nil {
		img, err := s.store.Upload(ctx, "groups", image.Filename, image.ContentType, image.Data)
		if err != nil {
			return nil, apperr.Storage("failed to upload group image", err)
		}
		groupImage = img
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   creatorID,
		Members: []models.GroupMember{
			{UserID: creatorID, Role: models.RoleAdmin, JoinedAt: time.Now().UTC()},
		},
		GroupImage:   groupImage,
		TotalMembers: 1,
	}
	return s.groups.Insert(ctx, group)
}

// UpdateDetails renames the group and, when description is non-nil, replaces
// its description. Admins only.
func (s *GroupService) UpdateDetails(ctx context.Context, groupID, requesterID, name string, description *string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		return nil, apperr.Validation("group description cannot be an empty string")
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(requesterID) {
		return nil, apperr.Permission("only admins can update group details")
	}

	group.Name = name
	if description != nil {
		group.Description = strings.TrimSpace(*description)
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateAvatar replaces the group image. The old object is released
// best-effort after the swap.
func (s *GroupService) UpdateAvatar(ctx context.Context, groupID, requesterID string, image FileUpload) (*models.Group, error) {
	if len(image.Data) == 0 {
		return nil, apperr.Validation("group image file is missing")
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	newImage, err := s.store.Upload(ctx, "groups", image.Filename, image.ContentType, image.Data)
	if err != nil {
		return nil, apperr.Storage("failed to upload group image", err)
	}

	old := group.GroupImage
	group.GroupImage = newImage
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}

	if old != nil && old.StorageID != "" {
		if err := s.store.Delete(ctx, old.StorageID); err != nil {
			s.log.Warnw("failed to release old group image", "storageId", old.StorageID, "error", err)
		}
	}
	return group, nil
}

// Delete removes the group entirely. Only the creator may delete; admins who
// are not the creator are rejected. Group messages are left orphaned.
func (s *GroupService) Delete(ctx context.Context, groupID, requesterID string) error {
	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != requesterID {
		return apperr.Permission("only the owner can delete this group")
	}
	return s.groups.Delete(ctx, groupID)
}

// AddMembers adds the given users with role member. Users already in the
// group are skipped silently; the call fails only if nobody new remains.
func (s *GroupService) AddMembers(ctx context.Context, groupID, requesterID string, userIDs []string) (*models.Group, error) {
	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(requesterID) {
		return nil, apperr.Permission("only admins can add members")
	}
	if len(userIDs) == 0 {
		return nil, apperr.Validation("please provide at least one user id")
	}

	now := time.Now().UTC()
	added := 0
	for _, id := range userIDs {
		if _, exists := group.Member(id); exists {
			continue
		}
		group.Members = append(group.Members, models.GroupMember{
			UserID:   id,
			Role:     models.RoleMember,
			JoinedAt: now,
		})
		added++
	}
	if added == 0 {
		return nil, apperr.Validation("all selected users are already in the group")
	}

	group.TotalMembers = len(group.Members)
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// RemoveMember kicks a user out of the group. The creator can never be
// removed, and only the creator may remove another admin.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, requesterID, targetUserID string) (*models.Group, error) {
	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	target, ok := group.Member(targetUserID)
	if !ok {
		return nil, apperr.NotFound("user is not a member of this group")
	}
	if group.CreatedBy == targetUserID {
		return nil, apperr.Validation("cannot remove the group creator")
	}
	if target.Role == models.RoleAdmin && group.CreatedBy != requesterID {
		return nil, apperr.Permission("only the group creator can remove an admin")
	}

	group.RemoveMember(targetUserID)
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ChangeRole promotes or demotes a member. The sole remaining admin cannot
// demote themself.
func (s *GroupService) ChangeRole(ctx context.Context, groupID, requesterID, targetUserID string, newRole models.Role) (*models.Group, error) {
	if !newRole.Valid() {
		return nil, apperr.Validation("invalid role specified")
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	target, ok := group.Member(targetUserID)
	if !ok {
		return nil, apperr.NotFound("user is not a member of this group")
	}
	if !group.IsAdmin(requesterID) {
		return nil, apperr.Permission("only admins can change member roles")
	}
	if targetUserID == requesterID &&
		target.Role == models.RoleAdmin &&
		newRole == models.RoleMember &&
		group.AdminCount() == 1 {
		return nil, apperr.Validation("you cannot demote yourself because you are the only admin; promote another member first")
	}

	target.Role = newRole
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Leave removes the requester from the group. When the sole admin leaves,
// the longest-standing remaining member is promoted; an empty group is
// deleted instead of left behind. Returns nil when the group was deleted.
func (s *GroupService) Leave(ctx context.Context, groupID, requesterID string) (*models.Group, error) {
	unlock := s.locks.Lock(groupID)
	defer unlock()

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	leaving, ok := group.Member(requesterID)
	if !ok {
		return nil, apperr.NotFound("user is not a member of this group")
	}

	soleAdmin := leaving.Role == models.RoleAdmin && group.AdminCount() == 1
	group.RemoveMember(requesterID)

	if soleAdmin {
		if len(group.Members) == 0 {
			if err := s.groups.Delete(ctx, groupID); err != nil {
				return nil, err
			}
			s.log.Infow("group deleted, last member left", "groupId", groupID)
			return nil, nil
		}
		// succession: earliest joiner wins, ties break on member-list order
		earliest := &group.Members[0]
		for i := range group.Members[1:] {
			m := &group.Members[i+1]
			if m.JoinedAt.Before(earliest.JoinedAt) {
				earliest = m
			}
		}
		earliest.Role = models.RoleAdmin
		s.log.Infow("sole admin left, member promoted",
			"groupId", groupID, "promotedUserId", earliest.UserID)
	}

	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Get fetches a single group.
func (s *GroupService) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.groups.FindByID(ctx, groupID)
}

// ListForUser returns every group the user is a member of.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.groups.ListForUser(ctx, userID)
}
