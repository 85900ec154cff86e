package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/logger"
	"github.com/hassan-khan07/Chat-App/internal/models"
)

func newGroupService() (*GroupService, *fakeGroupRepo, *fakeStore) {
	repo := newFakeGroupRepo()
	store := &fakeStore{}
	return NewGroupService(repo, store, logger.Nop()), repo, store
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err))
}

func TestGroupService_Create(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()

	group, err := svc.Create(context.Background(), "alice", "  Team Chat  ", " plans ", nil)
	req.NoError(err)
	req.Equal("Team Chat", group.Name)
	req.Equal("plans", group.Description)
	req.Equal("alice", group.CreatedBy)
	req.Len(group.Members, 1)
	req.Equal("alice", group.Members[0].UserID)
	req.Equal(models.RoleAdmin, group.Members[0].Role)
	req.Equal(1, group.TotalMembers)
}

func TestGroupService_Create_EmptyName(t *testing.T) {
	svc, _, _ := newGroupService()
	_, err := svc.Create(context.Background(), "alice", "   ", "", nil)
	requireKind(t, err, apperr.KindValidation)
}

func TestGroupService_Create_WithImage(t *testing.T) {
	req := require.New(t)
	svc, _, store := newGroupService()

	group, err := svc.Create(context.Background(), "alice", "Team", "", &FileUpload{
		Filename: "logo.png", ContentType: "image/png", Data: []byte{1},
	})
	req.NoError(err)
	req.NotNil(group.GroupImage)
	req.Equal([]string{"groups/logo.png"}, store.uploads)
}

func TestGroupService_Create_ImageUploadFails(t *testing.T) {
	svc, _, store := newGroupService()
	store.failOn = 1
	_, err := svc.Create(context.Background(), "alice", "Team", "", &FileUpload{
		Filename: "logo.png", ContentType: "image/png", Data: []byte{1},
	})
	requireKind(t, err, apperr.KindStorage)
}

func TestGroupService_UpdateDetails(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "old", nil)
	req.NoError(err)

	desc := "new description"
	updated, err := svc.UpdateDetails(ctx, group.ID, "alice", "Renamed", &desc)
	req.NoError(err)
	req.Equal("Renamed", updated.Name)
	req.Equal("new description", updated.Description)

	// description omitted: left as is
	updated, err = svc.UpdateDetails(ctx, group.ID, "alice", "Renamed Again", nil)
	req.NoError(err)
	req.Equal("new description", updated.Description)
}

func TestGroupService_UpdateDetails_Rejections(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	require.NoError(t, err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	require.NoError(t, err)

	_, err = svc.UpdateDetails(ctx, group.ID, "alice", "  ", nil)
	requireKind(t, err, apperr.KindValidation)

	blank := "   "
	_, err = svc.UpdateDetails(ctx, group.ID, "alice", "Team", &blank)
	requireKind(t, err, apperr.KindValidation)

	// bob is a plain member
	_, err = svc.UpdateDetails(ctx, group.ID, "bob", "Hijacked", nil)
	requireKind(t, err, apperr.KindPermission)

	_, err = svc.UpdateDetails(ctx, "missing", "alice", "Team", nil)
	requireKind(t, err, apperr.KindNotFound)
}

func TestGroupService_UpdateAvatar_ReleasesOldImage(t *testing.T) {
	req := require.New(t)
	svc, _, store := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", &FileUpload{
		Filename: "old.png", ContentType: "image/png", Data: []byte{1},
	})
	req.NoError(err)

	updated, err := svc.UpdateAvatar(ctx, group.ID, "alice", FileUpload{
		Filename: "new.png", ContentType: "image/png", Data: []byte{2},
	})
	req.NoError(err)
	req.Equal("groups/new.png", updated.GroupImage.StorageID)
	req.Equal([]string{"groups/old.png"}, store.deletes)
}

func TestGroupService_Delete_OwnerOnly(t *testing.T) {
	req := require.New(t)
	svc, repo, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	req.NoError(err)
	_, err = svc.ChangeRole(ctx, group.ID, "alice", "bob", models.RoleAdmin)
	req.NoError(err)

	// bob is an admin but not the creator
	err = svc.Delete(ctx, group.ID, "bob")
	requireKind(t, err, apperr.KindPermission)

	req.NoError(svc.Delete(ctx, group.ID, "alice"))
	_, err = repo.FindByID(ctx, group.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestGroupService_AddMembers(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)

	updated, err := svc.AddMembers(ctx, group.ID, "alice", []string{"bob", "carol"})
	req.NoError(err)
	req.Equal(3, updated.TotalMembers)
	req.Len(updated.Members, 3)
	for _, m := range updated.Members[1:] {
		req.Equal(models.RoleMember, m.Role)
	}

	// already-present ids are skipped, new ones still land
	updated, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob", "dave"})
	req.NoError(err)
	req.Equal(4, updated.TotalMembers)

	// nothing new at all is an error
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob", "carol"})
	requireKind(t, err, apperr.KindValidation)

	_, err = svc.AddMembers(ctx, group.ID, "alice", nil)
	requireKind(t, err, apperr.KindValidation)

	_, err = svc.AddMembers(ctx, group.ID, "bob", []string{"eve"})
	requireKind(t, err, apperr.KindPermission)
}

func TestGroupService_RemoveMember(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob", "carol"})
	req.NoError(err)

	updated, err := svc.RemoveMember(ctx, group.ID, "alice", "bob")
	req.NoError(err)
	req.Equal(2, updated.TotalMembers)
	_, stillThere := updated.Member("bob")
	req.False(stillThere)

	_, err = svc.RemoveMember(ctx, group.ID, "alice", "bob")
	requireKind(t, err, apperr.KindNotFound)
}

func TestGroupService_RemoveMember_CreatorProtected(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	require.NoError(t, err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	require.NoError(t, err)
	_, err = svc.ChangeRole(ctx, group.ID, "alice", "bob", models.RoleAdmin)
	require.NoError(t, err)

	// nobody removes the creator, not even a co-admin or the creator
	_, err = svc.RemoveMember(ctx, group.ID, "bob", "alice")
	requireKind(t, err, apperr.KindValidation)
	_, err = svc.RemoveMember(ctx, group.ID, "alice", "alice")
	requireKind(t, err, apperr.KindValidation)
}

func TestGroupService_RemoveMember_AdminOnlyByCreator(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	require.NoError(t, err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob", "carol"})
	require.NoError(t, err)
	_, err = svc.ChangeRole(ctx, group.ID, "alice", "bob", models.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.ChangeRole(ctx, group.ID, "alice", "carol", models.RoleAdmin)
	require.NoError(t, err)

	// bob (admin, not creator) cannot remove fellow admin carol
	_, err = svc.RemoveMember(ctx, group.ID, "bob", "carol")
	requireKind(t, err, apperr.KindPermission)

	// the creator can
	updated, err := svc.RemoveMember(ctx, group.ID, "alice", "carol")
	require.NoError(t, err)
	require.Equal(t, 2, updated.TotalMembers)
}

func TestGroupService_ChangeRole(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	req.NoError(err)

	updated, err := svc.ChangeRole(ctx, group.ID, "alice", "bob", models.RoleAdmin)
	req.NoError(err)
	req.True(updated.IsAdmin("bob"))

	_, err = svc.ChangeRole(ctx, group.ID, "alice", "bob", "owner")
	requireKind(t, err, apperr.KindValidation)

	_, err = svc.ChangeRole(ctx, group.ID, "alice", "ghost", models.RoleMember)
	requireKind(t, err, apperr.KindNotFound)

	// bob demotes himself: allowed, alice is still admin
	updated, err = svc.ChangeRole(ctx, group.ID, "bob", "bob", models.RoleMember)
	req.NoError(err)
	req.False(updated.IsAdmin("bob"))

	// bob (member) cannot change roles
	_, err = svc.ChangeRole(ctx, group.ID, "bob", "bob", models.RoleAdmin)
	requireKind(t, err, apperr.KindPermission)
}

func TestGroupService_ChangeRole_LastAdminCannotSelfDemote(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	require.NoError(t, err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	require.NoError(t, err)

	_, err = svc.ChangeRole(ctx, group.ID, "alice", "alice", models.RoleMember)
	requireKind(t, err, apperr.KindValidation)

	// with a second admin, self-demotion is fine
	_, err = svc.ChangeRole(ctx, group.ID, "alice", "bob", models.RoleAdmin)
	require.NoError(t, err)
	updated, err := svc.ChangeRole(ctx, group.ID, "alice", "alice", models.RoleMember)
	require.NoError(t, err)
	require.False(t, updated.IsAdmin("alice"))
	require.Equal(t, 1, updated.AdminCount())
}

func TestGroupService_Leave_Member(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	req.NoError(err)

	updated, err := svc.Leave(ctx, group.ID, "bob")
	req.NoError(err)
	req.Equal(1, updated.TotalMembers)
	_, stillThere := updated.Member("bob")
	req.False(stillThere)

	_, err = svc.Leave(ctx, group.ID, "bob")
	requireKind(t, err, apperr.KindNotFound)
}

func TestGroupService_Leave_AdminWithOtherAdmins(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	req.NoError(err)
	_, err = svc.ChangeRole(ctx, group.ID, "alice", "bob", models.RoleAdmin)
	req.NoError(err)

	updated, err := svc.Leave(ctx, group.ID, "bob")
	req.NoError(err)
	req.Equal(1, updated.TotalMembers)
	req.Equal(1, updated.AdminCount())
	req.True(updated.IsAdmin("alice"))
}

func TestGroupService_Leave_SoleAdminPromotesEarliestMember(t *testing.T) {
	req := require.New(t)
	svc, repo, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob"})
	req.NoError(err)

	// carol joins later than bob
	stored, err := repo.FindByID(ctx, group.ID)
	req.NoError(err)
	stored.Members = append(stored.Members, models.GroupMember{
		UserID: "carol", Role: models.RoleMember, JoinedAt: time.Now().UTC().Add(time.Hour),
	})
	stored.TotalMembers = len(stored.Members)
	req.NoError(repo.Update(ctx, stored))

	updated, err := svc.Leave(ctx, group.ID, "alice")
	req.NoError(err)
	req.Equal(2, updated.TotalMembers)
	req.True(updated.IsAdmin("bob"))
	req.False(updated.IsAdmin("carol"))
	req.Equal(1, updated.AdminCount())
}

func TestGroupService_Leave_ScenarioCreatorLeavesAfterAddingOne(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "a", "G", "", nil)
	req.NoError(err)
	_, err = svc.AddMembers(ctx, group.ID, "a", []string{"b"})
	req.NoError(err)

	updated, err := svc.Leave(ctx, group.ID, "a")
	req.NoError(err)
	req.Equal(1, updated.TotalMembers)
	req.Len(updated.Members, 1)
	req.Equal("b", updated.Members[0].UserID)
	req.Equal(models.RoleAdmin, updated.Members[0].Role)
}

func TestGroupService_Leave_LastMemberDeletesGroup(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)

	updated, err := svc.Leave(ctx, group.ID, "alice")
	req.NoError(err)
	req.Nil(updated)

	_, err = svc.Get(ctx, group.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestGroupService_Leave_SuccessionTieBreaksOnListOrder(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	// bob and carol get the identical joinedAt from one AddMembers call
	_, err = svc.AddMembers(ctx, group.ID, "alice", []string{"bob", "carol"})
	req.NoError(err)

	updated, err := svc.Leave(ctx, group.ID, "alice")
	req.NoError(err)
	req.True(updated.IsAdmin("bob"))
	req.False(updated.IsAdmin("carol"))
}

// TotalMembers has to equal len(Members) after every successful mutation.
func TestGroupService_TotalMembersInvariant(t *testing.T) {
	req := require.New(t)
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	check := func(g *models.Group) {
		t.Helper()
		req.Equal(len(g.Members), g.TotalMembers)
	}
	check(group)

	g, err := svc.AddMembers(ctx, group.ID, "alice", []string{"bob", "carol", "dave"})
	req.NoError(err)
	check(g)

	g, err = svc.RemoveMember(ctx, group.ID, "alice", "dave")
	req.NoError(err)
	check(g)

	g, err = svc.Leave(ctx, group.ID, "carol")
	req.NoError(err)
	check(g)
}

// Concurrent leaves of the same group must not lose updates: with the sole
// admin and members leaving at once, the group never ends up with members but
// zero admins.
func TestGroupService_ConcurrentLeaves(t *testing.T) {
	req := require.New(t)
	svc, repo, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice", "Team", "", nil)
	req.NoError(err)
	members := []string{"bob", "carol", "dave", "erin"}
	_, err = svc.AddMembers(ctx, group.ID, "alice", members)
	req.NoError(err)

	var wg sync.WaitGroup
	leavers := append([]string{"alice"}, members[:2]...)
	for _, uid := range leavers {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := svc.Leave(ctx, group.ID, uid)
			if err != nil {
				// a leaver may find the group already gone, never anything else
				require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
			}
		}(uid)
	}
	wg.Wait()

	final, err := repo.FindByID(ctx, group.ID)
	if errors.Is(err, apperr.NotFound("")) {
		return
	}
	req.NoError(err)
	req.Equal(len(final.Members), final.TotalMembers)
	if len(final.Members) > 0 {
		req.GreaterOrEqual(final.AdminCount(), 1)
	}
}
