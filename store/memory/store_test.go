package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/steward/account"
	"github.com/xraph/steward/assignment"
	"github.com/xraph/steward/auditlog"
	"github.com/xraph/steward/id"
	"github.com/xraph/steward/permission"
	"github.com/xraph/steward/policy"
	"github.com/xraph/steward/role"
	"github.com/xraph/steward/store"
)

func TestAccountCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := &account.Account{
		ID:      id.NewAccountID(),
		Email:   "ops@example.com",
		Name:    "Ops Admin",
		Type:    account.TypeAdmin,
		Status:  account.StatusActive,
		Version: 1,
	}

	// Create
	if err := s.CreateAccount(ctx, a); err != nil {
		t.Fatal(err)
	}

	// Duplicate live email
	dup := &account.Account{ID: id.NewAccountID(), Email: "ops@example.com", Version: 1}
	if err := s.CreateAccount(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Get
	got, err := s.GetAccount(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "ops@example.com" {
		t.Fatalf("expected ops@example.com, got %s", got.Email)
	}

	// GetByEmail
	got, err = s.GetAccountByEmail(ctx, "ops@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != a.ID.String() {
		t.Fatal("email lookup mismatch")
	}

	// Update
	a.Name = "Operations"
	if err := s.UpdateAccount(ctx, a); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetAccount(ctx, a.ID)
	if got.Name != "Operations" {
		t.Fatal("update failed")
	}
	if got.Version != 2 {
		t.Fatalf("expected version 2, got %d", got.Version)
	}

	// List + Count
	list, _ := s.ListAccounts(ctx, &account.ListFilter{Type: account.TypeAdmin})
	if len(list) != 1 {
		t.Fatalf("expected 1 account, got %d", len(list))
	}
	count, _ := s.CountAccounts(ctx, nil)
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}
}

func TestAccountStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := &account.Account{ID: id.NewAccountID(), Email: "a@example.com", Version: 1}
	if err := s.CreateAccount(ctx, a); err != nil {
		t.Fatal(err)
	}

	// Two readers load version 1.
	first, _ := s.GetAccount(ctx, a.ID)
	second, _ := s.GetAccount(ctx, a.ID)

	first.Status = account.StatusSuspended
	if err := s.UpdateAccount(ctx, first); err != nil {
		t.Fatal(err)
	}

	second.Status = account.StatusActive
	if err := s.UpdateAccount(ctx, second); !errors.Is(err, store.ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}

	got, _ := s.GetAccount(ctx, a.ID)
	if got.Status != account.StatusSuspended {
		t.Fatalf("winner's status lost: %s", got.Status)
	}
}

func TestPermissionIdentifierUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &permission.Permission{
		ID:         id.NewPermissionID(),
		Identifier: "user:read",
		Resource:   "user",
		Action:     permission.ActionRead,
		IsActive:   true,
	}
	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}

	dup := &permission.Permission{ID: id.NewPermissionID(), Identifier: "user:read"}
	if err := s.CreatePermission(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Soft-delete the first; the identifier becomes claimable again.
	now := time.Now().UTC()
	p.DeletedAt = &now
	p.IsActive = false
	if err := s.UpdatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePermission(ctx, dup); err != nil {
		t.Fatal(err)
	}

	// Identifier lookup sees only the live row.
	got, err := s.GetPermissionByIdentifier(ctx, "user:read")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != dup.ID.String() {
		t.Fatal("identifier lookup returned the deleted row")
	}
}

func TestPermissionListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	seed := []struct {
		resource string
		action   permission.Action
	}{
		{"user", permission.ActionRead},
		{"billing", permission.ActionManage},
		{"user", permission.ActionCreate},
	}
	for _, in := range seed {
		p := &permission.Permission{
			ID:         id.NewPermissionID(),
			Identifier: in.resource + ":" + string(in.action),
			Resource:   in.resource,
			Action:     in.action,
			IsActive:   true,
		}
		if err := s.CreatePermission(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListPermissions(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"billing:manage", "user:create", "user:read"}
	if len(list) != len(want) {
		t.Fatalf("expected %d permissions, got %d", len(want), len(list))
	}
	for i, p := range list {
		if p.Identifier != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], p.Identifier)
		}
	}

	filtered, _ := s.ListPermissions(ctx, &permission.ListFilter{Resource: "user"})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 user permissions, got %d", len(filtered))
	}
}

func TestPolicyCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	permID := id.NewPermissionID()
	p := &policy.Policy{
		ID:            id.NewPolicyID(),
		Identifier:    "viewer",
		Name:          "Viewer",
		PermissionIDs: []id.PermissionID{permID},
		Priority:      10,
		Category:      policy.CategoryCustom,
		IsActive:      true,
	}
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPolicyByIdentifier(ctx, "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.PermissionIDs) != 1 || got.PermissionIDs[0].String() != permID.String() {
		t.Fatal("permission references lost")
	}

	// Returned copies do not alias the stored membership set.
	got.PermissionIDs[0] = id.NewPermissionID()
	again, _ := s.GetPolicy(ctx, p.ID)
	if again.PermissionIDs[0].String() != permID.String() {
		t.Fatal("stored policy aliased by returned copy")
	}

	// Ordering by priority descending.
	high := &policy.Policy{ID: id.NewPolicyID(), Identifier: "admin", Name: "Admin", Priority: 90, IsActive: true}
	if err := s.CreatePolicy(ctx, high); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListPolicies(ctx, nil)
	if list[0].Identifier != "admin" {
		t.Fatalf("expected admin first, got %s", list[0].Identifier)
	}
}

func TestRoleDefaultLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetDefaultRole(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	r := &role.Role{
		ID:         id.NewRoleID(),
		Identifier: "member",
		Name:       "Member",
		IsActive:   true,
		IsDefault:  true,
	}
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDefaultRole(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Identifier != "member" {
		t.Fatalf("expected member, got %s", got.Identifier)
	}

	// An inactive default is not served.
	r.IsActive = false
	if err := s.UpdateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetDefaultRole(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAssignmentLivePairUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewAccountID()
	roleID := id.NewRoleID()
	now := time.Now().UTC()

	a := &assignment.Assignment{
		ID:         id.NewAssignmentID(),
		UserID:     userID,
		RoleID:     roleID,
		IsActive:   true,
		AssignedAt: now,
		CreatedAt:  now,
	}
	if err := s.CreateAssignment(ctx, a); err != nil {
		t.Fatal(err)
	}

	dup := &assignment.Assignment{
		ID:         id.NewAssignmentID(),
		UserID:     userID,
		RoleID:     roleID,
		IsActive:   true,
		AssignedAt: now,
		CreatedAt:  now,
	}
	if err := s.CreateAssignment(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Soft-delete the live row, then the pair is free again.
	a.DeletedAt = &now
	a.IsActive = false
	if err := s.UpdateAssignment(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAssignment(ctx, dup); err != nil {
		t.Fatal(err)
	}

	// Restoring the soft-deleted row now collides with dup.
	a.DeletedAt = nil
	if err := s.UpdateAssignment(ctx, a); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on restore, got %v", err)
	}
}

func TestAssignmentConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewAccountID()
	roleID := id.NewRoleID()
	now := time.Now().UTC()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.CreateAssignment(ctx, &assignment.Assignment{
				ID:         id.NewAssignmentID(),
				UserID:     userID,
				RoleID:     roleID,
				IsActive:   true,
				AssignedAt: now,
				CreatedAt:  now,
			})
		}()
	}
	wg.Wait()

	live := 0
	list, _ := s.ListAssignments(ctx, &assignment.ListFilter{UserID: &userID, IncludeDeleted: true})
	for _, a := range list {
		if a.DeletedAt == nil {
			live++
		}
	}
	if live != 1 {
		t.Fatalf("expected exactly 1 live row, got %d", live)
	}
}

func TestEffectiveAssignmentQueries(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewAccountID()
	roleID := id.NewRoleID()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	// Effective assignment.
	ok := &assignment.Assignment{
		ID: id.NewAssignmentID(), UserID: userID, RoleID: roleID,
		IsActive: true, AssignedAt: now, CreatedAt: now,
	}
	// Expired assignment for another role.
	expired := &assignment.Assignment{
		ID: id.NewAssignmentID(), UserID: userID, RoleID: id.NewRoleID(),
		IsActive: true, AssignedAt: past, ExpiresAt: &past, CreatedAt: past,
	}
	for _, a := range []*assignment.Assignment{ok, expired} {
		if err := s.CreateAssignment(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	effective, err := s.ListEffectiveAssignments(ctx, userID, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 1 || effective[0].ID.String() != ok.ID.String() {
		t.Fatalf("expected only the unexpired assignment, got %d rows", len(effective))
	}

	byRole, err := s.ListEffectiveAssignmentsByRole(ctx, roleID, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(byRole) != 1 || byRole[0].UserID.String() != userID.String() {
		t.Fatal("inverse query mismatch")
	}
}

func TestGetDeletedAssignmentPicksLatest(t *testing.T) {
	ctx := context.Background()
	s := New()

	userID := id.NewAccountID()
	roleID := id.NewRoleID()
	older := time.Now().UTC().Add(-2 * time.Hour)
	newer := time.Now().UTC().Add(-time.Hour)

	first := &assignment.Assignment{
		ID: id.NewAssignmentID(), UserID: userID, RoleID: roleID,
		AssignedAt: older, CreatedAt: older, DeletedAt: &older,
	}
	second := &assignment.Assignment{
		ID: id.NewAssignmentID(), UserID: userID, RoleID: roleID,
		AssignedAt: newer, CreatedAt: newer, DeletedAt: &newer,
	}
	for _, a := range []*assignment.Assignment{first, second} {
		if err := s.CreateAssignment(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetDeletedAssignment(ctx, userID, roleID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != second.ID.String() {
		t.Fatal("expected most recently deleted row")
	}
}

func TestAuditLogQueryAndPurge(t *testing.T) {
	ctx := context.Background()
	s := New()

	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC()

	entries := []*auditlog.Entry{
		{ID: id.NewAuditLogID(), Action: auditlog.ActionAccountSuspended, TargetType: "account", TargetID: "a1", CreatedAt: old},
		{ID: id.NewAuditLogID(), Action: auditlog.ActionAccountReactivated, TargetType: "account", TargetID: "a1", CreatedAt: recent},
	}
	for _, e := range entries {
		if err := s.CreateAuditLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	// Newest first.
	list, err := s.ListAuditLogs(ctx, &auditlog.QueryFilter{TargetID: "a1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Action != auditlog.ActionAccountReactivated {
		t.Fatal("expected newest entry first")
	}

	// Action filter.
	filtered, _ := s.ListAuditLogs(ctx, &auditlog.QueryFilter{Action: auditlog.ActionAccountSuspended})
	if len(filtered) != 1 {
		t.Fatalf("expected 1 suspended entry, got %d", len(filtered))
	}

	// Purge removes only entries older than the cutoff.
	purged, err := s.PurgeAuditLogs(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
	count, _ := s.CountAuditLogs(ctx, nil)
	if count != 1 {
		t.Fatalf("expected 1 remaining, got %d", count)
	}
}

func TestListByIDsSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	s := New()

	now := time.Now().UTC()
	live := &role.Role{ID: id.NewRoleID(), Identifier: "live", Name: "Live", IsActive: true}
	dead := &role.Role{ID: id.NewRoleID(), Identifier: "dead", Name: "Dead", DeletedAt: &now}
	for _, r := range []*role.Role{live, dead} {
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListRolesByIDs(ctx, []id.RoleID{live.ID, dead.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Identifier != "live" {
		t.Fatal("expected only the live role")
	}
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 5; i++ {
		a := &account.Account{
			ID:        id.NewAccountID(),
			Email:     string(rune('a'+i)) + "@example.com",
			Version:   1,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		if err := s.CreateAccount(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	page, _ := s.ListAccounts(ctx, &account.ListFilter{Limit: 2, Offset: 2})
	if len(page) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(page))
	}

	// Count ignores pagination.
	count, _ := s.CountAccounts(ctx, &account.ListFilter{Limit: 2, Offset: 2})
	if count != 5 {
		t.Fatalf("expected count 5, got %d", count)
	}
}
