package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/idx"
	"github.com/ziberlive/colive/pkg/invitecode"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type env struct {
	store        store.Store
	hasher       *cryptox.Hasher
	community    domain.Community
	admin        domain.Member
	invites      *InviteService
	registration *RegistrationService
	approvals    *ApprovalService
	members      *MemberService
	locations    *LocationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithDSN(t, ":memory:")
}

// newFileEnv runs on a database file so that concurrent transactions use
// separate connections, as they do in production.
func newFileEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithDSN(t, "file:"+filepath.Join(t.TempDir(), "membership.db"))
}

func newEnvWithDSN(t *testing.T, dsn string) *env {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	hasher := cryptox.NewHasher("test-pepper")
	boot := &BootstrapService{Store: st, Hasher: hasher, Token: "boot"}
	community, admin, err := boot.Bootstrap(ctx, "boot", BootstrapData{
		CommunityName:    "Marina Heights",
		CommunityAddress: "1 Harbour Rd",
		AdminName:        "Admin",
		AdminEmail:       "admin@example.com",
		AdminPassword:    "correct horse",
	})
	require.NoError(t, err)

	return &env{
		store:     st,
		hasher:    hasher,
		community: community,
		admin:     admin,
		invites: &InviteService{
			Store:      st,
			Codes:      invitecode.NewSeededGenerator(1),
			DefaultTTL: 30 * 24 * time.Hour,
			BaseURL:    "https://colive.example",
			Now:        fixedClock,
		},
		registration: &RegistrationService{Store: st, Hasher: hasher, Now: fixedClock},
		approvals:    &ApprovalService{Store: st, Now: fixedClock},
		members:      &MemberService{Store: st, Now: fixedClock},
		locations:    &LocationService{Store: st, Now: fixedClock},
	}
}

func (e *env) bed(t *testing.T, name string) domain.Location {
	t.Helper()
	loc, err := e.locations.CreateLocation(context.Background(), e.community.ID, name, domain.LocationBed)
	require.NoError(t, err)
	return loc
}

func (e *env) invite(t *testing.T, req CreateInviteRequest) domain.Invite {
	t.Helper()
	req.CommunityID = e.community.ID
	req.CreatedBy = e.admin.UserID
	inv, err := e.invites.CreateInvite(context.Background(), req)
	require.NoError(t, err)
	return inv
}

// draft returns a complete registration using the given invite code.
func draft(email, code string) domain.RegistrationDraft {
	method := domain.InviteByCode
	if code == "" {
		method = domain.InviteDeferred
	}
	return domain.RegistrationDraft{
		Stage:           domain.StageInvite,
		Name:            "Applicant " + email,
		Email:           email,
		Phone:           "+971500000001",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		Documents: domain.Documents{
			PhotoURL:    "https://cdn.example/profiles/p.jpg",
			IdentityURL: "https://cdn.example/documents/id.pdf",
		},
		EmergencyContact: domain.EmergencyContact{Name: "Kin", Relationship: "parent", Phone: "+971500000002"},
		OptIns:           domain.OptIns{Email: true, WhatsApp: true},
		InviteMethod:     method,
		InvitePayload:    code,
		AcceptedTerms:    true,
	}
}

func (e *env) apply(t *testing.T, email, code string) domain.Member {
	t.Helper()
	m, err := e.registration.Register(context.Background(), draft(email, code))
	require.NoError(t, err)
	return m
}

func (e *env) uses(t *testing.T, inv domain.Invite) int {
	t.Helper()
	got, err := e.store.Invites().GetInviteByID(context.Background(), inv.ID)
	require.NoError(t, err)
	return got.CurrentUses
}

func newID() string { return idx.New().String() }
