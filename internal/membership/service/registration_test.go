package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
)

func TestRegisterWithInvite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bed := e.bed(t, "A-101")
	inv := e.invite(t, CreateInviteRequest{Type: domain.InviteLimited, MaxUses: 2, LocationID: bed.ID})

	m, err := e.registration.Register(ctx, draft("Ada@Example.com", inv.Code))
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, m.Status)
	require.Equal(t, domain.RoleMember, m.Role)
	require.Equal(t, e.community.ID, m.CommunityID)
	require.Equal(t, bed.ID, m.LocationID)
	require.Equal(t, inv.Code, m.InviteCode)
	require.True(t, m.InviteConsumed)
	require.Equal(t, 1, e.uses(t, inv))

	stored, err := e.store.Members().GetMember(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", stored.Email)
	require.Equal(t, domain.OptIns{Email: true, WhatsApp: true}, stored.OptIns)

	user, err := e.store.Users().GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NoError(t, e.hasher.Verify("s3cret-pass", user.PasswordHash))
}

func TestRegisterWithScannedInvite(t *testing.T) {
	e := newEnv(t)
	inv := e.invite(t, CreateInviteRequest{})

	d := draft("scan@example.com", "")
	d.InviteMethod = domain.InviteByQR
	d.InvitePayload = e.invites.JoinURL(inv.Code) + "?src=poster"

	m, err := e.registration.Register(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, inv.Code, m.InviteCode)
	require.Equal(t, 1, e.uses(t, inv))
}

func TestRegisterRejectsInvalidDraft(t *testing.T) {
	e := newEnv(t)

	d := draft("bad@example.com", "")
	d.Password = "short"
	d.ConfirmPassword = "different"
	d.Documents.PhotoURL = ""

	_, err := e.registration.Register(context.Background(), d)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "password")
	require.Contains(t, verr.Fields, "confirm_password")
	require.Contains(t, verr.Fields, "photo_url")

	_, err = e.store.Users().GetUserByEmail(context.Background(), "bad@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegisterInviteFailureLeavesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	single := e.invite(t, CreateInviteRequest{Type: domain.InviteSingleUse})
	e.apply(t, "first@example.com", single.Code)

	_, err := e.registration.Register(ctx, draft("second@example.com", single.Code))
	require.ErrorIs(t, err, ErrInviteExhausted)

	_, err = e.store.Users().GetUserByEmail(ctx, "second@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, 1, e.uses(t, single))

	_, err = e.registration.Register(ctx, draft("third@example.com", "NOPE-000-000"))
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	inv := e.invite(t, CreateInviteRequest{})
	e.apply(t, "dup@example.com", inv.Code)

	_, err := e.registration.Register(context.Background(), draft("DUP@example.com", inv.Code))
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Equal(t, 1, e.uses(t, inv))
}

// failingMembersStore fails every membership insert made inside a
// transaction.
type failingMembersStore struct{ store.Store }

// baseTx names the embedded transaction so that its field does not shadow
// the promoted Tx method.
type baseTx = store.Tx

type failingMembersTx struct{ baseTx }

type failingMembers struct{ store.Members }

func (s failingMembersStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error { return fn(failingMembersTx{tx}) })
}

func (t failingMembersTx) Members() store.Members { return failingMembers{t.baseTx.Members()} }

func (failingMembers) CreateMember(context.Context, domain.Member) error {
	return errors.New("disk I/O error")
}

func TestRegisterMembershipFailureRollsBackIdentityAndInviteUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inv := e.invite(t, CreateInviteRequest{Type: domain.InviteSingleUse})

	svc := &RegistrationService{Store: failingMembersStore{e.store}, Hasher: e.hasher, Now: fixedClock}
	_, err := svc.Register(ctx, draft("rollback@example.com", inv.Code))
	require.ErrorIs(t, err, ErrApplicationCreation)

	_, err = e.store.Users().GetUserByEmail(ctx, "rollback@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, 0, e.uses(t, inv))

	// The invite is still usable by the next applicant.
	e.apply(t, "rollback@example.com", inv.Code)
	require.Equal(t, 1, e.uses(t, inv))
}

func TestDeferredRegistrationClaimsInviteLater(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.bed(t, "B-201")
	inv := e.invite(t, CreateInviteRequest{Type: domain.InviteLimited, MaxUses: 5})

	m := e.apply(t, "later@example.com", "")
	require.Empty(t, m.CommunityID)
	require.Empty(t, m.InviteCode)

	claimed, err := e.registration.ClaimInvite(ctx, m.UserID, inv.Code)
	require.NoError(t, err)
	require.Equal(t, e.community.ID, claimed.CommunityID)
	require.Equal(t, inv.Code, claimed.InviteCode)
	require.False(t, claimed.InviteConsumed)
	require.Equal(t, 0, e.uses(t, inv), "claiming does not count a use")

	_, err = e.registration.ClaimInvite(ctx, m.UserID, inv.Code)
	require.ErrorIs(t, err, ErrInviteAlreadyBound)

	approved, err := e.approvals.Approve(ctx, e.community.ID, m.ID, "")
	require.ErrorIs(t, err, ErrLocationUnavailable, "no pre-assigned location and none chosen")

	beds, err := e.approvals.AvailableLocations(ctx, e.community.ID)
	require.NoError(t, err)
	approved, err = e.approvals.Approve(ctx, e.community.ID, m.ID, beds[0].ID)
	require.NoError(t, err)
	require.True(t, approved.InviteConsumed)
	require.Equal(t, 1, e.uses(t, inv), "approval counts the deferred use")

	_, err = e.registration.ClaimInvite(ctx, newID(), inv.Code)
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestValidateStageReportsTakenEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	d := draft("admin@example.com", "")
	errs, err := e.registration.ValidateStage(ctx, d, domain.StageAccount)
	require.NoError(t, err)
	require.Equal(t, "email is already registered", errs["email"])

	d = draft("fresh@example.com", "")
	errs, err = e.registration.ValidateStage(ctx, d, domain.StageAccount)
	require.NoError(t, err)
	require.Empty(t, errs)

	d.EmergencyContact.Phone = ""
	errs, err = e.registration.ValidateStage(ctx, d, domain.StageEmergencyContact)
	require.NoError(t, err)
	require.Contains(t, errs, "emergency_contact.phone")
}
