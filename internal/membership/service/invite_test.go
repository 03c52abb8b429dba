package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/pkg/invitecode"
)

func TestGenerateCodeRegenerates(t *testing.T) {
	e := newEnv(t)

	first := e.invites.GenerateCode()
	second := e.invites.GenerateCode()
	require.True(t, invitecode.Valid(first))
	require.True(t, invitecode.Valid(second))
	require.NotEqual(t, first, second)

	list, _, err := e.invites.ListInvites(context.Background(), e.community.ID)
	require.NoError(t, err)
	require.Empty(t, list, "drawing codes must not persist anything")
}

func TestCreateInvite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("defaults to general with default expiry", func(t *testing.T) {
		inv := e.invite(t, CreateInviteRequest{})
		require.Equal(t, domain.InviteGeneral, inv.Type)
		require.Nil(t, inv.MaxUses)
		require.NotNil(t, inv.ExpiresAt)
		require.Equal(t, testNow.Add(30*24*time.Hour), *inv.ExpiresAt)
		require.True(t, inv.Active)
	})

	t.Run("single use carries a limit of one", func(t *testing.T) {
		inv := e.invite(t, CreateInviteRequest{Type: domain.InviteSingleUse, NeverExpire: true})
		require.NotNil(t, inv.MaxUses)
		require.Equal(t, 1, *inv.MaxUses)
		require.Nil(t, inv.ExpiresAt)
	})

	t.Run("limited requires a positive limit", func(t *testing.T) {
		_, err := e.invites.CreateInvite(ctx, CreateInviteRequest{
			CommunityID: e.community.ID, CreatedBy: e.admin.UserID, Type: domain.InviteLimited,
		})
		require.ErrorIs(t, err, ErrInvalidInviteRequest)
	})

	t.Run("past expiry rejected", func(t *testing.T) {
		past := testNow.Add(-time.Hour)
		_, err := e.invites.CreateInvite(ctx, CreateInviteRequest{
			CommunityID: e.community.ID, CreatedBy: e.admin.UserID, ExpiresAt: &past,
		})
		require.ErrorIs(t, err, ErrInvalidInviteRequest)
	})

	t.Run("pre-drawn code is kept and collisions reported", func(t *testing.T) {
		code := e.invites.GenerateCode()
		inv := e.invite(t, CreateInviteRequest{Code: code})
		require.Equal(t, code, inv.Code)

		_, err := e.invites.CreateInvite(ctx, CreateInviteRequest{
			CommunityID: e.community.ID, CreatedBy: e.admin.UserID, Code: code,
		})
		require.ErrorIs(t, err, ErrInviteCodeTaken)
	})

	t.Run("drawn code is redrawn on collision", func(t *testing.T) {
		// Two generators with the same seed draw the same first code.
		a := &InviteService{Store: e.store, Codes: invitecode.NewSeededGenerator(42), Now: fixedClock}
		b := &InviteService{Store: e.store, Codes: invitecode.NewSeededGenerator(42), Now: fixedClock}

		req := CreateInviteRequest{CommunityID: e.community.ID, CreatedBy: e.admin.UserID}
		first, err := a.CreateInvite(ctx, req)
		require.NoError(t, err)
		second, err := b.CreateInvite(ctx, req)
		require.NoError(t, err)
		require.NotEqual(t, first.Code, second.Code)
	})

	t.Run("unknown community", func(t *testing.T) {
		_, err := e.invites.CreateInvite(ctx, CreateInviteRequest{CommunityID: "nope", CreatedBy: e.admin.UserID})
		require.ErrorIs(t, err, ErrCommunityNotFound)
	})
}

func TestValidateInvite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bed := e.bed(t, "A-101")

	usable := e.invite(t, CreateInviteRequest{LocationID: bed.ID})
	disabled := e.invite(t, CreateInviteRequest{})
	_, err := e.invites.SetActive(ctx, e.community.ID, disabled.ID, false)
	require.NoError(t, err)
	expiry := testNow.Add(time.Hour)
	expiring := e.invite(t, CreateInviteRequest{ExpiresAt: &expiry})
	single := e.invite(t, CreateInviteRequest{Type: domain.InviteSingleUse})
	e.apply(t, "first@example.com", single.Code)

	t.Run("usable invite resolves community details", func(t *testing.T) {
		res, err := e.invites.Validate(ctx, usable.Code)
		require.NoError(t, err)
		require.Equal(t, "Marina Heights", res.Community.Name)
		require.Equal(t, "1 Harbour Rd", res.Community.Address)
		require.Equal(t, 1, res.ActiveMembers)
		require.NotNil(t, res.Location)
		require.Equal(t, bed.ID, res.Location.ID)
	})

	t.Run("typed codes are normalised", func(t *testing.T) {
		_, err := e.invites.Validate(ctx, "  "+strings.ToLower(usable.Code)+" ")
		require.NoError(t, err)
	})

	cases := []struct {
		name string
		code string
		want error
	}{
		{"unknown", "ZZZZ-999-999", ErrInviteNotFound},
		{"empty", "", ErrInviteNotFound},
		{"disabled", disabled.Code, ErrInviteDisabled},
		{"exhausted", single.Code, ErrInviteExhausted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.invites.Validate(ctx, tc.code)
			require.ErrorIs(t, err, tc.want)

			reason, ok := InviteRejectionReason(err)
			require.True(t, ok)
			require.Equal(t, InviteRejectionError(reason), tc.want)
		})
	}

	t.Run("expired after its expiry instant", func(t *testing.T) {
		late := &InviteService{Store: e.store, Now: func() time.Time { return expiry.Add(time.Second) }}
		_, err := late.Validate(ctx, expiring.Code)
		require.ErrorIs(t, err, ErrInviteExpired)

		atExpiry := &InviteService{Store: e.store, Now: func() time.Time { return expiry }}
		_, err = atExpiry.Validate(ctx, expiring.Code)
		require.NoError(t, err)
	})

	t.Run("disabled wins over expired", func(t *testing.T) {
		_, err := e.invites.SetActive(ctx, e.community.ID, expiring.ID, false)
		require.NoError(t, err)
		late := &InviteService{Store: e.store, Now: func() time.Time { return expiry.Add(time.Hour) }}
		_, err = late.Validate(ctx, expiring.Code)
		require.ErrorIs(t, err, ErrInviteDisabled)
	})

	t.Run("validation is read only", func(t *testing.T) {
		for range 5 {
			_, err := e.invites.Validate(ctx, usable.Code)
			require.NoError(t, err)
		}
		require.Equal(t, 0, e.uses(t, usable))
	})

	t.Run("scan payloads", func(t *testing.T) {
		res, err := e.invites.ResolveScan(ctx, e.invites.JoinURL(usable.Code)+"?utm=qr")
		require.NoError(t, err)
		require.Equal(t, usable.ID, res.Invite.ID)

		res, err = e.invites.ResolveScan(ctx, usable.Code)
		require.NoError(t, err)
		require.Equal(t, usable.ID, res.Invite.ID)

		_, err = e.invites.ResolveScan(ctx, "https://colive.example/join/")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})
}

func TestListInvitesAndToggle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a := e.invite(t, CreateInviteRequest{})
	e.invite(t, CreateInviteRequest{Type: domain.InviteLimited, MaxUses: 3})
	e.apply(t, "one@example.com", a.Code)
	e.apply(t, "two@example.com", a.Code)

	_, err := e.invites.SetActive(ctx, e.community.ID, a.ID, false)
	require.NoError(t, err)

	list, stats, err := e.invites.ListInvites(ctx, e.community.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, domain.InviteStats{Total: 2, Active: 1, TotalUses: 2}, stats)

	_, err = e.invites.SetActive(ctx, "other-community", a.ID, true)
	require.ErrorIs(t, err, ErrInviteNotFound)
}
