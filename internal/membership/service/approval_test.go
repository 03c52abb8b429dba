package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
)

func TestApprove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bed := e.bed(t, "A-101")
	inv := e.invite(t, CreateInviteRequest{})
	m := e.apply(t, "ada@example.com", inv.Code)

	approved, err := e.approvals.Approve(ctx, e.community.ID, m.ID, bed.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, approved.Status)
	require.Equal(t, bed.ID, approved.LocationID)
	require.NotNil(t, approved.ApprovedAt)
	require.Equal(t, testNow, *approved.ApprovedAt)
	require.Equal(t, 1, e.uses(t, inv), "use counted at join is not counted again")

	loc, err := e.store.Locations().GetLocation(ctx, bed.ID)
	require.NoError(t, err)
	require.Equal(t, m.ID, loc.OccupiedBy)

	_, err = e.approvals.Approve(ctx, e.community.ID, m.ID, bed.ID)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestApproveUsesPreassignedLocation(t *testing.T) {
	e := newEnv(t)
	e.bed(t, "A-101")
	preassigned := e.bed(t, "A-102")
	inv := e.invite(t, CreateInviteRequest{LocationID: preassigned.ID})
	m := e.apply(t, "pre@example.com", inv.Code)

	approved, err := e.approvals.Approve(context.Background(), e.community.ID, m.ID, "")
	require.NoError(t, err)
	require.Equal(t, preassigned.ID, approved.LocationID)
}

func TestApproveBlockedWithoutFreeBeds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inv := e.invite(t, CreateInviteRequest{})
	m := e.apply(t, "nobed@example.com", inv.Code)

	_, err := e.approvals.Approve(ctx, e.community.ID, m.ID, "")
	require.ErrorIs(t, err, ErrNoAvailableLocation)

	got, err := e.store.Members().GetMember(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, got.Status)
}

func TestApproveRejectsUnsuitableLocation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	inv := e.invite(t, CreateInviteRequest{})
	taken := e.bed(t, "A-101")
	e.bed(t, "A-102")
	parking, err := e.locations.CreateLocation(ctx, e.community.ID, "P-1", domain.LocationParking)
	require.NoError(t, err)

	first := e.apply(t, "first@example.com", inv.Code)
	second := e.apply(t, "second@example.com", inv.Code)
	_, err = e.approvals.Approve(ctx, e.community.ID, first.ID, taken.ID)
	require.NoError(t, err)

	for name, locationID := range map[string]string{
		"occupied bed": taken.ID,
		"not a bed":    parking.ID,
		"unknown":      newID(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.approvals.Approve(ctx, e.community.ID, second.ID, locationID)
			require.ErrorIs(t, err, ErrLocationUnavailable)
		})
	}

	t.Run("member of another community", func(t *testing.T) {
		_, err := e.approvals.Approve(ctx, "elsewhere", second.ID, taken.ID)
		require.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestConcurrentApprovalsForOneBed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bed := e.bed(t, "A-101")
	inv := e.invite(t, CreateInviteRequest{})
	applicants := []domain.Member{
		e.apply(t, "one@example.com", inv.Code),
		e.apply(t, "two@example.com", inv.Code),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(applicants))
	for i, m := range applicants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.approvals.Approve(ctx, e.community.ID, m.ID, bed.ID)
		}()
	}
	wg.Wait()

	var ok, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errorsIsAny(err, ErrLocationTaken, ErrLocationUnavailable, ErrNoAvailableLocation):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, lost)

	n, err := e.store.Members().CountActiveMembers(ctx, e.community.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n, "admin plus the single winner")
}

func TestConcurrentApprovalsOnDatabaseFile(t *testing.T) {
	e := newFileEnv(t)
	ctx := context.Background()
	inv := e.invite(t, CreateInviteRequest{Type: domain.InviteGeneral, NeverExpire: true})

	for round := range 10 {
		bed := e.bed(t, fmt.Sprintf("R%02d", round))
		applicants := make([]domain.Member, 4)
		for i := range applicants {
			applicants[i] = e.apply(t, fmt.Sprintf("r%d-%d@example.com", round, i), inv.Code)
		}

		var wg sync.WaitGroup
		errs := make([]error, len(applicants))
		for i, m := range applicants {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = e.approvals.Approve(ctx, e.community.ID, m.ID, bed.ID)
			}()
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.True(t,
				errorsIsAny(err, ErrLocationTaken, ErrLocationUnavailable, ErrNoAvailableLocation),
				"round %d: want a conflict, got %v", round, err)
		}
		require.Equal(t, 1, ok, "round %d: exactly one approval wins the bed", round)
	}
}

// rejectedMidwayStore reports every approval as losing its pending state,
// as when a reject commits between the read and the update.
type rejectedMidwayStore struct{ store.Store }

type rejectedMidwayTx struct{ baseTx }

type rejectedMidwayMembers struct{ store.Members }

func (s rejectedMidwayStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error { return fn(rejectedMidwayTx{tx}) })
}

func (t rejectedMidwayTx) Members() store.Members {
	return rejectedMidwayMembers{t.baseTx.Members()}
}

func (rejectedMidwayMembers) ApproveMember(context.Context, string, string, time.Time) error {
	return store.ErrConflict
}

func TestApproveAfterConcurrentReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bed := e.bed(t, "A-101")
	inv := e.invite(t, CreateInviteRequest{})
	m := e.apply(t, "gone@example.com", inv.Code)

	svc := &ApprovalService{Store: rejectedMidwayStore{e.store}, Now: fixedClock}
	_, err := svc.Approve(ctx, e.community.ID, m.ID, bed.ID)
	require.ErrorIs(t, err, ErrNotPending)

	free, err := e.approvals.AvailableLocations(ctx, e.community.ID)
	require.NoError(t, err)
	require.Len(t, free, 1, "the rolled back approval leaves the bed free")
}

func TestReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bed := e.bed(t, "A-101")
	inv := e.invite(t, CreateInviteRequest{})
	m := e.apply(t, "reject@example.com", inv.Code)

	_, err := e.approvals.Reject(ctx, e.community.ID, m.ID, "   ")
	require.ErrorIs(t, err, ErrRejectionReasonRequired)

	rejected, err := e.approvals.Reject(ctx, e.community.ID, m.ID, "documents unreadable")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, rejected.Status)
	require.Equal(t, "documents unreadable", rejected.RejectionReason)
	require.NotNil(t, rejected.RejectedAt)

	_, err = e.approvals.Reject(ctx, e.community.ID, m.ID, "again")
	require.ErrorIs(t, err, ErrNotPending)

	beds, err := e.approvals.AvailableLocations(ctx, e.community.ID)
	require.NoError(t, err)
	require.Len(t, beds, 1)
	require.Equal(t, bed.ID, beds[0].ID)
	require.Equal(t, 1, e.uses(t, inv))
}

func TestListApplications(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	bed := e.bed(t, "A-101")
	inv := e.invite(t, CreateInviteRequest{})

	ada := e.apply(t, "ada@example.com", inv.Code)
	grace := e.apply(t, "grace@example.com", inv.Code)
	e.apply(t, "alan@example.com", inv.Code)
	_, err := e.approvals.Approve(ctx, e.community.ID, ada.ID, bed.ID)
	require.NoError(t, err)
	_, err = e.approvals.Reject(ctx, e.community.ID, grace.ID, "no")
	require.NoError(t, err)

	cases := []struct {
		filter domain.ApplicationFilter
		query  string
		want   int
	}{
		{"", "", 1},
		{domain.FilterPending, "", 1},
		{domain.FilterApproved, "", 2}, // includes the bootstrap admin
		{domain.FilterRejected, "", 1},
		{domain.FilterAll, "", 4},
		{domain.FilterAll, "grace", 1},
		{domain.FilterAll, inv.Code, 3},
		{domain.FilterApproved, "ada@", 1},
		{domain.FilterPending, "ada", 0},
	}
	for _, tc := range cases {
		t.Run(string(tc.filter)+"/"+tc.query, func(t *testing.T) {
			got, err := e.approvals.ListApplications(ctx, e.community.ID, tc.filter, tc.query)
			require.NoError(t, err)
			require.Len(t, got, tc.want)
		})
	}

	_, err = e.approvals.ListApplications(ctx, e.community.ID, "bogus", "")
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
