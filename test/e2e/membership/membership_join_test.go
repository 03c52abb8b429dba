package membership_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/pkg/membersdk"
)

// TestJoinFlow walks an applicant from a QR invite to an approved bed.
func TestJoinFlow(t *testing.T) {
	baseURL, cleanup := setupMembershipContainer(t)
	defer cleanup()

	client := membersdk.NewClient(baseURL)
	admin := bootstrapService(t, client)
	ctx := t.Context()

	bed, err := admin.CreateLocation(ctx, membersdk.CreateLocationRequest{Name: "Room 4 / Bed B", Type: "bed"})
	require.NoError(t, err)

	inv, err := admin.CreateInvite(ctx, membersdk.CreateInviteRequest{Type: "limited", MaxUses: 2, LocationID: bed.ID})
	require.NoError(t, err)
	require.Equal(t, publicBaseURL+"/join/"+inv.Code, inv.JoinURL)
	require.NotNil(t, inv.ExpiresAt, "default invite lifetime should apply")

	png, err := admin.InviteQR(ctx, inv.Code)
	require.NoError(t, err)
	require.Equal(t, "\x89PNG", string(png[:4]))

	// Validation is read only.
	for range 3 {
		res, err := client.ValidateInvite(ctx, membersdk.ValidateInviteRequest{Scan: inv.JoinURL})
		require.NoError(t, err)
		require.Equal(t, 2, *res.RemainingUses)
	}

	stage, err := client.ValidateRegistrationStage(ctx, membersdk.ValidateStageRequest{
		Stage:        "account",
		Registration: membersdk.RegistrationRequest{Name: "X", Email: "x@colive.test", Password: "short", ConfirmPassword: "short"},
	})
	require.NoError(t, err)
	require.False(t, stage.Valid)
	require.Contains(t, stage.Errors, "password")

	applied, err := client.Register(ctx, newApplicant("grace@colive.test", "qr", inv.JoinURL))
	require.NoError(t, err)
	require.Equal(t, "pending", applied.Status)
	require.Equal(t, inv.Code, applied.InviteCode)

	_, err = client.Register(ctx, newApplicant("grace@colive.test", "code", inv.Code))
	assertAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)

	list, err := admin.ListInvites(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Stats.TotalUses, "failed registration must not consume a use")

	queue, err := admin.ListApplications(ctx, "pending", "")
	require.NoError(t, err)
	require.Len(t, queue, 1)

	approved, err := admin.ApproveApplication(ctx, applied.ID, "")
	require.NoError(t, err)
	require.Equal(t, "active", approved.Status)
	require.Equal(t, bed.ID, approved.LocationID)
	require.Equal(t, "bronze", approved.Tier)
	t.Logf("Approved %s onto %s", approved.Email, bed.Name)

	// The second use of the invite has nowhere to sleep.
	second, err := client.Register(ctx, newApplicant("hedy@colive.test", "code", inv.Code))
	require.NoError(t, err)
	_, err = admin.ApproveApplication(ctx, second.ID, bed.ID)
	assertAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)

	_, err = client.ValidateInvite(ctx, membersdk.ValidateInviteRequest{Code: inv.Code})
	apiErr := assertAPIError(t, err, http.StatusUnprocessableEntity, membersdk.ErrorCodeInviteRejected)
	require.Equal(t, membersdk.ReasonExhausted, apiErr.Reason)
}

// TestDisabledInvite checks a disabled invite is rejected with its reason.
func TestDisabledInvite(t *testing.T) {
	baseURL, cleanup := setupMembershipContainer(t)
	defer cleanup()

	client := membersdk.NewClient(baseURL)
	admin := bootstrapService(t, client)
	ctx := t.Context()

	inv, err := admin.CreateInvite(ctx, membersdk.CreateInviteRequest{Type: "general", NeverExpire: true})
	require.NoError(t, err)

	_, err = admin.SetInviteActive(ctx, inv.ID, false)
	require.NoError(t, err)

	_, err = client.ResolveJoinLink(ctx, inv.Code)
	apiErr := assertAPIError(t, err, http.StatusUnprocessableEntity, membersdk.ErrorCodeInviteRejected)
	require.Equal(t, membersdk.ReasonDisabled, apiErr.Reason)

	_, err = client.Register(ctx, newApplicant("ida@colive.test", "code", inv.Code))
	apiErr = assertAPIError(t, err, http.StatusUnprocessableEntity, membersdk.ErrorCodeInviteRejected)
	require.Equal(t, membersdk.ReasonDisabled, apiErr.Reason)

	// The rolled back registration leaves the email free.
	_, err = admin.SetInviteActive(ctx, inv.ID, true)
	require.NoError(t, err)
	_, err = client.Register(ctx, newApplicant("ida@colive.test", "code", inv.Code))
	require.NoError(t, err)
}
