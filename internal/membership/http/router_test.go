package http_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	membershiphttp "github.com/ziberlive/colive/internal/membership/http"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/invitecode"
	"github.com/ziberlive/colive/pkg/jwtx"
	"github.com/ziberlive/colive/pkg/membersdk"
	"github.com/ziberlive/colive/pkg/slogx"
)

const (
	bootToken     = "boot-token"
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
	joinBase      = "https://colive.example"
)

var generous = httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}

// newServer wires the full router against an in-memory store.
func newServer(t *testing.T) *membersdk.Client {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pem, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-kid", pem)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	const issuer = "https://colive.example"
	audience := []string{"colive"}
	hasher := cryptox.NewHasher("test-pepper")
	logger := slogx.New(slogx.Config{Service: "membership-test", Level: "error", Format: "text"})

	r := membershiphttp.NewRouter(keys, jwtx.NewVerifierEdDSA(keys, issuer, audience), "test", st, logger)
	r.Limits = httpx.RateLimitProfiles{Strict: generous, Moderate: generous, Lenient: generous, Public: generous}
	r.AuthService = &service.AuthService{
		Store: st, Hasher: hasher, Signer: signer,
		Issuer: issuer, Audience: audience, AccessTTL: time.Hour,
	}
	r.BootstrapService = &service.BootstrapService{Store: st, Hasher: hasher, Token: bootToken}
	r.InviteService = &service.InviteService{
		Store:      st,
		Codes:      invitecode.NewGenerator(),
		DefaultTTL: 7 * 24 * time.Hour,
		BaseURL:    joinBase,
	}
	r.RegistrationService = &service.RegistrationService{Store: st, Hasher: hasher}
	r.ApprovalService = &service.ApprovalService{Store: st}
	r.MemberService = &service.MemberService{Store: st}
	r.LocationService = &service.LocationService{Store: st}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return membersdk.NewClient(srv.URL)
}

// bootstrap creates the community and returns an admin session.
func bootstrap(t *testing.T, c *membersdk.Client) *membersdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := c.Bootstrap(ctx, bootToken, membersdk.BootstrapRequest{
		CommunityName:    "Marina Heights",
		CommunityAddress: "1 Harbour Rd",
		AdminName:        "Admin",
		AdminEmail:       adminEmail,
		AdminPassword:    adminPassword,
	})
	require.NoError(t, err)

	admin, err := c.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	require.Contains(t, admin.Scopes(), service.ScopeAdminWrite)
	return admin
}

func registration(email, method, code string) membersdk.RegistrationRequest {
	return membersdk.RegistrationRequest{
		Name:            "Applicant",
		Email:           email,
		Phone:           "+971500000001",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		PhotoURL:        "https://cdn.example/profiles/p.jpg",
		IdentityURL:     "https://cdn.example/documents/id.pdf",
		EmergencyContact: membersdk.EmergencyContact{
			Name: "Kin", Relationship: "sibling", Phone: "+971500000002",
		},
		OptIns:        membersdk.OptIns{Email: true},
		InviteMethod:  method,
		InviteCode:    code,
		AcceptedTerms: true,
	}
}

func requireAPIError(t *testing.T, err error, status int, code string) *membersdk.APIError {
	t.Helper()
	var apiErr *membersdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *membersdk.APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	ctx := context.Background()

	live, err := c.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := c.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)

	jwks, err := c.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	ctx := context.Background()
	req := membersdk.BootstrapRequest{
		CommunityName: "Marina Heights",
		AdminName:     "Admin",
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}

	_, err := c.Bootstrap(ctx, "wrong", req)
	requireAPIError(t, err, http.StatusUnauthorized, membersdk.ErrorCodeUnauthorized)

	_, err = c.Bootstrap(ctx, bootToken, membersdk.BootstrapRequest{AdminEmail: "nope"})
	apiErr := requireAPIError(t, err, http.StatusBadRequest, membersdk.ErrorCodeValidation)
	require.Contains(t, apiErr.Details, "community_name")

	resp, err := c.Bootstrap(ctx, bootToken, req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.CommunityID)

	_, err = c.Bootstrap(ctx, bootToken, req)
	requireAPIError(t, err, http.StatusUnauthorized, membersdk.ErrorCodeUnauthorized)

	_, err = c.Login(ctx, adminEmail, "wrong password")
	requireAPIError(t, err, http.StatusUnauthorized, membersdk.ErrorCodeInvalidCredentials)
}

func TestJoinAndApprove(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	admin := bootstrap(t, c)
	ctx := context.Background()

	bed, err := admin.CreateLocation(ctx, membersdk.CreateLocationRequest{Name: "Room 1 / Bed A", Type: "bed"})
	require.NoError(t, err)
	require.False(t, bed.Occupied)

	// 1. Admin draws a code and keeps it on a single use invite for the bed.
	drawn, err := admin.GenerateInviteCode(ctx)
	require.NoError(t, err)
	require.True(t, invitecode.Valid(drawn.Code))
	require.Equal(t, joinBase+"/join/"+drawn.Code, drawn.JoinURL)

	inv, err := admin.CreateInvite(ctx, membersdk.CreateInviteRequest{
		Code: drawn.Code, Type: "single_use", LocationID: bed.ID,
	})
	require.NoError(t, err)
	require.Equal(t, drawn.Code, inv.Code)
	require.Equal(t, 1, *inv.RemainingUses)

	// 2. The applicant checks the invite three ways without using it.
	res, err := c.ValidateInvite(ctx, membersdk.ValidateInviteRequest{Code: inv.Code})
	require.NoError(t, err)
	require.Equal(t, "Marina Heights", res.CommunityName)
	require.Equal(t, 1, res.ActiveMembers)
	require.NotNil(t, res.Location)
	require.Equal(t, bed.ID, res.Location.ID)

	res, err = c.ValidateInvite(ctx, membersdk.ValidateInviteRequest{Scan: inv.JoinURL + "?src=poster"})
	require.NoError(t, err)
	require.Equal(t, inv.Code, res.Code)

	_, err = c.ResolveJoinLink(ctx, inv.Code)
	require.NoError(t, err)

	// 3. Register.
	applied, err := c.Register(ctx, registration("ada@example.com", "code", inv.Code))
	require.NoError(t, err)
	require.Equal(t, "pending", applied.Status)
	require.Equal(t, bed.ID, applied.LocationID)

	_, err = c.ValidateInvite(ctx, membersdk.ValidateInviteRequest{Code: inv.Code})
	apiErr := requireAPIError(t, err, http.StatusUnprocessableEntity, membersdk.ErrorCodeInviteRejected)
	require.Equal(t, membersdk.ReasonExhausted, apiErr.Reason)

	// 4. A pending applicant can see itself but not the directory.
	applicant, err := c.Login(ctx, "ADA@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, []string{service.ScopeProfileRead}, applicant.Scopes())
	me, err := applicant.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, applied.ID, me.ID)
	_, err = applicant.Directory(ctx)
	requireAPIError(t, err, http.StatusForbidden, membersdk.ErrorCodeInsufficientScope)

	// 5. Admin finds and approves the application onto the pre-assigned bed.
	queue, err := admin.ListApplications(ctx, "pending", "ada@")
	require.NoError(t, err)
	require.Len(t, queue, 1)

	approved, err := admin.ApproveApplication(ctx, applied.ID, "")
	require.NoError(t, err)
	require.Equal(t, "active", approved.Status)
	require.Equal(t, bed.ID, approved.LocationID)
	require.Equal(t, "bronze", approved.Tier)
	require.Equal(t, "silver", approved.NextTier)
	require.Equal(t, 500, approved.PointsToNextTier)

	available, err := admin.AvailableLocations(ctx)
	require.NoError(t, err)
	require.Empty(t, available)

	_, err = admin.ApproveApplication(ctx, applied.ID, "")
	requireAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)

	// 6. Fresh login picks up the member scopes.
	applicant, err = c.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	directory, err := applicant.Directory(ctx)
	require.NoError(t, err)
	require.Len(t, directory, 2)
}

func TestApproveWithoutFreeBed(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	admin := bootstrap(t, c)
	ctx := context.Background()

	inv, err := admin.CreateInvite(ctx, membersdk.CreateInviteRequest{Type: "general", NeverExpire: true})
	require.NoError(t, err)
	require.Nil(t, inv.ExpiresAt)
	require.Nil(t, inv.MaxUses)

	m, err := c.Register(ctx, registration("bo@example.com", "qr", inv.JoinURL))
	require.NoError(t, err)

	_, err = admin.ApproveApplication(ctx, m.ID, "")
	requireAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)

	_, err = admin.RejectApplication(ctx, m.ID, "   ")
	requireAPIError(t, err, http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest)

	rejected, err := admin.RejectApplication(ctx, m.ID, "no beds this season")
	require.NoError(t, err)
	require.Equal(t, "rejected", rejected.Status)
	require.Equal(t, "no beds this season", rejected.RejectionReason)

	list, err := admin.ListApplications(ctx, "rejected", "")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = admin.ListApplications(ctx, "archived", "")
	requireAPIError(t, err, http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest)
}

func TestRegistrationErrors(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	admin := bootstrap(t, c)
	ctx := context.Background()

	t.Run("stage validation", func(t *testing.T) {
		req := registration("cy@example.com", "code", "")
		req.ConfirmPassword = "different"

		out, err := c.ValidateRegistrationStage(ctx, membersdk.ValidateStageRequest{Stage: "account", Registration: req})
		require.NoError(t, err)
		require.False(t, out.Valid)
		require.Contains(t, out.Errors, "confirm_password")

		out, err = c.ValidateRegistrationStage(ctx, membersdk.ValidateStageRequest{Stage: "2", Registration: req})
		require.NoError(t, err)
		require.True(t, out.Valid)
		require.Equal(t, "documents", out.Stage)
		require.Equal(t, "emergency_contact", out.NextStage)

		req.Email = adminEmail
		req.ConfirmPassword = req.Password
		out, err = c.ValidateRegistrationStage(ctx, membersdk.ValidateStageRequest{Stage: "account", Registration: req})
		require.NoError(t, err)
		require.Equal(t, "email is already registered", out.Errors["email"])
	})

	t.Run("submit reports every missing field", func(t *testing.T) {
		req := registration("cy@example.com", "code", "")
		req.PhotoURL = ""
		_, err := c.Register(ctx, req)
		apiErr := requireAPIError(t, err, http.StatusBadRequest, membersdk.ErrorCodeValidation)
		require.Contains(t, apiErr.Details, "photo_url")
		require.Contains(t, apiErr.Details, "invite_code")
	})

	t.Run("disabled invite is rejected with its reason", func(t *testing.T) {
		inv, err := admin.CreateInvite(ctx, membersdk.CreateInviteRequest{Type: "limited", MaxUses: 3})
		require.NoError(t, err)
		_, err = admin.SetInviteActive(ctx, inv.ID, false)
		require.NoError(t, err)

		_, err = c.Register(ctx, registration("cy@example.com", "code", inv.Code))
		apiErr := requireAPIError(t, err, http.StatusUnprocessableEntity, membersdk.ErrorCodeInviteRejected)
		require.Equal(t, membersdk.ReasonDisabled, apiErr.Reason)

		// Nothing was created, so the address is still free.
		_, err = c.Login(ctx, "cy@example.com", "s3cret-pass")
		requireAPIError(t, err, http.StatusUnauthorized, membersdk.ErrorCodeInvalidCredentials)

		list, err := admin.ListInvites(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, list.Stats.TotalUses)
		require.Equal(t, 0, list.Stats.Active)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := c.ResolveJoinLink(ctx, "ZZZZ-ZZZ-ZZZ")
		apiErr := requireAPIError(t, err, http.StatusUnprocessableEntity, membersdk.ErrorCodeInviteRejected)
		require.Equal(t, membersdk.ReasonNotFound, apiErr.Reason)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := c.Register(ctx, registration(adminEmail, "defer", ""))
		requireAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)
	})
}

func TestDeferredInviteClaim(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	admin := bootstrap(t, c)
	ctx := context.Background()

	_, err := c.Register(ctx, registration("di@example.com", "defer", ""))
	require.NoError(t, err)

	applicant, err := c.Login(ctx, "di@example.com", "s3cret-pass")
	require.NoError(t, err)

	queue, err := admin.ListApplications(ctx, "all", "")
	require.NoError(t, err)
	require.Len(t, queue, 1, "only the admin until the invite is claimed")

	inv, err := admin.CreateInvite(ctx, membersdk.CreateInviteRequest{Type: "single_use"})
	require.NoError(t, err)

	claimed, err := applicant.ClaimInvite(ctx, inv.JoinURL)
	require.NoError(t, err)
	require.Equal(t, inv.Code, claimed.InviteCode)
	require.NotEmpty(t, claimed.CommunityID)

	_, err = applicant.ClaimInvite(ctx, inv.Code)
	requireAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)

	bed, err := admin.CreateLocation(ctx, membersdk.CreateLocationRequest{Name: "Bed 7", Type: "bed"})
	require.NoError(t, err)
	approved, err := admin.ApproveApplication(ctx, claimed.ID, bed.ID)
	require.NoError(t, err)
	require.Equal(t, "active", approved.Status)

	list, err := admin.ListInvites(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Stats.TotalUses)
}

func TestMemberAdministration(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	admin := bootstrap(t, c)
	ctx := context.Background()

	bed, err := admin.CreateLocation(ctx, membersdk.CreateLocationRequest{Name: "Bed 1", Type: "bed"})
	require.NoError(t, err)
	_, err = admin.CreateLocation(ctx, membersdk.CreateLocationRequest{Name: "Bed 1", Type: "bed"})
	requireAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)
	_, err = admin.CreateLocation(ctx, membersdk.CreateLocationRequest{Name: "Roof", Type: "rooftop"})
	requireAPIError(t, err, http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest)

	inv, err := admin.CreateInvite(ctx, membersdk.CreateInviteRequest{})
	require.NoError(t, err)
	require.Equal(t, "general", inv.Type)
	m, err := c.Register(ctx, registration("ed@example.com", "code", inv.Code))
	require.NoError(t, err)
	_, err = admin.ApproveApplication(ctx, m.ID, "")
	requireAPIError(t, err, http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest)
	_, err = admin.ApproveApplication(ctx, m.ID, bed.ID)
	require.NoError(t, err)

	updated, err := admin.UpdateMemberRole(ctx, m.ID, "guest")
	require.NoError(t, err)
	require.Equal(t, "guest", updated.Role)

	_, err = admin.UpdateMemberStatus(ctx, m.ID, "pending")
	requireAPIError(t, err, http.StatusConflict, membersdk.ErrorCodeConflict)

	moved, err := admin.UpdateMemberStatus(ctx, m.ID, "moved_out")
	require.NoError(t, err)
	require.Equal(t, "moved_out", moved.Status)

	locs, err := admin.ListLocations(ctx)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	require.False(t, locs[0].Occupied)

	_, err = admin.UpdateMemberRole(ctx, "missing", "member")
	requireAPIError(t, err, http.StatusNotFound, membersdk.ErrorCodeNotFound)
}

func TestInviteQR(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	admin := bootstrap(t, c)
	ctx := context.Background()

	png, err := admin.InviteQR(ctx, "abcd-efg-hij")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = admin.InviteQR(ctx, "nope")
	requireAPIError(t, err, http.StatusBadRequest, membersdk.ErrorCodeInvalidRequest)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	c := newServer(t)
	ctx := context.Background()

	_, err := c.NewSession("garbage").ListInvites(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, membersdk.ErrorCodeInvalidToken)
}

func TestUploadsWithoutBucket(t *testing.T) {
	t.Parallel()
	c := newServer(t)

	_, err := c.Upload(context.Background(), "profiles", "me.png", bytes.NewReader([]byte("\x89PNG\r\n\x1a\n")))
	requireAPIError(t, err, http.StatusServiceUnavailable, membersdk.ErrorCodeUnavailable)
}
