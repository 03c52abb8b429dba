package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store/drivers/sqlite"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/jwtx"
)

func newAuth(t *testing.T, e *env) (*AuthService, jwtx.Verifier) {
	t.Helper()
	pem, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-kid", pem)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	svc := &AuthService{
		Store:    e.store,
		Hasher:   e.hasher,
		Signer:   signer,
		Issuer:   "https://colive.example",
		Audience: []string{"colive"},
	}
	return svc, jwtx.NewVerifierEdDSA(keys, svc.Issuer, svc.Audience)
}

func TestScopesFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{ScopeProfileRead}, ScopesFor(nil))
	require.Equal(t, []string{ScopeProfileRead}, ScopesFor(&domain.Member{Status: domain.StatusPending, Role: domain.RoleAdmin}))
	require.Equal(t, []string{ScopeMemberRead, ScopeProfileRead}, ScopesFor(&domain.Member{Status: domain.StatusActive, Role: domain.RoleMember}))
	require.Contains(t, ScopesFor(&domain.Member{Status: domain.StatusActive, Role: domain.RoleAdmin}), ScopeAdminWrite)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	auth, verifier := newAuth(t, e)

	t.Run("admin gets admin scopes", func(t *testing.T) {
		sess, err := auth.Login(ctx, "ADMIN@example.com", "correct horse")
		require.NoError(t, err)
		require.Positive(t, sess.ExpiresIn)

		claims, err := verifier.Verify(sess.AccessToken)
		require.NoError(t, err)
		require.Equal(t, e.admin.UserID, claims.Subject)
		require.Equal(t, e.admin.ID, claims.MemberID)
		require.Equal(t, e.community.ID, claims.CommunityID)
		require.True(t, claims.HasScope(ScopeAdminWrite))
	})

	t.Run("pending applicant only sees their profile", func(t *testing.T) {
		inv := e.invite(t, CreateInviteRequest{})
		e.apply(t, "applicant@example.com", inv.Code)

		sess, err := auth.Login(ctx, "applicant@example.com", "s3cret-pass")
		require.NoError(t, err)
		claims, err := verifier.Verify(sess.AccessToken)
		require.NoError(t, err)
		require.Equal(t, []string{ScopeProfileRead}, claims.Scopes)
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := auth.Login(ctx, "admin@example.com", "wrong password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = auth.Login(ctx, "ghost@example.com", "whatever1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestBootstrapRunsOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	boot := &BootstrapService{Store: e.store, Hasher: e.hasher, Token: "boot"}
	ok, err := boot.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = boot.Bootstrap(ctx, "boot", BootstrapData{
		CommunityName: "Second", AdminName: "X", AdminEmail: "x@example.com", AdminPassword: "long enough",
	})
	require.ErrorIs(t, err, ErrBootstrapAlready)
}

func TestBootstrapRequiresToken(t *testing.T) {
	ctx := context.Background()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	data := BootstrapData{CommunityName: "C", AdminName: "A", AdminEmail: "a@example.com", AdminPassword: "long enough"}

	_, _, err = (&BootstrapService{Store: st, Hasher: cryptox.NewHasher("p")}).Bootstrap(ctx, "", data)
	require.ErrorIs(t, err, ErrBootstrapUnauthorized, "an unset token never authorises")

	boot := &BootstrapService{Store: st, Hasher: cryptox.NewHasher("p"), Token: "secret"}
	_, _, err = boot.Bootstrap(ctx, "guess", data)
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	short := data
	short.AdminPassword = "short"
	_, _, err = boot.Bootstrap(ctx, "secret", short)
	require.ErrorIs(t, err, ErrBootstrapInvalid)

	community, admin, err := boot.Bootstrap(ctx, "secret", data)
	require.NoError(t, err)
	require.Equal(t, community.ID, admin.CommunityID)
	require.Equal(t, domain.RoleAdmin, admin.Role)
	require.Equal(t, domain.StatusActive, admin.Status)
}
