package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/jwtx"
	"github.com/ziberlive/colive/pkg/slogx"
)

const (
	ScopeAdminRead   = "admin:read"
	ScopeAdminWrite  = "admin:write"
	ScopeMemberRead  = "member:read"
	ScopeProfileRead = "profile:read"
)

var ErrInvalidCredentials = errors.New("invalid_credentials")

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	ExpiresIn   time.Duration
	Member      *domain.Member // nil when the user has no membership record
}

type AuthService struct {
	Store     store.Store
	Hasher    *cryptox.Hasher
	Signer    jwtx.Signer
	Issuer    string
	Audience  []string
	AccessTTL time.Duration
}

// ScopesFor returns the scopes granted to m. Only active members reach the
// member surface; administrators additionally get the admin surface.
func ScopesFor(m *domain.Member) []string {
	switch {
	case m == nil || m.Status != domain.StatusActive:
		return []string{ScopeProfileRead}
	case m.Role == domain.RoleAdmin:
		return []string{ScopeAdminRead, ScopeAdminWrite, ScopeMemberRead, ScopeProfileRead}
	default:
		return []string{ScopeMemberRead, ScopeProfileRead}
	}
}

// Login checks email and password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	log := slogx.FromContext(ctx)
	now := time.Now()

	// 1. Look up and verify the credentials.
	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		log.Info("login failed", slog.String("user_id", user.ID))
		return Session{}, ErrInvalidCredentials
	}

	// 2. Attach the membership, if any.
	var member *domain.Member
	m, err := s.Store.Members().GetMemberByUserID(ctx, user.ID)
	switch {
	case err == nil:
		member = &m
	case !errors.Is(err, store.ErrNotFound):
		return Session{}, err
	}

	// 3. Sign.
	params := jwtx.AccessParams{
		Subject:  user.ID,
		Scopes:   ScopesFor(member),
		Issuer:   s.Issuer,
		Audience: s.Audience,
		TTL:      s.AccessTTL,
	}
	if member != nil {
		params.MemberID = member.ID
		params.CommunityID = member.CommunityID
		params.Role = string(member.Role)
		params.Name = member.Name
	}
	claims := jwtx.NewAccessClaims(params, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return Session{}, err
	}

	log.Info("login succeeded", slog.String("user_id", user.ID))
	return Session{
		AccessToken: token,
		ExpiresIn:   claims.ExpiresAt.Sub(now),
		Member:      member,
	}, nil
}
