package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ziberlive/colive/internal/membership/domain"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/pkg/cryptox"
	"github.com/ziberlive/colive/pkg/idx"
	"github.com/ziberlive/colive/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapInvalid      = errors.New("invalid bootstrap request")
)

// BootstrapData describes the first community and its administrator.
type BootstrapData struct {
	CommunityName    string
	CommunityAddress string
	AdminName        string
	AdminEmail       string
	AdminPhone       string
	AdminPassword    string
}

type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Token  string // pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the first community and an active administrator. It only
// succeeds once and only with the configured token.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req BootstrapData) (domain.Community, domain.Member, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// 1. Check if already bootstrapped
	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.Community{}, domain.Member{}, ErrBootstrapAlready
	}

	// 2. Validate provided token
	if s.Token == "" || !cryptox.EqualTokens(token, s.Token) {
		l.Warn("unauthorized bootstrap attempt")
		return domain.Community{}, domain.Member{}, ErrBootstrapUnauthorized
	}

	// 3. Validate the request
	if strings.TrimSpace(req.CommunityName) == "" || strings.TrimSpace(req.AdminName) == "" ||
		strings.TrimSpace(req.AdminEmail) == "" || len(req.AdminPassword) < domain.MinPasswordLength {
		return domain.Community{}, domain.Member{}, ErrBootstrapInvalid
	}

	// 4. Hash password
	hash, err := s.Hasher.Hash(req.AdminPassword)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return domain.Community{}, domain.Member{}, err
	}

	community := domain.Community{
		ID:        idx.New().String(),
		Name:      strings.TrimSpace(req.CommunityName),
		Address:   strings.TrimSpace(req.CommunityAddress),
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := domain.User{
		ID:           idx.New().String(),
		Email:        normalizeEmail(req.AdminEmail),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	admin := domain.Member{
		ID:          idx.New().String(),
		UserID:      user.ID,
		CommunityID: community.ID,
		Name:        strings.TrimSpace(req.AdminName),
		Email:       user.Email,
		Phone:       strings.TrimSpace(req.AdminPhone),
		Status:      domain.StatusActive,
		Role:        domain.RoleAdmin,
		RequestedAt: now,
		ApprovedAt:  &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 5. Create community, admin user and membership in a transaction
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Communities().CreateCommunity(ctx, community); err != nil {
			l.Error("failed to create community", slog.Any("error", err))
			return err
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			l.Error("failed to create admin user", slog.Any("error", err))
			return err
		}
		if err := tx.Members().CreateMember(ctx, admin); err != nil {
			l.Error("failed to create admin membership", slog.Any("error", err))
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Community{}, domain.Member{}, err
	}

	l.Info("successfully bootstrapped system",
		slog.String("community_id", community.ID),
		slog.String("admin_member_id", admin.ID),
	)
	return community, admin, nil
}
