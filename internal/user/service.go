// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/auth"
	"github.com/avocado-market/avocado-api/internal/core"
)

// BasketOpener creates the first live basket of a new account on the
// transaction handle it is given.
type BasketOpener func(ctx context.Context, db core.DBTX, userID int64) error

type Service struct {
	repo       Repository
	tx         core.Transactor
	txRepo     func(core.DBTX) Repository
	openBasket BasketOpener
	profiles   access.Invalidator
}

func NewService(
	repo Repository,
	tx core.Transactor,
	openBasket BasketOpener,
	profiles access.Invalidator,
) *Service {
	if profiles == nil {
		profiles = access.NoopInvalidator
	}
	return &Service{
		repo:       repo,
		tx:         tx,
		txRepo:     NewRepository,
		openBasket: openBasket,
		profiles:   profiles,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// CreateAccount inserts the user and opens its basket in one transaction.
func (s *Service) CreateAccount(
	ctx context.Context,
	acct auth.NewAccount,
) (*auth.UserInfo, error) {
	user := &User{
		FirstName:    acct.FirstName,
		LastName:     acct.LastName,
		Email:        strings.ToLower(acct.Email),
		PasswordHash: acct.PasswordHash,
		PhoneNumber:  acct.PhoneNumber,
		RoleID:       acct.RoleID,
		AuthProvider: acct.AuthProvider,
	}

	err := s.tx.Transact(ctx, func(db core.DBTX) error {
		if err := s.txRepo(db).Create(ctx, user); err != nil {
			return err
		}
		if err := s.openBasket(ctx, db, user.ID); err != nil {
			return fmt.Errorf("open basket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) SetResetToken(
	ctx context.Context,
	userID int64,
	digest string,
	expiresAt time.Time,
) error {
	return s.repo.SetResetToken(ctx, userID, digest, expiresAt)
}

func (s *Service) ResetPassword(ctx context.Context, digest, passwordHash string) error {
	return s.repo.ResetPassword(ctx, digest, passwordHash)
}

func (s *Service) IsSuspended(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsSuspended(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, roleID int64,
) (*User, error) {
	exists, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("update role: unknown role %d: %w", roleID, core.ErrInvalidInput)
	}

	if err := s.repo.UpdateRole(ctx, id, roleID); err != nil {
		return nil, err
	}
	s.forgetProfile(ctx, id)

	return s.repo.GetByID(ctx, id)
}

func (s *Service) SetSuspended(
	ctx context.Context,
	id int64,
	suspended bool,
) (*User, error) {
	if err := s.repo.SetSuspended(ctx, id, suspended); err != nil {
		return nil, err
	}
	s.forgetProfile(ctx, id)

	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.forgetProfile(ctx, id)
	return nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID int64,
	req UpdateUserRequest,
) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.DeleteUser(ctx, userID)
}

func (s *Service) forgetProfile(ctx context.Context, userID int64) {
	if err := s.profiles.InvalidateUser(ctx, userID); err != nil {
		slog.Warn("access profile invalidation failed", "user_id", userID, "error", err)
	}
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		PhoneNumber:  u.PhoneNumber,
		RoleID:       u.RoleID,
		IsSuspended:  u.IsSuspended,
		AuthProvider: u.AuthProvider,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
