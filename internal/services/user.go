package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"campusevents/internal/domain"
)

const minPasswordLen = 8

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)
)

type userService struct {
	userRepo domain.UserRepository
	hasher   domain.PasswordHasher
	logger   *slog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummySalt string
	dummyHash string
}

// NewUserService creates a UserService with the given repository and password hasher.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher, logger *slog.Logger) domain.UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *userService) SignUp(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleStudent)
}

func (s *userService) CreateAdmin(ctx context.Context, in domain.SignUpInput) (*domain.User, error) {
	return s.create(ctx, in, domain.RoleAdmin)
}

func (s *userService) create(ctx context.Context, in domain.SignUpInput, role domain.Role) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !usernameRegexp.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-50 letters, digits, dots, dashes or underscores", domain.ErrInvalidInput)
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	if in.Year != nil && *in.Year < 1 {
		return nil, fmt.Errorf("%w: year must be positive", domain.ErrInvalidInput)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := domain.NewUser(username, email, strings.TrimSpace(in.FullName), now, now)
	user.Role = role
	user.PasswordHash = hash
	user.Salt = salt
	user.Department = strings.TrimSpace(in.Department)
	user.StudentID = strings.TrimSpace(in.StudentID)
	user.Year = in.Year
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) || errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Burn a comparison so unknown usernames cost the same as wrong passwords.
			s.compareDummy(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !user.Active {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		salt, err := s.hasher.GenerateSalt()
		if err != nil {
			return
		}
		hash, err := s.hasher.Hash(salt, "campusevents-dummy-password")
		if err != nil {
			return
		}
		s.dummySalt, s.dummyHash = salt, hash
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, s.dummySalt, password)
	}
}

func (s *userService) Login(ctx context.Context, sess domain.Session, user *domain.User) error {
	if sess == nil || user == nil {
		return fmt.Errorf("%w: session and user are required", domain.ErrInvalidInput)
	}
	if err := sess.Set(ctx, domain.SessionKeyUserID, user.ID); err != nil {
		return fmt.Errorf("store user id in session: %w", err)
	}
	if err := sess.Set(ctx, domain.SessionKeyUserRole, string(user.Role)); err != nil {
		return fmt.Errorf("store user role in session: %w", err)
	}
	return nil
}

func (s *userService) Logout(ctx context.Context, sess domain.Session) error {
	if sess == nil {
		return nil
	}
	if err := sess.Remove(ctx, domain.SessionKeyUserID); err != nil {
		return fmt.Errorf("remove user id from session: %w", err)
	}
	if err := sess.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

func (s *userService) CurrentUser(ctx context.Context, sess domain.Session) (*domain.User, bool) {
	if sess == nil {
		return nil, false
	}
	userID, ok, err := sess.Get(ctx, domain.SessionKeyUserID)
	if err != nil {
		s.logger.WarnContext(ctx, "read session failed", "err", err)
		return nil, false
	}
	if !ok || userID == "" {
		return nil, false
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "resolve session user failed", "user_id", userID, "err", err)
		}
		return nil, false
	}
	if !user.Active {
		return nil, false
	}
	return user, true
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateUserRole(ctx context.Context, userID string, role domain.Role, admin *domain.User) (*domain.User, error) {
	if err := checkAdminActingOnOther(admin, userID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	user, err := s.userRepo.UpdateRole(ctx, userID, role, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUserStatus(ctx context.Context, userID string, active bool, admin *domain.User) (*domain.User, error) {
	if err := checkAdminActingOnOther(admin, userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.UpdateActive(ctx, userID, active, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update user status: %w", err)
	}
	return user, nil
}

func checkAdminActingOnOther(admin *domain.User, userID string) error {
	if !admin.IsAdmin() {
		return domain.ErrUnauthorized
	}
	if admin.ID == userID {
		return domain.ErrSelfModification
	}
	return nil
}
