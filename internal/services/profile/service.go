package profile

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskwell/taskwell/internal/database"
	"github.com/taskwell/taskwell/internal/errs"
	"github.com/taskwell/taskwell/internal/identity"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/pipeline"
)

// Service defines account and credential operations. Sign-up, sign-in
// and refresh are the only unauthenticated entry points in the system.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*models.User, error)
	SignIn(ctx context.Context, req SignInRequest) (*TokenPair, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	SignOut(ctx context.Context, req SignOutRequest) error

	Get(ctx context.Context, req GetRequest) (*models.User, error)
	Update(ctx context.Context, req UpdateRequest) (*models.User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}

// service implements Service
type service struct {
	repo   database.DataStore
	tokens *identity.TokenManager
	chain  *pipeline.Chain
}

// NewService creates a new profile service
func NewService(repo database.DataStore, tokens *identity.TokenManager, chain *pipeline.Chain) Service {
	return &service{
		repo:   repo,
		tokens: tokens,
		chain:  chain,
	}
}

// SignUp registers an account. The email must be unused.
func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	return pipeline.Execute(ctx, s.chain, req, s.signUp)
}

func (s *service) signUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Email, req.FirstName, req.LastName, string(hash))
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn verifies the credentials and issues a token pair. The refresh
// token is stored on the user row until sign-out or rotation.
func (s *service) SignIn(ctx context.Context, req SignInRequest) (*TokenPair, error) {
	return pipeline.Execute(ctx, s.chain, req, s.signIn)
}

func (s *service) signIn(ctx context.Context, req SignInRequest) (*TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errs.IsNotFound(err) {
			// Same response for unknown email and wrong password
			return nil, errs.AccessDenied()
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errs.AccessDenied()
	}

	return s.issueTokens(ctx, user.ID)
}

// Refresh rotates the caller's token pair. The presented refresh token
// must match the stored one and be unexpired.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	return pipeline.Execute(ctx, s.chain, req, s.refresh)
}

func (s *service) refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	user, err := s.repo.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.AccessDenied()
		}
		return nil, err
	}

	if user.RefreshToken == nil || user.RefreshTokenExpiry == nil {
		return nil, errs.AccessDenied()
	}
	if *user.RefreshToken != req.RefreshToken || user.RefreshTokenExpiry.Before(time.Now()) {
		return nil, errs.AccessDenied()
	}

	return s.issueTokens(ctx, user.ID)
}

// SignOut clears the caller's stored refresh token
func (s *service) SignOut(ctx context.Context, req SignOutRequest) error {
	_, err := pipeline.Execute(ctx, s.chain, req, func(ctx context.Context, req SignOutRequest) (struct{}, error) {
		return struct{}{}, s.signOut(ctx)
	})
	return err
}

func (s *service) signOut(ctx context.Context) error {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return errs.Unauthenticated()
	}

	if err := s.repo.ClearRefreshToken(ctx, callerID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// Get returns the caller's own profile
func (s *service) Get(ctx context.Context, req GetRequest) (*models.User, error) {
	return pipeline.Execute(ctx, s.chain, req, s.get)
}

func (s *service) get(ctx context.Context, _ GetRequest) (*models.User, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	return s.repo.GetUserByID(ctx, callerID)
}

// Update applies the request's non-nil fields to the caller's profile.
// A new email must not belong to another user.
func (s *service) Update(ctx context.Context, req UpdateRequest) (*models.User, error) {
	return pipeline.Execute(ctx, s.chain, req, s.update)
}

func (s *service) update(ctx context.Context, req UpdateRequest) (*models.User, error) {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return nil, errs.Unauthenticated()
	}

	user, err := s.repo.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.AnyUserWithEmail(ctx, *req.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, errs.Conflict("email already in use")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.repo.UpdateUser(ctx, user.ID, user.Email, user.FirstName, user.LastName); err != nil {
		return nil, err
	}

	return s.repo.GetUserByID(ctx, user.ID)
}

// ChangePassword verifies the current password before storing the new
// hash
func (s *service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	_, err := pipeline.Execute(ctx, s.chain, req, func(ctx context.Context, req ChangePasswordRequest) (struct{}, error) {
		return struct{}{}, s.changePassword(ctx, req)
	})
	return err
}

func (s *service) changePassword(ctx context.Context, req ChangePasswordRequest) error {
	callerID, ok := identity.CallerID(ctx)
	if !ok {
		return errs.Unauthenticated()
	}

	user, err := s.repo.GetUserByID(ctx, callerID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return errs.AccessDenied()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// issueTokens signs an access token and rotates the stored refresh token
func (s *service) issueTokens(ctx context.Context, userID string) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}

	refresh, expiry := s.tokens.NewRefreshToken()
	if err := s.repo.SetRefreshToken(ctx, userID, refresh, expiry); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
