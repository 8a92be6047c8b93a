package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaekwang-park/todo-app/internal/cognito"
	"github.com/jaekwang-park/todo-app/internal/repository"
	"github.com/jaekwang-park/todo-app/internal/session"
)

// TokenVerifier checks an ID token issued by the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (session.Claims, error)
}

// AuthService signs users in and out of the session.
type AuthService struct {
	cognitoClient cognito.Client
	verifier      TokenVerifier
	userRepo      repository.UserRepository
	sessions      *session.Provider
	logger        *slog.Logger
	devMode       bool
}

// NewAuthService creates an AuthService. cognitoClient and verifier may be
// nil when only dev login is used.
func NewAuthService(
	cognitoClient cognito.Client,
	verifier TokenVerifier,
	userRepo repository.UserRepository,
	sessions *session.Provider,
	logger *slog.Logger,
	devMode bool,
) *AuthService {
	return &AuthService{
		cognitoClient: cognitoClient,
		verifier:      verifier,
		userRepo:      userRepo,
		sessions:      sessions,
		logger:        logger,
		devMode:       devMode,
	}
}

type SignUpInput struct {
	Email    string
	Password string
}

type SignUpOutput struct {
	UserSub      string `json:"user_sub"`
	Confirmed    bool   `json:"confirmed"`
	CodeDelivery string `json:"code_delivery"`
}

type ConfirmSignUpInput struct {
	Email string
	Code  string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	User      session.Identity `json:"user"`
	ExpiresIn int32            `json:"expires_in"`
	TokenType string           `json:"token_type"`
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error) {
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" {
		return SignUpOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return SignUpOutput{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if s.cognitoClient == nil {
		return SignUpOutput{}, ErrAuthUnavailable
	}

	out, err := s.cognitoClient.SignUp(ctx, cognito.SignUpInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return SignUpOutput{}, err
	}

	return SignUpOutput{
		UserSub:      out.UserSub,
		Confirmed:    out.Confirmed,
		CodeDelivery: out.CodeDelivery,
	}, nil
}

func (s *AuthService) ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error {
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	if s.cognitoClient == nil {
		return ErrAuthUnavailable
	}

	return s.cognitoClient.ConfirmSignUp(ctx, cognito.ConfirmSignUpInput{
		Email: input.Email,
		Code:  input.Code,
	})
}

// Login authenticates with the identity provider and makes the user the
// current identity. The provider reports loading until Login returns.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginOutput, error) {
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" {
		return LoginOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return LoginOutput{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if s.cognitoClient == nil || s.verifier == nil {
		return LoginOutput{}, ErrAuthUnavailable
	}

	done := s.sessions.BeginLoading()
	defer done()

	out, err := s.cognitoClient.Login(ctx, cognito.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return LoginOutput{}, err
	}

	claims, err := s.verifier.Verify(ctx, out.IDToken)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("failed to verify id token: %w", err)
	}

	email := claims.Email
	if email == "" {
		email = input.Email
	}
	user, err := s.userRepo.GetOrCreate(ctx, claims.Subject, email)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("failed to get or create user: %w", err)
	}

	id := session.Identity{
		UserID:       user.ID,
		CognitoSub:   user.CognitoSub,
		Email:        user.Email,
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}
	s.sessions.SignIn(id)
	s.logger.InfoContext(ctx, "user signed in", "user_id", user.ID)

	return LoginOutput{
		User:      id,
		ExpiresIn: out.ExpiresIn,
		TokenType: out.TokenType,
	}, nil
}

// Refresh renews the tokens of the current identity.
func (s *AuthService) Refresh(ctx context.Context) error {
	id, ok := s.sessions.Current()
	if !ok {
		return ErrUnauthenticated
	}
	if id.RefreshToken == "" {
		return fmt.Errorf("%w: session has no refresh token", ErrInvalidInput)
	}
	if s.cognitoClient == nil || s.verifier == nil {
		return ErrAuthUnavailable
	}

	out, err := s.cognitoClient.RefreshTokens(ctx, cognito.RefreshInput{
		Email:        id.Email,
		RefreshToken: id.RefreshToken,
	})
	if err != nil {
		return err
	}

	claims, err := s.verifier.Verify(ctx, out.IDToken)
	if err != nil {
		return fmt.Errorf("failed to verify id token: %w", err)
	}
	if claims.Subject != id.CognitoSub {
		return fmt.Errorf("%w: refreshed token belongs to another user", ErrForbidden)
	}

	s.sessions.UpdateTokens(out.AccessToken, out.RefreshToken)
	return nil
}

// Logout clears the current identity. The tokens are revoked at the identity
// provider first; a failed revocation is logged and does not keep the user
// signed in.
func (s *AuthService) Logout(ctx context.Context) error {
	id, ok := s.sessions.Current()
	if !ok {
		return nil
	}

	if s.cognitoClient != nil && id.AccessToken != "" {
		if err := s.cognitoClient.GlobalSignOut(ctx, id.AccessToken); err != nil {
			s.logger.WarnContext(ctx, "global sign-out failed", "user_id", id.UserID, "error", err)
		}
	}

	s.sessions.SignOut()
	s.logger.InfoContext(ctx, "user signed out", "user_id", id.UserID)
	return nil
}

// DevLogin signs in as userID without the identity provider. It is only
// available in dev mode.
func (s *AuthService) DevLogin(ctx context.Context, userID string) (session.Identity, error) {
	if !s.devMode {
		return session.Identity{}, fmt.Errorf("%w: dev login is disabled", ErrForbidden)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return session.Identity{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	id := session.Identity{UserID: userID}
	s.sessions.SignIn(id)
	s.logger.InfoContext(ctx, "dev user signed in", "user_id", userID)
	return id, nil
}

// State returns the current session state.
func (s *AuthService) State() session.State {
	return s.sessions.State()
}
