package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaekwang-park/todo-app/internal/cognito"
	"github.com/jaekwang-park/todo-app/internal/model"
	"github.com/jaekwang-park/todo-app/internal/service"
	"github.com/jaekwang-park/todo-app/internal/session"
)

// --- Mock Cognito Client ---

type mockCognitoClient struct {
	signUpFn        func(ctx context.Context, input cognito.SignUpInput) (cognito.SignUpOutput, error)
	confirmSignUpFn func(ctx context.Context, input cognito.ConfirmSignUpInput) error
	loginFn         func(ctx context.Context, input cognito.LoginInput) (cognito.AuthOutput, error)
	refreshTokensFn func(ctx context.Context, input cognito.RefreshInput) (cognito.AuthOutput, error)
	globalSignOutFn func(ctx context.Context, accessToken string) error
}

func (m *mockCognitoClient) SignUp(ctx context.Context, input cognito.SignUpInput) (cognito.SignUpOutput, error) {
	return m.signUpFn(ctx, input)
}
func (m *mockCognitoClient) ConfirmSignUp(ctx context.Context, input cognito.ConfirmSignUpInput) error {
	return m.confirmSignUpFn(ctx, input)
}
func (m *mockCognitoClient) Login(ctx context.Context, input cognito.LoginInput) (cognito.AuthOutput, error) {
	return m.loginFn(ctx, input)
}
func (m *mockCognitoClient) RefreshTokens(ctx context.Context, input cognito.RefreshInput) (cognito.AuthOutput, error) {
	return m.refreshTokensFn(ctx, input)
}
func (m *mockCognitoClient) GlobalSignOut(ctx context.Context, accessToken string) error {
	return m.globalSignOutFn(ctx, accessToken)
}

// --- Mock Verifier ---

type mockVerifier struct {
	verifyFn func(ctx context.Context, idToken string) (session.Claims, error)
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (session.Claims, error) {
	return m.verifyFn(ctx, idToken)
}

// --- Mock User Repository ---

type mockUserRepo struct {
	getOrCreateFn     func(ctx context.Context, cognitoSub, email string) (model.User, error)
	getByCognitoSubFn func(ctx context.Context, cognitoSub string) (model.User, error)
}

func (m *mockUserRepo) GetOrCreate(ctx context.Context, cognitoSub, email string) (model.User, error) {
	return m.getOrCreateFn(ctx, cognitoSub, email)
}
func (m *mockUserRepo) GetByCognitoSub(ctx context.Context, cognitoSub string) (model.User, error) {
	return m.getByCognitoSubFn(ctx, cognitoSub)
}

// tokenVerifier accepts "id-<sub>" tokens.
func tokenVerifier() *mockVerifier {
	return &mockVerifier{
		verifyFn: func(ctx context.Context, idToken string) (session.Claims, error) {
			if len(idToken) < 4 || idToken[:3] != "id-" {
				return session.Claims{}, session.ErrInvalidToken
			}
			return session.Claims{Subject: idToken[3:], Email: "test@example.com"}, nil
		},
	}
}

func userRepo() *mockUserRepo {
	return &mockUserRepo{
		getOrCreateFn: func(ctx context.Context, cognitoSub, email string) (model.User, error) {
			return model.User{ID: "user-" + cognitoSub, CognitoSub: cognitoSub, Email: email}, nil
		},
	}
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		mockOut   cognito.SignUpOutput
		mockErr   error
		wantErrIs error
	}{
		{
			name:     "success",
			email:    "test@example.com",
			password: "Password1!",
			mockOut: cognito.SignUpOutput{
				UserSub:      "sub-123",
				CodeDelivery: "EMAIL",
			},
		},
		{
			name:      "empty email",
			password:  "Password1!",
			wantErrIs: service.ErrInvalidInput,
		},
		{
			name:      "empty password",
			email:     "test@example.com",
			wantErrIs: service.ErrInvalidInput,
		},
		{
			name:      "user already exists",
			email:     "test@example.com",
			password:  "Password1!",
			mockErr:   cognito.ErrUserAlreadyExists,
			wantErrIs: cognito.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCognitoClient{
				signUpFn: func(ctx context.Context, input cognito.SignUpInput) (cognito.SignUpOutput, error) {
					return tt.mockOut, tt.mockErr
				},
			}
			svc := service.NewAuthService(mock, nil, nil, session.NewProvider(), discardLogger(), false)

			out, err := svc.SignUp(context.Background(), service.SignUpInput{
				Email:    tt.email,
				Password: tt.password,
			})

			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("expected error %v, got %v", tt.wantErrIs, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.UserSub != tt.mockOut.UserSub || out.CodeDelivery != "EMAIL" {
				t.Errorf("unexpected output: %+v", out)
			}
		})
	}
}

func TestAuthService_ConfirmSignUp(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		code      string
		mockErr   error
		wantErrIs error
	}{
		{name: "success", email: "test@example.com", code: "123456"},
		{name: "empty email", code: "123456", wantErrIs: service.ErrInvalidInput},
		{name: "empty code", email: "test@example.com", wantErrIs: service.ErrInvalidInput},
		{name: "invalid code", email: "test@example.com", code: "wrong", mockErr: cognito.ErrInvalidCode, wantErrIs: cognito.ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCognitoClient{
				confirmSignUpFn: func(ctx context.Context, input cognito.ConfirmSignUpInput) error {
					return tt.mockErr
				},
			}
			svc := service.NewAuthService(mock, nil, nil, session.NewProvider(), discardLogger(), false)

			err := svc.ConfirmSignUp(context.Background(), service.ConfirmSignUpInput{Email: tt.email, Code: tt.code})
			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("expected error %v, got %v", tt.wantErrIs, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		loginOut  cognito.AuthOutput
		loginErr  error
		wantErrIs error
	}{
		{
			name:     "success",
			email:    "test@example.com",
			password: "Password1!",
			loginOut: cognito.AuthOutput{
				IDToken:      "id-sub-123",
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				ExpiresIn:    3600,
				TokenType:    "Bearer",
			},
		},
		{
			name:      "wrong password",
			email:     "test@example.com",
			password:  "wrong",
			loginErr:  cognito.ErrNotAuthorized,
			wantErrIs: cognito.ErrNotAuthorized,
		},
		{
			name:      "invalid id token",
			email:     "test@example.com",
			password:  "Password1!",
			loginOut:  cognito.AuthOutput{IDToken: "garbage"},
			wantErrIs: session.ErrInvalidToken,
		},
		{
			name:      "empty email",
			password:  "Password1!",
			wantErrIs: service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewProvider()
			var loadingDuringLogin bool
			mock := &mockCognitoClient{
				loginFn: func(ctx context.Context, input cognito.LoginInput) (cognito.AuthOutput, error) {
					loadingDuringLogin = sessions.Loading()
					return tt.loginOut, tt.loginErr
				},
			}
			svc := service.NewAuthService(mock, tokenVerifier(), userRepo(), sessions, discardLogger(), false)

			out, err := svc.Login(context.Background(), service.LoginInput{Email: tt.email, Password: tt.password})
			if sessions.Loading() {
				t.Error("loading must be cleared after Login returns")
			}

			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("expected error %v, got %v", tt.wantErrIs, err)
				}
				if _, ok := sessions.Current(); ok {
					t.Error("failed login must not sign in")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !loadingDuringLogin {
				t.Error("expected loading while the provider is called")
			}

			id, ok := sessions.Current()
			if !ok || id.UserID != "user-sub-123" || id.AccessToken != "access-1" {
				t.Errorf("unexpected identity: %+v", id)
			}
			if out.User.UserID != "user-sub-123" || out.ExpiresIn != 3600 {
				t.Errorf("unexpected output: %+v", out)
			}
		})
	}
}

func TestAuthService_Login_Unavailable(t *testing.T) {
	svc := service.NewAuthService(nil, nil, nil, session.NewProvider(), discardLogger(), true)

	_, err := svc.Login(context.Background(), service.LoginInput{Email: "a@example.com", Password: "x"})
	if !errors.Is(err, service.ErrAuthUnavailable) {
		t.Errorf("expected ErrAuthUnavailable, got %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	tests := []struct {
		name       string
		signedIn   bool
		refreshOut cognito.AuthOutput
		refreshErr error
		wantErrIs  error
		wantAccess string
	}{
		{
			name:       "success",
			signedIn:   true,
			refreshOut: cognito.AuthOutput{IDToken: "id-sub-123", AccessToken: "access-2"},
			wantAccess: "access-2",
		},
		{
			name:      "not signed in",
			wantErrIs: service.ErrUnauthenticated,
		},
		{
			name:       "expired refresh token",
			signedIn:   true,
			refreshErr: cognito.ErrNotAuthorized,
			wantErrIs:  cognito.ErrNotAuthorized,
			wantAccess: "access-1",
		},
		{
			name:       "token of another user",
			signedIn:   true,
			refreshOut: cognito.AuthOutput{IDToken: "id-sub-999", AccessToken: "access-2"},
			wantErrIs:  service.ErrForbidden,
			wantAccess: "access-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewProvider()
			if tt.signedIn {
				sessions.SignIn(session.Identity{
					UserID:       "user-sub-123",
					CognitoSub:   "sub-123",
					Email:        "test@example.com",
					AccessToken:  "access-1",
					RefreshToken: "refresh-1",
				})
			}
			mock := &mockCognitoClient{
				refreshTokensFn: func(ctx context.Context, input cognito.RefreshInput) (cognito.AuthOutput, error) {
					if input.RefreshToken != "refresh-1" || input.Email != "test@example.com" {
						t.Errorf("unexpected refresh input: %+v", input)
					}
					return tt.refreshOut, tt.refreshErr
				},
			}
			svc := service.NewAuthService(mock, tokenVerifier(), userRepo(), sessions, discardLogger(), false)

			err := svc.Refresh(context.Background())
			if tt.wantErrIs != nil {
				if !errors.Is(err, tt.wantErrIs) {
					t.Errorf("expected error %v, got %v", tt.wantErrIs, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !tt.signedIn {
				return
			}
			id, _ := sessions.Current()
			if id.AccessToken != tt.wantAccess {
				t.Errorf("AccessToken = %q, want %q", id.AccessToken, tt.wantAccess)
			}
			if id.RefreshToken != "refresh-1" {
				t.Errorf("refresh token should be kept, got %q", id.RefreshToken)
			}
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	tests := []struct {
		name       string
		signOutErr error
	}{
		{name: "success"},
		{name: "provider failure still signs out", signOutErr: cognito.ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := session.NewProvider()
			sessions.SignIn(session.Identity{UserID: "user-1", AccessToken: "access-1"})

			var revoked string
			mock := &mockCognitoClient{
				globalSignOutFn: func(ctx context.Context, accessToken string) error {
					revoked = accessToken
					return tt.signOutErr
				},
			}
			svc := service.NewAuthService(mock, tokenVerifier(), userRepo(), sessions, discardLogger(), false)

			if err := svc.Logout(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if revoked != "access-1" {
				t.Errorf("revoked %q, want access-1", revoked)
			}
			if _, ok := sessions.Current(); ok {
				t.Error("expected no identity after logout")
			}
		})
	}
}

func TestAuthService_DevLogin(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		sessions := session.NewProvider()
		svc := service.NewAuthService(nil, nil, nil, sessions, discardLogger(), true)

		id, err := svc.DevLogin(context.Background(), " dev-user ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.UserID != "dev-user" {
			t.Errorf("UserID = %q, want dev-user", id.UserID)
		}
		if state := svc.State(); state.Identity == nil || state.Identity.UserID != "dev-user" {
			t.Errorf("unexpected state: %+v", state)
		}

		// Logout without tokens never calls the provider.
		if err := svc.Logout(context.Background()); err != nil {
			t.Fatalf("Logout: %v", err)
		}
		if _, ok := sessions.Current(); ok {
			t.Error("expected no identity after logout")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		svc := service.NewAuthService(nil, nil, nil, session.NewProvider(), discardLogger(), false)
		if _, err := svc.DevLogin(context.Background(), "dev-user"); !errors.Is(err, service.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		svc := service.NewAuthService(nil, nil, nil, session.NewProvider(), discardLogger(), true)
		if _, err := svc.DevLogin(context.Background(), ""); !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
