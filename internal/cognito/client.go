package cognito

import "context"

// Client is the subset of the Cognito user-pool API used to authenticate
// the session.
type Client interface {
	SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error
	Login(ctx context.Context, input LoginInput) (AuthOutput, error)
	RefreshTokens(ctx context.Context, input RefreshInput) (AuthOutput, error)
	GlobalSignOut(ctx context.Context, accessToken string) error
}

type SignUpInput struct {
	Email    string
	Password string
}

type SignUpOutput struct {
	UserSub      string
	Confirmed    bool
	CodeDelivery string // e.g. "EMAIL"
}

type ConfirmSignUpInput struct {
	Email string
	Code  string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthOutput contains the tokens issued by a login or refresh. RefreshToken
// is empty after a refresh.
type AuthOutput struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

type RefreshInput struct {
	Email        string
	RefreshToken string
}
