package cognito

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// AWSClient implements Client using the AWS SDK v2.
type AWSClient struct {
	cip          *cip.Client
	clientID     string
	clientSecret string
}

func NewAWSClient(ctx context.Context, region, clientID, clientSecret string) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSClient{
		cip:          cip.NewFromConfig(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

// SecretHash computes the SECRET_HASH Cognito requires when the app client
// has a secret: Base64(HMAC_SHA256(secret, username + clientID)).
func SecretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *AWSClient) secretHash(username string) *string {
	if c.clientSecret == "" {
		return nil
	}
	return aws.String(SecretHash(username, c.clientID, c.clientSecret))
}

func (c *AWSClient) SignUp(ctx context.Context, input SignUpInput) (SignUpOutput, error) {
	out, err := c.cip.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(c.clientID),
		SecretHash: c.secretHash(input.Email),
		Username:   aws.String(input.Email),
		Password:   aws.String(input.Password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(input.Email)},
		},
	})
	if err != nil {
		return SignUpOutput{}, mapAWSError(err)
	}

	result := SignUpOutput{
		UserSub:   aws.ToString(out.UserSub),
		Confirmed: out.UserConfirmed,
	}
	if out.CodeDeliveryDetails != nil {
		result.CodeDelivery = string(out.CodeDeliveryDetails.DeliveryMedium)
	}
	return result, nil
}

func (c *AWSClient) ConfirmSignUp(ctx context.Context, input ConfirmSignUpInput) error {
	_, err := c.cip.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		SecretHash:       c.secretHash(input.Email),
		Username:         aws.String(input.Email),
		ConfirmationCode: aws.String(input.Code),
	})
	return mapAWSError(err)
}

func (c *AWSClient) Login(ctx context.Context, input LoginInput) (AuthOutput, error) {
	params := map[string]string{
		"USERNAME": input.Email,
		"PASSWORD": input.Password,
	}
	return c.initiateAuth(ctx, types.AuthFlowTypeUserPasswordAuth, input.Email, params)
}

func (c *AWSClient) RefreshTokens(ctx context.Context, input RefreshInput) (AuthOutput, error) {
	params := map[string]string{
		"REFRESH_TOKEN": input.RefreshToken,
	}
	return c.initiateAuth(ctx, types.AuthFlowTypeRefreshTokenAuth, input.Email, params)
}

func (c *AWSClient) initiateAuth(ctx context.Context, flow types.AuthFlowType, username string, params map[string]string) (AuthOutput, error) {
	if h := c.secretHash(username); h != nil {
		params["SECRET_HASH"] = *h
	}

	out, err := c.cip.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId:       aws.String(c.clientID),
		AuthFlow:       flow,
		AuthParameters: params,
	})
	if err != nil {
		return AuthOutput{}, mapAWSError(err)
	}
	if out.AuthenticationResult == nil {
		return AuthOutput{}, fmt.Errorf("cognito: challenge %q is not supported", out.ChallengeName)
	}

	r := out.AuthenticationResult
	return AuthOutput{
		IDToken:      aws.ToString(r.IdToken),
		AccessToken:  aws.ToString(r.AccessToken),
		RefreshToken: aws.ToString(r.RefreshToken),
		ExpiresIn:    r.ExpiresIn,
		TokenType:    aws.ToString(r.TokenType),
	}, nil
}

func (c *AWSClient) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := c.cip.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return mapAWSError(err)
}

var awsErrorCodes = map[string]error{
	"UsernameExistsException":        ErrUserAlreadyExists,
	"UserNotFoundException":          ErrUserNotFound,
	"UserNotConfirmedException":      ErrUserNotConfirmed,
	"InvalidPasswordException":       ErrInvalidPassword,
	"CodeMismatchException":          ErrInvalidCode,
	"ExpiredCodeException":           ErrCodeExpired,
	"TooManyRequestsException":       ErrTooManyRequests,
	"NotAuthorizedException":         ErrNotAuthorized,
	"LimitExceededException":         ErrLimitExceeded,
	"PasswordResetRequiredException": ErrPasswordResetRequired,
	"InvalidParameterException":      ErrInvalidParameter,
}

// mapAWSError converts AWS SDK errors to cognito sentinel errors. A nil
// error maps to nil.
func mapAWSError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("cognito: %w", err)
	}
	if sentinel, ok := awsErrorCodes[apiErr.ErrorCode()]; ok {
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), sentinel)
	}
	return fmt.Errorf("cognito %s: %w", apiErr.ErrorCode(), err)
}

// Compile-time check: AWSClient implements Client.
var _ Client = (*AWSClient)(nil)
