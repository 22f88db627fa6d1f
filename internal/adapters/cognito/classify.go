package cognito

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/cloudboard/cloudboard/internal/errors"
)

// classify maps Cognito SDK errors into the application error taxonomy so
// callers can branch on reason instead of matching provider text.
func classify(err error, op string) error {
	var (
		notAuthorized   *types.NotAuthorizedException
		userNotFound    *types.UserNotFoundException
		notConfirmed    *types.UserNotConfirmedException
		invalidPassword *types.InvalidPasswordException
		codeMismatch    *types.CodeMismatchException
		expiredCode     *types.ExpiredCodeException
		usernameExists  *types.UsernameExistsException
		invalidParam    *types.InvalidParameterException
	)

	switch {
	case errors.As(err, &notAuthorized), errors.As(err, &userNotFound), errors.As(err, &notConfirmed):
		// User-not-found folds into the same answer as a bad password, so
		// responses do not disclose which accounts exist.
		return apperrors.InvalidCredentials("incorrect username or password")
	case errors.As(err, &invalidPassword):
		return apperrors.PasswordPolicy("password does not meet the pool's requirements")
	case errors.As(err, &codeMismatch), errors.As(err, &expiredCode):
		return apperrors.ChallengeMismatch("verification code is invalid or expired")
	case errors.As(err, &usernameExists):
		return apperrors.Validation("an account with this email already exists")
	case errors.As(err, &invalidParam):
		return apperrors.Validation(invalidParam.ErrorMessage())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Wrapf(err, apperrors.ErrCodeProvider, "%s: %s", op, apiErr.ErrorCode())
	}
	return apperrors.Wrap(err, apperrors.ErrCodeProvider, fmt.Sprintf("%s: provider unreachable", op))
}
