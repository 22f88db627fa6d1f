package cognito

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	domainauth "github.com/cloudboard/cloudboard/internal/domain/auth"
	"github.com/cloudboard/cloudboard/internal/domain/model"
	"github.com/cloudboard/cloudboard/internal/ports"
)

// directoryAPI is the slice of the Cognito client the directory uses.
type directoryAPI interface {
	AdminCreateUser(ctx context.Context, in *cip.AdminCreateUserInput, opts ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminAddUserToGroup(ctx context.Context, in *cip.AdminAddUserToGroupInput, opts ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
	ListUsers(ctx context.Context, in *cip.ListUsersInput, opts ...func(*cip.Options)) (*cip.ListUsersOutput, error)
	AdminListGroupsForUser(ctx context.Context, in *cip.AdminListGroupsForUserInput, opts ...func(*cip.Options)) (*cip.AdminListGroupsForUserOutput, error)
}

// Directory implements ports.UserDirectory over a Cognito user pool.
type Directory struct {
	client     directoryAPI
	userPoolID string
}

// DirectoryConfig holds configuration for the Cognito user directory.
type DirectoryConfig struct {
	UserPoolID string
}

// NewDirectory creates a directory over an already-configured AWS config.
func NewDirectory(cfg aws.Config, dc DirectoryConfig) (*Directory, error) {
	if dc.UserPoolID == "" {
		return nil, errors.New("user pool ID is required")
	}
	return &Directory{
		client:     cip.NewFromConfig(cfg),
		userPoolID: dc.UserPoolID,
	}, nil
}

var _ ports.UserDirectory = (*Directory)(nil)

// CreateUser provisions a pool account with a generated temporary password.
// The pool emails the invitation; the user must change the password on first
// sign-in. Admin accounts are additionally placed in the admin group.
func (d *Directory) CreateUser(ctx context.Context, in model.NewUserInput) (model.User, error) {
	temp, err := temporaryPassword()
	if err != nil {
		return model.User{}, fmt.Errorf("generate temporary password: %w", err)
	}

	out, err := d.client.AdminCreateUser(ctx, &cip.AdminCreateUserInput{
		UserPoolId:        aws.String(d.userPoolID),
		Username:          aws.String(in.Email),
		TemporaryPassword: aws.String(temp),
		DesiredDeliveryMediums: []types.DeliveryMediumType{
			types.DeliveryMediumTypeEmail,
		},
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(in.Email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
			{Name: aws.String("name"), Value: aws.String(in.Name)},
			{Name: aws.String("family_name"), Value: aws.String(in.LastName)},
		},
	})
	if err != nil {
		return model.User{}, classify(err, "admin create user")
	}

	if in.IsAdmin {
		_, err = d.client.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
			UserPoolId: aws.String(d.userPoolID),
			Username:   aws.String(in.Email),
			GroupName:  aws.String(domainauth.AdminGroup),
		})
		if err != nil {
			return model.User{}, classify(err, "admin add user to group")
		}
	}

	user := userFromPoolEntry(deref(out.User))
	user.IsAdmin = in.IsAdmin
	return user, nil
}

// ListUsers returns one pool page. The provider's PaginationToken is passed
// through untouched as the opaque cursor.
func (d *Directory) ListUsers(ctx context.Context, in ports.ListUsersInput) (ports.UserPage, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = 60
	}
	out, err := d.client.ListUsers(ctx, &cip.ListUsersInput{
		UserPoolId:      aws.String(d.userPoolID),
		Limit:           aws.Int32(limit),
		PaginationToken: in.Cursor,
	})
	if err != nil {
		return ports.UserPage{}, classify(err, "list users")
	}

	users := make([]model.User, 0, len(out.Users))
	for _, entry := range out.Users {
		user := userFromPoolEntry(entry)
		isAdmin, err := d.isAdmin(ctx, aws.ToString(entry.Username))
		if err != nil {
			return ports.UserPage{}, err
		}
		user.IsAdmin = isAdmin
		users = append(users, user)
	}
	return ports.UserPage{Users: users, NextCursor: out.PaginationToken}, nil
}

func (d *Directory) isAdmin(ctx context.Context, username string) (bool, error) {
	out, err := d.client.AdminListGroupsForUser(ctx, &cip.AdminListGroupsForUserInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return false, classify(err, "admin list groups for user")
	}
	for _, g := range out.Groups {
		if aws.ToString(g.GroupName) == domainauth.AdminGroup {
			return true, nil
		}
	}
	return false, nil
}

func userFromPoolEntry(entry types.UserType) model.User {
	user := model.User{
		Enabled: entry.Enabled,
		Status:  string(entry.UserStatus),
	}
	if entry.UserCreateDate != nil {
		user.CreatedAt = entry.UserCreateDate.UTC()
	}
	for _, attr := range entry.Attributes {
		switch aws.ToString(attr.Name) {
		case "email":
			user.Email = aws.ToString(attr.Value)
		case "name":
			user.Name = aws.ToString(attr.Value)
		case "family_name":
			user.LastName = aws.ToString(attr.Value)
		}
	}
	if user.Email == "" {
		user.Email = aws.ToString(entry.Username)
	}
	return user
}

func deref(u *types.UserType) types.UserType {
	if u == nil {
		return types.UserType{}
	}
	return *u
}

const (
	passwordLower   = "abcdefghijkmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordDigits  = "23456789"
	passwordSymbols = "!@#$%^&*"
)

// temporaryPassword yields a random password containing at least one
// character from each class the pool policy requires.
func temporaryPassword() (string, error) {
	classes := []string{passwordLower, passwordUpper, passwordDigits, passwordSymbols}
	all := passwordLower + passwordUpper + passwordDigits + passwordSymbols

	buf := make([]byte, 0, 16)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < 16 {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}
	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
