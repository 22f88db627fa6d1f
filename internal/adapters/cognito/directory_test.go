package cognito

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudboard/cloudboard/internal/domain/model"
	apperrors "github.com/cloudboard/cloudboard/internal/errors"
	"github.com/cloudboard/cloudboard/internal/ports"
)

type fakeDirectoryAPI struct {
	createUser    func(*cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error)
	addToGroup    func(*cip.AdminAddUserToGroupInput) (*cip.AdminAddUserToGroupOutput, error)
	listUsers     func(*cip.ListUsersInput) (*cip.ListUsersOutput, error)
	groupsForUser func(*cip.AdminListGroupsForUserInput) (*cip.AdminListGroupsForUserOutput, error)
	addGroupCalls int
	createCalls   int
}

func (f *fakeDirectoryAPI) AdminCreateUser(_ context.Context, in *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	f.createCalls++
	return f.createUser(in)
}

func (f *fakeDirectoryAPI) AdminAddUserToGroup(_ context.Context, in *cip.AdminAddUserToGroupInput, _ ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error) {
	f.addGroupCalls++
	return f.addToGroup(in)
}

func (f *fakeDirectoryAPI) ListUsers(_ context.Context, in *cip.ListUsersInput, _ ...func(*cip.Options)) (*cip.ListUsersOutput, error) {
	return f.listUsers(in)
}

func (f *fakeDirectoryAPI) AdminListGroupsForUser(_ context.Context, in *cip.AdminListGroupsForUserInput, _ ...func(*cip.Options)) (*cip.AdminListGroupsForUserOutput, error) {
	return f.groupsForUser(in)
}

var _ directoryAPI = (*fakeDirectoryAPI)(nil)

func testDirectory(api directoryAPI) *Directory {
	return &Directory{client: api, userPoolID: "pool-1"}
}

func poolEntry(email string, created time.Time) types.UserType {
	return types.UserType{
		Username:       aws.String(email),
		Enabled:        true,
		UserStatus:     types.UserStatusTypeConfirmed,
		UserCreateDate: aws.Time(created),
		Attributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String("Test")},
			{Name: aws.String("family_name"), Value: aws.String("User")},
		},
	}
}

func TestDirectory_CreateUser_AdminGetsGroup(t *testing.T) {
	api := &fakeDirectoryAPI{
		createUser: func(in *cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			assert.Equal(t, "pool-1", aws.ToString(in.UserPoolId))
			assert.Equal(t, "new@example.com", aws.ToString(in.Username))
			assert.NotEmpty(t, aws.ToString(in.TemporaryPassword))
			return &cip.AdminCreateUserOutput{
				User: &types.UserType{
					Username:   aws.String("new@example.com"),
					Enabled:    true,
					UserStatus: types.UserStatusTypeForceChangePassword,
					Attributes: []types.AttributeType{
						{Name: aws.String("email"), Value: aws.String("new@example.com")},
					},
				},
			}, nil
		},
		addToGroup: func(in *cip.AdminAddUserToGroupInput) (*cip.AdminAddUserToGroupOutput, error) {
			assert.Equal(t, "Admin", aws.ToString(in.GroupName))
			assert.Equal(t, "new@example.com", aws.ToString(in.Username))
			return &cip.AdminAddUserToGroupOutput{}, nil
		},
	}
	d := testDirectory(api)

	user, err := d.CreateUser(context.Background(), model.NewUserInput{
		Email:   "new@example.com",
		Name:    "New",
		IsAdmin: true,
	})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, string(types.UserStatusTypeForceChangePassword), user.Status)
	assert.Equal(t, 1, api.addGroupCalls)
}

func TestDirectory_CreateUser_NonAdminSkipsGroup(t *testing.T) {
	api := &fakeDirectoryAPI{
		createUser: func(in *cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			return &cip.AdminCreateUserOutput{User: &types.UserType{Username: in.Username}}, nil
		},
	}
	d := testDirectory(api)

	user, err := d.CreateUser(context.Background(), model.NewUserInput{Email: "plain@example.com", Name: "P"})
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)
	assert.Zero(t, api.addGroupCalls)
}

func TestDirectory_CreateUser_DuplicateEmail(t *testing.T) {
	api := &fakeDirectoryAPI{
		createUser: func(in *cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			return nil, &types.UsernameExistsException{Message: aws.String("User account already exists")}
		},
	}
	d := testDirectory(api)

	_, err := d.CreateUser(context.Background(), model.NewUserInput{Email: "dup@example.com", Name: "D"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestDirectory_ListUsers_PassesCursorAndMarksAdmins(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeDirectoryAPI{
		listUsers: func(in *cip.ListUsersInput) (*cip.ListUsersOutput, error) {
			assert.Equal(t, "token-1", aws.ToString(in.PaginationToken))
			assert.Equal(t, int32(25), aws.ToInt32(in.Limit))
			return &cip.ListUsersOutput{
				Users: []types.UserType{
					poolEntry("admin@example.com", created),
					poolEntry("user@example.com", created),
				},
				PaginationToken: aws.String("token-2"),
			}, nil
		},
		groupsForUser: func(in *cip.AdminListGroupsForUserInput) (*cip.AdminListGroupsForUserOutput, error) {
			if strings.HasPrefix(aws.ToString(in.Username), "admin") {
				return &cip.AdminListGroupsForUserOutput{
					Groups: []types.GroupType{{GroupName: aws.String("Admin")}},
				}, nil
			}
			return &cip.AdminListGroupsForUserOutput{}, nil
		},
	}
	d := testDirectory(api)

	cursor := "token-1"
	page, err := d.ListUsers(context.Background(), ports.ListUsersInput{Cursor: &cursor, Limit: 25})
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.True(t, page.Users[0].IsAdmin)
	assert.False(t, page.Users[1].IsAdmin)
	assert.Equal(t, created, page.Users[0].CreatedAt)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "token-2", *page.NextCursor)
}

func TestTemporaryPassword_CoversRequiredClasses(t *testing.T) {
	pw, err := temporaryPassword()
	require.NoError(t, err)
	assert.Len(t, pw, 16)
	assert.True(t, strings.ContainsAny(pw, passwordLower))
	assert.True(t, strings.ContainsAny(pw, passwordUpper))
	assert.True(t, strings.ContainsAny(pw, passwordDigits))
	assert.True(t, strings.ContainsAny(pw, passwordSymbols))
}
