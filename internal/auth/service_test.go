package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskward/taskward/internal/shared"
)

const testSecret = "test-secret-test-secret-test-secret"

type memoryAuthRepo struct {
	byEmail map[string]*User
	byID    map[int64]*User
	roles   map[int64][]string
	roleIDs map[string]int64
	nextID  int64
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[int64]*User),
		roles:   make(map[int64][]string),
		roleIDs: map[string]int64{"user": 1, "admin": 2},
	}
}

func (r *memoryAuthRepo) addUser(name, email, password string, roles ...string) *User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	r.nextID++
	u := &User{ID: r.nextID, Name: name, Email: email, PasswordHash: string(hash)}
	r.byEmail[email] = u
	r.byID[u.ID] = u
	r.roles[u.ID] = roles
	return u
}

func (r *memoryAuthRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryAuthRepo) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *memoryAuthRepo) CreateWithRole(_ context.Context, name, email, passwordHash string, roleID int64) (*User, error) {
	if _, exists := r.byEmail[email]; exists {
		return nil, shared.ErrDuplicate
	}
	r.nextID++
	u := &User{ID: r.nextID, Name: name, Email: email, PasswordHash: passwordHash}
	r.byEmail[email] = u
	r.byID[u.ID] = u
	for roleName, id := range r.roleIDs {
		if id == roleID {
			r.roles[u.ID] = []string{roleName}
		}
	}
	return u, nil
}

func (r *memoryAuthRepo) FindRoleIDByName(_ context.Context, name string) (int64, error) {
	id, ok := r.roleIDs[name]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (r *memoryAuthRepo) RoleNames(_ context.Context, userID int64) ([]string, error) {
	return r.roles[userID], nil
}

type staticResolver struct {
	perms map[int64][]string
}

func (s staticResolver) EffectivePermissions(_ context.Context, userID int64) ([]string, error) {
	return s.perms[userID], nil
}

func (s staticResolver) HasPermission(_ context.Context, userID int64, permission string) (bool, error) {
	for _, p := range s.perms[userID] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	claims, userID, err := VerifyToken(testSecret, token)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
	require.NotEmpty(t, claims.ID, "jti backs the logout denylist")
	require.Equal(t, "taskward", claims.Issuer)

	_, _, err = VerifyToken("wrong-secret", token)
	require.ErrorIs(t, err, shared.ErrAuthentication)

	expired, err := IssueToken(testSecret, 42, -time.Minute)
	require.NoError(t, err)
	_, _, err = VerifyToken(testSecret, expired)
	require.ErrorIs(t, err, shared.ErrAuthentication)
}

func TestAuthenticate(t *testing.T) {
	repo := newMemoryAuthRepo()
	user := repo.addUser("Dana", "dana@example.com", "hunter22", "admin")
	resolver := staticResolver{perms: map[int64][]string{user.ID: {"tasks:read", "audit:read"}}}
	svc := NewService(repo, resolver, nil, testSecret, time.Hour)
	ctx := context.Background()

	result, err := svc.Authenticate(ctx, "dana@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, []string{"admin"}, result.Roles)
	require.Equal(t, []string{"tasks:read", "audit:read"}, result.Permissions)

	_, err = svc.Authenticate(ctx, "dana@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrAuthentication)
	_, err2 := svc.Authenticate(ctx, "nobody@example.com", "hunter22")
	require.ErrorIs(t, err2, shared.ErrAuthentication)
	// Unknown email and wrong password must be indistinguishable.
	require.Equal(t, err.Error(), err2.Error())
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	repo := newMemoryAuthRepo()
	svc := NewService(repo, staticResolver{}, nil, testSecret, time.Hour)

	token, user, err := svc.Register(context.Background(), "Sam", "sam@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, []string{"user"}, repo.roles[user.ID])

	_, _, err = svc.Register(context.Background(), "Sam", "sam@example.com", "password1")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCheckPermission(t *testing.T) {
	resolver := staticResolver{perms: map[int64][]string{1: {"tasks:read"}}}
	svc := NewService(newMemoryAuthRepo(), resolver, nil, testSecret, time.Hour)
	ctx := context.Background()

	ok, err := svc.CheckPermission(ctx, 1, "tasks:read")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CheckPermission(ctx, 1, "tasks:delete")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.CheckPermission(ctx, 1, "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestLogoutRevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	denylist := NewDenylist(client)

	svc := NewService(newMemoryAuthRepo(), staticResolver{}, denylist, testSecret, time.Hour)
	ctx := context.Background()

	token, err := IssueToken(testSecret, 7, time.Hour)
	require.NoError(t, err)
	claims, _, err := VerifyToken(testSecret, token)
	require.NoError(t, err)

	require.False(t, denylist.IsRevoked(ctx, claims.ID))
	require.NoError(t, svc.Logout(ctx, claims))
	require.True(t, denylist.IsRevoked(ctx, claims.ID))

	// The denylist entry expires with the token.
	mr.FastForward(2 * time.Hour)
	require.False(t, denylist.IsRevoked(ctx, claims.ID))
}
