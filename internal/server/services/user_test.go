package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/cryptox"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/products"
	refreshtokensrepo "github.com/dmitrijs2005/stockkeeper/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/stockkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *u
	cp.ID = "u-1"
	f.created = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return f.GetUserByEmail(ctx, id)
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	deleted   []string
	delErr    error
	createErr error
	created   []string

	purged int64
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, _ time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, userID+":"+token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return f.delErr
}

func (f *fakeRefreshRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.purged, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Products(dbx.DBTX) products.Repository { return nil }

func newUserService(db *sql.DB, rm *fakeRepoManager) *UserService {
	return NewUserService(db, rm, &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	})
}

func TestRegister_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, r: &fakeRefreshRepo{}}
	s := newUserService(db, rm)

	sess, err := s.Register(context.Background(), "  ann@example.com ", "pw")
	require.NoError(t, err)

	assert.Equal(t, "u-1", sess.User.ID)
	assert.Equal(t, "ann@example.com", rm.u.created.Email)
	assert.Len(t, rm.u.created.Salt, cryptox.SaltSize)
	assert.True(t, cryptox.VerifyPassword([]byte("pw"), rm.u.created.Salt, rm.u.created.PasswordHash))

	uid, err := auth.GetUserIDFromToken(sess.Tokens.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", uid)
	assert.Equal(t, []string{"u-1:" + sess.Tokens.RefreshToken}, rm.r.created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Duplicate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}, r: &fakeRefreshRepo{}}

	_, err := newUserService(db, rm).Register(context.Background(), "ann@example.com", "pw")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(db, &fakeRepoManager{})

	_, err := s.Register(context.Background(), " ", "pw")
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Register(context.Background(), "a@b", "")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestRegister_TokenStoreFailureRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, r: &fakeRefreshRepo{createErr: errors.New("boom")}}

	_, err := newUserService(db, rm).Register(context.Background(), "ann@example.com", "pw")
	require.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func storedUser(password string) *models.User {
	salt := []byte("0123456789abcdef")
	return &models.User{ID: "u-7", Email: "bob@example.com", Salt: salt, PasswordHash: cryptox.HashPassword([]byte(password), salt)}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		repo    *fakeUsersRepo
		pw      string
		wantErr error
	}{
		{name: "ok", repo: &fakeUsersRepo{getOut: storedUser("secret")}, pw: "secret"},
		{name: "wrong password", repo: &fakeUsersRepo{getOut: storedUser("secret")}, pw: "nope", wantErr: common.ErrorUnauthorized},
		{name: "unknown user", repo: &fakeUsersRepo{getErr: common.ErrorNotFound}, pw: "x", wantErr: common.ErrorUnauthorized},
		{name: "db failure", repo: &fakeUsersRepo{getErr: errors.New("db down")}, pw: "x", wantErr: common.ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newSQLMockDB(t)
			rm := &fakeRepoManager{u: tt.repo, r: &fakeRefreshRepo{}}

			sess, err := newUserService(db, rm).Login(context.Background(), "bob@example.com", tt.pw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, rm.r.created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u-7", sess.User.ID)
			assert.NotEmpty(t, sess.Tokens.AccessToken)
			assert.Len(t, rm.r.created, 1)
		})
	}
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{ID: "u1", Email: "ann@example.com"}},
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
		},
	}

	sess, err := newUserService(db, rm).RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.Tokens.AccessToken)
	assert.NotEqual(t, "refresh-xyz", sess.Tokens.RefreshToken)
	assert.Equal(t, []string{"refresh-xyz"}, rm.r.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(-time.Minute)},
	}}

	_, err := newUserService(db, rm).RefreshToken(context.Background(), "old")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.Empty(t, rm.r.deleted)
}

func TestRefreshToken_Unknown(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{r: &fakeRefreshRepo{findErr: common.ErrorNotFound}}

	_, err := newUserService(db, rm).RefreshToken(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshToken_DeleteFailsRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getOut: &models.User{ID: "u1"}},
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(time.Minute)},
			delErr:  errors.New("boom"),
		},
	}

	_, err := newUserService(db, rm).RefreshToken(context.Background(), "t")
	require.Error(t, err)
	assert.Empty(t, rm.r.created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_UserGone(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{getErr: common.ErrorNotFound},
		r: &fakeRefreshRepo{findOut: &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(time.Minute)}},
	}

	_, err := newUserService(db, rm).RefreshToken(context.Background(), "t")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Empty(t, rm.r.deleted)
}

func TestPurgeExpiredTokens(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{r: &fakeRefreshRepo{purged: 3}}

	n, err := newUserService(db, rm).PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
