// Package services contains the server-side business logic. This file
// implements UserService, which registers accounts, signs users in and
// issues/rotates JWT access tokens plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/cryptox"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/auth"
	"github.com/dmitrijs2005/stockkeeper/internal/server/config"
	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is a signed-in user together with its fresh tokens.
type Session struct {
	User   *models.User
	Tokens *TokenPair
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

// Register creates an account and signs it in. The user row and its first
// refresh token are written in one transaction. A taken email is
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	user := &models.User{Email: email, Salt: salt, PasswordHash: cryptox.HashPassword(pw, salt)}

	var session *Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		pair, err := s.generateTokenPair(ctx, u.ID, tx)
		if err != nil {
			return err
		}
		session = &Session{User: u, Tokens: pair}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return session, nil
}

// Login verifies the password. An unknown email and a wrong password are
// indistinguishable to the caller: both are common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn the same hashing time as a real check
			cryptox.HashPassword([]byte(password), common.GenerateRandByteArray(cryptox.SaltSize))
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)
	if !cryptox.VerifyPassword(pw, user.Salt, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: pair}, nil
}

// RefreshToken rotates refreshToken: the old token is deleted and a new pair
// is issued in the same transaction. Expired tokens yield
// common.ErrRefreshTokenExpired, unknown ones common.ErrorUnauthorized.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expired(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: pair}, nil
}

// PurgeExpiredTokens drops refresh tokens that are past their expiry.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
