package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/server/auth"
	"github.com/dmitrijs2005/storykeeper/internal/server/config"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
)

func newUserService(t *testing.T) (*UserService, *fakeRM, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := newFakeRM()
	s := NewUserService(db, rm, &config.Config{SecretKey: "k", AccessTokenValidityDuration: time.Hour})
	s.cost = bcrypt.MinCost
	return s, rm, mock
}

func TestRegister_StoresHashedPassword(t *testing.T) {
	s, rm, mock := newUserService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	u, err := s.Register(context.Background(), " Ann ", "Ann@Example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "ann@example.com", u.Email)

	stored := rm.users.byEmail["ann@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("password1")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name, user, email, password string
	}{
		{"empty name", " ", "a@b.c", "password1"},
		{"bad email", "Ann", "not-an-email", "password1"},
		{"short password", "Ann", "a@b.c", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rm, mock := newUserService(t)
			_, err := s.Register(context.Background(), tt.user, tt.email, tt.password)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Empty(t, rm.users.byEmail)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegister_EmailTakenRollsBack(t *testing.T) {
	s, rm, mock := newUserService(t)
	rm.users.byEmail["ann@example.com"] = &models.User{ID: "u1", Email: "ann@example.com"}

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), "Ann", "ann@example.com", "password1")
	require.ErrorIs(t, err, common.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_RepoError(t *testing.T) {
	s, rm, mock := newUserService(t)
	rm.users.createErr = errors.New("db down")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), "Ann", "ann@example.com", "password1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating user")
	assert.NotErrorIs(t, err, common.ErrEmailTaken)
}

func seedUser(t *testing.T, rm *fakeRM, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{ID: "user-1", Name: "Ann", Email: email, PasswordHash: hash}
	rm.users.byEmail[email] = u
	return u
}

func TestLogin_IssuesToken(t *testing.T) {
	s, rm, _ := newUserService(t)
	seedUser(t, rm, "ann@example.com", "password1")

	res, err := s.Login(context.Background(), "ANN@example.com ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", res.UserID)
	assert.Equal(t, "Ann", res.Name)

	id, err := auth.GetUserIDFromToken(res.Token, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestLogin_Failures(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		s, rm, _ := newUserService(t)
		seedUser(t, rm, "ann@example.com", "password1")
		_, err := s.Login(context.Background(), "ann@example.com", "nope")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
	t.Run("unknown email", func(t *testing.T) {
		s, _, _ := newUserService(t)
		_, err := s.Login(context.Background(), "who@example.com", "password1")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
	t.Run("repo error", func(t *testing.T) {
		s, rm, _ := newUserService(t)
		rm.users.getErr = errors.New("db down")
		_, err := s.Login(context.Background(), "ann@example.com", "password1")
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}
