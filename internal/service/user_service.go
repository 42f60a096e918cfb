package service

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// UserRepo is the slice of the user repository the service needs.
type UserRepo interface {
	GetUserByID(ctx context.Context, id int) (*entity.User, error)
	GetUsers(ctx context.Context) ([]*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByName(ctx context.Context, firstName, lastName string) (*entity.User, error)
	DeleteUser(ctx context.Context, id int) (*entity.User, error)
}

// UserService owns account records and password verification. The pepper
// is appended to every plaintext before hashing; it is process-wide and
// distinct from bcrypt's per-record salt.
type UserService struct {
	repo   UserRepo
	pepper string
	cost   int
}

func NewUserService(repo UserRepo, pepper string, cost int) *UserService {
	return &UserService{repo: repo, pepper: pepper, cost: cost}
}

// Register creates an account. The returned user carries no hash.
func (s *UserService) Register(ctx context.Context, firstName, lastName, password string) (*entity.User, error) {
	switch {
	case firstName == "":
		return nil, apperr.RequiredError("first_name")
	case lastName == "":
		return nil, apperr.RequiredError("last_name")
	case password == "":
		return nil, apperr.RequiredError("password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password+s.pepper), s.cost)
	if err != nil {
		logger.Error().Err(err).Msg("Error hashing password")
		return nil, apperr.NewPersistenceError("hash password", err)
	}

	user, err := s.repo.CreateUser(ctx, &entity.User{
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies credentials. Every failure, whether the account is
// missing or the password wrong, comes back as ErrAuthFailed so callers
// cannot probe for accounts.
func (s *UserService) Authenticate(ctx context.Context, firstName, lastName, password string) (*entity.User, error) {
	switch {
	case firstName == "":
		return nil, apperr.RequiredError("first_name")
	case lastName == "":
		return nil, apperr.RequiredError("last_name")
	case password == "":
		return nil, apperr.RequiredError("password")
	}

	user, err := s.repo.GetUserByName(ctx, firstName, lastName)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msg("Error looking up user for authentication")
		}
		return nil, apperr.ErrAuthFailed
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password+s.pepper)) != nil {
		return nil, apperr.ErrAuthFailed
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error getting user by ID %d", id)
		}
		return nil, err
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.repo.GetUsers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, err
	}

	return users, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int) (*entity.User, error) {
	user, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			logger.Error().Err(err).Msgf("Error deleting user %d", id)
		}
		return nil, err
	}

	return user, nil
}
