package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/utils"
)

const minPasswordLength = 6

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateJWT(userID int, email string, isAdmin bool) (string, error)
}

// UserService registers, authenticates and manages storefront accounts.
type UserService struct {
	users  UserRepository
	tokens TokenIssuer
	cost   int
}

func NewUserService(users UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// ProfileUpdate holds the fields a user may change. Empty fields are kept.
type ProfileUpdate struct {
	Username string
	Email    string
	Password string
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, "", utils.Invalid("Please fill all the inputs")
	}
	if err := validateCredentials(email, password); err != nil {
		return nil, "", err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, "", err
	}
	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	log.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("User registered")

	token, err := s.tokens.GenerateJWT(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, utils.ErrUserNotFound) {
		log.Warn().Str("email", email).Msg("Login with unknown email")
		return nil, "", utils.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return nil, "", utils.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateJWT(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, "", err
	}
	log.Info().Int("user_id", user.ID).Msg("Login successful")
	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, userID int) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int, in ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(in.Username); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		if _, err := mail.ParseAddress(v); err != nil {
			return nil, utils.Invalid("Invalid email address")
		}
		user.Email = v
	}
	if in.Password != "" {
		if len(in.Password) < minPasswordLength {
			return nil, utils.Invalid("Password must be at least %d characters", minPasswordLength)
		}
		if user.PasswordHash, err = s.hash(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// EnsureAdmin creates an admin account, or promotes and resets the password
// of the account already registered with email. created reports which.
func (s *UserService) EnsureAdmin(ctx context.Context, email, username, password string) (user *models.User, created bool, err error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, false, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, false, err
	}

	user, err = s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, utils.ErrUserNotFound):
		if strings.TrimSpace(username) == "" {
			return nil, false, utils.Invalid("Username is required")
		}
		user = &models.User{Username: username, Email: email, PasswordHash: hash, IsAdmin: true}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, err
		}
		return user, true, nil
	case err != nil:
		return nil, false, err
	}

	user.IsAdmin = true
	user.PasswordHash = hash
	if username != "" {
		user.Username = username
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, false, err
	}
	return user, false, nil
}

func (s *UserService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return utils.Invalid("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return utils.Invalid("Password must be at least %d characters", minPasswordLength)
	}
	return nil
}
