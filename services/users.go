package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bootcamp-api/models"
	"bootcamp-api/store"
	"bootcamp-api/utils"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeMailer sends the post-registration greeting.
type WelcomeMailer interface {
	SendWelcomeEmail(to, name, role string) error
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserService struct {
	users     store.Collection
	validator *utils.Validator
	tokens    *utils.TokenIssuer
	mailer    WelcomeMailer
	logger    zerolog.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

// NewUserService builds the registration service. tokens and mailer are optional.
func NewUserService(users store.Collection, v *utils.Validator, tokens *utils.TokenIssuer, mailer WelcomeMailer, logger zerolog.Logger) *UserService {
	return &UserService{
		users:     users,
		validator: v,
		tokens:    tokens,
		mailer:    mailer,
		logger:    logger,
		now:       time.Now,
	}
}

// Register stores a new user with a hashed password and returns it with a signed
// token. The token is empty when no signing secret is configured.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Role:      role,
		Password:  in.Password,
		CreatedAt: s.now().UTC(),
	}
	if err := s.validator.Struct(&user); err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)

	id, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, "", err
	}
	user.ID = id

	var token string
	if s.tokens != nil {
		token, err = s.tokens.Issue(id.Hex(), user.Role)
		if err != nil {
			return nil, "", fmt.Errorf("issue token: %w", err)
		}
	}

	if s.mailer != nil {
		s.sendWelcome(user)
	}
	return &user, token, nil
}

func (s *UserService) sendWelcome(user models.User) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.mailer.SendWelcomeEmail(user.Email, user.Name, user.Role); err != nil {
			s.logger.Error().Err(err).Str("user", user.ID.Hex()).Msg("welcome email failed")
		}
	}()
}

// Get returns the user with the given id.
func (s *UserService) Get(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := s.users.FindOne(ctx, store.ByID(id), &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.NotFound("No user with the id of %s", rawID)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Wait blocks until pending welcome emails have been handed off.
func (s *UserService) Wait() {
	s.wg.Wait()
}
