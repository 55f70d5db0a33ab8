package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/internal/domain/apperror"
	"github.com/oksasatya/user-api/internal/domain/entity"
	repo "github.com/oksasatya/user-api/internal/domain/repository"
	"github.com/oksasatya/user-api/pkg/validation"
)

// LocationGate decides whether a caller address may create users.
type LocationGate interface {
	IsAuthorized(ctx context.Context, callerAddress string) (bool, error)
}

// EventPublisher delivers a domain event for a stored mutation.
type EventPublisher interface {
	Publish(ctx context.Context, kind entity.EventKind, userID entity.UserID) error
}

// Service runs the user use cases: validation, the location gate on create,
// persistence, then event publication. It keeps no state between calls.
type Service struct {
	Repo      repo.UserRepository
	Gate      LocationGate
	Publisher EventPublisher
	Logger    *logrus.Logger

	checker *validation.Checker
}

func NewService(repo repo.UserRepository, gate LocationGate, publisher EventPublisher, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		Repo:      repo,
		Gate:      gate,
		Publisher: publisher,
		Logger:    logger,
		checker:   validation.NewChecker(),
	}
}

// FindAll returns every stored user, never nil.
func (s *Service) FindAll(ctx context.Context) ([]entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	s.Logger.WithField("count", len(users)).Debug("find all users")
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id entity.UserID) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithField("user_id", id).Info("user not found")
			return nil, userNotFound(id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	if u == nil {
		s.Logger.WithField("user_id", id).Info("user not found")
		return nil, userNotFound(id)
	}
	return u, nil
}

// FindByCriteria matches users exactly on the criteria that are set.
// Without criteria it behaves like FindAll.
func (s *Service) FindByCriteria(ctx context.Context, c entity.UserCriteria) ([]entity.User, error) {
	if c.IsEmpty() {
		return s.FindAll(ctx)
	}
	users, err := s.Repo.FindByExample(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	s.Logger.WithFields(logrus.Fields{
		"first_name": deref(c.FirstName),
		"email":      deref(c.Email),
		"count":      len(users),
	}).Debug("find users by criteria")
	return users, nil
}

// Create stores a new user for a caller whose address resolves to the
// allowed country. Any id set on u is ignored.
func (s *Service) Create(ctx context.Context, u entity.User, callerAddress string) (*entity.User, error) {
	log := s.Logger.WithField("caller_ip", callerAddress)

	ok, err := s.Gate.IsAuthorized(ctx, callerAddress)
	if err != nil {
		log.WithError(err).Warn("location check failed")
		return nil, err
	}
	if !ok {
		log.Info("caller location not authorized to create users")
		return nil, fmt.Errorf("%w: only clients with an IP address from the allowed country can create users", apperror.ErrLocationNotAuthorized)
	}

	u.ID = 0
	if err := s.validateFields(u); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, &u); err != nil {
		log.WithError(err).Error("create user failed")
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !u.ID.IsAssigned() {
		return nil, errors.New("create user: store did not assign an id")
	}
	log.WithField("user_id", u.ID).Debug("user created")

	if err := s.publish(ctx, entity.EventUserCreated, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update replaces every field but the id of an existing user.
func (s *Service) Update(ctx context.Context, u entity.User) (*entity.User, error) {
	existing, err := s.GetByID(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	existing.FirstName = u.FirstName
	existing.Email = u.Email
	existing.Password = u.Password

	if err := s.validateFields(*existing); err != nil {
		return nil, err
	}

	if err := s.Repo.Update(ctx, existing); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, userNotFound(existing.ID)
		}
		s.Logger.WithError(err).WithField("user_id", existing.ID).Error("update user failed")
		return nil, fmt.Errorf("update user %d: %w", existing.ID, err)
	}
	s.Logger.WithField("user_id", existing.ID).Debug("user updated")

	if err := s.publish(ctx, entity.EventUserUpdated, existing.ID); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) DeleteByID(ctx context.Context, id entity.UserID) error {
	found, err := s.Repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user %d: %w", id, err)
	}
	if !found {
		s.Logger.WithField("user_id", id).Info("delete: user not found")
		return userNotFound(id)
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return userNotFound(id)
		}
		s.Logger.WithError(err).WithField("user_id", id).Error("delete user failed")
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.Logger.WithField("user_id", id).Debug("user deleted")

	return s.publish(ctx, entity.EventUserDeleted, id)
}

// publish runs after the store write has committed and ignores the
// caller's cancellation.
func (s *Service) publish(ctx context.Context, kind entity.EventKind, id entity.UserID) error {
	if err := s.Publisher.Publish(context.WithoutCancel(ctx), kind, id); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id": id,
			"event":   string(kind),
		}).Error("user stored but event not published")
		return err
	}
	return nil
}

var (
	firstNameRule = validation.Rule{Tag: "required,max=100", Message: "First name must be not empty and less than 100 characters"}
	emailRule     = validation.Rule{Tag: "required,max=50", Message: "Email must be not empty and less than 50 characters"}
	passwordRule  = validation.Rule{Tag: "required,max=50", Message: "Password must be not empty and less than 50 characters"}
)

// validateFields reports only the first violation, in field order.
func (s *Service) validateFields(u entity.User) error {
	msg, failed := s.checker.First(
		validation.Check{Value: u.FirstName, Rule: firstNameRule},
		validation.Check{Value: u.Email, Rule: emailRule},
		validation.Check{Value: u.Password, Rule: passwordRule},
	)
	if failed {
		s.Logger.WithField("reason", msg).Info("invalid user fields")
		return apperror.InvalidValue(msg)
	}
	return nil
}

func userNotFound(id entity.UserID) error {
	return fmt.Errorf("%w: no user found with id [%d]", apperror.ErrUserNotFound, id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
