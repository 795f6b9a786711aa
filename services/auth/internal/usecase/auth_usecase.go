package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"girlfanz/pkg/jwt"
	"girlfanz/pkg/logger"
	"girlfanz/services/auth/internal/entity"
	"girlfanz/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string, role entity.UserRole) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	// SetAgeVerification records the outcome of the external verification
	// flow. Callers must be admins.
	SetAgeVerification(ctx context.Context, userID string, verified bool) (*entity.User, error)
	GetSubscriptions(ctx context.Context, actor Actor, userID string) ([]*entity.Subscription, error)
	Subscribe(ctx context.Context, actor Actor, userID, creatorID string) (*entity.Subscription, error)
	Unsubscribe(ctx context.Context, actor Actor, userID, creatorID string) error
}

// Actor is the authenticated caller of a request.
type Actor struct {
	ID   string
	Role entity.UserRole
}

func (a Actor) canManage(userID string) bool {
	return a.ID == userID
}

func (a Actor) canRead(userID string) bool {
	return a.ID == userID || a.Role == entity.RoleAdmin
}

type authUseCase struct {
	userRepo   persistent.UserRepository
	jwtService *jwt.Service
	logger     *logger.Logger
	now        func() time.Time
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	jwtService *jwt.Service,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
		now:        time.Now,
	}
}

func (uc *authUseCase) Register(ctx context.Context, email, username, password string, role entity.UserRole) (*entity.User, string, error) {
	if role == "" {
		role = entity.RoleFan
	}
	if !role.SelfServiceRole() {
		return nil, "", entity.ErrInvalidRole
	}

	if _, err := uc.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", entity.ErrEmailTaken
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, "", err
	}

	if _, err := uc.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, "", entity.ErrUsernameTaken
	} else if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, "", fmt.Errorf("failed to process registration: %w", err)
	}

	user := &entity.User{
		Email:    email,
		Username: username,
		Password: string(hashedPassword),
		Role:     role,
		IsActive: true,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		uc.logger.Error("Failed to create user: %v", err)
		return nil, "", err
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, "", entity.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", entity.ErrAccountDisabled
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (uc *authUseCase) SetAgeVerification(ctx context.Context, userID string, verified bool) (*entity.User, error) {
	user, err := uc.userRepo.SetAgeVerification(ctx, userID, verified, uc.now())
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Age verification for user %s set to %t", userID, verified)
	user.Password = ""
	return user, nil
}

func (uc *authUseCase) GetSubscriptions(ctx context.Context, actor Actor, userID string) ([]*entity.Subscription, error) {
	if !actor.canRead(userID) {
		return nil, entity.ErrForbidden
	}
	return uc.userRepo.GetSubscriptions(ctx, userID)
}

func (uc *authUseCase) Subscribe(ctx context.Context, actor Actor, userID, creatorID string) (*entity.Subscription, error) {
	if !actor.canManage(userID) {
		return nil, entity.ErrForbidden
	}
	if userID == creatorID {
		return nil, entity.ErrSelfSubscription
	}

	creator, err := uc.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator.Role != entity.RoleCreator {
		return nil, entity.ErrNotACreator
	}

	subscription, err := uc.userRepo.CreateSubscription(ctx, userID, creatorID)
	if err != nil {
		uc.logger.Error("Failed to create subscription: %v", err)
		return nil, err
	}

	uc.logger.Info("User %s subscribed to creator %s", userID, creatorID)
	return subscription, nil
}

func (uc *authUseCase) Unsubscribe(ctx context.Context, actor Actor, userID, creatorID string) error {
	if !actor.canManage(userID) {
		return entity.ErrForbidden
	}
	if err := uc.userRepo.DeleteSubscription(ctx, userID, creatorID); err != nil {
		if !errors.Is(err, entity.ErrSubscriptionNotFound) {
			uc.logger.Error("Failed to delete subscription: %v", err)
		}
		return err
	}
	return nil
}
