package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

const (
	MsgAlreadyOnboarded = "You have already been onboarded."
	MsgOnboarded        = "Welcome! You've been successfully onboarded. You can now use all features of the service."
	MsgProfileUpdated   = "Your profile has been updated successfully."
)

type UserUseCase struct {
	repo interfaces.Repository
}

func NewUserUseCase(repo interfaces.Repository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// Onboard creates the user profile. It returns ErrAlreadyOnboarded when the
// user finished onboarding before, and a *model.ValidationError for bad input.
func (uc *UserUseCase) Onboard(ctx context.Context, id model.AgentID, in model.OnboardingInput) (*model.User, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid agent ID", goerr.V(model.AgentIDKey, id))
	}

	onboarded, err := uc.IsOnboarded(ctx, id)
	if err != nil {
		return nil, err
	}
	if onboarded {
		return nil, goerr.Wrap(ErrAlreadyOnboarded, "onboarding rejected", goerr.V(model.AgentIDKey, id))
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		Age:       in.Age,
		ResumeURL: strings.TrimSpace(in.ResumeURL),
		Goals:     strings.TrimSpace(in.Goals),
		Onboarded: true,
	}
	if err := uc.repo.User().Put(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save user", goerr.V(model.AgentIDKey, id))
	}

	logging.From(ctx).Info("user onboarded", "agentID", id)
	return uc.repo.User().Get(ctx, id)
}

// IsOnboarded reports false for unknown users
func (uc *UserUseCase) IsOnboarded(ctx context.Context, id model.AgentID) (bool, error) {
	user, err := uc.repo.User().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get user", goerr.V(model.AgentIDKey, id))
	}
	return user.Onboarded, nil
}

// Get returns an onboarded user or ErrNotOnboarded
func (uc *UserUseCase) Get(ctx context.Context, id model.AgentID) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrNotOnboarded, "user not found", goerr.V(model.AgentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(model.AgentIDKey, id))
	}
	if !user.Onboarded {
		return nil, goerr.Wrap(ErrNotOnboarded, "user not onboarded", goerr.V(model.AgentIDKey, id))
	}
	return user, nil
}

// UpdateProfile applies the provided fields. Contacts are untouched.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, id model.AgentID, update model.ProfileUpdate) (*model.User, error) {
	if update.IsEmpty() {
		v := &model.ValidationError{}
		v.Add("", "No profile fields to update")
		return nil, v
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	user, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(user)
	if err := uc.repo.User().Put(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to save user", goerr.V(model.AgentIDKey, id))
	}

	logging.From(ctx).Info("user profile updated", "agentID", id)
	return uc.repo.User().Get(ctx, id)
}
