package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/repository/memory"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

func TestUserUseCase_Onboard(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an onboarded user", func(t *testing.T) {
		uc := usecase.New(memory.New())
		user := onboard(t, uc, "agent-1")

		gt.Value(t, user.ID).Equal(model.AgentID("agent-1"))
		gt.Bool(t, user.Onboarded).True()
		gt.Value(t, user.Goals).Equal(testGoals)

		ok, err := uc.User.IsOnboarded(ctx, "agent-1")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).True()
	})

	t.Run("rejects a second onboarding", func(t *testing.T) {
		uc := usecase.New(memory.New())
		onboard(t, uc, "agent-1")

		_, err := uc.User.Onboard(ctx, "agent-1", model.OnboardingInput{
			Name: "Other", Age: 40, ResumeURL: "https://example.com/cv", Goals: testGoals,
		})
		gt.Bool(t, errors.Is(err, usecase.ErrAlreadyOnboarded)).True()
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.User.Onboard(ctx, "agent-1", model.OnboardingInput{
			Age: 17, ResumeURL: "not a url", Goals: "too short",
		})

		var verr *model.ValidationError
		gt.Bool(t, errors.As(err, &verr)).True()
		gt.Array(t, verr.Fields).Length(4)

		ok, err := uc.User.IsOnboarded(ctx, "agent-1")
		gt.NoError(t, err).Required()
		gt.Bool(t, ok).False()
	})

	t.Run("rejects an unusable agent ID", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.User.Onboard(ctx, "a/b", model.OnboardingInput{})
		gt.Bool(t, errors.Is(err, model.ErrInvalidAgentID)).True()
	})
}

func TestUserUseCase_Get(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	_, err := uc.User.Get(ctx, "unknown")
	gt.Bool(t, errors.Is(err, usecase.ErrNotOnboarded)).True()

	onboard(t, uc, "agent-1")
	user, err := uc.User.Get(ctx, "agent-1")
	gt.NoError(t, err).Required()
	gt.Value(t, user.Name).Equal("Test User")
}

func TestUserUseCase_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only provided fields", func(t *testing.T) {
		uc := usecase.New(memory.New())
		onboard(t, uc, "agent-1")

		name := "  Renamed  "
		age := 35
		user, err := uc.User.UpdateProfile(ctx, "agent-1", model.ProfileUpdate{Name: &name, Age: &age})
		gt.NoError(t, err).Required()

		gt.Value(t, user.Name).Equal("Renamed")
		gt.Value(t, user.Age).Equal(35)
		gt.Value(t, user.Goals).Equal(testGoals)
	})

	t.Run("rejects an empty update", func(t *testing.T) {
		uc := usecase.New(memory.New())
		onboard(t, uc, "agent-1")

		_, err := uc.User.UpdateProfile(ctx, "agent-1", model.ProfileUpdate{})
		gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
	})

	t.Run("validates provided fields", func(t *testing.T) {
		uc := usecase.New(memory.New())
		onboard(t, uc, "agent-1")

		goals := "short"
		_, err := uc.User.UpdateProfile(ctx, "agent-1", model.ProfileUpdate{Goals: &goals})
		gt.Bool(t, errors.Is(err, model.ErrValidation)).True()
	})

	t.Run("requires onboarding", func(t *testing.T) {
		uc := usecase.New(memory.New())
		name := "Nobody"
		_, err := uc.User.UpdateProfile(ctx, "agent-1", model.ProfileUpdate{Name: &name})
		gt.Bool(t, errors.Is(err, usecase.ErrNotOnboarded)).True()
	})
}
