package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
)

func validOnboarding() model.OnboardingInput {
	return model.OnboardingInput{
		Name:      "Ada Lovelace",
		Age:       28,
		ResumeURL: "https://example.com/resume.pdf",
		Goals:     strings.Repeat("Meet analytical engine enthusiasts. ", 2),
	}
}

func TestOnboardingInput_Validate(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		gt.NoError(t, validOnboarding().Validate())
	})

	tests := []struct {
		name   string
		modify func(*model.OnboardingInput)
		field  string
	}{
		{name: "empty name", modify: func(x *model.OnboardingInput) { x.Name = "  " }, field: "name"},
		{name: "under age", modify: func(x *model.OnboardingInput) { x.Age = 17 }, field: "age"},
		{name: "relative resume url", modify: func(x *model.OnboardingInput) { x.ResumeURL = "resume.pdf" }, field: "resumeUrl"},
		{name: "ftp resume url", modify: func(x *model.OnboardingInput) { x.ResumeURL = "ftp://example.com/r" }, field: "resumeUrl"},
		{name: "short goals", modify: func(x *model.OnboardingInput) { x.Goals = "network" }, field: "goals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validOnboarding()
			tt.modify(&in)

			err := in.Validate()
			gt.Error(t, err).Required()
			gt.Bool(t, errors.Is(err, model.ErrValidation)).True()

			var verr *model.ValidationError
			gt.Bool(t, errors.As(err, &verr)).True()
			gt.Array(t, verr.Fields).Length(1).Required()
			gt.Value(t, verr.Fields[0].Field).Equal(tt.field)
		})
	}

	t.Run("reports all invalid fields", func(t *testing.T) {
		err := model.OnboardingInput{}.Validate()
		var verr *model.ValidationError
		gt.Bool(t, errors.As(err, &verr)).True()
		gt.Array(t, verr.Fields).Length(4)
	})
}

func TestProfileUpdate(t *testing.T) {
	t.Run("validates only provided fields", func(t *testing.T) {
		age := 30
		gt.NoError(t, model.ProfileUpdate{Age: &age}.Validate())

		young := 12
		gt.Error(t, model.ProfileUpdate{Age: &young}.Validate())
	})

	t.Run("applies provided fields", func(t *testing.T) {
		user := &model.User{Name: "Old", Age: 20, Goals: "keep"}
		name := " New Name "
		model.ProfileUpdate{Name: &name}.Apply(user)

		gt.Value(t, user.Name).Equal("New Name")
		gt.Value(t, user.Age).Equal(20)
		gt.Value(t, user.Goals).Equal("keep")
	})

	t.Run("empty update", func(t *testing.T) {
		gt.Bool(t, model.ProfileUpdate{}.IsEmpty()).True()
	})
}

func TestAgentID_Validate(t *testing.T) {
	gt.NoError(t, model.AgentID("agent-123").Validate())
	gt.Error(t, model.AgentID("").Validate())
	gt.Error(t, model.AgentID("a/b").Validate())
	gt.Error(t, model.AgentID("..").Validate())
}
