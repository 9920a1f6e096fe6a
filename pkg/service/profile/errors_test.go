package profile_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/service/profile"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, profile.ErrAuth},
		{http.StatusForbidden, profile.ErrForbidden},
		{http.StatusNotFound, profile.ErrNotFound},
		{http.StatusTooManyRequests, profile.ErrRateLimit},
		{http.StatusInternalServerError, profile.ErrServer},
		{http.StatusBadGateway, profile.ErrServer},
		{http.StatusBadRequest, profile.ErrInvalidResponse},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.code), func(t *testing.T) {
			gt.Bool(t, errors.Is(profile.ClassifyStatus(tc.code), tc.want)).True()
		})
	}

	gt.NoError(t, profile.ClassifyStatus(http.StatusOK))
	gt.NoError(t, profile.ClassifyStatus(http.StatusCreated))
}

func TestUserMessage(t *testing.T) {
	gt.Value(t, profile.UserMessage(goerr.Wrap(profile.ErrAuth, "x"))).
		Equal("Authentication failed. Please check your API key.")
	gt.Value(t, profile.UserMessage(goerr.Wrap(profile.ErrRateLimit, "x"))).
		Equal("Rate limit exceeded. Please try again later.")
	gt.Value(t, profile.UserMessage(errors.New("other"))).Equal("Unknown error occurred")
	gt.Value(t, profile.UserMessage(nil)).Equal("")
}
