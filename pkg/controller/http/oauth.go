package http

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/errutil"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

var connectedPage = template.Must(template.New("connected").Parse(`<!DOCTYPE html>
<html>
<head><title>Gmail connected</title></head>
<body>
<h1>Gmail connected</h1>
<p>Your Gmail account is now connected for agent {{.}}. You can close this window and return to your assistant.</p>
</body>
</html>
`))

// oauthLoginHandler redirects the browser to the Google consent screen
func oauthLoginHandler(uc *usecase.OAuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := model.AgentID(r.URL.Query().Get("agent_id"))
		if err := id.Validate(); err != nil {
			errutil.WriteJSONError(w, http.StatusBadRequest, "Missing or invalid agent_id parameter")
			return
		}

		authURL, err := uc.LoginURL(id)
		if errors.Is(err, usecase.ErrOAuthNotConfigured) {
			errutil.WriteJSONError(w, http.StatusServiceUnavailable, "Google OAuth is not configured")
			return
		}
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	}
}

// oauthCallbackHandler completes the authorization code flow
func oauthCallbackHandler(uc *usecase.OAuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if msg := r.URL.Query().Get("error"); msg != "" {
			logging.From(r.Context()).Warn("oauth consent denied", "error", msg)
			errutil.WriteJSONError(w, http.StatusBadRequest, "Authorization was not granted: "+msg)
			return
		}

		id, err := uc.HandleCallback(r.Context(), r.URL.Query().Get("code"), r.URL.Query().Get("state"))
		switch {
		case errors.Is(err, usecase.ErrInvalidState):
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		case errors.Is(err, usecase.ErrOAuthNotConfigured):
			errutil.WriteJSONError(w, http.StatusServiceUnavailable, "Google OAuth is not configured")
			return
		case err != nil:
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := connectedPage.Execute(w, id); err != nil {
			_ = errutil.Handle(r.Context(), err, "failed to render oauth result page")
		}
	}
}
