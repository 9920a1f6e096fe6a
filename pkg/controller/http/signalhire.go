package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
	"github.com/secmon-lab/coffeechat/pkg/utils/errutil"
)

const requestIDHeader = "Request-Id"

type callbackReceivedResponse struct {
	Status string `json:"status"`
}

type callbackStatusResponse struct {
	RequestID string `json:"requestId"`
	Received  bool   `json:"received"`
	Timestamp string `json:"timestamp"`
}

type profileInfoResponse struct {
	ProfileURL        string   `json:"profileUrl"`
	Name              string   `json:"name"`
	Title             string   `json:"title"`
	Industry          string   `json:"industry"`
	Company           string   `json:"company"`
	Location          string   `json:"location"`
	Skills            []string `json:"skills"`
	Interests         []string `json:"interests"`
	Education         []string `json:"education"`
	Languages         []string `json:"languages"`
	Certifications    []string `json:"certifications"`
	Recommendations   []string `json:"recommendations"`
	ConnectionDegree  string   `json:"connectionDegree"`
	SharedConnections int      `json:"sharedConnections"`
	MutualConnections int      `json:"mutualConnections"`
	Articles          []string `json:"articles"`
	Posts             []string `json:"posts"`
	ProfileSummary    string   `json:"profileSummary"`
	RecentActivity    []string `json:"recentActivity"`
	CommonGroups      []string `json:"commonGroups"`
	Source            string   `json:"source"`
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toProfileInfoResponse(d *model.DetailedProfile) profileInfoResponse {
	return profileInfoResponse{
		ProfileURL:        d.ProfileURL,
		Name:              d.Name,
		Title:             d.Title,
		Industry:          d.Industry,
		Company:           d.Company,
		Location:          d.Location,
		Skills:            orEmpty(d.Skills),
		Interests:         orEmpty(d.Interests),
		Education:         orEmpty(d.Education),
		Languages:         orEmpty(d.Languages),
		Certifications:    orEmpty(d.Certifications),
		Recommendations:   orEmpty(d.Recommendations),
		ConnectionDegree:  d.ConnectionDegree,
		SharedConnections: d.SharedConnections,
		MutualConnections: d.MutualConnections,
		Articles:          orEmpty(d.Articles),
		Posts:             orEmpty(d.Posts),
		ProfileSummary:    d.ProfileSummary,
		RecentActivity:    orEmpty(d.RecentActivity),
		CommonGroups:      orEmpty(d.CommonGroups),
		Source:            d.Source.String(),
	}
}

// signalHireCallbackHandler receives SignalHire search results
func signalHireCallbackHandler(uc *usecase.SignalHireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			errutil.WriteJSONError(w, http.StatusBadRequest, "Missing Request-Id header")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read callback body"), http.StatusBadRequest)
			return
		}

		if _, err := uc.ReceiveCallback(r.Context(), requestID, body); err != nil {
			switch {
			case errors.Is(err, usecase.ErrInvalidCallback), errors.Is(err, usecase.ErrMissingRequestID):
				errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			case errors.Is(err, usecase.ErrCallbackQueueFull):
				errutil.HandleHTTP(r.Context(), w, err, http.StatusServiceUnavailable)
			default:
				errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, r, http.StatusOK, callbackReceivedResponse{Status: "received"})
	}
}

func profileInfoHandler(uc *usecase.SignalHireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileURL := strings.TrimSpace(r.URL.Query().Get("url"))
		if profileURL == "" {
			errutil.WriteJSONError(w, http.StatusBadRequest, "Missing url parameter")
			return
		}

		d, err := uc.DeliveredProfile(r.Context(), profileURL)
		if errors.Is(err, usecase.ErrProfileInfoMissing) {
			errutil.WriteJSONError(w, http.StatusNotFound, "Profile information not found")
			return
		}
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		writeJSON(w, r, http.StatusOK, toProfileInfoResponse(d))
	}
}

func callbackStatusHandler(uc *usecase.SignalHireUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "requestId")

		rec, err := uc.CallbackStatus(r.Context(), requestID)
		if errors.Is(err, usecase.ErrCallbackNotFound) {
			errutil.WriteJSONError(w, http.StatusNotFound, "Callback not found")
			return
		}
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}

		writeJSON(w, r, http.StatusOK, callbackStatusResponse{
			RequestID: rec.RequestID,
			Received:  rec.Received,
			Timestamp: rec.Timestamp.UTC().Format(time.RFC3339),
		})
	}
}
