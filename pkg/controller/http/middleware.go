package http

import (
	"net/http"

	"github.com/secmon-lab/coffeechat/pkg/controller/mcp"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/errutil"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// requireAgentID rejects MCP requests that do not name a valid agent and
// tags the request logger with the agent ID
func requireAgentID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := model.AgentID(r.Header.Get(mcp.AgentIDHeader))
		if err := id.Validate(); err != nil {
			errutil.WriteJSONError(w, http.StatusBadRequest, "Missing or invalid "+mcp.AgentIDHeader+" header")
			return
		}

		ctx := logging.With(r.Context(), logging.From(r.Context()).With("agentID", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
