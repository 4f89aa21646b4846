package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/prodyhq/prody/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers can't set Authorization on websocket handshakes from
		// other origins anyway; auth below is what actually gates access.
		return true
	},
}

// The websocket handshake authenticates before upgrading: browsers can't
// set headers on a websocket, so the token usually arrives as a query
// parameter. Refresh tokens are not valid here.
func (h *RouteHandler) HandleWebsocket(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			authorizationHeader := r.Header.Get("Authorization")
			if len(authorizationHeader) > 7 && authorizationHeader[:7] == "Bearer " {
				tokenString = authorizationHeader[7:]
			}
		}

		if tokenString == "" {
			h.ErrHandler.AuthenticationRequired(w, r)
			return
		}

		claims, err := h.Tokens.Verify(tokenString)
		if err != nil || claims.IsRefresh {
			h.ErrHandler.InvalidAuthenticationToken(w, r)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the failure response.
			return
		}

		orgID := ""
		if claims.OrgID != nil {
			orgID = *claims.OrgID
		}

		hub.Serve(conn, claims.UserID, orgID)
	}
}
