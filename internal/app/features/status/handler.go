// Package status reports operational counts and the state of the loaded
// role catalog. Unlike /health it requires a signed-in administrator.
package status

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/attesthub/internal/app/features/shared"
	"github.com/dalemusser/attesthub/internal/app/system/authz"
	"github.com/dalemusser/attesthub/internal/app/system/rolecatalog"
	"github.com/dalemusser/attesthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Counter reports the number of documents in one collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// RowCounter reports the number of projected participant rows.
type RowCounter interface {
	CountRows(ctx context.Context) (int64, error)
}

// Handler holds the stores the status report reads from.
type Handler struct {
	Users         Counter
	Organizations Counter
	Engagements   Counter
	Participants  RowCounter
	UserLoader    shared.UserLoader
	Catalog       *rolecatalog.Provider
	Authz         *authz.Resolver
	Log           *zap.Logger
}

type catalogStatus struct {
	Source          string    `json:"source"`
	LoadedAt        time.Time `json:"loaded_at"`
	SystemRoles     int       `json:"system_roles"`
	OrgRoles        int       `json:"organization_roles"`
	EngagementRoles int       `json:"engagement_roles"`
}

type statusResponse struct {
	Users           int64         `json:"users"`
	Organizations   int64         `json:"organizations"`
	Engagements     int64         `json:"engagements"`
	ParticipantRows int64         `json:"participant_rows"`
	Catalog         catalogStatus `json:"catalog"`
}

// Serve handles GET /status.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	u, err := shared.RequestUser(r, h.UserLoader)
	if err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if !h.Authz.HasPermission(u, "system.configure", "") {
		shared.Forbidden(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var resp statusResponse
	if resp.Users, err = h.Users.Count(ctx); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if resp.Organizations, err = h.Organizations.Count(ctx); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if resp.Engagements, err = h.Engagements.Count(ctx); err != nil {
		shared.Error(w, h.Log, err)
		return
	}
	if resp.ParticipantRows, err = h.Participants.CountRows(ctx); err != nil {
		shared.Error(w, h.Log, err)
		return
	}

	cat := h.Catalog.Current()
	counts := cat.Counts()
	resp.Catalog = catalogStatus{
		Source:          cat.Source(),
		LoadedAt:        cat.LoadedAt(),
		SystemRoles:     counts[rolecatalog.NamespaceSystem],
		OrgRoles:        counts[rolecatalog.NamespaceOrganization],
		EngagementRoles: counts[rolecatalog.NamespaceEngagement],
	}

	shared.JSON(w, http.StatusOK, resp)
}
