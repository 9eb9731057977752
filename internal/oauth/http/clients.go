package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
	"github.com/stackfort/oauthd/internal/oauth/service"
	"github.com/stackfort/oauthd/pkg/httpx"
	"github.com/stackfort/oauthd/pkg/oauthsdk"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// ClientsHandler serves the owner-scoped client management surface under
// /v1/clients. All routes require a verified session.
type ClientsHandler struct {
	RegistryService *service.RegistryService
}

// HandleCreate godoc
//
//	@Summary		Create OAuth2 Client
//	@Description	Registers a new OAuth2 client owned by the calling subject.
//	@Description	For confidential clients the response carries the plaintext secret exactly once.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		SessionAuth
//	@Param			request	body		oauthsdk.ClientSpec		true	"Client specification"
//	@Success		201		{object}	oauthsdk.ClientResponse	"created client, secret included for confidential clients"
//	@Failure		400		{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var spec oauthsdk.ClientSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	client, secret, err := h.RegistryService.CreateClient(
		ctx,
		httpx.SubjectFromCtx(ctx),
		httpx.TenantFromCtx(ctx),
		service.ClientSpec{
			Name:            spec.Name,
			RedirectURIs:    spec.RedirectURIs,
			Scopes:          spec.Scopes,
			GrantTypes:      parseGrantTypes(spec.GrantTypes),
			Confidential:    spec.Confidential,
			AccessTokenTTL:  time.Duration(spec.AccessTokenTTL) * time.Second,
			RefreshTokenTTL: time.Duration(spec.RefreshTokenTTL) * time.Second,
		},
	)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, clientResponse(client, secret))
}

// HandleList godoc
//
//	@Summary		List OAuth2 Clients
//	@Description	Lists the calling subject's clients, newest first.
//	@Tags			Clients
//	@Produce		json
//	@Security		SessionAuth
//	@Success		200	{array}		oauthsdk.ClientResponse
//	@Failure		401	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	clients, err := h.RegistryService.ListClients(ctx, httpx.SubjectFromCtx(ctx))
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	out := make([]oauthsdk.ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientResponse(c, ""))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get OAuth2 Client
//	@Description	Fetches one of the calling subject's clients by id.
//	@Tags			Clients
//	@Produce		json
//	@Security		SessionAuth
//	@Param			id	path		string	true	"Client ID"
//	@Success		200	{object}	oauthsdk.ClientResponse
//	@Failure		403	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client, err := h.RegistryService.GetClient(ctx, httpx.SubjectFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientResponse(client, ""))
}

// HandleUpdate godoc
//
//	@Summary		Update OAuth2 Client
//	@Description	Applies a partial update to one of the calling subject's clients. Absent fields are left untouched.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		SessionAuth
//	@Param			id		path		string					true	"Client ID"
//	@Param			request	body		oauthsdk.ClientPatch	true	"Fields to update"
//	@Success		200		{object}	oauthsdk.ClientResponse
//	@Failure		400		{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [patch].
func (h *ClientsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body oauthsdk.ClientPatch
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		oauthsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	patch := domain.ClientPatch{
		Name:         body.Name,
		RedirectURIs: body.RedirectURIs,
		Scopes:       body.Scopes,
		Active:       body.Active,
	}
	if body.GrantTypes != nil {
		patch.GrantTypes = parseGrantTypes(body.GrantTypes)
	}
	if body.AccessTokenTTL != nil {
		ttl := time.Duration(*body.AccessTokenTTL) * time.Second
		patch.AccessTokenTTL = &ttl
	}
	if body.RefreshTokenTTL != nil {
		ttl := time.Duration(*body.RefreshTokenTTL) * time.Second
		patch.RefreshTokenTTL = &ttl
	}

	client, err := h.RegistryService.UpdateClient(ctx, httpx.SubjectFromCtx(ctx), r.PathValue("id"), patch)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientResponse(client, ""))
}

// HandleRegenerateSecret godoc
//
//	@Summary		Regenerate Client Secret
//	@Description	Replaces a confidential client's secret. The old secret stops working immediately; the new plaintext is returned exactly once.
//	@Tags			Clients
//	@Produce		json
//	@Security		SessionAuth
//	@Param			id	path		string	true	"Client ID"
//	@Success		200	{object}	oauthsdk.ClientResponse	"client with the new secret populated"
//	@Failure		400	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id}/secret [post].
func (h *ClientsHandler) HandleRegenerateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := httpx.SubjectFromCtx(ctx)
	clientID := r.PathValue("id")

	secret, err := h.RegistryService.RegenerateSecret(ctx, ownerID, clientID)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	client, err := h.RegistryService.GetClient(ctx, ownerID, clientID)
	if err != nil {
		writeClientError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientResponse(client, secret))
}

// HandleDelete godoc
//
//	@Summary		Delete OAuth2 Client
//	@Description	Deletes one of the calling subject's clients along with all of its outstanding codes and tokens.
//	@Tags			Clients
//	@Security		SessionAuth
//	@Param			id	path	string	true	"Client ID"
//	@Success		204	"client deleted"
//	@Failure		403	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	oauthsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.RegistryService.DeleteClient(ctx, httpx.SubjectFromCtx(ctx), r.PathValue("id")); err != nil {
		writeClientError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeClientError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var specErr *service.ClientSpecError
	switch {
	case errors.As(err, &specErr):
		oauthsdk.NewOAuth2Error(
			http.StatusBadRequest,
			"invalid_client_spec",
			strings.Join(specErr.Problems, "; "),
		).WriteError(w)
	case errors.Is(err, service.ErrClientNotFound):
		oauthsdk.NewOAuth2Error(http.StatusNotFound, "not_found", "client not found").WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		oauthsdk.NewOAuth2Error(http.StatusForbidden, "forbidden", "client belongs to another owner").WriteError(w)
	case errors.Is(err, service.ErrNotConfidential):
		oauthsdk.NewOAuth2Error(http.StatusBadRequest, "invalid_request", "public clients have no secret to rotate").WriteError(w)
	case errors.Is(err, service.ErrTemporary):
		oauthsdk.ErrTemporarilyUnavailable.WriteError(w)
	default:
		log.Error("client management operation failed", "err", err)
		oauthsdk.ErrServerError.WriteError(w)
	}
}

func parseGrantTypes(in []string) []domain.GrantType {
	out := make([]domain.GrantType, len(in))
	for i, s := range in {
		out[i] = domain.GrantType(s)
	}
	return out
}

func clientResponse(c domain.Client, secret string) oauthsdk.ClientResponse {
	grants := make([]string, len(c.GrantTypes))
	for i, gt := range c.GrantTypes {
		grants[i] = string(gt)
	}
	return oauthsdk.ClientResponse{
		ID:              c.ID,
		Name:            c.Name,
		RedirectURIs:    c.RedirectURIs,
		Scopes:          c.Scopes,
		GrantTypes:      grants,
		Confidential:    c.Confidential,
		Active:          c.Active,
		AccessTokenTTL:  int(c.AccessTokenTTL.Seconds()),
		RefreshTokenTTL: int(c.RefreshTokenTTL.Seconds()),
		TenantID:        c.TenantID,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.UTC().Format(time.RFC3339),
		Secret:          secret,
	}
}
