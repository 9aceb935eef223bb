package settings

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/HerbHall/brandkit/internal/color"
	"github.com/HerbHall/brandkit/internal/persist"
	"github.com/HerbHall/brandkit/internal/server"
	"github.com/HerbHall/brandkit/internal/style"
	"github.com/HerbHall/brandkit/pkg/models"
)

// DefaultMaxUploadBytes caps logo and favicon uploads when no limit is set.
const DefaultMaxUploadBytes = 2 << 20

// UpdateResponse is returned by every endpoint that persists branding.
// @Description Saved branding and whether the save reached the config service.
type UpdateResponse struct {
	Config   models.ThemeConfig `json:"config"`
	Degraded bool               `json:"degraded" example:"false"`
	Warning  string             `json:"warning,omitempty" example:"saved locally only; the config service could not be reached"`
}

// RefreshResponse is returned by the refresh endpoint.
// @Description Reloaded branding and the tier that served it.
type RefreshResponse struct {
	Config models.ThemeConfig `json:"config"`
	Tier   string             `json:"tier" example:"remote"`
}

// DraftResponse is returned by the draft endpoint.
// @Description Previewed branding and the autosave state after the edit.
type DraftResponse struct {
	Config   models.ThemeConfig `json:"config"`
	Autosave string             `json:"autosave,omitempty" example:"pending_change"`
}

// Handler provides HTTP handlers for branding endpoints.
type Handler struct {
	provider  *Provider
	surface   style.Snapshotter
	maxUpload int64
	logger    *zap.Logger
}

// NewHandler creates a branding Handler. surface may be nil, in which case
// the stylesheet and surface endpoints answer 404.
func NewHandler(provider *Provider, surface style.Snapshotter, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handler{
		provider:  provider,
		surface:   surface,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// RegisterRoutes registers branding routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/branding", h.handleGet)
	mux.HandleFunc("PUT /api/v1/branding", h.handleUpdate)
	mux.HandleFunc("POST /api/v1/branding/refresh", h.handleRefresh)
	mux.HandleFunc("POST /api/v1/branding/reset", h.handleReset)
	mux.HandleFunc("POST /api/v1/branding/draft", h.handleDraft)
	mux.HandleFunc("POST /api/v1/branding/logo", h.handleUploadLogo)
	mux.HandleFunc("POST /api/v1/branding/favicon", h.handleUploadFavicon)
	mux.HandleFunc("GET /api/v1/branding/styles.css", h.handleStylesheet)
	mux.HandleFunc("GET /api/v1/branding/surface", h.handleSurface)
}

// handleGet returns the active branding.
//
//	@Summary		Get branding
//	@Description	Get the active branding configuration.
//	@Tags			branding
//	@Produce		json
//	@Success		200	{object}	models.ThemeConfig		"Active branding"
//	@Failure		404	{object}	server.Problem	"Branding not loaded yet"
//	@Router			/branding [get]
func (h *Handler) handleGet(w http.ResponseWriter, _ *http.Request) {
	cfg, ok := h.provider.Get()
	if !ok {
		writeBrandingError(w, http.StatusNotFound, ErrNotLoaded.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleUpdate persists a partial branding update.
//
//	@Summary		Update branding
//	@Description	Merge a partial branding record and persist it. Colors may be triples or hex.
//	@Description	A 202 means the change is applied and cached locally but the config service did not record it.
//	@Tags			branding
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.ThemePatch		true	"Fields to change"
//	@Success		200		{object}	UpdateResponse			"Saved"
//	@Success		202		{object}	UpdateResponse			"Saved locally only"
//	@Failure		400		{object}	server.Problem	"Invalid request"
//	@Failure		500		{object}	server.Problem	"Nothing was saved"
//	@Router			/branding [put]
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.ThemePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBrandingError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.IsEmpty() {
		writeBrandingError(w, http.StatusBadRequest, "no fields to update")
		return
	}
	if detail := validateColors(patch); detail != "" {
		writeBrandingError(w, http.StatusBadRequest, detail)
		return
	}

	cfg, err := h.provider.Update(r.Context(), patch)
	h.writeUpdateResult(w, cfg, err)
}

// handleRefresh reloads branding through the persistence chain.
//
//	@Summary		Refresh branding
//	@Description	Re-fetch branding (config service, then local cache, then defaults) and apply it.
//	@Tags			branding
//	@Produce		json
//	@Success		200	{object}	RefreshResponse	"Reloaded"
//	@Router			/branding/refresh [post]
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	cfg, tier := h.provider.Refresh(r.Context())
	writeJSON(w, http.StatusOK, RefreshResponse{Config: cfg, Tier: string(tier)})
}

// handleReset restores the default colors.
//
//	@Summary		Reset colors
//	@Description	Restore the compiled-in default colors.
//	@Tags			branding
//	@Produce		json
//	@Success		200	{object}	UpdateResponse			"Saved"
//	@Success		202	{object}	UpdateResponse			"Saved locally only"
//	@Failure		500	{object}	server.Problem	"Nothing was saved"
//	@Router			/branding/reset [post]
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.provider.Reset(r.Context())
	h.writeUpdateResult(w, cfg, err)
}

// handleDraft previews an edit and feeds it to autosave.
//
//	@Summary		Preview draft
//	@Description	Apply an unsaved edit to the styling surface. Color edits are autosaved once the editor goes quiet.
//	@Tags			branding
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.ThemePatch		true	"Draft fields"
//	@Success		200		{object}	DraftResponse			"Draft applied"
//	@Failure		400		{object}	server.Problem	"Invalid request"
//	@Router			/branding/draft [post]
func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	var patch models.ThemePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBrandingError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if detail := validateColors(patch); detail != "" {
		writeBrandingError(w, http.StatusBadRequest, detail)
		return
	}

	draft := h.provider.Preview(patch)
	writeJSON(w, http.StatusOK, DraftResponse{Config: draft, Autosave: h.provider.AutosaveState()})
}

// handleUploadLogo uploads a logo image.
//
//	@Summary		Upload logo
//	@Description	Upload a logo to the config service and point branding at it.
//	@Tags			branding
//	@Accept			mpfd
//	@Produce		json
//	@Param			logo	formData	file					true	"Logo image"
//	@Success		200		{object}	UpdateResponse			"Saved"
//	@Success		202		{object}	UpdateResponse			"Saved locally only"
//	@Failure		400		{object}	server.Problem	"Missing or oversized file"
//	@Failure		502		{object}	server.Problem	"Upload rejected by the config service"
//	@Router			/branding/logo [post]
func (h *Handler) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, "logo", h.provider.UploadLogo)
}

// handleUploadFavicon uploads a favicon.
//
//	@Summary		Upload favicon
//	@Description	Upload a favicon to the config service and point branding at it.
//	@Tags			branding
//	@Accept			mpfd
//	@Produce		json
//	@Param			favicon	formData	file					true	"Favicon"
//	@Success		200		{object}	UpdateResponse			"Saved"
//	@Success		202		{object}	UpdateResponse			"Saved locally only"
//	@Failure		400		{object}	server.Problem	"Missing or oversized file"
//	@Failure		502		{object}	server.Problem	"Upload rejected by the config service"
//	@Router			/branding/favicon [post]
func (h *Handler) handleUploadFavicon(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, "favicon", h.provider.UploadFavicon)
}

// handleStylesheet serves the rendered styling surface as one stylesheet.
//
//	@Summary		Rendered stylesheet
//	@Description	Root variables, the override fragment and custom CSS as a single stylesheet. Supports If-None-Match.
//	@Tags			branding
//	@Produce		text/css
//	@Success		200	{string}	string	"Stylesheet"
//	@Success		304	{string}	string	"Not modified"
//	@Router			/branding/styles.css [get]
func (h *Handler) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	if h.surface == nil {
		writeBrandingError(w, http.StatusNotFound, "no styling surface")
		return
	}
	css := h.surface.Snapshot().Render()
	etag := stylesheetETag(css)

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}

// handleSurface returns a snapshot of the styling surface.
//
//	@Summary		Styling surface
//	@Description	Current root variables, managed style nodes, favicon and title.
//	@Tags			branding
//	@Produce		json
//	@Success		200	{object}	style.Snapshot			"Surface snapshot"
//	@Failure		404	{object}	server.Problem	"No styling surface"
//	@Router			/branding/surface [get]
func (h *Handler) handleSurface(w http.ResponseWriter, _ *http.Request) {
	if h.surface == nil {
		writeBrandingError(w, http.StatusNotFound, "no styling surface")
		return
	}
	writeJSON(w, http.StatusOK, h.surface.Snapshot())
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, field string, upload func(ctx context.Context, filename string, body io.Reader) (models.ThemeConfig, error)) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeBrandingError(w, http.StatusBadRequest, "invalid or oversized upload")
		return
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		writeBrandingError(w, http.StatusBadRequest, "missing form file: "+field)
		return
	}
	defer f.Close()

	cfg, err := upload(r.Context(), hdr.Filename, f)
	if err != nil && !errors.Is(err, persist.ErrDegradedWrite) && !errors.Is(err, persist.ErrNotPersisted) {
		h.logger.Warn("upload failed", zap.String("field", field), zap.Error(err))
		writeBrandingError(w, http.StatusBadGateway, field+" upload failed")
		return
	}
	h.writeUpdateResult(w, cfg, err)
}

func (h *Handler) writeUpdateResult(w http.ResponseWriter, cfg models.ThemeConfig, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, UpdateResponse{Config: cfg})
	case persist.IsDegraded(err):
		writeJSON(w, http.StatusAccepted, UpdateResponse{
			Config:   cfg,
			Degraded: true,
			Warning:  "saved locally only; the config service could not be reached",
		})
	default:
		h.logger.Error("branding update not persisted", zap.Error(err))
		writeBrandingError(w, http.StatusInternalServerError, "branding update was not saved")
	}
}

// validateColors returns a problem detail for the first color that is
// neither a triple nor a hex value, or "" when all are valid.
func validateColors(p models.ThemePatch) string {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"primary_color", p.PrimaryColor},
		{"accent_color", p.AccentColor},
		{"sidebar_color", p.SidebarColor},
	} {
		if f.value == nil {
			continue
		}
		if _, err := color.ToTriple(*f.value); err != nil {
			return f.name + ": " + err.Error()
		}
	}
	return ""
}

func stylesheetETag(css string) string {
	sum := blake2b.Sum256([]byte(css))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeBrandingError writes an RFC 7807 problem response.
func writeBrandingError(w http.ResponseWriter, status int, detail string) {
	server.WriteProblem(w, server.Problem{
		Type:   server.ProblemTypeBranding,
		Status: status,
		Detail: detail,
	})
}
