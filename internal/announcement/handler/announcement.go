package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/petspot/petspot-backend/internal/announcement/domain"
	"github.com/petspot/petspot-backend/internal/announcement/service"
	"github.com/petspot/petspot-backend/pkg/auth"
	"github.com/petspot/petspot-backend/pkg/errors"
	"github.com/petspot/petspot-backend/pkg/httputil"
	"github.com/petspot/petspot-backend/pkg/logger"
	"github.com/petspot/petspot-backend/pkg/messaging"
)

const (
	maxBodyBytes         = 1 << 20
	DefaultMaxPhotoBytes = 10 << 20
	maxListLimit         = 100
)

// AnnouncementHandler handles announcement endpoints
type AnnouncementHandler struct {
	service       *service.AnnouncementService
	maxPhotoBytes int64
	logger        *logger.Logger
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(svc *service.AnnouncementService, maxPhotoBytes int64, log *logger.Logger) *AnnouncementHandler {
	if maxPhotoBytes <= 0 {
		maxPhotoBytes = DefaultMaxPhotoBytes
	}
	return &AnnouncementHandler{
		service:       svc,
		maxPhotoBytes: maxPhotoBytes,
		logger:        log,
	}
}

// Routes mounts the public and admin endpoints
func (h *AnnouncementHandler) Routes(r chi.Router, jwt *auth.Manager) {
	r.Route("/announcements", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/photos", h.UploadPhoto)
	})

	r.Route("/admin/announcements", func(r chi.Router) {
		r.Use(jwt.RequireRole(auth.RoleAdmin))
		r.Delete("/{id}", h.Delete)
	})
}

// Create creates an announcement and returns it with its management password
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httputil.Error(w, errors.BadRequest("request body too large"))
		return
	}

	req, err := h.service.Validator().ValidateCreateAnnouncement(body)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Create(traced(r), req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// List lists announcements, optionally near a point
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	announcements, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, announcements, &httputil.Meta{Total: len(announcements)})
}

// Get gets an announcement by ID
func (h *AnnouncementHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, a)
}

// UploadPhoto attaches the multipart "photo" file. The request must carry
// Basic credentials made of the announcement id and its management password.
func (h *AnnouncementHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	credID, password, ok := auth.ManagementCredentials(r)
	if !ok || credID != id {
		httputil.Error(w, errors.InvalidManagementPassword())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxPhotoBytes); err != nil {
		httputil.Error(w, errors.BadRequest("invalid multipart body"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		httputil.Error(w, errors.FieldInvalid("photo", "this field is required"))
		return
	}
	defer file.Close()

	photo, err := service.ReadPhoto(file, header.Filename, h.maxPhotoBytes)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	a, err := h.service.UploadPhoto(traced(r), id, password, photo)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.LoggerFrom(r.Context(), h.logger).Debug().
		Str("announcement_id", id).
		Str("filename", photo.Filename).
		Int64("size", photo.Size).
		Msg("photo stored")

	httputil.Created(w, a)
}

// Delete removes an announcement (admin only)
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := ""
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		actor = claims.Subject
	}

	if err := h.service.Delete(traced(r), chi.URLParam(r, "id"), actor); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// traced carries the request ID into events published while serving r
func traced(r *http.Request) context.Context {
	return messaging.WithCorrelationID(r.Context(), httputil.GetRequestID(r.Context()))
}

func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()
	var filter domain.ListFilter

	if s := q.Get("status"); s != "" {
		status := domain.Status(s)
		if status != domain.StatusMissing && status != domain.StatusFound {
			return filter, errors.FieldInvalid("status", "must be one of: MISSING, FOUND")
		}
		filter.Status = &status
	}

	latRaw, lngRaw := q.Get("lat"), q.Get("lng")
	if latRaw != "" || lngRaw != "" {
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil || lat < -90 || lat > 90 {
			return filter, errors.FieldInvalid("lat", "must be between -90 and 90")
		}
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil || lng < -180 || lng > 180 {
			return filter, errors.FieldInvalid("lng", "must be between -180 and 180")
		}
		loc := &domain.LocationFilter{Latitude: lat, Longitude: lng}
		if s := q.Get("range"); s != "" {
			rangeKm, err := strconv.ParseFloat(s, 64)
			if err != nil || rangeKm <= 0 {
				return filter, errors.FieldInvalid("range", "must be a positive number of kilometres")
			}
			loc.RangeKm = rangeKm
		}
		filter.Location = loc
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxListLimit {
			return filter, errors.FieldInvalid("limit", "must be between 1 and 100")
		}
		filter.Limit = limit
	}
	if s := q.Get("offset"); s != "" {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			return filter, errors.FieldInvalid("offset", "must be zero or positive")
		}
		filter.Offset = offset
	}

	return filter, nil
}
