package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/petspot/petspot-backend/internal/reportflow"
	"github.com/petspot/petspot-backend/pkg/auth"
	"github.com/petspot/petspot-backend/pkg/config"
	"github.com/petspot/petspot-backend/pkg/httputil"
	"github.com/petspot/petspot-backend/pkg/logger"
)

const apiPrefix = "/api/v1/announcements"

var _ reportflow.AnnouncementService = (*Client)(nil)

// FileOpener opens the file behind a photo handle
type FileOpener func(handle string) (io.ReadCloser, error)

func openFile(handle string) (io.ReadCloser, error) {
	return os.Open(handle)
}

// Client is the announcement API as seen by the report flow. Every failure
// is returned as a *reportflow.SubmissionError.
type Client struct {
	baseURL string
	http    *http.Client
	open    FileOpener
	logger  *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithFileOpener replaces os.Open for reading photo handles
func WithFileOpener(open FileOpener) Option {
	return func(c *Client) { c.open = open }
}

// WithLogger sets the client logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.logger = log }
}

// New creates a client for cfg.APIBaseURL
func New(cfg *config.ClientConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		open:    openFile,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors httputil.Response with a deferred data payload
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *httputil.ErrorBody `json:"error"`
}

// CreateAnnouncement posts a new report
func (c *Client) CreateAnnouncement(ctx context.Context, req *reportflow.CreateAnnouncementRequest) (*reportflow.AnnouncementResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode create request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPrefix, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var result reportflow.AnnouncementResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadPhoto sends the photo as multipart field "photo" using the
// announcement's management credentials
func (c *Client) UploadPhoto(ctx context.Context, announcementID string, photo reportflow.PhotoAttachment, managementPassword string) error {
	f, err := c.open(photo.Handle)
	if err != nil {
		return reportflow.ValidationError("the selected photo can no longer be read", 0)
	}
	defer f.Close()

	filename := photo.Filename
	if filename == "" {
		filename = filepath.Base(photo.Handle)
	}
	contentType := photo.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return reportflow.ValidationError("the selected photo can no longer be read", 0)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	endpoint := c.baseURL + apiPrefix + "/" + url.PathEscape(announcementID) + "/photos"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", auth.ManagementAuthorization(announcementID, managementPassword))

	return c.do(httpReq, nil)
}

// GetAnnouncements lists announcements, optionally around a point
func (c *Client) GetAnnouncements(ctx context.Context, filter *reportflow.LocationFilter) ([]reportflow.Announcement, error) {
	endpoint := c.baseURL + apiPrefix
	if filter != nil {
		q := url.Values{}
		q.Set("lat", strconv.FormatFloat(filter.Latitude, 'f', -1, 64))
		q.Set("lng", strconv.FormatFloat(filter.Longitude, 'f', -1, 64))
		if filter.RangeKm > 0 {
			q.Set("range", strconv.FormatFloat(filter.RangeKm, 'f', -1, 64))
		}
		endpoint += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	var out []reportflow.Announcement
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAnnouncementByID fetches one announcement
func (c *Client) GetAnnouncementByID(ctx context.Context, id string) (*reportflow.Announcement, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiPrefix+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("build get request: %w", err)
	}

	var out reportflow.Announcement
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	log := c.logger.With().Str("method", req.Method).Str("path", req.URL.Path).Logger()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("announcement api unreachable")
		return reportflow.NetworkError(err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= http.StatusBadRequest {
		subErr := classify(resp.StatusCode, env.Error)
		log.Debug().Int("status", resp.StatusCode).Str("error_type", string(subErr.Type)).Msg("announcement api error")
		return subErr
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if decodeErr != nil {
		log.Warn().Err(decodeErr).Int("status", resp.StatusCode).Msg("malformed announcement api response")
		return reportflow.ServerError(resp.StatusCode)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		log.Warn().Err(err).Msg("malformed announcement api payload")
		return reportflow.ServerError(resp.StatusCode)
	}
	return nil
}

// classify maps an error response to the submission taxonomy
func classify(status int, body *httputil.ErrorBody) *reportflow.SubmissionError {
	switch {
	case status == http.StatusConflict:
		return reportflow.DuplicateMicrochipError()
	case status >= http.StatusInternalServerError:
		return reportflow.ServerError(status)
	}

	message := http.StatusText(status)
	if body != nil && body.Message != "" {
		message = body.Message
	}
	return reportflow.ValidationError(message, status)
}
