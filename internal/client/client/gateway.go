package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Gateway is the backend contract used by the sync engine.
type Gateway interface {
	FetchAll(ctx context.Context, userID string) ([]models.DocumentRecord, error)
	Upsert(ctx context.Context, rec models.DocumentRecord, userID string, opts ...UpsertOption) (UpsertResult, error)
	Remove(ctx context.Context, appID int32, userID string) error
	ResolveMedia(ctx context.Context, userID string, recs []models.DocumentRecord) []models.DocumentRecord
	Usage(ctx context.Context, userID string) (models.QuotaSnapshot, error)
	RegisterDevice(ctx context.Context, userID, deviceID, platform string) error
}

// UpsertResult describes what a push actually did.
type UpsertResult struct {
	// Skipped is true when no request was made (anonymous account).
	Skipped bool
	AppID   int32

	// FrontMediaRef and BackMediaRef are the remote keys of media uploaded
	// during this push; empty when nothing was uploaded for that side.
	FrontMediaRef string
	BackMediaRef  string

	// MediaComplete is false if any local media failed to upload.
	MediaComplete bool

	// Minimal is true when the backend only accepted the base payload.
	Minimal bool
}

// UpsertConfig holds per-call Upsert hooks.
type UpsertConfig struct {
	// BeforeCommit runs once media uploads are done, right before the
	// document itself is sent.
	BeforeCommit func()
}

type UpsertOption func(*UpsertConfig)

// WithBeforeCommit registers fn to run between the media uploads and the
// document write.
func WithBeforeCommit(fn func()) UpsertOption {
	return func(c *UpsertConfig) { c.BeforeCommit = fn }
}

// NewUpsertConfig applies opts. Gateways other than HTTPGateway use it to
// honour the same hooks.
func NewUpsertConfig(opts ...UpsertOption) UpsertConfig {
	var c UpsertConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

type Options struct {
	BaseURL      string
	AccessToken  string
	Timeout      time.Duration
	Retries      int
	SignedURLTTL time.Duration
	CacheSize    int
	HTTPClient   *http.Client
	Logger       logging.Logger
}

// HTTPGateway talks JSON over HTTP to the docvault server.
type HTTPGateway struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	urlTTL     time.Duration
	fanout     int
	urls       *expirable.LRU[string, api.MediaURLs]
	log        logging.Logger
}

func NewHTTPGateway(opts Options) *HTTPGateway {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := opts.SignedURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	size := opts.CacheSize
	if size <= 0 {
		size = 512
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	return &HTTPGateway{
		baseURL:    baseURL,
		token:      strings.TrimSpace(opts.AccessToken),
		httpClient: httpClient,
		timeout:    timeout,
		maxRetries: retries,
		baseDelay:  100 * time.Millisecond,
		maxDelay:   2 * time.Second,
		urlTTL:     ttl,
		fanout:     8,
		// cache entries must expire before the signed URLs do
		urls: expirable.NewLRU[string, api.MediaURLs](size, nil, ttl*9/10),
		log:  log,
	}
}
