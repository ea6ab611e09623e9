package appconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// RemoteSource polls a config service for the latest published app version
// and hot-swaps the registry when the config changes. Fetch failures never
// disturb the currently served snapshot; a circuit breaker keeps a dead
// backend from being hammered every poll tick.
type RemoteSource struct {
	client    *http.Client
	baseURL   string
	projectID string
	interval  time.Duration

	loader    *Loader
	validator *Validator
	registry  *Registry
	breaker   *CircuitBreaker
	logger    *zap.Logger
}

// RemoteOptions configures a RemoteSource.
type RemoteOptions struct {
	BaseURL          string
	ProjectID        string
	PollInterval     time.Duration
	Timeout          time.Duration
	FailureThreshold int
	SuccessThreshold int
	BreakerTimeout   time.Duration
}

// NewRemoteSource creates a poller bound to the given registry.
func NewRemoteSource(opts RemoteOptions, registry *Registry, logger *zap.Logger) *RemoteSource {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &RemoteSource{
		client:    &http.Client{Timeout: opts.Timeout},
		baseURL:   opts.BaseURL,
		projectID: opts.ProjectID,
		interval:  opts.PollInterval,
		loader:    NewLoader(),
		validator: NewValidator(),
		registry:  registry,
		breaker:   NewCircuitBreaker(opts.FailureThreshold, opts.SuccessThreshold, opts.BreakerTimeout),
		logger:    logger,
	}
}

// versionResponse is the wire shape of the config service's latest-version
// endpoint.
type versionResponse struct {
	ConfigJSON json.RawMessage `json:"config_json"`
	App        struct {
		VersionNumber string `json:"versionNumber"`
		CreatedBy     string `json:"createdBy"`
	} `json:"app"`
}

// FetchLatest retrieves and parses the latest published config version.
func (rs *RemoteSource) FetchLatest(ctx context.Context) (model.AppConfig, string, string, error) {
	if err := rs.breaker.Allow(); err != nil {
		return model.AppConfig{}, "", "", err
	}

	cfg, version, checksum, err := rs.fetch(ctx)
	if err != nil {
		rs.breaker.RecordFailure()
		return model.AppConfig{}, "", "", err
	}
	rs.breaker.RecordSuccess()
	return cfg, version, checksum, nil
}

func (rs *RemoteSource) fetch(ctx context.Context) (model.AppConfig, string, string, error) {
	u := fmt.Sprintf("%s/app-version/latest?project_id=%s",
		rs.baseURL, url.QueryEscape(rs.projectID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.AppConfig{}, "", "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := rs.client.Do(req)
	if err != nil {
		return model.AppConfig{}, "", "", fmt.Errorf("fetching latest version: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.AppConfig{}, "", "", fmt.Errorf("config service returned %d: %s", resp.StatusCode, body)
	}

	var vr versionResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return model.AppConfig{}, "", "", fmt.Errorf("decoding version response: %w", err)
	}

	cfg, checksum, err := rs.loader.Parse(vr.ConfigJSON, "remote config")
	if err != nil {
		return model.AppConfig{}, "", "", err
	}
	return cfg, vr.App.VersionNumber, checksum, nil
}

// Run polls until the context is cancelled, swapping the registry whenever a
// new valid config version appears.
func (rs *RemoteSource) Run(ctx context.Context) {
	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rs.poll(ctx)
		}
	}
}

func (rs *RemoteSource) poll(ctx context.Context) {
	cfg, version, checksum, err := rs.FetchLatest(ctx)
	if err != nil {
		rs.logger.Warn("remote config poll failed",
			zap.String("breaker_state", rs.breaker.State().String()),
			zap.Error(err))
		return
	}

	if checksum == rs.registry.Checksum() {
		return
	}

	errs, warns := rs.validator.Validate(cfg)
	for _, w := range warns {
		rs.logger.Warn("remote config warning",
			zap.String("path", w.Path),
			zap.String("code", w.Code),
			zap.String("message", w.Message))
	}
	if len(errs) > 0 {
		rs.logger.Error("remote config rejected, keeping current snapshot",
			zap.String("version", version),
			zap.Int("errors", len(errs)),
			zap.String("first", errs[0].Error()))
		return
	}

	rs.registry.Replace(cfg, version, checksum)
	rs.logger.Info("app config reloaded",
		zap.String("version", version),
		zap.String("checksum", checksum[:12]))
}
