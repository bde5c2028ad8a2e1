package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/dlcscan/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "dlcscan/1.0"
)

// StoreClient queries the public store appdetails API. It is the primary
// source: fast and complete for listed apps, blind to hidden add-ons.
type StoreClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewStoreClient creates a store API client
func NewStoreClient(baseURL string, logger *slog.Logger) *StoreClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

func (c *StoreClient) Name() string { return "steamstore" }

// Program returns the app's details and its listed add-on ids
func (c *StoreClient) Program(ctx context.Context, appID string) (*domain.ProgramMetadata, error) {
	details, err := c.appDetails(ctx, appID)
	if err != nil || details == nil {
		return nil, err
	}

	meta := &domain.ProgramMetadata{
		Name:       details.Name,
		IconURL:    details.HeaderImage,
		ProductURL: "https://store.steampowered.com/app/" + appID,
		WebsiteURL: details.Website,
	}
	if len(details.Publishers) > 0 {
		meta.Publisher = details.Publishers[0]
	}
	for _, id := range details.DLC {
		meta.AddOnIDs = append(meta.AddOnIDs, strconv.Itoa(id))
	}
	return meta, nil
}

// AddOn looks an add-on up as an app of its own
func (c *StoreClient) AddOn(ctx context.Context, addOnID string) (*domain.AddOn, error) {
	details, err := c.appDetails(ctx, addOnID)
	if err != nil || details == nil || details.Name == "" {
		return nil, err
	}
	return &domain.AddOn{
		Resolution: domain.ResolutionPrimary,
		Name:       details.Name,
		Icon:       details.HeaderImage,
	}, nil
}

func (c *StoreClient) appDetails(ctx context.Context, appID string) (*appDetails, error) {
	query := url.Values{}
	query.Set("appids", appID)

	body, err := c.doRequest(ctx, query)
	if err != nil {
		return nil, err
	}

	var resp appDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	entry, ok := resp[appID]
	if !ok || !entry.Success {
		return nil, nil
	}
	return &entry.Data, nil
}

// doRequest performs a GET against the appdetails endpoint
func (c *StoreClient) doRequest(ctx context.Context, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("steam store request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("steam store request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("steam store request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

