package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/mmcdole/dlcscan/internal/domain"
)

const iconURLFormat = "https://cdn.cloudflare.steamstatic.com/steamcommunity/public/images/apps/%s/%s.jpg"

// CmdClient queries a steamcmd app-info mirror. It is the secondary source:
// slower, but it knows add-ons the store hides.
type CmdClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCmdClient creates a steamcmd info client
func NewCmdClient(baseURL string, logger *slog.Logger) *CmdClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CmdClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

func (c *CmdClient) Name() string { return "steamcmd" }

// Program returns the app's info with add-on ids from both the DLC list
// and the depots that belong to an add-on
func (c *CmdClient) Program(ctx context.Context, appID string) (*domain.ProgramMetadata, error) {
	info, err := c.appInfo(ctx, appID)
	if err != nil || info == nil {
		return nil, err
	}

	meta := &domain.ProgramMetadata{
		Name:      info.Common.Name,
		Publisher: info.Extended.Publisher,
	}
	if info.Common.Icon != "" {
		meta.IconURL = fmt.Sprintf(iconURLFormat, appID, info.Common.Icon)
	}

	seen := make(map[string]bool)
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" || id == appID || seen[id] {
			return
		}
		seen[id] = true
		meta.AddOnIDs = append(meta.AddOnIDs, id)
	}
	for _, id := range strings.Split(info.Extended.ListOfDLC, ",") {
		add(id)
	}

	depotKeys := make([]string, 0, len(info.Depots))
	for k := range info.Depots {
		depotKeys = append(depotKeys, k)
	}
	slices.Sort(depotKeys)
	for _, k := range depotKeys {
		var depot cmdDepot
		// Non-object entries such as "branches" metadata are skipped
		if json.Unmarshal(info.Depots[k], &depot) == nil {
			add(depot.DLCAppID)
		}
	}
	return meta, nil
}

// AddOn names an add-on from its own app info. Add-ons found here are
// tagged hidden: the public store did not list them.
func (c *CmdClient) AddOn(ctx context.Context, addOnID string) (*domain.AddOn, error) {
	info, err := c.appInfo(ctx, addOnID)
	if err != nil || info == nil || info.Common.Name == "" {
		return nil, err
	}
	addOn := &domain.AddOn{
		Resolution: domain.ResolutionHidden,
		Name:       info.Common.Name,
	}
	if info.Common.Icon != "" {
		addOn.Icon = fmt.Sprintf(iconURLFormat, addOnID, info.Common.Icon)
	}
	return addOn, nil
}

func (c *CmdClient) appInfo(ctx context.Context, appID string) (*cmdInfo, error) {
	body, err := c.doRequest(ctx, "/"+appID)
	if err != nil || body == nil {
		return nil, err
	}

	var resp cmdInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status != "success" {
		return nil, nil
	}
	info, ok := resp.Data[appID]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (c *CmdClient) doRequest(ctx context.Context, path string) ([]byte, error) {
	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("steamcmd request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("steamcmd request failed", "error", err)
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
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("steamcmd request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}
