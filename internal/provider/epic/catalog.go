package epic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/dlcscan/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "dlcscan/1.0"
)

const catalogQuery = `query catalogOffers($namespace: String!) {
  Catalog {
    catalogOffers(namespace: $namespace, params: {count: 1000}) {
      elements {
        id
        title
        productSlug
        keyImages { type url }
        items { id }
        categories { path }
        seller { name }
      }
    }
  }
}`

// Preferred artwork, best first
var imageTypes = []string{"DieselStoreFrontWide", "OfferImageWide", "Thumbnail", "DieselGameBoxTall"}

// CatalogClient queries the store's GraphQL catalog. One query per
// namespace returns the game and all its add-ons, so add-on descriptors
// arrive prefetched and AddOn never needs the network.
type CatalogClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCatalogClient creates a GraphQL catalog client
func NewCatalogClient(url string, logger *slog.Logger) *CatalogClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogClient{
		url: url,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

func (c *CatalogClient) Name() string { return "epicstore" }

// Program returns the namespace's base game and its add-ons keyed by item id
func (c *CatalogClient) Program(ctx context.Context, namespace string) (*domain.ProgramMetadata, error) {
	offers, err := c.offers(ctx, namespace)
	if err != nil || len(offers) == 0 {
		return nil, err
	}

	meta := &domain.ProgramMetadata{AddOns: make(map[string]domain.AddOn)}
	for _, o := range offers {
		if !o.isAddOn() {
			if meta.Name == "" || o.isBaseGame() {
				meta.Name = o.Title
				meta.Publisher = o.Seller.Name
				meta.IconURL = o.image()
				if o.ProductSlug != "" {
					meta.ProductURL = "https://store.epicgames.com/p/" + o.ProductSlug
				}
			}
			continue
		}
		for _, item := range o.Items {
			if item.ID == "" {
				continue
			}
			if _, ok := meta.AddOns[item.ID]; ok {
				continue
			}
			meta.AddOnIDs = append(meta.AddOnIDs, item.ID)
			if o.Title != "" {
				meta.AddOns[item.ID] = domain.AddOn{
					Resolution: domain.ResolutionPrimary,
					Name:       o.Title,
					Icon:       o.image(),
				}
			}
		}
	}
	return meta, nil
}

// AddOn always misses: add-ons are only reachable through their namespace
func (c *CatalogClient) AddOn(ctx context.Context, addOnID string) (*domain.AddOn, error) {
	return nil, nil
}

func (c *CatalogClient) offers(ctx context.Context, namespace string) ([]offer, error) {
	body, err := c.doRequest(ctx, graphqlRequest{
		Query:     catalogQuery,
		Variables: map[string]any{"namespace": namespace},
	})
	if err != nil {
		return nil, err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return nil, errors.New("graphql: " + strings.Join(msgs, "; "))
	}
	return resp.Data.Catalog.CatalogOffers.Elements, nil
}

func (c *CatalogClient) doRequest(ctx context.Context, payload graphqlRequest) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("epic catalog request", "url", c.url, "namespace", payload.Variables["namespace"])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("epic catalog request failed", "error", err)
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
		c.logger.Warn("epic catalog request error", "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

func (o offer) isAddOn() bool {
	return slices.ContainsFunc(o.Categories, func(c category) bool {
		return strings.HasPrefix(c.Path, "addons")
	})
}

func (o offer) isBaseGame() bool {
	return slices.ContainsFunc(o.Categories, func(c category) bool {
		return c.Path == "games/edition/base"
	})
}

func (o offer) image() string {
	for _, want := range imageTypes {
		for _, img := range o.KeyImages {
			if img.Type == want {
				return img.URL
			}
		}
	}
	if len(o.KeyImages) > 0 {
		return o.KeyImages[0].URL
	}
	return ""
}
