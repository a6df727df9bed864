package webfinger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/inkwell-social/inkwell/core"
)

// Client resolves name@domain handles against remote WebFinger
// endpoints. Resolutions are cached with a TTL.
type Client struct {
	client *http.Client
	cache  *cache.Cache
}

// NewClient creates a new webfinger client
func NewClient() core.Discoverer {
	return &Client{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cache: cache.New(10*time.Minute, 15*time.Minute),
	}
}

// Discover resolves a handle to a canonical identifier.
func (c *Client) Discover(ctx context.Context, handle string) (string, error) {
	ctx, span := tracer.Start(ctx, "ClientDiscover")
	defer span.End()

	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	split := strings.Split(handle, "@")
	if len(split) != 2 || split[0] == "" || split[1] == "" {
		return "", core.NewErrorBadRequest("malformed handle: " + handle)
	}
	domain := split[1]

	if cached, ok := c.cache.Get(strings.ToLower(handle)); ok {
		return cached.(string), nil
	}

	endpoint := fmt.Sprintf(
		"https://%s/.well-known/webfinger?resource=%s",
		domain, url.QueryEscape("acct:"+handle),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		span.RecordError(err)
		return "", core.NewErrorInternal("failed to build webfinger request")
	}
	req.Header.Set("Accept", "application/jrd+json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", core.NewErrorInternal("webfinger request failed: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", core.NewErrorNotFound()
	}
	if resp.StatusCode != http.StatusOK {
		return "", core.NewErrorInternal(fmt.Sprintf("webfinger returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return "", core.NewErrorInternal("failed to read webfinger response")
	}

	var finger WebFinger
	err = json.Unmarshal(body, &finger)
	if err != nil {
		span.RecordError(err)
		return "", core.NewErrorInternal("failed to parse webfinger response")
	}

	for _, link := range finger.Links {
		if link.Rel == "self" && link.Type == "application/activity+json" {
			c.cache.SetDefault(strings.ToLower(handle), link.Href)
			return link.Href, nil
		}
	}

	return "", core.NewErrorNotFound()
}
