package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/inkwell-social/inkwell/core"
)

// Client dereferences canonical identifiers on remote servers and
// verifies that every fetched document belongs to the authority it was
// fetched from.
type Client struct {
	client *http.Client
}

// NewClient creates a new fetch client
func NewClient() core.Fetcher {
	return &Client{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) fetch(ctx context.Context, id string, out any) error {
	ctx, span := tracer.Start(ctx, "ClientFetch")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, "GET", id, nil)
	if err != nil {
		span.RecordError(err)
		return core.NewErrorBadRequest("malformed identifier: " + id)
	}
	req.Header.Set("Accept", "application/activity+json")

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return core.NewErrorInternal("fetch failed: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return core.NewErrorNotFound()
	}
	if resp.StatusCode != http.StatusOK {
		return core.NewErrorInternal(fmt.Sprintf("fetch returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return core.NewErrorInternal("failed to read response body")
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		span.RecordError(err)
		return core.NewErrorInternal("failed to parse document")
	}

	return nil
}

// verifyDomainsMatch rejects documents whose declared identifier lives
// on a different authority than the one they were fetched from.
func verifyDomainsMatch(declared, fetched string) error {
	declaredURL, err := url.Parse(declared)
	if err != nil {
		return core.NewErrorInternal("document declares an unparsable identifier")
	}
	fetchedURL, err := url.Parse(fetched)
	if err != nil {
		return core.NewErrorBadRequest("malformed identifier: " + fetched)
	}
	if !strings.EqualFold(declaredURL.Host, fetchedURL.Host) {
		return core.NewErrorInternal(fmt.Sprintf(
			"domain mismatch: document %s fetched from %s", declared, fetched))
	}
	return nil
}

// FetchActor dereferences a remote actor document into a mirror row.
func (c *Client) FetchActor(ctx context.Context, id string) (core.Actor, error) {
	ctx, span := tracer.Start(ctx, "ClientFetchActor")
	defer span.End()

	var doc core.ActorDoc
	if err := c.fetch(ctx, id, &doc); err != nil {
		return core.Actor{}, err
	}

	if err := verifyDomainsMatch(doc.ID, id); err != nil {
		span.RecordError(err)
		return core.Actor{}, err
	}

	parsed, _ := url.Parse(doc.ID)

	kind := doc.Type
	if kind != core.KindPerson && kind != core.KindGroup {
		return core.Actor{}, core.NewErrorInternal("unknown actor kind: " + kind)
	}

	published, _ := time.Parse(time.RFC3339, doc.Published)

	return core.Actor{
		ID:            doc.ID,
		Kind:          kind,
		Domain:        strings.ToLower(parsed.Host),
		PreferredName: strings.ToLower(doc.PreferredUsername),
		Name:          doc.Name,
		Summary:       doc.Summary,
		PublicKey:     doc.PublicKey.PublicKeyPem,
		Inbox:         doc.Inbox,
		Outbox:        doc.Outbox,
		PublishedAt:   published,
		LastRefreshAt: time.Now(),
	}, nil
}

// FetchChapter dereferences a remote chapter document into a mirror row.
func (c *Client) FetchChapter(ctx context.Context, id string) (core.Chapter, error) {
	ctx, span := tracer.Start(ctx, "ClientFetchChapter")
	defer span.End()

	var doc core.ChapterDoc
	if err := c.fetch(ctx, id, &doc); err != nil {
		return core.Chapter{}, err
	}

	if err := verifyDomainsMatch(doc.ID, id); err != nil {
		span.RecordError(err)
		return core.Chapter{}, err
	}

	published, _ := time.Parse(time.RFC3339, doc.Published)

	var updated *time.Time
	if doc.Updated != nil {
		if t, err := time.Parse(time.RFC3339, *doc.Updated); err == nil {
			updated = &t
		}
	}

	// the sequence number is authoritative only on the owning server;
	// mirrors derive it from the identifier's trailing path segment
	sequence := -1
	if idx := strings.LastIndex(doc.ID, "/"); idx >= 0 {
		fmt.Sscanf(doc.ID[idx+1:], "%d", &sequence)
	}

	return core.Chapter{
		ID:            doc.ID,
		Audience:      doc.Audience,
		Title:         doc.Name,
		Summary:       doc.Summary,
		Content:       doc.Content,
		Sensitive:     doc.Sensitive,
		Sequence:      sequence,
		PublishedAt:   published,
		UpdatedAt:     updated,
		LastRefreshAt: time.Now(),
	}, nil
}

// FetchCollection dereferences a remote ordered collection.
func (c *Client) FetchCollection(ctx context.Context, id string) (core.CollectionDoc, error) {
	ctx, span := tracer.Start(ctx, "ClientFetchCollection")
	defer span.End()

	var doc core.CollectionDoc
	if err := c.fetch(ctx, id, &doc); err != nil {
		return core.CollectionDoc{}, err
	}
	return doc, nil
}
