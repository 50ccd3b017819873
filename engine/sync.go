package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	domain "github.com/chronolens/chronolens/engine/domain"
	"github.com/chronolens/chronolens/infrastructure/valkey"
)

// SyncExporter mirrors metadata-only snapshots to an external sink after a
// successful store. One-way and best-effort: it is not part of the cache's
// correctness contract and never raw blobs, only CacheMetadata-shaped
// summaries.
type SyncExporter interface {
	Export(ctx context.Context, meta domain.CacheMetadata) error
}

// NoopExporter is the default when no sync sink is configured.
type NoopExporter struct{}

func (NoopExporter) Export(ctx context.Context, meta domain.CacheMetadata) error { return nil }

// ValkeyExporter mirrors metadata snapshots into a Valkey namespace so a
// companion service (or another device session) can read them.
type ValkeyExporter struct {
	client *valkey.Client
	prefix string
	ttl    time.Duration
}

func NewValkeyExporter(client *valkey.Client) *ValkeyExporter {
	return &ValkeyExporter{
		client: client,
		prefix: client.Key("meta_mirror") + ":",
		ttl:    domain.ContentTTL,
	}
}

func (e *ValkeyExporter) Export(ctx context.Context, meta domain.CacheMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata snapshot: %w", err)
	}

	cmd := e.client.Inner().B().Set().
		Key(e.prefix + meta.CacheKey).
		Value(string(data)).
		Ex(e.ttl).
		Build()
	if err := e.client.Inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to mirror metadata: %w", err)
	}
	return nil
}

// WebhookExporter POSTs metadata snapshots to a configured endpoint.
type WebhookExporter struct {
	URL     string
	Timeout time.Duration

	client *fasthttp.Client
}

func NewWebhookExporter(url string) *WebhookExporter {
	return &WebhookExporter{
		URL:     url,
		Timeout: 5 * time.Second,
		client:  &fasthttp.Client{},
	}
}

func (e *WebhookExporter) Export(ctx context.Context, meta domain.CacheMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata snapshot: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(e.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(data)

	if err := e.client.DoTimeout(req, resp, e.Timeout); err != nil {
		return fmt.Errorf("metadata webhook failed: %w", err)
	}
	if code := resp.StatusCode(); code >= 300 {
		return fmt.Errorf("metadata webhook returned status %d", code)
	}
	return nil
}

// exportAsync fires the hook without letting a slow or failing sink touch
// the request path.
func exportAsync(exporter SyncExporter, meta domain.CacheMetadata) {
	if exporter == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := exporter.Export(ctx, meta); err != nil {
			logrus.Debugf("[SYNC] Metadata export for %s failed: %v", meta.CacheKey, err)
		}
	}()
}
