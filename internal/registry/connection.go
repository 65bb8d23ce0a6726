package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan-r-thorpe/nmos-js/internal/models"
	"github.com/jonathan-r-thorpe/nmos-js/internal/version"
)

// ConnectionControlType prefixes the device control type of a Connection API.
const ConnectionControlType = "urn:x-nmos:control:sr-ctrl/"

// Connection API documents merged into a sender or receiver record.
const (
	KeyActive        = "$active"
	KeyStaged        = "$staged"
	KeyTransportType = "$transporttype"
	KeyTransportFile = "$transportfile"
	KeyConnectionAPI = "$connectionapi"
)

// ConnectionHref returns the href of the highest-versioned Connection API
// control advertised by a device, or "" if it has none.
func ConnectionHref(device models.Resource) string {
	controls, _ := device["controls"].([]interface{})
	var (
		best     version.Version
		bestHref string
	)
	for _, c := range controls {
		control, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := control["type"].(string)
		href, _ := control["href"].(string)
		if href == "" || !strings.HasPrefix(typ, ConnectionControlType) {
			continue
		}
		v, err := version.Parse(strings.TrimPrefix(typ, ConnectionControlType))
		if err != nil {
			continue
		}
		if bestHref == "" || version.Compare(v, best) == version.Greater {
			best, bestHref = v, href
		}
	}
	return bestHref
}

// ConnectionAPI talks to the Connection API of a single node.
type ConnectionAPI struct {
	client *Client
	href   string
	logger *zap.Logger
}

// NewConnectionAPI returns a ConnectionAPI rooted at a device control href.
func NewConnectionAPI(client *Client, href string, logger *zap.Logger) *ConnectionAPI {
	if !strings.HasSuffix(href, "/") {
		href += "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionAPI{client: client, href: href, logger: logger}
}

// Href returns the Connection API root.
func (c *ConnectionAPI) Href() string { return c.href }

func (c *ConnectionAPI) endpoint(resourceType, id, name string) string {
	return c.href + "single/" + resourceType + "/" + id + "/" + name
}

// Endpoints fetches the active, staged and transport type documents of a
// sender or receiver, plus the transport file for senders. Documents the
// node does not serve are left out.
func (c *ConnectionAPI) Endpoints(ctx context.Context, resourceType, id string) (map[string]interface{}, error) {
	docs := map[string]interface{}{KeyConnectionAPI: c.href}
	names := []string{"active", "staged", "transporttype"}

	for _, name := range names {
		var doc interface{}
		if _, err := c.client.GetJSON(ctx, c.endpoint(resourceType, id, name), nil, &doc); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("fetching %s endpoint: %w", name, err)
		}
		docs["$"+name] = doc
	}

	if resourceType == "senders" {
		body, _, err := c.client.Get(ctx, c.endpoint(resourceType, id, "transportfile"), nil)
		switch {
		case err == nil:
			docs[KeyTransportFile] = string(body)
		case errors.Is(err, ErrNotFound):
			c.logger.Debug("sender has no transport file", zap.String("id", id))
		default:
			return nil, fmt.Errorf("fetching transportfile endpoint: %w", err)
		}
	}
	return docs, nil
}

// PatchStaged sends staged parameters and returns the updated staged
// document.
func (c *ConnectionAPI) PatchStaged(ctx context.Context, resourceType, id string, patch map[string]interface{}) (map[string]interface{}, error) {
	body, err := c.client.Patch(ctx, c.endpoint(resourceType, id, "staged"), patch)
	if err != nil {
		return nil, fmt.Errorf("patching staged %s %s: %w", resourceType, id, err)
	}
	var staged map[string]interface{}
	if err := json.Unmarshal(body, &staged); err != nil {
		return nil, fmt.Errorf("parsing staged response: %w", err)
	}
	return staged, nil
}
