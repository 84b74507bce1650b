package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/maintenance/internal/config"
)

// ErrNotFound is returned when the upstream directory does not know the id.
var ErrNotFound = errors.New("directory: not found")

// AssetClient looks up assets in the asset directory.
type AssetClient interface {
	GetAssetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
}

// UserClient looks up users in the user directory. GetUsersByIDs is the
// batch endpoint; it accepts a set of ids in one round trip.
type UserClient interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string, includeInactive bool) ([]User, error)
}

// Clients bundles both directory clients for Fx consumers.
type Clients struct {
	fx.Out

	Assets AssetClient
	Users  UserClient
}

// Module provides the directory clients to Fx.
var Module = fx.Provide(NewClients)

// NewClients builds HTTP-backed clients from configuration.
func NewClients(cfg config.Config, logger *zap.Logger) (Clients, error) {
	if cfg.Directory.AssetServiceURL == "" {
		return Clients{}, errors.New("missing ASSET_SERVICE_URL")
	}
	if cfg.Directory.UserServiceURL == "" {
		return Clients{}, errors.New("missing USER_SERVICE_URL")
	}

	httpClient := &http.Client{Timeout: cfg.Directory.Timeout}

	return Clients{
		Assets: &assetHTTPClient{
			base:   strings.TrimRight(cfg.Directory.AssetServiceURL, "/"),
			client: httpClient,
			logger: logger,
		},
		Users: &userHTTPClient{
			base:   strings.TrimRight(cfg.Directory.UserServiceURL, "/"),
			client: httpClient,
			logger: logger,
		},
	}, nil
}

type assetHTTPClient struct {
	base   string
	client *http.Client
	logger *zap.Logger
}

func (c *assetHTTPClient) GetAssetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	var asset Asset
	endpoint := fmt.Sprintf("%s/api/assets/%s", c.base, id)
	if err := getJSON(ctx, c.client, endpoint, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

type userHTTPClient struct {
	base   string
	client *http.Client
	logger *zap.Logger
}

func (c *userHTTPClient) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	endpoint := fmt.Sprintf("%s/api/users/%s", c.base, url.PathEscape(id))
	if err := getJSON(ctx, c.client, endpoint, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *userHTTPClient) GetUsersByIDs(ctx context.Context, ids []string, includeInactive bool) ([]User, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("includeInactive", fmt.Sprintf("%t", includeInactive))

	var users []User
	endpoint := fmt.Sprintf("%s/api/users/bulk?%s", c.base, query.Encode())
	if err := getJSON(ctx, c.client, endpoint, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode >= 400:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("directory: unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
