package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/kazz187/repoguild/pkg/cerr"
)

const apiVersion = "2022-11-28"

// HTTPClient implements Client against the forge's v3 REST API.
type HTTPClient struct {
	base   *url.URL
	token  string
	client *retryablehttp.Client
}

// NewHTTPClient creates a forge client for the given API base URL.
// Transport errors are retried with jittered backoff; HTTP error
// responses are not retried, they surface as outcomes for the unit that
// triggered them.
func NewHTTPClient(apiURL, token string, timeout time.Duration) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimSuffix(apiURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL %q: %w", apiURL, err)
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout

	client := &retryablehttp.Client{
		HTTPClient:   httpClient,
		RetryWaitMin: 1000 * time.Millisecond,
		RetryWaitMax: 1500 * time.Millisecond,
		RetryMax:     2,
		Backoff:      retryablehttp.LinearJitterBackoff,
		CheckRetry: func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			// Only transport-level failures retry. A received HTTP
			// response, whatever the status, is terminal for the call.
			return err != nil, nil
		},
	}

	return &HTTPClient{
		base:   base,
		token:  token,
		client: client,
	}, nil
}

type apiError struct {
	Message string `json:"message"`
}

// do issues one API call. A non-2xx response is returned as a *cerr.Error
// whose code reflects the HTTP status; out, when non-nil, receives the
// decoded 2xx response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return cerr.NewError(cerr.RemoteRejected, fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var remote apiError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &remote)
		msg := fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)
		if remote.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, remote.Message)
		}
		return cerr.NewError(cerr.FromHTTPStatus(resp.StatusCode), msg, nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *HTTPClient) Organization(ctx context.Context, org string) error {
	return c.do(ctx, http.MethodGet, "/orgs/"+url.PathEscape(org), nil, nil)
}

type customRolesResponse struct {
	TotalCount  int          `json:"total_count"`
	CustomRoles []CustomRole `json:"custom_roles"`
}

func (c *HTTPClient) ListCustomRoles(ctx context.Context, org string) ([]CustomRole, error) {
	var out customRolesResponse
	err := c.do(ctx, http.MethodGet, "/orgs/"+url.PathEscape(org)+"/custom-repository-roles", nil, &out)
	if err != nil {
		// Plans and forges without custom roles answer 404 here.
		if cerr.IsCode(err, cerr.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out.CustomRoles, nil
}

func (c *HTTPClient) RepositoryExists(ctx context.Context, org, repo string) (bool, error) {
	err := c.do(ctx, http.MethodGet, "/repos/"+url.PathEscape(org)+"/"+url.PathEscape(repo), nil, nil)
	if err != nil {
		if cerr.IsCode(err, cerr.NotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) Team(ctx context.Context, org, slug string) (*Team, error) {
	var team Team
	err := c.do(ctx, http.MethodGet, "/orgs/"+url.PathEscape(org)+"/teams/"+url.PathEscape(slug), nil, &team)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

type grantRequest struct {
	Permission string `json:"permission"`
}

func (c *HTTPClient) GrantTeamRepository(ctx context.Context, org, teamSlug, repo, permission string) error {
	path := fmt.Sprintf("/orgs/%s/teams/%s/repos/%s/%s",
		url.PathEscape(org), url.PathEscape(teamSlug), url.PathEscape(org), url.PathEscape(repo))
	return c.do(ctx, http.MethodPut, path, grantRequest{Permission: permission}, nil)
}

func (c *HTTPClient) GrantUserRepository(ctx context.Context, org, repo, user, permission string) error {
	path := fmt.Sprintf("/repos/%s/%s/collaborators/%s",
		url.PathEscape(org), url.PathEscape(repo), url.PathEscape(user))
	return c.do(ctx, http.MethodPut, path, grantRequest{Permission: permission}, nil)
}
