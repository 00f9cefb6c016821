package facebook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultPageLimit = 100
	defaultMaxDepth  = 10

	friendFields = "id,first_name,last_name,picture"
)

// Config holds Facebook Graph client settings.
type Config struct {
	BaseURL   string
	AppID     string
	AppSecret string
	PageLimit int
	MaxDepth  int
	Timeout   time.Duration
}

// Client represents a Facebook Graph API client.
type Client struct {
	baseURL   string
	appID     string
	appSecret string
	pageLimit int
	maxDepth  int
	http      *http.Client
}

// PictureData holds the nested picture payload of a graph user.
type PictureData struct {
	URL          string `json:"url"`
	IsSilhouette bool   `json:"is_silhouette"`
}

// Picture wraps the picture field of a graph user.
type Picture struct {
	Data PictureData `json:"data"`
}

// Friend represents a graph user returned by the friends edge.
type Friend struct {
	ID        string   `json:"id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Picture   *Picture `json:"picture"`
}

// AvatarURL returns the friend's picture URL if the nested picture
// field is present, empty string otherwise.
func (f Friend) AvatarURL() string {
	if f.Picture == nil || f.Picture.Data.URL == "" {
		return ""
	}
	return f.Picture.Data.URL
}

// MutualFriend is a graph user shared between the requester and the
// user identified by FriendID.
type MutualFriend struct {
	Friend
	FriendID string `json:"-"`
}

// FriendQuery holds paging parameters for a friends-edge request.
type FriendQuery struct {
	AccessToken string
	Limit       int
	Offset      int
}

// APIError represents an error reported by the Graph API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("facebook api error: status=%d message=%s", e.StatusCode, e.Message)
}

// NewClient creates a new Facebook Graph client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		pageLimit: cfg.PageLimit,
		maxDepth:  cfg.MaxDepth,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type friendsPage struct {
	Data []Friend `json:"data"`
}

// ListFriends fetches one page of the user's friends edge.
func (c *Client) ListFriends(ctx context.Context, userID string, q FriendQuery) ([]Friend, error) {
	if q.Limit <= 0 {
		q.Limit = c.pageLimit
	}

	params := url.Values{}
	params.Set("access_token", q.AccessToken)
	params.Set("appsecret_proof", c.appSecretProof(q.AccessToken))
	params.Set("fields", friendFields)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("offset", strconv.Itoa(q.Offset))

	endpoint := c.baseURL + "/" + userID + "/friends?" + params.Encode()

	var page friendsPage
	if err := c.get(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// ListFriendsAll fetches the user's friends edge to exhaustion. Paging
// stops at the first short or empty page, or when the configured depth
// cap is reached. An error on any page aborts the whole fetch.
func (c *Client) ListFriendsAll(ctx context.Context, userID, accessToken string) ([]Friend, error) {
	var all []Friend
	q := FriendQuery{AccessToken: accessToken, Limit: c.pageLimit}

	for depth := 0; depth < c.maxDepth; depth++ {
		page, err := c.ListFriends(ctx, userID, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < q.Limit {
			break
		}
		q.Offset += q.Limit
	}
	return all, nil
}

type batchRequest struct {
	Method      string `json:"method"`
	RelativeURL string `json:"relative_url"`
}

type batchResponse struct {
	Code int    `json:"code"`
	Body string `json:"body"`
}

type mutualFriendsBody struct {
	ID      string `json:"id"`
	Context struct {
		AllMutualFriends struct {
			Data []Friend `json:"data"`
		} `json:"all_mutual_friends"`
	} `json:"context"`
}

// MutualFriendsBulk fetches the requester's mutual friends with each of
// the given user ids in one batched round trip. Entries the Graph API
// could not resolve are skipped rather than failing the whole batch.
func (c *Client) MutualFriendsBulk(ctx context.Context, ids []string, accessToken string, limit int) ([]MutualFriend, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = c.pageLimit
	}

	batch := make([]batchRequest, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, batchRequest{
			Method: "get",
			RelativeURL: fmt.Sprintf("/%s?fields=context.fields(all_mutual_friends.limit(%d).fields(%s))",
				id, limit, friendFields),
		})
	}

	batchJSON, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("facebook batch request error: %w", err)
	}

	form := url.Values{}
	form.Set("batch", string(batchJSON))
	form.Set("access_token", accessToken)
	form.Set("appsecret_proof", c.appSecretProof(accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("facebook batch request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("facebook batch request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("facebook batch response error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	var responses []batchResponse
	if err := json.Unmarshal(raw, &responses); err != nil {
		return nil, fmt.Errorf("facebook batch response error: %w", err)
	}

	var result []MutualFriend
	for _, r := range responses {
		if r.Code != http.StatusOK {
			continue
		}
		var body mutualFriendsBody
		if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
			continue
		}
		for _, f := range body.Context.AllMutualFriends.Data {
			result = append(result, MutualFriend{Friend: f, FriendID: body.ID})
		}
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, endpoint string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("facebook request error: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("facebook request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("facebook response error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("facebook response error: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return &APIError{StatusCode: status, Message: env.Error.Message}
	}
	return &APIError{StatusCode: status, Message: string(raw)}
}

// appSecretProof signs the access token for server-to-server calls.
func (c *Client) appSecretProof(accessToken string) string {
	mac := hmac.New(sha256.New, []byte(c.appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}
