package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/pitchduel/internal/domain/types"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client is a typed client for the pitchduel HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// CreateGame opens a standard game hosted by id.
func (c *Client) CreateGame(ctx context.Context, id, name string) (string, error) {
	var resp struct {
		GameID string `json:"gameId"`
	}
	body := map[string]string{"hostId": id, "hostName": name, "gameType": "standard"}
	if err := c.do(ctx, http.MethodPost, "/multiplayer/create", body, &resp); err != nil {
		return "", err
	}
	return resp.GameID, nil
}

// JoinGame joins gameID as guest.
func (c *Client) JoinGame(ctx context.Context, gameID, id, name string) (types.Game, error) {
	var g types.Game
	body := map[string]string{"guestId": id, "guestName": name}
	err := c.do(ctx, http.MethodPost, "/multiplayer/join/"+url.PathEscape(gameID), body, &g)
	return g, err
}

// GetGame polls one game.
func (c *Client) GetGame(ctx context.Context, gameID string) (types.Game, error) {
	var g types.Game
	err := c.do(ctx, http.MethodGet, "/multiplayer/game/"+url.PathEscape(gameID), nil, &g)
	return g, err
}

// Throw submits a pitch at (x, y).
func (c *Client) Throw(ctx context.Context, gameID, playerID string, x, y float64) (types.Game, error) {
	var g types.Game
	body := map[string]any{"playerId": playerID, "pitchCoordinates": []float64{x, y}}
	err := c.do(ctx, http.MethodPost, "/multiplayer/game/"+url.PathEscape(gameID)+"/throw", body, &g)
	return g, err
}

// Leaderboard fetches the top limit standings.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]types.Entry, error) {
	var entries []types.Entry
	err := c.do(ctx, http.MethodGet, "/leaderboard?limit="+strconv.Itoa(limit), nil, &entries)
	return entries, err
}

// Player fetches one standing. A player with no games yields not_found.
func (c *Client) Player(ctx context.Context, id string) (types.Entry, error) {
	var e types.Entry
	err := c.do(ctx, http.MethodGet, "/leaderboard/player/"+url.PathEscape(id), nil, &e)
	return e, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
