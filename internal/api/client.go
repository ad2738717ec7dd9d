// Package api is the HTTP transport of the bookmark service: the wire
// types shared with the server and a client implementing the gateways.
package api

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

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/model"
)

// Client talks to a marks server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL authenticating with
// a bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Gateway exposes the client as the three resource gateways.
func (c *Client) Gateway() gateway.Gateway {
	return gateway.Gateway{
		Bookmarks:   bookmarkClient{c},
		Collections: collectionClient{c},
		Tags:        tagClient{c},
	}
}

// rawJSON is a request body that is already encoded.
type rawJSON []byte

// do performs a request and decodes a 2xx response into out. Non-2xx
// responses become typed errors; transport failures become network errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		var data []byte
		if raw, ok := body.(rawJSON); ok {
			data = raw
		} else {
			var err error
			data, err = json.Marshal(body)
			if err != nil {
				return fmt.Errorf("failed to marshal request body: %w", err)
			}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return model.NewNetworkError(fmt.Errorf("cannot connect to %s: %w", c.baseURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return handleErrorResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return model.NewServerError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func handleErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body ErrorResponse
	message := ""
	if json.Unmarshal(data, &body) == nil {
		message = body.Error
	}
	return ErrorFromStatus(resp.StatusCode, message)
}

func resourcePath(collection, id string) string {
	return "/" + collection + "/" + url.PathEscape(id)
}

type bookmarkClient struct{ c *Client }

func (b bookmarkClient) List(ctx context.Context, f gateway.BookmarkFilter) ([]model.Bookmark, error) {
	params := url.Values{}
	if f.CollectionID != "" && f.CollectionID != model.AllCollectionID {
		params.Set("collectionId", f.CollectionID)
	}
	if len(f.Tags) > 0 {
		params.Set("tags", strings.Join(f.Tags, ","))
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.Favorites {
		params.Set("favorites", strconv.FormatBool(true))
	}
	if f.Archived {
		params.Set("archived", strconv.FormatBool(true))
	}
	if f.Trashed {
		params.Set("trashed", strconv.FormatBool(true))
	}

	path := "/bookmarks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp BookmarksResponse
	if err := b.c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]model.Bookmark, len(resp.Bookmarks))
	for i, w := range resp.Bookmarks {
		out[i] = w.Model()
	}
	return out, nil
}

func (b bookmarkClient) Create(ctx context.Context, d model.BookmarkDraft) (model.Bookmark, error) {
	var resp BookmarkResponse
	if err := b.c.do(ctx, http.MethodPost, "/bookmarks", FromDraft(d), &resp); err != nil {
		return model.Bookmark{}, err
	}
	return resp.Bookmark.Model(), nil
}

func (b bookmarkClient) Update(ctx context.Context, id string, p model.BookmarkPatch) (model.Bookmark, error) {
	body, err := EncodeBookmarkPatch(p)
	if err != nil {
		return model.Bookmark{}, err
	}
	var resp BookmarkResponse
	if err := b.c.do(ctx, http.MethodPatch, resourcePath("bookmarks", id), rawJSON(body), &resp); err != nil {
		return model.Bookmark{}, err
	}
	return resp.Bookmark.Model(), nil
}

func (b bookmarkClient) Delete(ctx context.Context, id string) error {
	return b.c.do(ctx, http.MethodDelete, resourcePath("bookmarks", id), nil, nil)
}

type collectionClient struct{ c *Client }

// List strips the synthetic "all" entry and reports its count as the
// active total.
func (cc collectionClient) List(ctx context.Context) (model.CollectionList, error) {
	var resp CollectionsResponse
	if err := cc.c.do(ctx, http.MethodGet, "/collections", nil, &resp); err != nil {
		return model.CollectionList{}, err
	}
	list := model.CollectionList{Collections: make([]model.Collection, 0, len(resp.Collections))}
	for _, w := range resp.Collections {
		if w.ID == model.AllCollectionID {
			list.ActiveTotal = w.Count
			continue
		}
		list.Collections = append(list.Collections, w.Model())
	}
	return list, nil
}

func (cc collectionClient) Create(ctx context.Context, d model.CollectionDraft) (model.Collection, error) {
	var resp CollectionResponse
	body := CollectionCreate(d)
	if err := cc.c.do(ctx, http.MethodPost, "/collections", body, &resp); err != nil {
		return model.Collection{}, err
	}
	return resp.Collection.Model(), nil
}

func (cc collectionClient) Update(ctx context.Context, id string, p model.CollectionPatch) (model.Collection, error) {
	var resp CollectionResponse
	body := CollectionUpdate(p)
	if err := cc.c.do(ctx, http.MethodPatch, resourcePath("collections", id), body, &resp); err != nil {
		return model.Collection{}, err
	}
	return resp.Collection.Model(), nil
}

func (cc collectionClient) Delete(ctx context.Context, id string) error {
	return cc.c.do(ctx, http.MethodDelete, resourcePath("collections", id), nil, nil)
}

type tagClient struct{ c *Client }

func (t tagClient) List(ctx context.Context) ([]model.Tag, error) {
	var resp TagsResponse
	if err := t.c.do(ctx, http.MethodGet, "/tags", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]model.Tag, len(resp.Tags))
	for i, w := range resp.Tags {
		out[i] = w.Model()
	}
	return out, nil
}

func (t tagClient) Create(ctx context.Context, d model.TagDraft) (model.Tag, error) {
	var resp TagResponse
	if err := t.c.do(ctx, http.MethodPost, "/tags", TagCreate(d), &resp); err != nil {
		return model.Tag{}, err
	}
	return resp.Tag.Model(), nil
}

func (t tagClient) Update(ctx context.Context, id string, p model.TagPatch) (model.Tag, error) {
	var resp TagResponse
	if err := t.c.do(ctx, http.MethodPatch, resourcePath("tags", id), TagUpdate(p), &resp); err != nil {
		return model.Tag{}, err
	}
	return resp.Tag.Model(), nil
}

func (t tagClient) Delete(ctx context.Context, id string) error {
	return t.c.do(ctx, http.MethodDelete, resourcePath("tags", id), nil, nil)
}
