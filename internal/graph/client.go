package graph

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

	"github.com/google/uuid"
)

// Config holds the settings for the Graph client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Client is a Microsoft Graph REST client scoped to the operations the
// provisioner needs: groups, drives, folders, list columns, teams and chats.
type Client struct {
	base   string
	tokens *tokenSource
	client *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.TokenURL == "" {
		return nil, fmt.Errorf("graph client requires base and token URLs")
	}

	hc := &http.Client{Timeout: 30 * time.Second}
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		tokens: &tokenSource{
			tokenURL:     cfg.TokenURL,
			clientID:     cfg.ClientID,
			clientSecret: cfg.ClientSecret,
			client:       hc,
		},
		client: hc,
	}, nil
}

// do performs one Graph request. Non-2xx statuses are mapped onto the error
// taxonomy in errors.go; a nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, rawURL string, body, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, err, ErrNotAvailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return statusError(op, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, rawURL string, out any) error {
	return c.do(ctx, op, http.MethodGet, rawURL, nil, out)
}

type listResponse[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// FindGroupByName looks up a group by exact display name. More than one match
// is ErrAmbiguous: collisions are left for manual resolution.
func (c *Client) FindGroupByName(ctx context.Context, name string) (*Group, error) {
	filter := fmt.Sprintf("displayName eq '%s'", strings.ReplaceAll(name, "'", "''"))
	u := fmt.Sprintf("%s/groups?$filter=%s", c.base, url.QueryEscape(filter))

	var res listResponse[Group]
	if err := c.get(ctx, "find group", u, &res); err != nil {
		return nil, err
	}

	var matches []Group
	for _, g := range res.Value {
		if g.DisplayName == name {
			matches = append(matches, g)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("find group %q: %w", name, ErrNotFound)
	case 1:
		g := matches[0]
		return &g, nil
	default:
		return nil, fmt.Errorf("find group %q: %d matches: %w", name, len(matches), ErrAmbiguous)
	}
}

// CreateGroup creates a unified group with a team-compatible configuration.
func (c *Client) CreateGroup(ctx context.Context, name, nickname string) (*Group, error) {
	body := map[string]any{
		"displayName":     name,
		"mailNickname":    nickname,
		"mailEnabled":     true,
		"securityEnabled": false,
		"groupTypes":      []string{"Unified"},
	}
	var g Group
	if err := c.do(ctx, "create group", http.MethodPost, c.base+"/groups", body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGroupDrive resolves the group's default drive. A freshly created group
// often has no drive yet; that surfaces as ErrNotFound.
func (c *Client) GetGroupDrive(ctx context.Context, groupID string) (*Drive, error) {
	var d Drive
	if err := c.get(ctx, "get group drive", fmt.Sprintf("%s/groups/%s/drive", c.base, groupID), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDriveRoot resolves the root folder item of a drive.
func (c *Client) GetDriveRoot(ctx context.Context, driveID string) (*Item, error) {
	var item Item
	if err := c.get(ctx, "get drive root", fmt.Sprintf("%s/drives/%s/root", c.base, driveID), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindFolder resolves a folder by path relative to the drive root.
func (c *Client) FindFolder(ctx context.Context, driveID, path string) (*Item, error) {
	u := fmt.Sprintf("%s/drives/%s/root:/%s", c.base, driveID, url.PathEscape(path))
	var item Item
	if err := c.get(ctx, "find folder", u, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) CreateFolder(ctx context.Context, driveID, parentID, name string) (*Item, error) {
	body := map[string]any{
		"name":                              name,
		"folder":                            map[string]any{},
		"@microsoft.graph.conflictBehavior": "fail",
	}
	u := fmt.Sprintf("%s/drives/%s/items/%s/children", c.base, driveID, parentID)
	var item Item
	if err := c.do(ctx, "create folder", http.MethodPost, u, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListChildren returns every child of a folder, following pagination links.
func (c *Client) ListChildren(ctx context.Context, driveID, folderID string) ([]Item, error) {
	u := fmt.Sprintf("%s/drives/%s/items/%s/children", c.base, driveID, folderID)

	var items []Item
	for u != "" {
		var page listResponse[Item]
		if err := c.get(ctx, "list children", u, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Value...)
		u = page.NextLink
	}
	return items, nil
}

// CopyItem copies a drive item (recursively for folders) into a destination
// folder. Graph performs the copy asynchronously; a 202 means it was queued.
func (c *Client) CopyItem(ctx context.Context, driveID, itemID, destDriveID, destFolderID, name string) error {
	body := map[string]any{
		"parentReference": map[string]string{
			"driveId": destDriveID,
			"id":      destFolderID,
		},
	}
	if name != "" {
		body["name"] = name
	}
	u := fmt.Sprintf("%s/drives/%s/items/%s/copy", c.base, driveID, itemID)
	return c.do(ctx, "copy item", http.MethodPost, u, body, nil)
}

// MoveItem moves an item into a folder on another drive. Graph cannot move
// across drives in one call, so this is a copy followed by a delete of the
// source; a failed delete leaves the copy in place and reports false.
func (c *Client) MoveItem(ctx context.Context, driveID, itemID, name, destDriveID, destFolderID string) (bool, error) {
	if err := c.CopyItem(ctx, driveID, itemID, destDriveID, destFolderID, name); err != nil {
		return false, err
	}
	u := fmt.Sprintf("%s/drives/%s/items/%s", c.base, driveID, itemID)
	if err := c.do(ctx, "delete item", http.MethodDelete, u, nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

// GetGroupSite resolves the root SharePoint site behind a group.
func (c *Client) GetGroupSite(ctx context.Context, groupID string) (*Site, error) {
	var s Site
	if err := c.get(ctx, "get group site", fmt.Sprintf("%s/groups/%s/sites/root", c.base, groupID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetDocumentList resolves the default document library list of a site.
func (c *Client) GetDocumentList(ctx context.Context, siteID string) (*List, error) {
	var l List
	if err := c.get(ctx, "get document list", fmt.Sprintf("%s/sites/%s/drive/list", c.base, siteID), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

type columnInfo struct {
	Name   string `json:"name"`
	Choice *struct {
		Choices []string `json:"choices"`
	} `json:"choice,omitempty"`
}

// GetChoiceValues reads the allowed values of a choice column on a reference
// list identified by site path.
func (c *Client) GetChoiceValues(ctx context.Context, sitePath, listName, columnName string) ([]string, error) {
	var site Site
	if err := c.get(ctx, "get reference site", fmt.Sprintf("%s/sites/%s", c.base, sitePath), &site); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/sites/%s/lists/%s/columns", c.base, site.ID, url.PathEscape(listName))
	var cols listResponse[columnInfo]
	if err := c.get(ctx, "get reference columns", u, &cols); err != nil {
		return nil, err
	}

	for _, col := range cols.Value {
		if col.Name == columnName && col.Choice != nil {
			return col.Choice.Choices, nil
		}
	}
	return nil, fmt.Errorf("choice column %q on list %q: %w", columnName, listName, ErrNotFound)
}

// CreateColumn creates a custom column on a list. A name conflict surfaces as
// ErrConflict so find-or-create callers can treat it as prior completion.
func (c *Client) CreateColumn(ctx context.Context, siteID, listID string, def ColumnDefinition) error {
	body := map[string]any{
		"name": def.Name,
	}
	if def.DisplayName != "" {
		body["displayName"] = def.DisplayName
	}
	if def.Text {
		body["text"] = map[string]any{}
	} else {
		body["choice"] = map[string]any{
			"choices":   def.Choices,
			"displayAs": "dropDownMenu",
		}
	}
	if def.DefaultValue != "" {
		body["defaultValue"] = map[string]string{"value": def.DefaultValue}
	}
	u := fmt.Sprintf("%s/sites/%s/lists/%s/columns", c.base, siteID, listID)
	return c.do(ctx, "create column", http.MethodPost, u, body, nil)
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := c.get(ctx, "get user", fmt.Sprintf("%s/users/%s", c.base, url.PathEscape(email)), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// AddGroupOwner adds a directory user as owner of a group. Graph reports an
// owner that is already present as a conflict; callers treat that as done.
func (c *Client) AddGroupOwner(ctx context.Context, userID, groupID string) error {
	body := map[string]string{
		"@odata.id": fmt.Sprintf("%s/directoryObjects/%s", c.base, userID),
	}
	u := fmt.Sprintf("%s/groups/%s/owners/$ref", c.base, groupID)
	return c.do(ctx, "add group owner", http.MethodPost, u, body, nil)
}

type team struct {
	ID string `json:"id"`
}

// FindOrCreateTeam returns the team bound to a group, creating it when the
// group has none yet.
func (c *Client) FindOrCreateTeam(ctx context.Context, groupID string) (string, error) {
	var t team
	err := c.get(ctx, "get team", fmt.Sprintf("%s/groups/%s/team", c.base, groupID), &t)
	if err == nil {
		return t.ID, nil
	}
	if !IsNotFound(err) {
		return "", err
	}

	body := map[string]any{
		"memberSettings": map[string]any{"allowCreateUpdateChannels": true},
	}
	u := fmt.Sprintf("%s/groups/%s/team", c.base, groupID)
	if err := c.do(ctx, "create team", http.MethodPut, u, body, &t); err != nil {
		return "", err
	}
	if t.ID == "" {
		t.ID = groupID
	}
	return t.ID, nil
}

type chat struct {
	ID string `json:"id"`
}

// CreateOneOnOneChat opens (or rejoins) a one-on-one chat between two users.
func (c *Client) CreateOneOnOneChat(ctx context.Context, participants []string) (string, error) {
	members := make([]map[string]any, 0, len(participants))
	for _, id := range participants {
		members = append(members, map[string]any{
			"@odata.type":     "#microsoft.graph.aadUserConversationMember",
			"roles":           []string{"owner"},
			"user@odata.bind": fmt.Sprintf("%s/users('%s')", c.base, id),
		})
	}
	body := map[string]any{
		"chatType": "oneOnOne",
		"members":  members,
	}
	var ch chat
	if err := c.do(ctx, "create chat", http.MethodPost, c.base+"/chats", body, &ch); err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	body := map[string]any{
		"body": map[string]string{"content": text},
	}
	u := fmt.Sprintf("%s/chats/%s/messages", c.base, chatID)
	return c.do(ctx, "send message", http.MethodPost, u, body, nil)
}
