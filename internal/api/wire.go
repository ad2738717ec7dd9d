package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/marks/internal/model"
)

// Bookmark is the wire shape of a bookmark.
type Bookmark struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Description  string     `json:"description"`
	Favicon      string     `json:"favicon"`
	Thumbnail    *string    `json:"thumbnail"`
	Duration     *string    `json:"duration"`
	CollectionID *string    `json:"collection_id"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	IsFavorite   bool       `json:"is_favorite"`
	HasDarkIcon  bool       `json:"has_dark_icon"`
	ArchivedAt   *time.Time `json:"archived_at"`
	TrashedAt    *time.Time `json:"trashed_at"`
}

func FromBookmark(b model.Bookmark) Bookmark {
	b = b.Clone()
	return Bookmark{
		ID:           b.ID,
		Title:        b.Title,
		URL:          b.URL,
		Description:  b.Description,
		Favicon:      b.Favicon,
		Thumbnail:    optional(b.Thumbnail),
		Duration:     optional(b.Duration),
		CollectionID: b.CollectionID,
		Tags:         b.Tags,
		CreatedAt:    b.CreatedAt,
		IsFavorite:   b.IsFavorite,
		HasDarkIcon:  b.HasDarkIcon,
		ArchivedAt:   b.ArchivedAt,
		TrashedAt:    b.TrashedAt,
	}
}

func (b Bookmark) Model() model.Bookmark {
	out := model.Bookmark{
		ID:           b.ID,
		Title:        b.Title,
		URL:          b.URL,
		Description:  b.Description,
		Favicon:      b.Favicon,
		Thumbnail:    deref(b.Thumbnail),
		Duration:     deref(b.Duration),
		CollectionID: b.CollectionID,
		Tags:         b.Tags,
		CreatedAt:    b.CreatedAt,
		IsFavorite:   b.IsFavorite,
		HasDarkIcon:  b.HasDarkIcon,
		ArchivedAt:   b.ArchivedAt,
		TrashedAt:    b.TrashedAt,
	}
	return out.Clone()
}

// BookmarkCreate is the body of POST /bookmarks. Multi-word fields are
// camelCase; the snake_case spellings are accepted on decode.
type BookmarkCreate struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Description  string   `json:"description,omitempty"`
	Favicon      string   `json:"favicon,omitempty"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	CollectionID *string  `json:"collectionId,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	IsFavorite   bool     `json:"isFavorite,omitempty"`
	HasDarkIcon  bool     `json:"hasDarkIcon,omitempty"`
}

func (c *BookmarkCreate) UnmarshalJSON(data []byte) error {
	type plain BookmarkCreate
	var body struct {
		plain
		SnakeCollectionID *string `json:"collection_id"`
		SnakeIsFavorite   *bool   `json:"is_favorite"`
		SnakeHasDarkIcon  *bool   `json:"has_dark_icon"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	*c = BookmarkCreate(body.plain)
	if c.CollectionID == nil {
		c.CollectionID = body.SnakeCollectionID
	}
	if body.SnakeIsFavorite != nil && !c.IsFavorite {
		c.IsFavorite = *body.SnakeIsFavorite
	}
	if body.SnakeHasDarkIcon != nil && !c.HasDarkIcon {
		c.HasDarkIcon = *body.SnakeHasDarkIcon
	}
	return nil
}

func FromDraft(d model.BookmarkDraft) BookmarkCreate {
	return BookmarkCreate{
		Title:        d.Title,
		URL:          d.URL,
		Description:  d.Description,
		Favicon:      d.Favicon,
		Thumbnail:    d.Thumbnail,
		Duration:     d.Duration,
		CollectionID: d.CollectionID,
		Tags:         d.Tags,
		IsFavorite:   d.IsFavorite,
		HasDarkIcon:  d.HasDarkIcon,
	}
}

func (c BookmarkCreate) Draft() model.BookmarkDraft {
	return model.BookmarkDraft{
		Title:        c.Title,
		URL:          c.URL,
		Description:  c.Description,
		Favicon:      c.Favicon,
		Thumbnail:    c.Thumbnail,
		Duration:     c.Duration,
		CollectionID: c.CollectionID,
		Tags:         c.Tags,
		IsFavorite:   c.IsFavorite,
		HasDarkIcon:  c.HasDarkIcon,
	}
}

// EncodeBookmarkPatch renders a patch as a JSON object holding only the
// present fields. Explicit nulls are written as null.
func EncodeBookmarkPatch(p model.BookmarkPatch) ([]byte, error) {
	body := map[string]any{}
	putString := func(key string, v *string) {
		if v != nil {
			body[key] = *v
		}
	}
	putString("title", p.Title)
	putString("url", p.URL)
	putString("description", p.Description)
	putString("favicon", p.Favicon)
	putString("thumbnail", p.Thumbnail)
	putString("duration", p.Duration)
	if p.CollectionID.IsSet() {
		body["collection_id"] = p.CollectionID.Ptr()
	}
	if p.Tags != nil {
		body["tags"] = model.NormalizeTags(p.Tags)
	}
	if p.IsFavorite != nil {
		body["is_favorite"] = *p.IsFavorite
	}
	if p.HasDarkIcon != nil {
		body["has_dark_icon"] = *p.HasDarkIcon
	}
	if p.ArchivedAt.IsSet() {
		body["archived_at"] = p.ArchivedAt.Ptr()
	}
	if p.TrashedAt.IsSet() {
		body["trashed_at"] = p.TrashedAt.Ptr()
	}
	return json.Marshal(body)
}

// patchAliases maps camelCase PATCH keys to their snake_case spelling.
var patchAliases = map[string]string{
	"collectionId": "collection_id",
	"isFavorite":   "is_favorite",
	"hasDarkIcon":  "has_dark_icon",
	"archivedAt":   "archived_at",
	"trashedAt":    "trashed_at",
}

// DecodeBookmarkPatch parses a PATCH body, keeping absent, null and value
// apart. Multi-word keys may be snake_case or camelCase. Unknown keys are
// ignored; malformed values are validation errors.
func DecodeBookmarkPatch(data []byte) (model.BookmarkPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.BookmarkPatch{}, model.NewValidationError("Invalid request body")
	}

	var p model.BookmarkPatch
	var err error
	for key, value := range raw {
		if snake, ok := patchAliases[key]; ok {
			if _, dup := raw[snake]; dup {
				return model.BookmarkPatch{}, model.NewValidationError("%s and %s are the same field", key, snake)
			}
			key = snake
		}
		isNull := strings.TrimSpace(string(value)) == "null"
		switch key {
		case "title":
			p.Title, err = decodeRequired[string](key, value, isNull)
		case "url":
			p.URL, err = decodeRequired[string](key, value, isNull)
		case "description":
			p.Description, err = decodeClearable(key, value, isNull)
		case "favicon":
			p.Favicon, err = decodeClearable(key, value, isNull)
		case "thumbnail":
			p.Thumbnail, err = decodeClearable(key, value, isNull)
		case "duration":
			p.Duration, err = decodeClearable(key, value, isNull)
		case "collection_id":
			p.CollectionID, err = decodeNullable[string](key, value, isNull)
		case "tags":
			var tags []string
			if !isNull {
				err = decodeField(key, value, &tags)
			}
			if tags == nil {
				tags = []string{}
			}
			p.Tags = tags
		case "is_favorite":
			p.IsFavorite, err = decodeRequired[bool](key, value, isNull)
		case "has_dark_icon":
			p.HasDarkIcon, err = decodeRequired[bool](key, value, isNull)
		case "archived_at":
			p.ArchivedAt, err = decodeNullable[time.Time](key, value, isNull)
		case "trashed_at":
			p.TrashedAt, err = decodeNullable[time.Time](key, value, isNull)
		}
		if err != nil {
			return model.BookmarkPatch{}, err
		}
	}
	return p, nil
}

func decodeField(key string, value json.RawMessage, dst any) error {
	if err := json.Unmarshal(value, dst); err != nil {
		return model.NewValidationError("Invalid value for %s", key)
	}
	return nil
}

func decodeRequired[T any](key string, value json.RawMessage, isNull bool) (*T, error) {
	if isNull {
		return nil, model.NewValidationError("%s cannot be null", key)
	}
	var v T
	if err := decodeField(key, value, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// decodeClearable maps null to the empty string.
func decodeClearable(key string, value json.RawMessage, isNull bool) (*string, error) {
	if isNull {
		empty := ""
		return &empty, nil
	}
	return decodeRequired[string](key, value, false)
}

func decodeNullable[T any](key string, value json.RawMessage, isNull bool) (model.Nullable[T], error) {
	if isNull {
		return model.Null[T](), nil
	}
	var v T
	if err := decodeField(key, value, &v); err != nil {
		return model.Nullable[T]{}, err
	}
	return model.Some(v), nil
}

// Collection is the wire shape of a collection.
type Collection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

func FromCollection(c model.Collection) Collection {
	return Collection(c)
}

func (c Collection) Model() model.Collection {
	return model.Collection(c)
}

// CollectionCreate is the body of POST /collections.
type CollectionCreate struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (c CollectionCreate) Draft() model.CollectionDraft {
	return model.CollectionDraft(c)
}

// CollectionUpdate is the body of PATCH /collections/{id}.
type CollectionUpdate struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (c CollectionUpdate) Patch() model.CollectionPatch {
	return model.CollectionPatch(c)
}

// Tag is the wire shape of a tag.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

func FromTag(t model.Tag) Tag {
	return Tag(t)
}

func (t Tag) Model() model.Tag {
	return model.Tag(t)
}

// TagCreate is the body of POST /tags.
type TagCreate struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (t TagCreate) Draft() model.TagDraft {
	return model.TagDraft(t)
}

// TagUpdate is the body of PATCH /tags/{id}.
type TagUpdate struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (t TagUpdate) Patch() model.TagPatch {
	return model.TagPatch(t)
}

// Response envelopes.

type BookmarksResponse struct {
	Bookmarks []Bookmark `json:"bookmarks"`
}

type BookmarkResponse struct {
	Bookmark Bookmark `json:"bookmark"`
	Message  string   `json:"message,omitempty"`
}

type CollectionsResponse struct {
	Collections []Collection `json:"collections"`
}

type CollectionResponse struct {
	Collection Collection `json:"collection"`
	Message    string     `json:"message,omitempty"`
}

type TagsResponse struct {
	Tags []Tag `json:"tags"`
}

type TagResponse struct {
	Tag     Tag    `json:"tag"`
	Message string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ErrorFromStatus maps a response status and message to the error taxonomy.
func ErrorFromStatus(status int, message string) *model.Error {
	switch {
	case status == 401:
		if message == "" {
			message = model.UnauthorizedMessage
		}
		return &model.Error{Kind: model.KindAuth, Message: message}
	case status == 404:
		return &model.Error{Kind: model.KindNotFound, Message: message}
	case status == 400 || status == 409 || status == 422:
		return &model.Error{Kind: model.KindValidation, Message: message}
	default:
		if message == "" {
			message = fmt.Sprintf("unexpected status %d", status)
		}
		return &model.Error{Kind: model.KindServer, Message: message}
	}
}
