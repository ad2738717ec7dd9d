package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/marks/internal/api"
	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	gw        gateway.Gateway
	log       logger.Logger
	sanitizer *Sanitizer
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: message})
}

// fail maps a gateway error to its status. Server errors are logged and
// reported with a generic message.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := model.KindOf(err)
	message := model.MessageOf(err)
	if kind == model.KindServer || kind == model.KindNetwork {
		h.log.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		kind = model.KindServer
		message = "Internal server error"
	}
	writeError(w, kind.HTTPStatus(), message)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, model.NewValidationError("Invalid request body")
	}
	return data, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return model.NewValidationError("Invalid request body")
	}
	return nil
}

func boolParam(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, model.NewValidationError("Invalid value for %s", key)
	}
	return b, nil
}

func bookmarkFilter(r *http.Request) (gateway.BookmarkFilter, error) {
	q := r.URL.Query()
	f := gateway.BookmarkFilter{
		CollectionID: q.Get("collectionId"),
		Search:       strings.TrimSpace(q.Get("search")),
	}
	if f.CollectionID == "" {
		f.CollectionID = q.Get("collection_id")
	}
	if tags := q.Get("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	var err error
	if f.Favorites, err = boolParam(r, "favorites"); err != nil {
		return f, err
	}
	if f.Archived, err = boolParam(r, "archived"); err != nil {
		return f, err
	}
	if f.Trashed, err = boolParam(r, "trashed"); err != nil {
		return f, err
	}
	return f, nil
}

// Bookmarks

func (h *handlers) listBookmarks(w http.ResponseWriter, r *http.Request) {
	f, err := bookmarkFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bs, err := h.gw.Bookmarks.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := api.BookmarksResponse{Bookmarks: make([]api.Bookmark, len(bs))}
	for i, b := range bs {
		resp.Bookmarks[i] = api.FromBookmark(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) createBookmark(w http.ResponseWriter, r *http.Request) {
	var body api.BookmarkCreate
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.gw.Bookmarks.Create(r.Context(), h.sanitizer.Draft(body.Draft()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.BookmarkResponse{
		Bookmark: api.FromBookmark(b),
		Message:  "Bookmark created successfully",
	})
}

func (h *handlers) updateBookmark(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patch, err := api.DecodeBookmarkPatch(data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.gw.Bookmarks.Update(r.Context(), chi.URLParam(r, "id"), h.sanitizer.Patch(patch))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.BookmarkResponse{
		Bookmark: api.FromBookmark(b),
		Message:  "Bookmark updated successfully",
	})
}

func (h *handlers) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.Bookmarks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Bookmark deleted successfully"})
}

// Collections

func (h *handlers) listCollections(w http.ResponseWriter, r *http.Request) {
	list, err := h.gw.Collections.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := api.CollectionsResponse{Collections: make([]api.Collection, 0, len(list.Collections)+1)}
	resp.Collections = append(resp.Collections, api.FromCollection(model.AllCollection(list.ActiveTotal)))
	for _, c := range list.Collections {
		resp.Collections = append(resp.Collections, api.FromCollection(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) createCollection(w http.ResponseWriter, r *http.Request) {
	var body api.CollectionCreate
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	d := body.Draft()
	d.Name = h.sanitizer.Text(d.Name)
	c, err := h.gw.Collections.Create(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.CollectionResponse{
		Collection: api.FromCollection(c),
		Message:    "Collection created successfully",
	})
}

func (h *handlers) updateCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == model.AllCollectionID {
		h.fail(w, r, model.NewValidationError("The \"all\" collection cannot be modified"))
		return
	}
	var body api.CollectionUpdate
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	p := body.Patch()
	if p.Name != nil {
		name := h.sanitizer.Text(*p.Name)
		p.Name = &name
	}
	c, err := h.gw.Collections.Update(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.CollectionResponse{
		Collection: api.FromCollection(c),
		Message:    "Collection updated successfully",
	})
}

func (h *handlers) deleteCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == model.AllCollectionID {
		h.fail(w, r, model.NewValidationError("The \"all\" collection cannot be deleted"))
		return
	}
	if err := h.gw.Collections.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Collection deleted successfully"})
}

// Tags

func (h *handlers) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.gw.Tags.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := api.TagsResponse{Tags: make([]api.Tag, len(tags))}
	for i, t := range tags {
		resp.Tags[i] = api.FromTag(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) createTag(w http.ResponseWriter, r *http.Request) {
	var body api.TagCreate
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	d := body.Draft()
	d.Name = h.sanitizer.Text(d.Name)
	t, err := h.gw.Tags.Create(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.TagResponse{
		Tag:     api.FromTag(t),
		Message: "Tag created successfully",
	})
}

func (h *handlers) updateTag(w http.ResponseWriter, r *http.Request) {
	var body api.TagUpdate
	if err := decodeBody(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	p := body.Patch()
	if p.Name != nil {
		name := h.sanitizer.Text(*p.Name)
		p.Name = &name
	}
	t, err := h.gw.Tags.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.TagResponse{
		Tag:     api.FromTag(t),
		Message: "Tag updated successfully",
	})
}

func (h *handlers) deleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.gw.Tags.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Tag deleted successfully"})
}
