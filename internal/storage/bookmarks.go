package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nikbrunner/marks/internal/auth"
	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

const bookmarkColumns = `b.id, b.title, b.url, b.description, b.favicon, b.thumbnail, b.duration,
	b.collection_id, b.is_favorite, b.has_dark_icon, b.archived_at, b.trashed_at, b.created_at`

type bookmarkRepository struct {
	s *DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (model.Bookmark, error) {
	var (
		b            model.Bookmark
		thumbnail    sql.NullString
		duration     sql.NullString
		collectionID sql.NullString
		archivedAt   sql.NullString
		trashedAt    sql.NullString
		createdAt    string
	)
	if err := row.Scan(
		&b.ID, &b.Title, &b.URL, &b.Description, &b.Favicon, &thumbnail, &duration,
		&collectionID, &b.IsFavorite, &b.HasDarkIcon, &archivedAt, &trashedAt, &createdAt,
	); err != nil {
		return model.Bookmark{}, err
	}

	b.Thumbnail = thumbnail.String
	b.Duration = duration.String
	if collectionID.Valid {
		b.CollectionID = &collectionID.String
	}
	b.Tags = []string{}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Bookmark{}, err
	}
	if b.ArchivedAt, err = scanNullTime(archivedAt); err != nil {
		return model.Bookmark{}, err
	}
	if b.TrashedAt, err = scanNullTime(trashedAt); err != nil {
		return model.Bookmark{}, err
	}
	return b, nil
}

// bookmarkWhere builds the predicate for a listing. Placeholders are ?.
func bookmarkWhere(userID string, f gateway.BookmarkFilter) (string, []any) {
	clauses := []string{"b.user_id = ?"}
	args := []any{userID}

	switch f.State() {
	case model.StateTrashed:
		clauses = append(clauses, "b.trashed_at IS NOT NULL")
	case model.StateArchived:
		clauses = append(clauses, "b.archived_at IS NOT NULL", "b.trashed_at IS NULL")
	default:
		clauses = append(clauses, "b.archived_at IS NULL", "b.trashed_at IS NULL")
	}

	if f.CollectionID != "" && f.CollectionID != model.AllCollectionID {
		clauses = append(clauses, "b.collection_id = ?")
		args = append(args, f.CollectionID)
	}
	if f.Favorites {
		clauses = append(clauses, "b.is_favorite = ?")
		args = append(args, true)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		clauses = append(clauses, `(LOWER(b.title) LIKE ? ESCAPE '\' OR LOWER(b.description) LIKE ? ESCAPE '\' OR LOWER(b.url) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if tags := model.NormalizeTags(f.Tags); len(tags) > 0 {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM bookmark_tags bt WHERE bt.bookmark_id = b.id AND bt.tag_id IN ("+placeholders(len(tags))+"))")
		for _, t := range tags {
			args = append(args, t)
		}
	}

	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *bookmarkRepository) List(ctx context.Context, f gateway.BookmarkFilter) ([]model.Bookmark, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}

	where, args := bookmarkWhere(userID, f)
	query := "SELECT " + bookmarkColumns + " FROM bookmarks b WHERE " + where + " ORDER BY b.created_at DESC, b.id"
	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(query), args...)
	if err != nil {
		return nil, r.s.fail("list bookmarks", err)
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, r.s.fail("list bookmarks", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.fail("list bookmarks", err)
	}

	if err := r.loadTags(ctx, r.s.db, bookmarks); err != nil {
		return nil, r.s.fail("list bookmarks", err)
	}
	return bookmarks, nil
}

// tagChunk bounds the IN list when loading associations.
const tagChunk = 500

// loadTags fills the Tags field of every bookmark in place.
func (r *bookmarkRepository) loadTags(ctx context.Context, q querier, bookmarks []model.Bookmark) error {
	index := make(map[string]int, len(bookmarks))
	for i, b := range bookmarks {
		index[b.ID] = i
	}

	for start := 0; start < len(bookmarks); start += tagChunk {
		end := min(start+tagChunk, len(bookmarks))
		args := make([]any, 0, end-start)
		for _, b := range bookmarks[start:end] {
			args = append(args, b.ID)
		}

		rows, err := q.QueryContext(ctx, r.s.rebind(
			"SELECT bookmark_id, tag_id FROM bookmark_tags WHERE bookmark_id IN ("+placeholders(len(args))+") ORDER BY bookmark_id, sort_order",
		), args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			var bookmarkID, tagID string
			if err := rows.Scan(&bookmarkID, &tagID); err != nil {
				rows.Close()
				return err
			}
			i := index[bookmarkID]
			bookmarks[i].Tags = append(bookmarks[i].Tags, tagID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}

func (r *bookmarkRepository) get(ctx context.Context, q querier, userID, id string) (model.Bookmark, error) {
	row := q.QueryRowContext(ctx, r.s.rebind(
		"SELECT "+bookmarkColumns+" FROM bookmarks b WHERE b.id = ? AND b.user_id = ?",
	), id, userID)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bookmark{}, model.NewNotFoundError("Bookmark", id)
	}
	if err != nil {
		return model.Bookmark{}, err
	}
	one := []model.Bookmark{b}
	if err := r.loadTags(ctx, q, one); err != nil {
		return model.Bookmark{}, err
	}
	return one[0], nil
}

// Create inserts the bookmark, then attaches its tags in a separate
// transaction. A failed attachment leaves the bookmark without tags.
func (r *bookmarkRepository) Create(ctx context.Context, d model.BookmarkDraft) (model.Bookmark, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return model.Bookmark{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Bookmark{}, err
	}

	b := model.NewBookmark(d, r.s.now())
	if b.CollectionID != nil {
		if err := ownsCollection(ctx, r.s, r.s.db, userID, *b.CollectionID); err != nil {
			return model.Bookmark{}, r.s.fail("create bookmark", err)
		}
	}

	_, err = r.s.db.ExecContext(ctx, r.s.rebind(`
		INSERT INTO bookmarks (id, user_id, title, url, description, favicon, thumbnail, duration,
			collection_id, is_favorite, has_dark_icon, archived_at, trashed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?)
	`),
		b.ID, userID, b.Title, b.URL, b.Description, b.Favicon, nullString(b.Thumbnail), nullString(b.Duration),
		b.CollectionID, b.IsFavorite, b.HasDarkIcon, formatTime(b.CreatedAt),
	)
	if err != nil {
		return model.Bookmark{}, r.s.fail("create bookmark", err)
	}

	if len(b.Tags) > 0 {
		attached := 0
		err := r.s.withTx(ctx, func(tx *sql.Tx) error {
			n, err := r.attachTags(ctx, tx, userID, b.ID, b.Tags)
			attached = n
			return err
		})
		switch {
		case err != nil:
			r.s.log.Warn("failed to attach tags to new bookmark",
				logger.String("bookmark", b.ID),
				logger.Strings("tags", b.Tags),
				logger.Error(err),
			)
		case attached < len(b.Tags):
			r.s.log.Warn("skipped unknown tags on new bookmark",
				logger.String("bookmark", b.ID),
				logger.Strings("tags", b.Tags),
				logger.Int("attached", attached),
			)
		}
	}

	created, err := r.get(ctx, r.s.db, userID, b.ID)
	if err != nil {
		return model.Bookmark{}, r.s.fail("create bookmark", err)
	}
	return created, nil
}

// attachTags associates tags owned by userID and returns how many were
// attached. Ids of foreign or unknown tags are skipped.
func (r *bookmarkRepository) attachTags(ctx context.Context, q querier, userID, bookmarkID string, tags []string) (int, error) {
	attached := 0
	for i, tagID := range tags {
		res, err := q.ExecContext(ctx, r.s.rebind(`
			INSERT INTO bookmark_tags (bookmark_id, tag_id, sort_order)
			SELECT ?, t.id, ? FROM tags t WHERE t.id = ? AND t.user_id = ?
		`), bookmarkID, i, tagID, userID)
		if err != nil {
			return attached, err
		}
		if n, err := res.RowsAffected(); err == nil {
			attached += int(n)
		}
	}
	return attached, nil
}

func (r *bookmarkRepository) Update(ctx context.Context, id string, p model.BookmarkPatch) (model.Bookmark, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return model.Bookmark{}, err
	}
	if err := p.Validate(); err != nil {
		return model.Bookmark{}, err
	}

	var sets []string
	var args []any
	set := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if p.Title != nil {
		set("title", strings.TrimSpace(*p.Title))
	}
	if p.URL != nil {
		set("url", strings.TrimSpace(*p.URL))
	}
	if p.Description != nil {
		set("description", strings.TrimSpace(*p.Description))
	}
	if p.Favicon != nil {
		set("favicon", *p.Favicon)
	}
	if p.Thumbnail != nil {
		set("thumbnail", nullString(*p.Thumbnail))
	}
	if p.Duration != nil {
		set("duration", nullString(*p.Duration))
	}
	if p.CollectionID.IsSet() {
		set("collection_id", p.CollectionID.Ptr())
	}
	if p.IsFavorite != nil {
		set("is_favorite", *p.IsFavorite)
	}
	if p.HasDarkIcon != nil {
		set("has_dark_icon", *p.HasDarkIcon)
	}
	if p.ArchivedAt.IsSet() {
		set("archived_at", nullTime(p.ArchivedAt.Ptr()))
	}
	if p.TrashedAt.IsSet() {
		set("trashed_at", nullTime(p.TrashedAt.Ptr()))
	}

	err = r.s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := r.get(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := p.ValidateFor(current); err != nil {
			return err
		}
		if cid, ok := p.CollectionID.Get(); ok {
			if err := ownsCollection(ctx, r.s, tx, userID, cid); err != nil {
				return err
			}
		}

		if len(sets) > 0 {
			query := "UPDATE bookmarks SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
			if _, err := tx.ExecContext(ctx, r.s.rebind(query), append(args, id, userID)...); err != nil {
				return err
			}
		}

		if p.Tags != nil {
			if _, err := tx.ExecContext(ctx, r.s.rebind("DELETE FROM bookmark_tags WHERE bookmark_id = ?"), id); err != nil {
				return err
			}
			tags := model.NormalizeTags(p.Tags)
			attached, err := r.attachTags(ctx, tx, userID, id, tags)
			if err != nil {
				return err
			}
			if attached < len(tags) {
				r.s.log.Warn("skipped unknown tags on bookmark update",
					logger.String("bookmark", id),
					logger.Strings("tags", tags),
					logger.Int("attached", attached),
				)
			}
		}
		return nil
	})
	if err != nil {
		return model.Bookmark{}, r.s.fail("update bookmark", err)
	}

	updated, err := r.get(ctx, r.s.db, userID, id)
	if err != nil {
		return model.Bookmark{}, r.s.fail("update bookmark", err)
	}
	return updated, nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, id string) error {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return err
	}

	err = r.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.s.rebind(`
			DELETE FROM bookmark_tags WHERE bookmark_id IN (SELECT id FROM bookmarks WHERE id = ? AND user_id = ?)
		`), id, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, r.s.rebind("DELETE FROM bookmarks WHERE id = ? AND user_id = ?"), id, userID)
		if err != nil {
			return err
		}
		return expectRow(res, "Bookmark", id)
	})
	if err != nil {
		return r.s.fail("delete bookmark", err)
	}
	return nil
}

// expectRow turns a zero-row mutation into a not-found error.
func expectRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewNotFoundError(entity, id)
	}
	return nil
}

func ownsCollection(ctx context.Context, s *DB, q querier, userID, id string) error {
	var n int
	err := q.QueryRowContext(ctx, s.rebind(
		"SELECT COUNT(*) FROM collections WHERE id = ? AND user_id = ?",
	), id, userID).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewValidationError("Unknown collection: %s", id)
	}
	return nil
}
