package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nikbrunner/marks/internal/auth"
	"github.com/nikbrunner/marks/internal/model"
)

// tagCount counts active bookmarks referencing t.
const tagCount = `(SELECT COUNT(*) FROM bookmark_tags bt JOIN bookmarks b ON b.id = bt.bookmark_id
	WHERE bt.tag_id = t.id AND ` + activeBookmark + `)`

type tagRepository struct {
	s *DB
}

func (r *tagRepository) List(ctx context.Context) ([]model.Tag, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(
		"SELECT t.id, t.name, t.color, "+tagCount+" FROM tags t WHERE t.user_id = ? ORDER BY t.created_at, t.id",
	), userID)
	if err != nil {
		return nil, r.s.fail("list tags", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Count); err != nil {
			return nil, r.s.fail("list tags", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.fail("list tags", err)
	}
	return tags, nil
}

func (r *tagRepository) get(ctx context.Context, userID, id string) (model.Tag, error) {
	var t model.Tag
	err := r.s.db.QueryRowContext(ctx, r.s.rebind(
		"SELECT t.id, t.name, t.color, "+tagCount+" FROM tags t WHERE t.id = ? AND t.user_id = ?",
	), id, userID).Scan(&t.ID, &t.Name, &t.Color, &t.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, model.NewNotFoundError("Tag", id)
	}
	return t, err
}

func (r *tagRepository) Create(ctx context.Context, d model.TagDraft) (model.Tag, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return model.Tag{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Tag{}, err
	}

	t := model.NewTag(d)
	_, err = r.s.db.ExecContext(ctx, r.s.rebind(
		"INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)",
	), t.ID, userID, t.Name, t.Color, formatTime(r.s.now()))
	if err != nil {
		return model.Tag{}, r.s.fail("create tag", err)
	}
	return t, nil
}

func (r *tagRepository) Update(ctx context.Context, id string, p model.TagPatch) (model.Tag, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return model.Tag{}, err
	}
	if err := p.Validate(); err != nil {
		return model.Tag{}, err
	}

	var sets []string
	var args []any
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.Color != nil {
		color := strings.TrimSpace(*p.Color)
		if color == "" {
			color = model.DefaultTagColor
		}
		sets = append(sets, "color = ?")
		args = append(args, color)
	}

	if len(sets) > 0 {
		query := "UPDATE tags SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
		res, err := r.s.db.ExecContext(ctx, r.s.rebind(query), append(args, id, userID)...)
		if err != nil {
			return model.Tag{}, r.s.fail("update tag", err)
		}
		if err := expectRow(res, "Tag", id); err != nil {
			return model.Tag{}, err
		}
	}

	t, err := r.get(ctx, userID, id)
	if err != nil {
		return model.Tag{}, r.s.fail("update tag", err)
	}
	return t, nil
}

// Delete removes the tag and all of its associations in one transaction.
func (r *tagRepository) Delete(ctx context.Context, id string) error {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return err
	}

	err = r.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.s.rebind(
			"DELETE FROM bookmark_tags WHERE tag_id IN (SELECT id FROM tags WHERE id = ? AND user_id = ?)",
		), id, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, r.s.rebind("DELETE FROM tags WHERE id = ? AND user_id = ?"), id, userID)
		if err != nil {
			return err
		}
		return expectRow(res, "Tag", id)
	})
	if err != nil {
		return r.s.fail("delete tag", err)
	}
	return nil
}
