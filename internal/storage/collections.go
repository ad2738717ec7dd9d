package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nikbrunner/marks/internal/auth"
	"github.com/nikbrunner/marks/internal/model"
)

const activeBookmark = "b.archived_at IS NULL AND b.trashed_at IS NULL"

type collectionRepository struct {
	s *DB
}

func (r *collectionRepository) List(ctx context.Context) (model.CollectionList, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return model.CollectionList{}, err
	}

	rows, err := r.s.db.QueryContext(ctx, r.s.rebind(`
		SELECT c.id, c.name, c.icon, c.color,
			(SELECT COUNT(*) FROM bookmarks b WHERE b.collection_id = c.id AND `+activeBookmark+`)
		FROM collections c
		WHERE c.user_id = ?
		ORDER BY c.created_at, c.id
	`), userID)
	if err != nil {
		return model.CollectionList{}, r.s.fail("list collections", err)
	}
	defer rows.Close()

	list := model.CollectionList{Collections: []model.Collection{}}
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Count); err != nil {
			return model.CollectionList{}, r.s.fail("list collections", err)
		}
		list.Collections = append(list.Collections, c)
	}
	if err := rows.Err(); err != nil {
		return model.CollectionList{}, r.s.fail("list collections", err)
	}

	err = r.s.db.QueryRowContext(ctx, r.s.rebind(
		"SELECT COUNT(*) FROM bookmarks b WHERE b.user_id = ? AND "+activeBookmark,
	), userID).Scan(&list.ActiveTotal)
	if err != nil {
		return model.CollectionList{}, r.s.fail("list collections", err)
	}
	return list, nil
}

func (r *collectionRepository) get(ctx context.Context, q querier, userID, id string) (model.Collection, error) {
	var c model.Collection
	err := q.QueryRowContext(ctx, r.s.rebind(`
		SELECT c.id, c.name, c.icon, c.color,
			(SELECT COUNT(*) FROM bookmarks b WHERE b.collection_id = c.id AND `+activeBookmark+`)
		FROM collections c
		WHERE c.id = ? AND c.user_id = ?
	`), id, userID).Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Collection{}, model.NewNotFoundError("Collection", id)
	}
	return c, err
}

func (r *collectionRepository) Create(ctx context.Context, d model.CollectionDraft) (model.Collection, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return model.Collection{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Collection{}, err
	}

	c := model.NewCollection(d)
	_, err = r.s.db.ExecContext(ctx, r.s.rebind(`
		INSERT INTO collections (id, user_id, name, icon, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), c.ID, userID, c.Name, c.Icon, c.Color, formatTime(r.s.now()))
	if err != nil {
		return model.Collection{}, r.s.fail("create collection", err)
	}
	return c, nil
}

func (r *collectionRepository) Update(ctx context.Context, id string, p model.CollectionPatch) (model.Collection, error) {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return model.Collection{}, err
	}
	if err := p.Validate(); err != nil {
		return model.Collection{}, err
	}

	var sets []string
	var args []any
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*p.Name))
	}
	if p.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *p.Icon)
	}
	if p.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *p.Color)
	}

	if len(sets) > 0 {
		query := "UPDATE collections SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
		res, err := r.s.db.ExecContext(ctx, r.s.rebind(query), append(args, id, userID)...)
		if err != nil {
			return model.Collection{}, r.s.fail("update collection", err)
		}
		if err := expectRow(res, "Collection", id); err != nil {
			return model.Collection{}, err
		}
	}

	c, err := r.get(ctx, r.s.db, userID, id)
	if err != nil {
		return model.Collection{}, r.s.fail("update collection", err)
	}
	return c, nil
}

// Delete removes the collection and detaches its bookmarks in one transaction.
func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	userID, err := auth.UserID(ctx)
	if err != nil {
		return err
	}

	err = r.s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, r.s.rebind(
			"UPDATE bookmarks SET collection_id = NULL WHERE collection_id = ? AND user_id = ?",
		), id, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, r.s.rebind("DELETE FROM collections WHERE id = ? AND user_id = ?"), id, userID)
		if err != nil {
			return err
		}
		return expectRow(res, "Collection", id)
	})
	if err != nil {
		return r.s.fail("delete collection", err)
	}
	return nil
}
