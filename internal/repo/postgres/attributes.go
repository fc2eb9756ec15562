package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AttributesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAttributesRepo(pool *pgxpool.Pool, prom *observability.Prom) *AttributesRepo {
	return &AttributesRepo{pool: pool, prom: prom}
}

func (r *AttributesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts the attribute and its values in one transaction so a
// partially written value list never becomes visible.
func (r *AttributesRepo) Create(ctx context.Context, req catalog.CreateAttributeRequest) (catalog.Attribute, error) {
	now := time.Now()
	a := catalog.Attribute{
		SubcategoryID: req.SubcategoryID,
		Name:          req.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := r.observe("attributes.create", func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`INSERT INTO attributes (subcategory_id, name, created_at, updated_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			a.SubcategoryID, a.Name, a.CreatedAt, a.UpdatedAt,
		).Scan(&a.ID)
		if err != nil {
			return err
		}

		for _, v := range req.Values {
			av := catalog.AttributeValue{AttributeID: a.ID, Value: v}
			err = tx.QueryRow(ctx,
				`INSERT INTO attribute_values (attribute_id, value) VALUES ($1, $2) RETURNING id`,
				av.AttributeID, av.Value,
			).Scan(&av.ID)
			if err != nil {
				return err
			}
			a.Values = append(a.Values, av)
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return catalog.Attribute{}, catalog.ErrSubcategoryNotFound
		}

		return catalog.Attribute{}, err
	}
	return a, nil
}

func (r *AttributesRepo) GetByID(ctx context.Context, id int64) (catalog.Attribute, error) {
	var a catalog.Attribute

	err := r.observe("attributes.get_by_id", func() error {
		err := r.pool.QueryRow(ctx,
			`SELECT id, subcategory_id, name, created_at, updated_at
			 FROM attributes WHERE id = $1`,
			id,
		).Scan(&a.ID, &a.SubcategoryID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}

		a.Values, err = r.valuesFor(ctx, a.ID)
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Attribute{}, catalog.ErrAttributeNotFound
		}

		return catalog.Attribute{}, err
	}
	return a, nil
}

func (r *AttributesRepo) ListBySubcategory(ctx context.Context, subcategoryID int64) ([]catalog.Attribute, error) {
	var out []catalog.Attribute

	err := r.observe("attributes.list_by_subcategory", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, subcategory_id, name, created_at, updated_at
			 FROM attributes
			 WHERE subcategory_id = $1
			 ORDER BY name ASC, id ASC`,
			subcategoryID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]catalog.Attribute, 0)
		for rows.Next() {
			var a catalog.Attribute
			if err := rows.Scan(&a.ID, &a.SubcategoryID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
				return err
			}
			out = append(out, a)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range out {
			out[i].Values, err = r.valuesFor(ctx, out[i].ID)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update renames the attribute and replaces its value list. Values still
// referenced by variant combinations make the delete fail with a foreign
// key violation, surfaced as ErrCategoryInUse.
func (r *AttributesRepo) Update(ctx context.Context, id int64, req catalog.UpdateAttributeRequest) (catalog.Attribute, error) {
	var a catalog.Attribute

	err := r.observe("attributes.update", func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`UPDATE attributes SET name = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, subcategory_id, name, created_at, updated_at`,
			id, req.Name,
		).Scan(&a.ID, &a.SubcategoryID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return err
		}

		if _, err = tx.Exec(ctx, `DELETE FROM attribute_values WHERE attribute_id = $1`, id); err != nil {
			return err
		}

		for _, v := range req.Values {
			av := catalog.AttributeValue{AttributeID: id, Value: v}
			err = tx.QueryRow(ctx,
				`INSERT INTO attribute_values (attribute_id, value) VALUES ($1, $2) RETURNING id`,
				av.AttributeID, av.Value,
			).Scan(&av.ID)
			if err != nil {
				return err
			}
			a.Values = append(a.Values, av)
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Attribute{}, catalog.ErrAttributeNotFound
		}
		if IsForeignKeyViolation(err) {
			return catalog.Attribute{}, catalog.ErrCategoryInUse
		}

		return catalog.Attribute{}, err
	}
	return a, nil
}

func (r *AttributesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("attributes.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM attributes WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		if IsForeignKeyViolation(err) {
			return catalog.ErrCategoryInUse
		}

		return err
	}
	if affected == 0 {
		return catalog.ErrAttributeNotFound
	}
	return nil
}

func (r *AttributesRepo) valuesFor(ctx context.Context, attributeID int64) ([]catalog.AttributeValue, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, attribute_id, value FROM attribute_values WHERE attribute_id = $1 ORDER BY id ASC`,
		attributeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]catalog.AttributeValue, 0)
	for rows.Next() {
		var v catalog.AttributeValue
		if err := rows.Scan(&v.ID, &v.AttributeID, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
