package postgres

import (
	"context"
	"errors"

	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubcategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSubcategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *SubcategoriesRepo {
	return &SubcategoriesRepo{pool: pool, prom: prom}
}

func (r *SubcategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SubcategoriesRepo) Create(ctx context.Context, req catalog.CreateSubcategoryRequest) (catalog.Subcategory, error) {
	s := catalog.NewSubcategoryFromCreateRequest(req)

	err := r.observe("subcategories.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO subcategories (category_id, name, slug, description, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			s.CategoryID, s.Name, s.Slug, s.Description, s.CreatedAt, s.UpdatedAt,
		).Scan(&s.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return catalog.Subcategory{}, catalog.ErrDuplicateSlug
		}
		if IsForeignKeyViolation(err) {
			return catalog.Subcategory{}, catalog.ErrCategoryNotFound
		}

		return catalog.Subcategory{}, err
	}
	return s, nil
}

func (r *SubcategoriesRepo) ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Subcategory, error) {
	var out []catalog.Subcategory

	err := r.observe("subcategories.list_by_category", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, category_id, name, slug, description, created_at, updated_at
			 FROM subcategories
			 WHERE category_id = $1
			 ORDER BY name ASC, id ASC`,
			categoryID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]catalog.Subcategory, 0)
		for rows.Next() {
			var s catalog.Subcategory
			if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
				return err
			}
			out = append(out, s)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SubcategoriesRepo) GetByID(ctx context.Context, id int64) (catalog.Subcategory, error) {
	var s catalog.Subcategory

	err := r.observe("subcategories.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, category_id, name, slug, description, created_at, updated_at
			 FROM subcategories WHERE id = $1`,
			id,
		).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Subcategory{}, catalog.ErrSubcategoryNotFound
		}

		return catalog.Subcategory{}, err
	}
	return s, nil
}

func (r *SubcategoriesRepo) Update(ctx context.Context, id int64, req catalog.UpdateSubcategoryRequest) (catalog.Subcategory, error) {
	var s catalog.Subcategory

	err := r.observe("subcategories.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE subcategories
				SET category_id = $2,
						name = $3,
						slug = $4,
						description = $5,
						updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, category_id, name, slug, description, created_at, updated_at`,
			id, req.CategoryID, req.Name, catalog.Slugify(req.Name), req.Description,
		).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Subcategory{}, catalog.ErrSubcategoryNotFound
		}
		if IsUniqueViolation(err) {
			return catalog.Subcategory{}, catalog.ErrDuplicateSlug
		}
		if IsForeignKeyViolation(err) {
			return catalog.Subcategory{}, catalog.ErrCategoryNotFound
		}

		return catalog.Subcategory{}, err
	}
	return s, nil
}

func (r *SubcategoriesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("subcategories.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
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
		return catalog.ErrSubcategoryNotFound
	}
	return nil
}
