package postgres

import (
	"context"
	"errors"

	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{pool: pool, prom: prom}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) Create(ctx context.Context, req catalog.CreateCategoryRequest) (catalog.Category, error) {
	c := catalog.NewCategoryFromCreateRequest(req)

	err := r.observe("categories.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO categories (name, slug, description, image_url, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			c.Name, c.Slug, c.Description, c.ImageURL, c.CreatedAt, c.UpdatedAt,
		).Scan(&c.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return catalog.Category{}, catalog.ErrDuplicateSlug
		}

		return catalog.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category

	err := r.observe("categories.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, slug, description, image_url, created_at, updated_at
			 FROM categories
			 ORDER BY name ASC, id ASC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]catalog.Category, 0)
		for rows.Next() {
			var c catalog.Category
			if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id int64) (catalog.Category, error) {
	var c catalog.Category

	err := r.observe("categories.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, slug, description, image_url, created_at, updated_at
			 FROM categories WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Category{}, catalog.ErrCategoryNotFound
		}

		return catalog.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) Update(ctx context.Context, id int64, req catalog.UpdateCategoryRequest) (catalog.Category, error) {
	var c catalog.Category

	err := r.observe("categories.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE categories
				SET name = $2,
						slug = $3,
						description = $4,
						updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, name, slug, description, image_url, created_at, updated_at`,
			id, req.Name, catalog.Slugify(req.Name), req.Description,
		).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Category{}, catalog.ErrCategoryNotFound
		}
		if IsUniqueViolation(err) {
			return catalog.Category{}, catalog.ErrDuplicateSlug
		}

		return catalog.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) SetImageURL(ctx context.Context, id int64, url string) error {
	var tag int64

	err := r.observe("categories.set_image_url", func() error {
		t, err := r.pool.Exec(ctx,
			`UPDATE categories SET image_url = $2, updated_at = NOW() WHERE id = $1`,
			id, url,
		)
		if err != nil {
			return err
		}
		tag = t.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}
	if tag == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("categories.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
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
		return catalog.ErrCategoryNotFound
	}
	return nil
}
