package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProductsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProductsRepo {
	return &ProductsRepo{pool: pool, prom: prom}
}

func (r *ProductsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ProductsRepo) Create(ctx context.Context, req catalog.CreateProductRequest) (catalog.Product, error) {
	p := catalog.NewProductFromCreateRequest(req)

	err := r.observe("products.create", func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`INSERT INTO products (subcategory_id, name, slug, description, base_price, image_urls, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, '{}', $6, $7)
			 RETURNING id`,
			p.SubcategoryID, p.Name, p.Slug, p.Description, p.BasePrice, p.CreatedAt, p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return err
		}

		if err = insertVariants(ctx, tx, p.ID, p.Variants); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return catalog.Product{}, catalog.ErrDuplicateSlug
		}
		if IsForeignKeyViolation(err) {
			return catalog.Product{}, catalog.ErrSubcategoryNotFound
		}

		return catalog.Product{}, err
	}
	return p, nil
}

func insertVariants(ctx context.Context, tx pgx.Tx, productID int64, variants []catalog.Variant) error {
	for i := range variants {
		v := &variants[i]
		v.ProductID = productID

		err := tx.QueryRow(ctx,
			`INSERT INTO product_variants (product_id, sku, price, cost_price, stock)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			v.ProductID, v.SKU, v.Price, v.CostPrice, v.Stock,
		).Scan(&v.ID)
		if err != nil {
			return err
		}

		for j := range v.Combinations {
			c := &v.Combinations[j]
			c.VariantID = v.ID

			err = tx.QueryRow(ctx,
				`INSERT INTO variant_combinations (variant_id, attribute_value_id)
				 VALUES ($1, $2)
				 RETURNING id`,
				c.VariantID, c.AttributeValueID,
			).Scan(&c.ID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *ProductsRepo) List(ctx context.Context, filter catalog.ListProductsFilter) ([]catalog.Product, int64, error) {
	baseQuery := `SELECT id,
		subcategory_id,
		name,
		slug,
		description,
		base_price,
		image_urls,
		created_at,
		updated_at,
		COUNT(*) OVER() AS total
	FROM products
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.SubcategoryID != nil {
		conds = append(conds, fmt.Sprintf("subcategory_id = $%d", argsPosition))
		args = append(args, *filter.SubcategoryID)
		argsPosition++
	}

	if filter.Query != nil {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Query+"%")
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	var out []catalog.Product
	var total int64

	err := r.observe("products.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]catalog.Product, 0, filter.Limit)
		for rows.Next() {
			var p catalog.Product
			var t int64

			err = rows.Scan(&p.ID, &p.SubcategoryID, &p.Name, &p.Slug, &p.Description, &p.BasePrice, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt, &t)
			if err != nil {
				return err
			}

			total = t
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ProductsRepo) GetByID(ctx context.Context, id int64) (catalog.Product, error) {
	var p catalog.Product

	err := r.observe("products.get_by_id", func() error {
		err := r.pool.QueryRow(ctx,
			`SELECT id, subcategory_id, name, slug, description, base_price, image_urls, created_at, updated_at
			 FROM products WHERE id = $1`,
			id,
		).Scan(&p.ID, &p.SubcategoryID, &p.Name, &p.Slug, &p.Description, &p.BasePrice, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return err
		}

		p.Variants, err = r.variantsFor(ctx, p.ID)
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}

		return catalog.Product{}, err
	}
	return p, nil
}

// Update rewrites the product row and replaces its variants wholesale.
func (r *ProductsRepo) Update(ctx context.Context, id int64, req catalog.UpdateProductRequest) (catalog.Product, error) {
	fresh := catalog.NewProductFromCreateRequest(catalog.CreateProductRequest{
		SubcategoryID: req.SubcategoryID,
		Name:          req.Name,
		Description:   req.Description,
		BasePrice:     req.BasePrice,
		Variants:      req.Variants,
	})

	var p catalog.Product

	err := r.observe("products.update", func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`UPDATE products
				SET subcategory_id = $2,
						name = $3,
						slug = $4,
						description = $5,
						base_price = $6,
						updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, subcategory_id, name, slug, description, base_price, image_urls, created_at, updated_at`,
			id, fresh.SubcategoryID, fresh.Name, fresh.Slug, fresh.Description, fresh.BasePrice,
		).Scan(&p.ID, &p.SubcategoryID, &p.Name, &p.Slug, &p.Description, &p.BasePrice, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return err
		}

		if _, err = tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
			return err
		}

		p.Variants = fresh.Variants
		if err = insertVariants(ctx, tx, id, p.Variants); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		if IsUniqueViolation(err) {
			return catalog.Product{}, catalog.ErrDuplicateSlug
		}
		if IsForeignKeyViolation(err) {
			return catalog.Product{}, catalog.ErrSubcategoryNotFound
		}

		return catalog.Product{}, err
	}
	return p, nil
}

func (r *ProductsRepo) AddImageURL(ctx context.Context, id int64, url string) error {
	var affected int64

	err := r.observe("products.add_image_url", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE products SET image_urls = array_append(image_urls, $2), updated_at = NOW() WHERE id = $1`,
			id, url,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepo) Delete(ctx context.Context, id int64) (catalog.Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return catalog.Product{}, err
	}

	err = r.observe("products.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// UpdateVariantStock is used by the background resync job.
func (r *ProductsRepo) UpdateVariantStock(ctx context.Context, variantID int64, stock int) error {
	var affected int64

	err := r.observe("products.update_variant_stock", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE product_variants SET stock = $2 WHERE id = $1`,
			variantID, stock,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepo) variantsFor(ctx context.Context, productID int64) ([]catalog.Variant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, sku, price, cost_price, stock FROM product_variants WHERE product_id = $1 ORDER BY id ASC`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := make([]catalog.Variant, 0)
	for rows.Next() {
		var v catalog.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.CostPrice, &v.Stock); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range variants {
		combos, err := r.combinationsFor(ctx, variants[i].ID)
		if err != nil {
			return nil, err
		}
		variants[i].Combinations = combos
	}
	return variants, nil
}

func (r *ProductsRepo) combinationsFor(ctx context.Context, variantID int64) ([]catalog.VariantCombination, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, variant_id, attribute_value_id FROM variant_combinations WHERE variant_id = $1 ORDER BY id ASC`,
		variantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	combos := make([]catalog.VariantCombination, 0)
	for rows.Next() {
		var c catalog.VariantCombination
		if err := rows.Scan(&c.ID, &c.VariantID, &c.AttributeValueID); err != nil {
			return nil, err
		}
		combos = append(combos, c)
	}
	return combos, rows.Err()
}
