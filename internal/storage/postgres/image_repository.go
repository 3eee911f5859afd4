package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type imageRepository struct {
	q dbtx
}

func (r *imageRepository) Create(ctx context.Context, image domain.Image) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO images (id, content, created_at, updated_at) VALUES ($1,$2,$3,$4)
	`, image.ID, image.Content, image.CreatedAt, image.UpdatedAt); err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

func (r *imageRepository) Get(ctx context.Context, id string) (domain.Image, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var image domain.Image
	err := r.q.QueryRowContext(ctx, `
		SELECT id, content, created_at, updated_at FROM images WHERE id = $1
	`, id).Scan(&image.ID, &image.Content, &image.CreatedAt, &image.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Image{}, domain.ErrImageNotFound
		}
		return domain.Image{}, fmt.Errorf("select image: %w", err)
	}
	return image, nil
}

func (r *imageRepository) Update(ctx context.Context, image domain.Image) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `
		UPDATE images SET content = $2, updated_at = $3 WHERE id = $1
	`, image.ID, image.Content, image.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	return expectAffected(res, domain.ErrImageNotFound)
}

func (r *imageRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return expectAffected(res, domain.ErrImageNotFound)
}

var _ domain.ImageRepository = (*imageRepository)(nil)
