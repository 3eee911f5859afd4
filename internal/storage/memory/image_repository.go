package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type imageRepository struct {
	ex executor
}

func (r *imageRepository) Create(ctx context.Context, image domain.Image) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		if _, exists := d.images[image.ID]; exists {
			return fmt.Errorf("image %s already exists", image.ID)
		}
		d.images[image.ID] = image
		j.record(func() { delete(d.images, image.ID) })
		return nil
	})
}

func (r *imageRepository) Get(ctx context.Context, id string) (domain.Image, error) {
	var out domain.Image
	err := r.ex.view(ctx, func(d *dataset) error {
		image, ok := d.images[id]
		if !ok {
			return domain.ErrImageNotFound
		}
		out = image
		return nil
	})
	return out, err
}

func (r *imageRepository) Update(ctx context.Context, image domain.Image) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.images[image.ID]
		if !ok {
			return domain.ErrImageNotFound
		}
		d.images[image.ID] = image
		j.record(func() { d.images[image.ID] = current })
		return nil
	})
}

func (r *imageRepository) Delete(ctx context.Context, id string) error {
	return r.ex.exec(ctx, func(d *dataset, j *journal) error {
		current, ok := d.images[id]
		if !ok {
			return domain.ErrImageNotFound
		}
		delete(d.images, id)
		j.record(func() { d.images[id] = current })

		// Ссылка товара на удалённое изображение обнуляется.
		for productID, product := range d.products {
			if product.ImageID != id {
				continue
			}
			previous := product
			product.ImageID = ""
			d.products[productID] = product
			j.record(func() { d.products[productID] = previous })
		}
		return nil
	})
}

var _ domain.ImageRepository = (*imageRepository)(nil)
