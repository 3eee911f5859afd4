package domain

import "time"

// MaxImageContentSize — предельный размер base64-содержимого изображения в байтах.
const MaxImageContentSize = 4194304

// Image хранит изображение товара в base64.
type Image struct {
	ID        string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет содержимое изображения.
func (i *Image) Validate() error {
	verr := &ValidationError{}
	switch {
	case i.Content == "":
		verr.add("content", ErrImageContentRequired)
	case len(i.Content) > MaxImageContentSize:
		verr.add("content", ErrImageContentTooLarge)
	}
	return verr.orNil()
}
