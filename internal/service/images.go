// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/chezflo/chezflo-api/internal/store"
)

// ImageInput carries carousel and grid image fields. Nil fields keep
// their current value on update. Height and Width apply to grid images.
type ImageInput struct {
	URL      *string
	Position *int64
	Height   *int64
	Width    *int64
}

func (in ImageInput) validate(create bool) error {
	fields := map[string]string{}
	switch {
	case in.URL == nil && create:
		fields["url"] = "is required"
	case in.URL != nil && strings.TrimSpace(*in.URL) == "":
		fields["url"] = "must not be empty"
	}
	for name, v := range map[string]*int64{"position": in.Position, "height": in.Height, "width": in.Width} {
		if v != nil && *v < 0 {
			fields[name] = "must not be negative"
		}
	}
	if len(fields) > 0 {
		return newValidationError("invalid image", fields)
	}
	return nil
}

func (s *ContentService) requireContent(ctx context.Context, q *store.Queries, contentID int64) error {
	exists, err := q.ContentExists(ctx, contentID)
	if err != nil {
		return storageError("loading content", err)
	}
	if !exists {
		return ErrContentNotFound
	}
	return nil
}

// ListCarousel returns the carousel of a content unit ordered by position.
func (s *ContentService) ListCarousel(ctx context.Context, contentID int64) ([]store.CarouselImage, error) {
	if err := s.requireContent(ctx, s.queries, contentID); err != nil {
		return nil, err
	}
	items, err := s.queries.ListCarouselImages(ctx, contentID)
	if err != nil {
		return nil, storageError("listing carousel", err)
	}
	return items, nil
}

// AddCarousel appends an image to the carousel. Without a position the
// image goes last.
func (s *ContentService) AddCarousel(ctx context.Context, contentID int64, in ImageInput) (store.CarouselImage, error) {
	if err := in.validate(true); err != nil {
		return store.CarouselImage{}, err
	}
	var created store.CarouselImage
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		if err := s.requireContent(ctx, q, contentID); err != nil {
			return err
		}
		var position int64
		if in.Position != nil {
			position = *in.Position
		} else {
			items, err := q.ListCarouselImages(ctx, contentID)
			if err != nil {
				return storageError("listing carousel", err)
			}
			position = int64(len(items)) + 1
		}
		var err error
		created, err = q.CreateCarouselImage(ctx, store.CreateCarouselImageParams{
			ContentID: contentID,
			URL:       strings.TrimSpace(*in.URL),
			Position:  position,
		})
		if err != nil {
			return storageError("creating carousel image", err)
		}
		return nil
	})
	return created, err
}

// UpdateCarousel changes a carousel image.
func (s *ContentService) UpdateCarousel(ctx context.Context, contentID, id int64, in ImageInput) (store.CarouselImage, error) {
	if err := in.validate(false); err != nil {
		return store.CarouselImage{}, err
	}
	var updated store.CarouselImage
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		cur, err := q.GetCarouselImage(ctx, contentID, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrImageNotFound
		}
		if err != nil {
			return storageError("loading carousel image", err)
		}
		if in.URL != nil {
			cur.URL = strings.TrimSpace(*in.URL)
		}
		if in.Position != nil {
			cur.Position = *in.Position
		}
		updated, err = q.UpdateCarouselImage(ctx, store.UpdateCarouselImageParams{
			ID:        cur.ID,
			ContentID: contentID,
			URL:       cur.URL,
			Position:  cur.Position,
		})
		if err != nil {
			return storageError("updating carousel image", err)
		}
		return nil
	})
	return updated, err
}

// DeleteCarousel removes a carousel image.
func (s *ContentService) DeleteCarousel(ctx context.Context, contentID, id int64) error {
	n, err := s.queries.DeleteCarouselImage(ctx, contentID, id)
	if err != nil {
		return storageError("deleting carousel image", err)
	}
	if n == 0 {
		return ErrImageNotFound
	}
	return nil
}

// ListGrid returns the image grid of a content unit ordered by position.
func (s *ContentService) ListGrid(ctx context.Context, contentID int64) ([]store.GridImage, error) {
	if err := s.requireContent(ctx, s.queries, contentID); err != nil {
		return nil, err
	}
	items, err := s.queries.ListGridImages(ctx, contentID)
	if err != nil {
		return nil, storageError("listing grid", err)
	}
	return items, nil
}

// AddGrid appends an image to the grid.
func (s *ContentService) AddGrid(ctx context.Context, contentID int64, in ImageInput) (store.GridImage, error) {
	if err := in.validate(true); err != nil {
		return store.GridImage{}, err
	}
	var created store.GridImage
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		if err := s.requireContent(ctx, q, contentID); err != nil {
			return err
		}
		params := store.CreateGridImageParams{
			ContentID: contentID,
			URL:       strings.TrimSpace(*in.URL),
		}
		if in.Position != nil {
			params.Position = *in.Position
		} else {
			items, err := q.ListGridImages(ctx, contentID)
			if err != nil {
				return storageError("listing grid", err)
			}
			params.Position = int64(len(items)) + 1
		}
		if in.Height != nil {
			params.Height = *in.Height
		}
		if in.Width != nil {
			params.Width = *in.Width
		}
		var err error
		created, err = q.CreateGridImage(ctx, params)
		if err != nil {
			return storageError("creating grid image", err)
		}
		return nil
	})
	return created, err
}

// UpdateGrid changes a grid image.
func (s *ContentService) UpdateGrid(ctx context.Context, contentID, id int64, in ImageInput) (store.GridImage, error) {
	if err := in.validate(false); err != nil {
		return store.GridImage{}, err
	}
	var updated store.GridImage
	err := store.InTx(ctx, s.db, func(q *store.Queries, _ *sql.Tx) error {
		cur, err := q.GetGridImage(ctx, contentID, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrImageNotFound
		}
		if err != nil {
			return storageError("loading grid image", err)
		}
		params := store.UpdateGridImageParams{
			ID:        cur.ID,
			ContentID: contentID,
			URL:       cur.URL,
			Position:  cur.Position,
			Height:    cur.Height,
			Width:     cur.Width,
		}
		if in.URL != nil {
			params.URL = strings.TrimSpace(*in.URL)
		}
		if in.Position != nil {
			params.Position = *in.Position
		}
		if in.Height != nil {
			params.Height = *in.Height
		}
		if in.Width != nil {
			params.Width = *in.Width
		}
		updated, err = q.UpdateGridImage(ctx, params)
		if err != nil {
			return storageError("updating grid image", err)
		}
		return nil
	})
	return updated, err
}

// DeleteGrid removes a grid image.
func (s *ContentService) DeleteGrid(ctx context.Context, contentID, id int64) error {
	n, err := s.queries.DeleteGridImage(ctx, contentID, id)
	if err != nil {
		return storageError("deleting grid image", err)
	}
	if n == 0 {
		return ErrImageNotFound
	}
	return nil
}
