package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/closai/internal/sizing"
)

var (
	// ErrUnreadable means the backend failed to load; it never stands for an empty wardrobe.
	ErrUnreadable = errors.New("wardrobe store is unreadable")
	// ErrUnwritable means a mutation could not be persisted.
	ErrUnwritable       = errors.New("wardrobe store is unwritable")
	ErrInvalidItem      = errors.New("invalid wardrobe item")
	ErrInvalidFitStatus = errors.New("invalid fit status")
)

// Backend persists the whole wardrobe snapshot.
type Backend interface {
	// Load returns nil and no error when nothing was stored yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
}

// Store implements the wardrobe operations on top of a Backend. Every
// mutation reads the full snapshot, modifies it and writes it back before
// returning the result. The mutex only serialises writers of this process.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

// NewStore creates a Store. A nil logger disables logging.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the current wardrobe.
func (s *Store) Get(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// AddItem saves a new garment. A garment already in the wardrobe is left untouched.
func (s *Store) AddItem(ctx context.Context, candidate Item) (*Snapshot, error) {
	goodsNo := strings.TrimSpace(candidate.GoodsNo)
	if goodsNo == "" {
		return nil, fmt.Errorf("%w: goods number is required", ErrInvalidItem)
	}

	return s.mutate(ctx, func(snap *Snapshot) bool {
		if snap.Find(goodsNo) != -1 {
			s.logger.Debug("item already in wardrobe", zap.String("goods_no", goodsNo))
			return false
		}

		item := candidate
		item.GoodsNo = goodsNo
		item.AddedAt = s.now().UTC()
		item.FitStatus = FitUnset
		item.SelectedSize = ""
		item.Category1 = item.Category1.OrOther()

		if err := item.SizeTable.Validate(); err != nil {
			s.logger.Warn("saving item with malformed size table",
				zap.String("goods_no", goodsNo),
				zap.Error(err),
			)
		}

		snap.Items = append(snap.Items, item)
		s.logger.Info("item added to wardrobe",
			zap.String("goods_no", goodsNo),
			zap.String("category", string(item.Category1)),
		)
		return true
	})
}

// UpdateFit records the fit verdict and the size worn. Unknown garments are ignored.
func (s *Store) UpdateFit(ctx context.Context, goodsNo string, status FitStatus, size string) (*Snapshot, error) {
	status, err := ParseFitStatus(string(status))
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, func(snap *Snapshot) bool {
		idx := snap.Find(goodsNo)
		if idx == -1 {
			s.logger.Debug("fit update for unknown item ignored", zap.String("goods_no", goodsNo))
			return false
		}

		item := &snap.Items[idx]
		if size != "" && item.SizeTable != nil {
			if _, ok := item.SizeTable.Row(size); !ok {
				s.logger.Warn("selected size is not in the size table; it will not count towards the profile",
					zap.String("goods_no", goodsNo),
					zap.String("size", size),
					zap.Strings("sizes", item.SizeTable.RowNames()),
				)
			}
		}

		item.FitStatus = status
		item.SelectedSize = size
		return true
	})
}

// DeleteItem removes a garment. Unknown garments are ignored.
func (s *Store) DeleteItem(ctx context.Context, goodsNo string) (*Snapshot, error) {
	return s.mutate(ctx, func(snap *Snapshot) bool {
		items := make([]Item, 0, len(snap.Items))
		for _, item := range snap.Items {
			if item.GoodsNo != goodsNo {
				items = append(items, item)
			}
		}
		snap.Items = items
		return true
	})
}

// UpdateStats overwrites the user's body measurements.
func (s *Store) UpdateStats(ctx context.Context, height, weight string) (*Snapshot, error) {
	return s.mutate(ctx, func(snap *Snapshot) bool {
		snap.UserStats = UserStats{
			Height: strings.TrimSpace(height),
			Weight: strings.TrimSpace(weight),
		}
		return true
	})
}

// IdealSize computes the category profile of the current wardrobe.
func (s *Store) IdealSize(ctx context.Context) (*Snapshot, sizing.Profile, error) {
	snap, err := s.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap, sizing.ComputeIdealSize(snap.Items), nil
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if snap == nil {
		return Empty(), nil
	}
	return snap.normalize(), nil
}

// mutate applies fn to a copy of the stored snapshot and saves it when fn reports a change.
func (s *Store) mutate(ctx context.Context, fn func(*Snapshot) bool) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	next := current.clone()
	if !fn(next) {
		return current, nil
	}

	if err := s.backend.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnwritable, err)
	}
	return next, nil
}
