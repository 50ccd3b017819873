package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/chronolens/chronolens/engine/domain"
)

// --- Persistence Models ---

type contentEntryModel struct {
	CacheKey     string         `gorm:"primaryKey;column:cache_key"`
	Narrative    string         `gorm:"column:narrative;type:text"`
	ImageBlobID  sql.NullString `gorm:"column:image_blob_id"`
	VideoBlobID  sql.NullString `gorm:"column:video_blob_id"`
	VideoOp      sql.NullString `gorm:"column:video_op"`
	CachedAt     time.Time      `gorm:"column:cached_at;not null"`
	ExpiresAt    time.Time      `gorm:"column:expires_at;not null;index"`
	LastAccessed time.Time      `gorm:"column:last_accessed;not null;index"`
	SizeBytes    int64          `gorm:"column:size_bytes;default:0"`
	Version      int            `gorm:"column:version;default:1"`
}

func (contentEntryModel) TableName() string { return "content_entries" }

// contentBlobModel keeps media payloads in their own namespace, addressed
// by their own id, so they can be evicted independently of the narrative
// they accompany.
type contentBlobModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	CacheKey  string    `gorm:"column:cache_key;not null;index"`
	Kind      string    `gorm:"column:kind;not null"` // image | video | thumbnail
	MIME      string    `gorm:"column:mime"`
	Data      []byte    `gorm:"column:data;type:blob"`
	SizeBytes int64     `gorm:"column:size_bytes;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (contentBlobModel) TableName() string { return "content_blobs" }

type dailyCostModel struct {
	Date      string  `gorm:"primaryKey;column:date"`
	TextCost  float64 `gorm:"column:text_cost;default:0"`
	ImageCost float64 `gorm:"column:image_cost;default:0"`
	VideoCost float64 `gorm:"column:video_cost;default:0"`
	TotalCost float64 `gorm:"column:total_cost;default:0"`
	APICalls  int64   `gorm:"column:api_calls;default:0"`
	CacheHits int64   `gorm:"column:cache_hits;default:0"`
}

func (dailyCostModel) TableName() string { return "daily_costs" }

// --- Repository Implementation ---

// GormContentStore persists content entries, blobs and the cost ledger via
// gorm (sqlite by default, postgres optional).
type GormContentStore struct {
	db *gorm.DB
	// ThumbnailFn, when set, derives a preview blob stored alongside image
	// payloads. Its size is folded into the entry's size_bytes so eviction
	// accounting covers the whole blob namespace. A nil result skips the
	// thumbnail.
	ThumbnailFn func(data []byte) []byte
}

func NewGormContentStore(db *gorm.DB) *GormContentStore {
	return &GormContentStore{db: db}
}

// Init migrates the store's tables.
func (r *GormContentStore) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&contentEntryModel{},
		&contentBlobModel{},
		&dailyCostModel{},
	)
}

func (r *GormContentStore) Get(ctx context.Context, key string) (*domain.Entry, error) {
	var m contentEntryModel
	err := r.db.WithContext(ctx).First(&m, "cache_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StorageError("store.get", err)
	}

	entry := &domain.Entry{
		Content: domain.Content{
			Narrative:      m.Narrative,
			VideoOperation: m.VideoOp.String,
		},
		Meta: metaFromModel(m),
	}

	if m.ImageBlobID.Valid {
		if data, err := r.blobData(ctx, m.ImageBlobID.String); err == nil {
			entry.Content.Image = data
		}
	}
	if m.VideoBlobID.Valid {
		if data, err := r.blobData(ctx, m.VideoBlobID.String); err == nil {
			entry.Content.Video = data
		}
	}

	return entry, nil
}

func (r *GormContentStore) Put(ctx context.Context, key string, entry *domain.Entry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replace semantics: prior blobs under this key go away with the entry.
		if err := tx.Delete(&contentBlobModel{}, "cache_key = ?", key).Error; err != nil {
			return err
		}

		m := contentEntryModel{
			CacheKey:     key,
			Narrative:    entry.Content.Narrative,
			CachedAt:     entry.Meta.CachedAt,
			ExpiresAt:    entry.Meta.ExpiresAt,
			LastAccessed: entry.Meta.LastAccessed,
			SizeBytes:    entry.Meta.SizeBytes,
			Version:      entry.Meta.Version,
		}
		if entry.Content.VideoOperation != "" {
			m.VideoOp = sql.NullString{String: entry.Content.VideoOperation, Valid: true}
		}

		if len(entry.Content.Image) > 0 {
			id, err := r.saveBlob(tx, key, "image", entry.Content.Image)
			if err != nil {
				return err
			}
			m.ImageBlobID = sql.NullString{String: id, Valid: true}

			if r.ThumbnailFn != nil {
				if thumb := r.ThumbnailFn(entry.Content.Image); len(thumb) > 0 {
					if _, err := r.saveBlob(tx, key, "thumbnail", thumb); err != nil {
						return err
					}
					// The thumbnail counts against the storage ceiling
					// through the entry it belongs to.
					m.SizeBytes += int64(len(thumb))
				}
			}
		}
		if len(entry.Content.Video) > 0 {
			id, err := r.saveBlob(tx, key, "video", entry.Content.Video)
			if err != nil {
				return err
			}
			m.VideoBlobID = sql.NullString{String: id, Valid: true}
		}

		return tx.Save(&m).Error
	})
	if err != nil {
		return domain.StorageError("store.put", err)
	}
	return nil
}

func (r *GormContentStore) Delete(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&contentBlobModel{}, "cache_key = ?", key).Error; err != nil {
			return err
		}
		return tx.Delete(&contentEntryModel{}, "cache_key = ?", key).Error
	})
	if err != nil {
		return domain.StorageError("store.delete", err)
	}
	return nil
}

func (r *GormContentStore) ListMetadata(ctx context.Context) ([]domain.CacheMetadata, error) {
	var models []contentEntryModel
	err := r.db.WithContext(ctx).
		Select("cache_key", "cached_at", "expires_at", "last_accessed", "size_bytes", "version").
		Find(&models).Error
	if err != nil {
		return nil, domain.StorageError("store.list", err)
	}

	out := make([]domain.CacheMetadata, 0, len(models))
	for _, m := range models {
		out = append(out, metaFromModel(m))
	}
	return out, nil
}

func (r *GormContentStore) TotalSize(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&contentEntryModel{}).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, domain.StorageError("store.total_size", err)
	}
	return total.Int64, nil
}

func (r *GormContentStore) Touch(ctx context.Context, key string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&contentEntryModel{}).
		Where("cache_key = ? AND last_accessed < ?", key, at).
		Update("last_accessed", at).Error
	if err != nil {
		return domain.StorageError("store.touch", err)
	}
	return nil
}

func (r *GormContentStore) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&contentBlobModel{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&contentEntryModel{}).Error
	})
	if err != nil {
		return domain.StorageError("store.clear", err)
	}
	return nil
}

func (r *GormContentStore) GetDailyCost(ctx context.Context, date string) (*domain.DailyCostRecord, error) {
	var m dailyCostModel
	err := r.db.WithContext(ctx).First(&m, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StorageError("store.get_daily_cost", err)
	}
	return &domain.DailyCostRecord{
		Date:      m.Date,
		TextCost:  m.TextCost,
		ImageCost: m.ImageCost,
		VideoCost: m.VideoCost,
		TotalCost: m.TotalCost,
		APICalls:  m.APICalls,
		CacheHits: m.CacheHits,
	}, nil
}

func (r *GormContentStore) PutDailyCost(ctx context.Context, rec *domain.DailyCostRecord) error {
	m := dailyCostModel{
		Date:      rec.Date,
		TextCost:  rec.TextCost,
		ImageCost: rec.ImageCost,
		VideoCost: rec.VideoCost,
		TotalCost: rec.TotalCost,
		APICalls:  rec.APICalls,
		CacheHits: rec.CacheHits,
	}
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return domain.StorageError("store.put_daily_cost", err)
	}
	return nil
}

// Thumbnail returns the preview blob stored for key, or nil.
func (r *GormContentStore) Thumbnail(ctx context.Context, key string) ([]byte, error) {
	var m contentBlobModel
	err := r.db.WithContext(ctx).
		First(&m, "cache_key = ? AND kind = ?", key, "thumbnail").Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StorageError("store.thumbnail", err)
	}
	return m.Data, nil
}

func (r *GormContentStore) saveBlob(tx *gorm.DB, key, kind string, data []byte) (string, error) {
	blob := contentBlobModel{
		ID:        uuid.NewString(),
		CacheKey:  key,
		Kind:      kind,
		Data:      data,
		SizeBytes: int64(len(data)),
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&blob).Error; err != nil {
		return "", err
	}
	return blob.ID, nil
}

func (r *GormContentStore) blobData(ctx context.Context, id string) ([]byte, error) {
	var m contentBlobModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return m.Data, nil
}

func metaFromModel(m contentEntryModel) domain.CacheMetadata {
	return domain.CacheMetadata{
		CacheKey:     m.CacheKey,
		CachedAt:     m.CachedAt,
		ExpiresAt:    m.ExpiresAt,
		LastAccessed: m.LastAccessed,
		SizeBytes:    m.SizeBytes,
		Version:      m.Version,
	}
}
