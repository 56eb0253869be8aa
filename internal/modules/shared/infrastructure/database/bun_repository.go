package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	_ "github.com/go-sql-driver/mysql"

	"stock-assistant-app/internal/config"
)

// RecognitionRecord 识别历史 BUN 模型
type RecognitionRecord struct {
	bun.BaseModel `bun:"table:recognition_records"`

	ID        string    `bun:"id,pk,type:varchar(36)"`
	Provider  string    `bun:"provider,notnull,type:varchar(20)"`
	Codes     []string  `bun:"codes,type:json"`
	Count     int       `bun:"count,notnull,default:0"`
	ImageHash string    `bun:"image_hash,notnull,type:varchar(64)"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// BunRecognitionRepository BUN 实现的识别历史仓储
type BunRecognitionRepository struct {
	db *bun.DB
}

// NewBunRecognitionRepository 创建新的 BunRecognitionRepository
func NewBunRecognitionRepository(cfg *config.MySQLConfig) (*BunRecognitionRepository, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := bun.NewDB(sqldb, mysqldialect.New())

	// 连接确认
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &BunRecognitionRepository{db: db}, nil
}

// Create 保存一条识别记录
func (r *BunRecognitionRepository) Create(ctx context.Context, record *RecognitionRecord) error {
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert recognition record: %w", err)
	}
	return nil
}

// FindRecent 按时间倒序查询最近的识别记录
func (r *BunRecognitionRepository) FindRecent(ctx context.Context, limit int) ([]RecognitionRecord, error) {
	var records []RecognitionRecord
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query recognition records: %w", err)
	}
	return records, nil
}

// Close 关闭数据库连接
func (r *BunRecognitionRepository) Close() error {
	return r.db.Close()
}
