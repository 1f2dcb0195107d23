package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config 定義 MySQL 連線配置
type Config struct {
	Host     string // 主機地址
	Port     int    // 連接埠
	User     string // 使用者
	Password string // 密碼
	DBName   string // 資料庫名稱
}

// Client 封裝 gorm.DB 以提供統一的連線生命週期管理
type Client struct {
	db *gorm.DB
}

// NewClient 建立並回傳一個新的 MySQL 客戶端實例
//
// 參數:
//
//	cfg: Config - MySQL 連線配置資訊
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端實例
//	error: 若連線失敗則回傳錯誤
func NewClient(cfg Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	// TranslateError: 讓 duplicate key 等驅動錯誤轉為 gorm 的語意化錯誤
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	return &Client{db: db}, nil
}

// DB 回傳底層的 gorm.DB
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉 MySQL 連線
//
// 回傳值:
//
//	error: 若關閉失敗則回傳錯誤
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
