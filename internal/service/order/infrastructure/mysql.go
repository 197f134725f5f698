// internal/service/order/infrastructure/mysql.go
package infrastructure

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMysqlDB 打开 MySQL 连接并确保订单表存在。
func NewMysqlDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&OrderModel{}, &OrderLineModel{}); err != nil {
		return nil, err
	}
	return db, nil
}
