package infrastructure

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stockyard/internal/service/inventory/domain"
)

// 惰性建行的并发败者以重复键或死锁收场，这两种错误可重试；
// 领域错误和其他数据库错误不可重试，否则会掩盖真实失败。
func TestIsInsertRace(t *testing.T) {
	require.True(t, isInsertRace(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	require.True(t, isInsertRace(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
	require.True(t, isInsertRace(gorm.ErrDuplicatedKey))

	// 包装后仍可识别
	wrapped := errors.Wrap(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, "create")
	require.True(t, isInsertRace(wrapped))

	require.False(t, isInsertRace(domain.ErrInsufficientStock))
	require.False(t, isInsertRace(gorm.ErrInvalidTransaction))
	require.False(t, isInsertRace(&mysql.MySQLError{Number: 1045, Message: "Access denied"}))
}
