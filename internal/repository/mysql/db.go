package mysql

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"acta_diurna/internal/pkg"
)

// InitDB 打开数据库并返回句柄。句柄由调用方持有并注入各仓储，
// 不放包级全局变量，避免各处隐式取连接。
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// wrapStoreErr 把底层存储错误归类：唯一约束冲突在业务上已经提前检查过，
// 真撞上了说明不变量被破坏，按 Fatal 上抛；其余按 Transient 处理。
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", pkg.ErrFatal, err)
	}
	return fmt.Errorf("%w: %v", pkg.ErrTransient, err)
}
