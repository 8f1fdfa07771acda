package repository

import (
	"errors"

	"gorm.io/gorm"
)

// paginate 分页 scope，pageSize 非正时返回全部
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// takeOne 取单行，未命中返回 nil, nil
func takeOne[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	err := query.Take(&row, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
