package models

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bootstrapAdminUsername = "admin"

// ErrBootstrapPasswordRequired 空库且未提供初始密码
var ErrBootstrapPasswordRequired = errors.New("bootstrap admin password required")

// EnsureBootstrapAdmin 保证库中至少有一个超级管理员。
// 空库时按给定账号创建；已有管理员但无超级管理员时提升最早创建的一位。
// 返回值表示是否新建了账号。
func EnsureBootstrapAdmin(db *gorm.DB, username, password string) (bool, error) {
	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var supers int64
		if err := tx.Model(&Admin{}).Where("is_super = ?", true).Count(&supers).Error; err != nil {
			return err
		}
		if supers > 0 {
			return nil
		}

		var oldest Admin
		err := tx.Order("id ASC").Take(&oldest).Error
		if err == nil {
			return tx.Model(&oldest).Update("is_super", true).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if password == "" {
			return ErrBootstrapPasswordRequired
		}
		username = strings.TrimSpace(username)
		if username == "" {
			username = bootstrapAdminUsername
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		created = true
		return tx.Create(&Admin{Username: username, PasswordHash: string(hash), IsSuper: true}).Error
	})
	return created, err
}
