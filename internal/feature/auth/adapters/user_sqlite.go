// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"malnutrition_backend/internal/feature/auth/domain/entity"
	"malnutrition_backend/internal/feature/auth/usecase"
)

// userSQLite はUserRepositoryインターフェースのSQLite実装です。
// GORMを使用してデータベース操作を行います。
type userSQLite struct {
	db *gorm.DB
}

// userSQLiteがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userSQLite)(nil)

// NewUserSQLite は指定されたgorm.DB接続でuserSQLiteの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserSQLite(db *gorm.DB) *userSQLite {
	return &userSQLite{db: db}
}

// Create はユーザーをデータベースに追加します。
// ユニーク制約が最終的な判定者であり、違反はどの列かに応じて
// usecase.ErrEmailAlreadyRegistered / usecase.ErrUsernameTakenに変換されます。
func (r *userSQLite) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return fmt.Errorf("user must not be nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			// メッセージ例: "UNIQUE constraint failed: users.username"
			if strings.Contains(sqliteErr.Error(), "users.username") {
				return usecase.ErrUsernameTaken
			}
			return usecase.ErrEmailAlreadyRegistered
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userSQLite) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ExistsByEmail はメールアドレスが登録済みかを返します。
func (r *userSQLite) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

// ExistsByUsername はユーザー名が登録済みかを返します。
func (r *userSQLite) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *userSQLite) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
