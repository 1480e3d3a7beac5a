// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"malnutrition_backend/internal/feature/auth/domain/entity"
)

const (
	// defaultRole は新規ユーザーに付与されるロールです。
	defaultRole = "user"

	// maxSuggestionAttempts はランダム3桁サフィックスでの代替ユーザー名探索の上限回数です。
	// 超過した場合はUUID由来のサフィックスにフォールバックして終了を保証します。
	maxSuggestionAttempts = 10
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// ユニーク制約違反はErrEmailAlreadyRegistered / ErrUsernameTakenに変換して返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// ExistsByEmail は指定されたメールアドレスのユーザーが存在するかを返します。
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername は指定されたユーザー名のユーザーが存在するかを返します。
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users UserRepository
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository) *authUsecase {
	return &authUsecase{users: users}
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、作成されたレコードを返します。
// 重複チェックは挿入前に行いますが、最終的な判定はストアのユニーク制約です。
// 同時リクエストで制約違反になった場合も同じ重複エラーに変換されます。
func (u *authUsecase) Signup(ctx context.Context, username, email, password string) (*entity.User, error) {
	exists, err := u.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyRegistered
	}

	exists, err = u.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, u.usernameTaken(ctx, username)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashed),
		IsActive:       true,
		Role:           defaultRole,
	}
	if err := u.users.Create(ctx, user); err != nil {
		// 事前チェックと挿入の間で別のリクエストに先を越されたケース
		if errors.Is(err, ErrUsernameTaken) {
			return nil, u.usernameTaken(ctx, username)
		}
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時にユーザーレコードを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// ユーザー未検出時もbcrypt.CompareHashAndPasswordが常に呼ばれることを保証するダミーハッシュ
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if err == nil {
		passwordHash = user.HashedPassword
	}

	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出とパスワード不一致は呼び出し側から区別できない同一エラーにします
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// usernameTaken は代替ユーザー名の提案付きの重複エラーを生成します。
func (u *authUsecase) usernameTaken(ctx context.Context, username string) error {
	return &UsernameTakenError{
		Username:   username,
		Suggestion: u.suggestUsername(ctx, username),
	}
}

// suggestUsername は空いているユーザー名をランダム3桁サフィックスで探索します。
// 上限回数まで衝突が続いた場合はUUID先頭8文字のサフィックスにフォールバックします。
func (u *authUsecase) suggestUsername(ctx context.Context, base string) string {
	for i := 0; i < maxSuggestionAttempts; i++ {
		candidate := fmt.Sprintf("%s%03d", base, rand.Intn(1000))
		taken, err := u.users.ExistsByUsername(ctx, candidate)
		if err == nil && !taken {
			return candidate
		}
	}
	return base + uuid.NewString()[:8]
}
