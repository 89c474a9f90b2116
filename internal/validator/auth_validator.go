package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"storefront/internal/repository"
	"storefront/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")
)

const (
	passwordMinLen = 8
	// bcryptは72byteを超えると切り捨てる
	passwordMaxLen = 72
	referralLen    = 8
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	referralRe = regexp.MustCompile(`^[0-9A-Fa-f]+$`)
)

type authValidator struct {
	users repository.UserRepository
}

func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// 会員登録
func (v *authValidator) ValidateRegister(ctx context.Context, req usecase.AuthRegisterRequest) error {
	email := normalizeEmail(req.Email)
	if !isEmailLike(email) || !isPasswordOK(req.Password) {
		return ErrInvalidInput
	}

	// 紹介コードは任意。形式だけここで見る（存在確認はusecase）
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		if len(code) != referralLen || !referralRe.MatchString(code) {
			return ErrInvalidInput
		}
	}

	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return ErrEmailAlreadyUsed
	}
	return nil
}

func (v *authValidator) ValidateLogin(ctx context.Context, req usecase.AuthLoginRequest) error {
	if !isEmailLike(normalizeEmail(req.Email)) || req.Password == "" {
		return ErrInvalidInput
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isEmailLike(s string) bool {
	return s != "" && emailRe.MatchString(s)
}

// 8〜72byte、英字と数字を両方含む
func isPasswordOK(p string) bool {
	if len(p) < passwordMinLen || len(p) > passwordMaxLen {
		return false
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
