package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// 結帳表單驗證
// 手機格式: 本地門號，61/62/65/66 開頭加七碼
var (
	phoneRegex = regexp.MustCompile(`^(61|62|65|66)[0-9]{7}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidationError 帶欄位名，前端要知道哪一欄錯
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return &ValidationError{Field: "phone", Message: "phone is required"}
	}
	if !phoneRegex.MatchString(phone) {
		return &ValidationError{Field: "phone", Message: "invalid phone format, expect 61/62/65/66 + 7 digits"}
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	return nil
}
