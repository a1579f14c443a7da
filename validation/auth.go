package validation

import "strings"

// CodeLength is the number of digits in an emailed sign-in code.
const CodeLength = 8

var authMessages = map[string]string{
	"name":     "Name must be at least 3 characters long",
	"email":    "Invalid email address",
	"password": "Password must be at least 8 characters long",
	"code":     "Code must be 8 digits long",
}

type signUpRules struct {
	Name     string `json:"name" validate:"min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

type signInRules struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

type emailRules struct {
	Email string `json:"email" validate:"required,email"`
}

type codeRules struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"len=8,numeric"`
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp validates the password sign-up form.
func SignUp(name, email, password string) error {
	return firstError(signUpRules{
		Name:     strings.TrimSpace(name),
		Email:    NormalizeEmail(email),
		Password: password,
	}, authMessages)
}

// SignIn validates the password sign-in form.
func SignIn(email, password string) error {
	return firstError(signInRules{
		Email:    NormalizeEmail(email),
		Password: password,
	}, authMessages)
}

// Email validates the request-a-code form.
func Email(email string) error {
	return firstError(emailRules{Email: NormalizeEmail(email)}, authMessages)
}

// Code validates the verify-code form.
func Code(email, code string) error {
	return firstError(codeRules{
		Email: NormalizeEmail(email),
		Code:  strings.TrimSpace(code),
	}, authMessages)
}
