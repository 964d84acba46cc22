package mail

import (
	"errors"
	"strings"

	emailverifier "github.com/AfterShip/email-verifier"
)

var ErrInvalidAddress = errors.New("email address syntax is invalid")

type Verifier struct {
	verifier *emailverifier.Verifier
}

// NewVerifier 只做语法校验，不连接对方的 SMTP 服务器
func NewVerifier() *Verifier {
	return &Verifier{
		verifier: emailverifier.NewVerifier().DisableCatchAllCheck(),
	}
}

// VerifierEmail 返回规范化（小写、去空格）后的地址
func (v *Verifier) VerifierEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ret := v.verifier.ParseAddress(email)
	if !ret.Valid {
		return "", ErrInvalidAddress
	}
	return email, nil
}
