package jwt

import (
	"errors"
	"time"

	"cryptosignals/conf"

	"github.com/golang-jwt/jwt/v4"
)

// CustomClaims 只携带会话标识，等级和角色以服务端会话为准
type CustomClaims struct {
	UserId    int64  `json:"user_id"`
	SessionId string `json:"sid"`
	jwt.RegisteredClaims
}

func BuildClaims(exp time.Time, uid int64, sid string) *CustomClaims {
	return &CustomClaims{
		UserId:    uid,
		SessionId: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    conf.AppConfig.AppName,
		},
	}
}

func GenToken(c *CustomClaims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	ss, err := token.SignedString([]byte(secretKey))
	return ss, err
}

// 解析jwt token
func ParseToken(jwtStr, secretKey string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(jwtStr, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.SessionId == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
