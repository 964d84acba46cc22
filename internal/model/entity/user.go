package entity

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/plugin/soft_delete"
)

// UserMetadata 注册时提交的附加信息，存为 json 列
type UserMetadata struct {
	DisplayName string `json:"display_name"`
	RedirectTo  string `json:"redirect_to,omitempty"`
}

type User struct {
	Id        int64                 `gorm:"column:id;primary_key;" json:"id"`
	Name      string                `gorm:"column:name" json:"name"`
	Email     string                `gorm:"column:email;not null;uniqueIndex:udx_user_email" json:"email"` // 与 is_del 组成唯一索引，删除后邮箱可重新注册
	Password  string                `gorm:"column:password" json:"-"`
	Role      string                `gorm:"column:role;default:user" json:"role"`
	Plan      string                `gorm:"column:plan" json:"plan"` // basic/pro/premium，空表示未订阅
	Metadata  datatypes.JSON        `gorm:"column:metadata;type:json" json:"metadata"`
	CreatedAt time.Time             `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time             `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt *time.Time            `gorm:"column:deleted_at" json:"deleted_at"`
	IsDel     soft_delete.DeletedAt `gorm:"softDelete:flag,DeletedAtField:DeletedAt;uniqueIndex:udx_user_email"`
}

func (User) TableName() string {
	return "user"
}
