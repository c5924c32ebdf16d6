// Package model 定义数据库实体模型
// 本文件定义用户信息模型，包含用户基本资料、认证信息和匹配偏好
package model

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt" // 密码哈希库
	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 user_info 表
// 主键 ID 即对外暴露的用户数字 id
type UserInfo struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Username 登录名，全局唯一
	Username string `gorm:"column:username;uniqueIndex;type:varchar(32);not null;comment:登录名"`

	// Nickname 用户昵称，陌生人匹配时展示给对方
	Nickname string `gorm:"column:nickname;type:varchar(32);not null;comment:昵称"`

	// Email 邮箱地址（可选）
	Email string `gorm:"column:email;type:char(30);comment:邮箱"`

	// Avatar 用户头像 URL
	Avatar string `gorm:"column:avatar;type:char(255);default:https://cube.elemecdn.com/0/88/03b0d39583f48206768a7534e55bcpng.png;not null;comment:头像"`

	// Gender 性别
	// 0=未知, 1=男, 2=女
	Gender int8 `gorm:"column:gender;comment:性别，0.未知，1.男，2.女"`

	// Age 年龄，匹配偏好过滤使用
	Age int `gorm:"column:age;comment:年龄"`

	// Country 国家/地区代码，如 CN、US
	Country string `gorm:"column:country;type:char(8);comment:国家代码"`

	// Interests 兴趣标签，逗号分隔
	Interests string `gorm:"column:interests;type:varchar(255);comment:兴趣标签，逗号分隔"`

	// PrefGender 偏好性别
	// 0=不限, 1=男, 2=女
	PrefGender int8 `gorm:"column:pref_gender;comment:偏好性别，0.不限，1.男，2.女"`

	// PrefAgeMin / PrefAgeMax 偏好年龄区间，0 表示不限
	PrefAgeMin int `gorm:"column:pref_age_min;comment:偏好最小年龄，0.不限"`
	PrefAgeMax int `gorm:"column:pref_age_max;comment:偏好最大年龄，0.不限"`

	// PrefCountries 偏好国家代码，逗号分隔，空表示不限
	PrefCountries string `gorm:"column:pref_countries;type:varchar(255);comment:偏好国家代码，逗号分隔，空.不限"`

	// Password 密码（已哈希）
	// 存储 bcrypt 哈希后的密码，不存储明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// IsOnline 在线标志
	// 只有在线用户可以被匹配、可以收到转发事件
	IsOnline int8 `gorm:"column:is_online;index;not null;comment:是否在线，0.离线，1.在线"`

	// ConnId 当前连接句柄
	// 每次注册连接时覆盖写入，后注册者获胜
	ConnId string `gorm:"column:conn_id;type:char(36);comment:当前连接句柄"`

	// LastOnlineAt 上次上线时间
	LastOnlineAt sql.NullTime `gorm:"column:last_online_at;type:datetime;comment:上次上线时间"`

	// LastOfflineAt 最近离线时间
	LastOfflineAt sql.NullTime `gorm:"column:last_offline_at;type:datetime;comment:最近离线时间"`

	// Status 账号状态
	// 0=正常, 1=禁用
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.正常，1.禁用"`

	// RawPassword 明文密码（不存入数据库）
	// 用于接收前端传来的明文密码，在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave GORM Hook：在创建和更新前自动调用
// 将 RawPassword 明文密码加密后存入 Password 字段
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验密码是否正确
// plaintext: 用户输入的明文密码
func (u *UserInfo) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}
