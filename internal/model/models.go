package model

import (
	"time"
)

// 影片类型枚举
const (
	TypeMovie  = "Movie"
	TypeTVShow = "TV Show"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Movie 收藏影片记录，归属于唯一的用户
type Movie struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Director  string    `json:"director"`
	Year      string    `json:"year"` // 自由文本，支持 "2008-2013" 这类区间
	Budget    *string   `json:"budget"`
	Location  *string   `json:"location"`
	Duration  *string   `json:"duration"`
	Poster    *string   `json:"poster"` // 对外可访问的海报 URL，无海报时为 null
	UserID    int       `json:"userId" gorm:"index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pagination 列表分页元数据
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// MovieList 列表接口响应体
type MovieList struct {
	Data       []*Movie   `json:"data"`
	Pagination Pagination `json:"pagination"`
}
