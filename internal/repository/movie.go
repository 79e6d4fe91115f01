package repository

import (
	"errors"
	"strings"

	"github.com/user/movieshelf/internal/model"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create 创建影片记录
func (r *MovieRepository) Create(m *model.Movie) error {
	return r.db.Create(m).Error
}

// ListByOwner 按归属用户分页查询，keyword 非空时对
// title/director/type/year 做大小写不敏感的前缀匹配（任一命中即可）。
// 返回当前页记录与过滤后的总数。
func (r *MovieRepository) ListByOwner(userID int, keyword string, limit, offset int) ([]*model.Movie, int64, error) {
	// 每个 goroutine 各自构建查询，gorm 语句对象不能跨 goroutine 复用
	base := func() *gorm.DB {
		q := r.db.Model(&model.Movie{}).Where("user_id = ?", userID)
		if keyword != "" {
			pattern := escapeLike(keyword) + "%"
			q = q.Where(
				"title ILIKE ? OR director ILIKE ? OR type ILIKE ? OR year ILIKE ?",
				pattern, pattern, pattern, pattern,
			)
		}
		return q
	}

	var (
		records []*model.Movie
		total   int64
	)

	var g errgroup.Group
	g.Go(func() error {
		return base().Count(&total).Error
	})
	g.Go(func() error {
		return base().
			Order("created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&records).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetByOwner 根据 ID 查找归属该用户的影片。
// 归属校验合并进同一个查询谓词，越权访问与记录不存在对调用方不可区分。
func (r *MovieRepository) GetByOwner(userID, id int) (*model.Movie, error) {
	var rec model.Movie
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateByOwner 部分字段更新，updates 中没有的字段保持原值
func (r *MovieRepository) UpdateByOwner(userID, id int, updates map[string]interface{}) error {
	return r.db.Model(&model.Movie{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates).Error
}

// DeleteByOwner 删除归属该用户的影片，返回是否确有记录被删除
func (r *MovieRepository) DeleteByOwner(userID, id int) (bool, error) {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Movie{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// escapeLike 转义 LIKE 通配符，保证搜索词按字面前缀匹配
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
