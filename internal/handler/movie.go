package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/movieshelf/internal/middleware"
	"github.com/user/movieshelf/internal/model"
	"github.com/user/movieshelf/internal/storage"
	"github.com/user/movieshelf/internal/utils"
)

type movieCreateForm struct {
	Title    string  `form:"title" binding:"required"`
	Type     string  `form:"type" binding:"required,oneof='Movie' 'TV Show'"`
	Director string  `form:"director" binding:"required"`
	Year     string  `form:"year" binding:"required,min=4"`
	Budget   *string `form:"budget"`
	Location *string `form:"location"`
	Duration *string `form:"duration"`
}

// 更新时所有字段可选，出现的字段按创建规则校验
type movieUpdateForm struct {
	Title    *string `form:"title" binding:"omitempty,min=1"`
	Type     *string `form:"type" binding:"omitempty,oneof='Movie' 'TV Show'"`
	Director *string `form:"director" binding:"omitempty,min=1"`
	Year     *string `form:"year" binding:"omitempty,min=4"`
	Budget   *string `form:"budget"`
	Location *string `form:"location"`
	Duration *string `form:"duration"`
}

// ListMovies 分页 + 搜索列表，只返回当前用户自己的记录
func (h *Handler) ListMovies(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	key := fmt.Sprintf("user:%d:page:%d:limit:%d:q:%s", userID, page, limit, search)
	if cached, ok := h.listCache.Get(key); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	records, total, err := h.Repos.Movie.ListByOwner(userID, search, limit, (page-1)*limit)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if records == nil {
		records = make([]*model.Movie, 0)
	}

	resp := &model.MovieList{
		Data: records,
		Pagination: model.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	}
	h.listCache.Set(key, resp)

	c.JSON(http.StatusOK, resp)
}

// CreateMovie 创建影片。字段校验在前，海报上传其次，最后才写库
func (h *Handler) CreateMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var form movieCreateForm
	if err := c.ShouldBind(&form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			utils.ValidationFailed(c, errs)
			return
		}
		utils.BadRequest(c, "请求格式不正确")
		return
	}

	posterURL, ok := h.ingestPoster(c)
	if !ok {
		return
	}

	m := &model.Movie{
		Title:    form.Title,
		Type:     form.Type,
		Director: form.Director,
		Year:     form.Year,
		Budget:   form.Budget,
		Location: form.Location,
		Duration: form.Duration,
		Poster:   posterURL,
		UserID:   userID,
	}

	if err := h.Repos.Movie.Create(m); err != nil {
		utils.InternalServerError(c, "")
		return
	}
	h.invalidateList(userID)

	c.JSON(http.StatusCreated, m)
}

// GetMovie 按 ID 查询。记录不存在和归属他人返回同一个 404
func (h *Handler) GetMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := movieID(c)
	if !ok {
		utils.NotFound(c, "影片不存在")
		return
	}

	rec, err := h.Repos.Movie.GetByOwner(userID, id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if rec == nil {
		utils.NotFound(c, "影片不存在")
		return
	}

	c.JSON(http.StatusOK, rec)
}

// UpdateMovie 部分更新。海报只在请求带了新文件时才替换，否则保持原值
func (h *Handler) UpdateMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := movieID(c)
	if !ok {
		utils.NotFound(c, "影片不存在")
		return
	}

	var form movieUpdateForm
	if err := c.ShouldBind(&form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			utils.ValidationFailed(c, errs)
			return
		}
		utils.BadRequest(c, "请求格式不正确")
		return
	}

	existing, err := h.Repos.Movie.GetByOwner(userID, id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing == nil {
		utils.NotFound(c, "影片不存在")
		return
	}

	updates := map[string]interface{}{}
	if form.Title != nil {
		updates["title"] = *form.Title
	}
	if form.Type != nil {
		updates["type"] = *form.Type
	}
	if form.Director != nil {
		updates["director"] = *form.Director
	}
	if form.Year != nil {
		updates["year"] = *form.Year
	}
	if form.Budget != nil {
		updates["budget"] = *form.Budget
	}
	if form.Location != nil {
		updates["location"] = *form.Location
	}
	if form.Duration != nil {
		updates["duration"] = *form.Duration
	}

	posterURL, ok := h.ingestPoster(c)
	if !ok {
		return
	}
	if posterURL != nil {
		updates["poster"] = *posterURL
	}

	if len(updates) > 0 {
		if err := h.Repos.Movie.UpdateByOwner(userID, id, updates); err != nil {
			utils.InternalServerError(c, "")
			return
		}
		h.invalidateList(userID)
	}

	updated, err := h.Repos.Movie.GetByOwner(userID, id)
	if err != nil || updated == nil {
		utils.InternalServerError(c, "")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteMovie 删除影片，缺失与越权同样返回 404
func (h *Handler) DeleteMovie(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, ok := movieID(c)
	if !ok {
		utils.NotFound(c, "影片不存在")
		return
	}

	deleted, err := h.Repos.Movie.DeleteByOwner(userID, id)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if !deleted {
		utils.NotFound(c, "影片不存在")
		return
	}
	h.invalidateList(userID)

	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ingestPoster 处理可选的海报上传。
// 没有文件时是 no-op，返回 (nil, true)；
// 校验失败或存储失败时已写好响应，返回 (nil, false)。
func (h *Handler) ingestPoster(c *gin.Context) (*string, bool) {
	fh, err := c.FormFile("poster")
	if err != nil {
		// 未携带文件不是错误
		return nil, true
	}

	obj, err := storage.ReadPoster(fh)
	if err != nil {
		if errors.Is(err, storage.ErrPosterTooLarge) || errors.Is(err, storage.ErrPosterType) {
			utils.BadRequest(c, err.Error())
		} else {
			utils.InternalServerError(c, "")
		}
		return nil, false
	}

	url, err := h.Assets.Put(c.Request.Context(), obj)
	if err != nil {
		log.Printf("海报上传失败: %v", err)
		utils.InternalServerError(c, "海报上传失败")
		return nil, false
	}

	return &url, true
}

// invalidateList 写操作后清掉该用户的所有列表页缓存
func (h *Handler) invalidateList(userID int) {
	h.listCache.DeletePrefix(fmt.Sprintf("user:%d:", userID))
}

// parsePagination 解析分页参数，解析失败或非正数时回落默认值
func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

// movieID 解析路径中的影片 ID，非法 ID 等同于记录不存在
func movieID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
