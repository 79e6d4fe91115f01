package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/movieshelf/internal/config"
	"github.com/user/movieshelf/internal/middleware"
	"github.com/user/movieshelf/internal/model"
	"github.com/user/movieshelf/internal/repository"
	"github.com/user/movieshelf/internal/storage"
	"github.com/user/movieshelf/internal/utils"
	"gorm.io/gorm"
)

// Handler HTTP 处理器
type Handler struct {
	Repos  *repository.Repositories
	Config *config.Config
	Assets storage.AssetStore

	// 列表页缓存，按用户在写操作时整体失效
	listCache *utils.ListCache[*model.MovieList]
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config, assets storage.AssetStore) *Handler {
	return &Handler{
		Repos:     repos,
		Config:    cfg,
		Assets:    assets,
		listCache: utils.NewListCache[*model.MovieList](1000, time.Minute),
	}
}

// ==================== 认证 ====================

type registerForm struct {
	Name     string `json:"name" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 注册。成功后不建立会话，客户端需要再走一次登录
func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			utils.ValidationFailed(c, errs)
			return
		}
		utils.BadRequest(c, "请求体格式不正确")
		return
	}

	existing, err := h.Repos.User.FindByEmail(form.Email)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if existing != nil {
		utils.Conflict(c, "该邮箱已被注册")
		return
	}

	if _, err := h.Repos.User.Create(form.Name, form.Email, form.Password); err != nil {
		// 并发注册时预检查可能漏掉，唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "该邮箱已被注册")
			return
		}
		utils.InternalServerError(c, "注册失败，请重试")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "注册成功，请登录"})
}

// Login 登录。邮箱不存在与密码错误返回完全相同的响应，避免账号枚举
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		if errs := fieldErrors(err); errs != nil {
			utils.ValidationFailed(c, errs)
			return
		}
		utils.BadRequest(c, "请求体格式不正确")
		return
	}

	user, err := h.Repos.User.FindByEmail(form.Email)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil || !h.Repos.User.CheckPassword(user, form.Password) {
		utils.Unauthorized(c, "邮箱或密码错误")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Email, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}

	// 凭证只走 HttpOnly Cookie，不进响应体
	middleware.SetTokenCookie(c, token, int(h.Config.JWTExpiry.Seconds()), h.Config.IsProduction())

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// Logout 登出，覆盖掉会话 Cookie。凭证本身无服务端吊销，到期自然失效
func (h *Handler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.Config.IsProduction())
	c.JSON(http.StatusOK, gin.H{"message": "已退出登录"})
}

// Me 当前登录用户信息
func (h *Handler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	key := fmt.Sprintf("user:%d", userID)
	if cached, ok := utils.CacheGet(key); ok {
		if user, ok := cached.(*model.User); ok {
			c.JSON(http.StatusOK, gin.H{"id": user.ID, "name": user.Name, "email": user.Email})
			return
		}
	}

	user, err := h.Repos.User.FindByID(userID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}
	if user == nil {
		utils.NotFound(c, "用户不存在")
		return
	}

	utils.CacheSet(key, user, 5*time.Minute)

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "name": user.Name, "email": user.Email})
}
