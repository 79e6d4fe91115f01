package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/movieshelf/internal/config"
	"github.com/user/movieshelf/internal/handler"
	"github.com/user/movieshelf/internal/middleware"
	"github.com/user/movieshelf/internal/repository"
	"github.com/user/movieshelf/internal/router"
	"github.com/user/movieshelf/internal/storage"
	"github.com/user/movieshelf/internal/utils"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置，密钥缺失直接退出
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// 初始化仓库
	repos := repository.NewRepositories(db)

	// 初始化缓存
	utils.InitCache()

	// 选择海报存储后端
	var assets storage.AssetStore
	switch cfg.StorageBackend {
	case config.StorageGCS:
		gcsStore, err := storage.NewGCSStore(context.Background(), cfg.GCSBucket)
		if err != nil {
			log.Fatalf("GCS 初始化失败: %v", err)
		}
		defer gcsStore.Close()
		assets = gcsStore
	default:
		localStore, err := storage.NewLocalStore(cfg.UploadDir, cfg.SiteUrl)
		if err != nil {
			log.Fatalf("上传目录初始化失败: %v", err)
		}
		assets = localStore
	}

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// 兜底错误处理：记录现场，细节只在非生产环境返回
		log.Printf("panic: %v", recovered)
		body := gin.H{"message": "服务器内部错误"}
		if !cfg.IsProduction() {
			body["error"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	}))

	// 本地存储时海报由本进程静态提供
	if cfg.StorageBackend == config.StorageLocal {
		r.Static("/uploads", cfg.UploadDir)
	}

	// 初始化 Handler
	h := handler.NewHandler(repos, cfg, assets)

	// 注册路由
	router.RegisterRoutes(r, h)

	// 配置 HTTP 服务器
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// 海报上传到对象存储可能较慢，写超时放宽一些
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Printf("服务器启动于 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("服务器强制关闭:", err)
	}

	log.Println("服务器已退出")
}
