// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-workbench/internal/config"
	"ai-workbench/internal/conversation"
	"ai-workbench/internal/handler"
	"ai-workbench/internal/middleware"
	"ai-workbench/internal/service"
	"ai-workbench/pkg/llm"
	"ai-workbench/pkg/log"
	"ai-workbench/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化模型客户端
	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("模型客户端初始化失败: %v", err)
	}
	if closer, ok := llmClient.(io.Closer); ok {
		defer closer.Close()
	}
	log.Infow("模型客户端初始化成功", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	// 4. 初始化 Service (依赖注入)
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = token.GenerateRandomString(32)
		log.Warnf("未配置 jwt.secret，已生成临时密钥，重启后所有会话失效")
	}
	jwtManager := token.NewJWTManager(jwtSecret, cfg.JWT.SessionExpireHours)
	sessions := conversation.NewStore()
	counselService := service.NewCounselService(llmClient)
	summaryService := service.NewSummaryService(llmClient)
	resumeService := service.NewResumeService(llmClient, service.ResumeOptions{StrictGrounding: cfg.Resume.StrictGrounding})
	marketService := service.NewMarketService(llmClient)

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 6. 注册路由
	r.GET("/healthz", handler.Health(cfg.LLM.Provider))
	counselHandler := handler.NewCounselHandler(counselService, sessions, jwtManager)
	apiV1 := r.Group("/api/v1")
	{
		counsel := apiV1.Group("/counsel")
		{
			counsel.POST("/sessions", counselHandler.CreateSession)
			counsel.DELETE("/sessions/current", middleware.SessionAuth(jwtManager), counselHandler.EndSession)
		}

		apiV1.POST("/summaries", handler.NewSummaryHandler(summaryService).Summarize)
		apiV1.POST("/resumes/optimize", handler.NewResumeHandler(resumeService).Optimize)

		market := apiV1.Group("/market")
		{
			marketHandler := handler.NewMarketHandler(marketService)
			market.POST("/sentiment", marketHandler.AnalyzeSentiment)
			market.GET("/series", marketHandler.Series)
		}
	}
	// 咨询对话 (WebSocket)
	r.GET("/counsel/:token", middleware.SessionAuth(jwtManager), counselHandler.Handle)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
