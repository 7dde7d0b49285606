package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bike-factory/internal/auth"
	"bike-factory/internal/config"
	"bike-factory/internal/event"
	"bike-factory/internal/handlers"
	"bike-factory/internal/ledger"
	"bike-factory/internal/persistence"
	"bike-factory/internal/records"
	"bike-factory/internal/rules"
	"bike-factory/internal/web"
)

// main 是应用程序的主入口
func main() {
	// 1. 初始化核心组件
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("加载配置失败", "error", err)
		os.Exit(1)
	}

	hub := web.NewHub()
	go hub.Run()
	stateTracker := web.NewStateTracker(hub)

	eventBus := event.NewBus()

	journal, err := persistence.NewJournal(cfg.JournalPath)
	if err != nil {
		logger.Error("无法初始化操作日志", "error", err)
		os.Exit(1)
	}
	defer journal.Close()
	snapshots := persistence.NewSnapshotStore(cfg.SnapshotPath)

	users := auth.NewStore(logger)
	book := records.NewBook()

	led, err := ledger.New(cfg.OpeningStock, cfg.Stations, cfg.Recipes, logger, eventBus, journal)
	if err != nil {
		logger.Error("台账配置非法", "error", err)
		os.Exit(1)
	}

	ruleEngine, err := rules.New(cfg.AlertRules, logger)
	if err != nil {
		logger.Error("告警规则编译失败", "error", err)
		os.Exit(1)
	}

	// 2. 注册事件处理器
	handlers.RegisterEventHandlers(eventBus, led, stateTracker, ruleEngine, logger)

	// 3. 恢复：先加载检查点，再按序重放操作日志
	if err := restoreState(led, users, book, snapshots, journal, logger); err != nil {
		logger.Error("恢复历史状态失败", "error", err)
		os.Exit(1)
	}
	stateTracker.Update(led.Snapshot(), ruleEngine.Evaluate(led.Snapshot()))

	// checkpoint 写出全量存档并截断操作日志
	checkpoint := func() error {
		snap := led.Snapshot()
		state := &persistence.FactoryState{
			Users:         users.Snapshot(),
			Inventory:     snap.Parts,
			BikeInventory: snap.Bikes,
			Orders:        snap.Orders,
			Production:    snap.Production,
			Maintenance:   book.Maintenance(),
			Shifts:        book.Shifts(),
			Schedule:      book.Schedule(),
		}
		if err := snapshots.Save(state); err != nil {
			return err
		}
		return journal.Reset()
	}

	api := &web.API{
		Ledger:  led,
		Users:   users,
		Records: book,
		Tracker: stateTracker,
		Hub:     hub,
		Save:    checkpoint,
		Logger:  logger,
	}

	logger.Info("=== 自行车工厂管理系统启动 ===", "addr", cfg.ListenAddr)

	server := &http.Server{Addr: cfg.ListenAddr, Handler: api.NewMux()}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API 服务器启动失败", "error", err)
			os.Exit(1)
		}
	}()

	// 4. 优雅停机：落一次检查点再退出
	waitForShutdown(logger, server, checkpoint)
}

// restoreState 从检查点和操作日志中恢复工厂状态
func restoreState(
	led *ledger.Ledger,
	users *auth.Store,
	book *records.Book,
	snapshots *persistence.SnapshotStore,
	journal *persistence.Journal,
	logger *slog.Logger,
) error {
	state, err := snapshots.Load()
	if err != nil {
		return err
	}
	if state != nil {
		logger.Info("加载检查点")
		if len(state.Users) > 0 {
			users.Restore(state.Users)
		}
		book.Restore(state.Maintenance, state.Shifts, state.Schedule)
		led.Restore(ledger.Snapshot{
			Parts:      state.Inventory,
			Production: state.Production,
			Bikes:      state.BikeInventory,
			Orders:     state.Orders,
		})
	}

	ops, err := journal.Recover()
	if err != nil {
		return err
	}
	for _, op := range ops {
		if err := led.Apply(op); err != nil {
			// 旧检查点可能已吸收过这条记录，跳过而不是中止恢复
			logger.Warn("跳过无法重放的日志记录", "op", op.Op, "error", err)
		}
	}
	if len(ops) > 0 {
		logger.Info("操作日志重放完成", "entries", len(ops))
	}
	return nil
}

// waitForShutdown 等待系统信号以实现优雅停机
func waitForShutdown(logger *slog.Logger, server *http.Server, checkpoint func() error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("接收到停机信号，正在优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("关闭 HTTP 服务器失败", "error", err)
	}
	if err := checkpoint(); err != nil {
		logger.Error("停机前写出存档失败", "error", err)
	}
	logger.Info("系统已安全退出。")
}
