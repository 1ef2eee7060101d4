// Package command 定义libctl的全部子命令
package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
	"github.com/xiebiao/library/pkg/logger"
)

// cfg 在PersistentPreRunE中加载，所有子命令共享
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "libctl",
	Short: "libctl - 图书馆服务运维工具",
	Long: `libctl 直接操作图书馆服务的数据库和消息队列，配置与API服务相同
(config/config.yaml 与 LIBRARY_* 环境变量)。

常用命令:
  libctl migrate                       创建/更新表结构
  libctl seed --books 50               写入随机图书
  libctl admin create --email a@b.com  创建管理员
  libctl events                        订阅借阅事件并打印`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		l, _, err := logger.New(logger.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: "stderr",
		})
		if err != nil {
			return err
		}
		slog.SetDefault(l)
		return nil
	},
}

// Execute 由main调用
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, eraseCmd, adminCmd, eventsCmd)
}

// openDB 子命令按需连接数据库，迁移由migrate命令显式执行
func openDB() (*gorm.DB, func(), error) {
	dbCfg := cfg.Database
	dbCfg.AutoMigrate = false
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = database.Close(db) }, nil
}
