package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建/更新表结构",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database\n", cfg.Database.Driver)
		return nil
	},
}

var eraseYes bool

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "清空借阅记录、图书和用户（保留表结构）",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !eraseYes && !confirm(cmd, "erase ALL data in "+cfg.Database.Driver+" database?") {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}

		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := database.Erase(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database erased")
		return nil
	},
}

func init() {
	eraseCmd.Flags().BoolVarP(&eraseYes, "yes", "y", false, "跳过确认")
}

// confirm 从stdin读取y/N
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
