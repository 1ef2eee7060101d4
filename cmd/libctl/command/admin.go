package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/database"
)

var adminEmail string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "管理员账号",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "创建管理员（密码从终端读取，不回显）",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if adminEmail == "" {
			return errors.New("--email is required")
		}
		password, err := readPassword(cmd, "Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		svc := user.NewService(database.NewUserRepository(db), cfg.Auth.BcryptCost)
		u, err := createAdmin(cmd, svc, adminEmail, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id=%d)\n", u.Email, u.ID)
		return nil
	},
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "将已有用户提升为管理员",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], user.RoleAdmin)
	},
}

var adminDemoteCmd = &cobra.Command{
	Use:   "demote <email>",
	Short: "将管理员降为普通会员",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(cmd, args[0], user.RoleMember)
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "管理员邮箱")
	adminCmd.AddCommand(adminCreateCmd, adminPromoteCmd, adminDemoteCmd)
}

func createAdmin(cmd *cobra.Command, svc user.Service, email, password string) (*user.User, error) {
	if _, err := svc.Register(cmd.Context(), email, password); err != nil {
		return nil, err
	}
	return svc.SetRole(cmd.Context(), email, user.RoleAdmin)
}

func setRole(cmd *cobra.Command, email string, role user.Role) error {
	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	svc := user.NewService(database.NewUserRepository(db), cfg.Auth.BcryptCost)
	u, err := svc.SetRole(cmd.Context(), email, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role)
	return nil
}

// readPassword 终端下不回显，管道输入时读取第一行
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
