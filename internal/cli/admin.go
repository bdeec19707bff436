package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kdziekansky/telegram2/internal/app/credit"
	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/infra/sqlite"
)

// The operator commands open the database directly. Do not run them
// against a live bot from another machine; SQLite is single-writer.

func init() {
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(gencodeCmd)
}

var grantCmd = &cobra.Command{
	Use:   "grant USER_ID AMOUNT [DESCRIPTION]",
	Short: "Credit a user's balance",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		description := "manual grant"
		if len(args) == 3 {
			description = args[2]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg.Log)
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		newBal, err := credit.NewLedger(db, log).Credit(userID, amount, description, domain.TxGrant)
		if err != nil {
			return err
		}
		fmt.Printf("granted %d to %d, balance now %d\n", amount, userID, newBal)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user USER_ID",
	Short: "Inspect a user and their ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg.Log)
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := db.GetUser(userID)
		if err != nil {
			return err
		}
		ledger := credit.NewLedger(db, log)
		stats, err := ledger.Stats(userID, 10)
		if err != nil {
			return err
		}
		balance, sum, ok, err := ledger.Reconcile(userID)
		if err != nil {
			return err
		}

		fmt.Printf("user:      %s (id %d)\n", user.DisplayName, user.ID)
		fmt.Printf("language:  %s  model: %s  mode: %s\n", user.Language, user.Model, user.Mode)
		fmt.Printf("balance:   %d (ledger sum %d, reconciled %v)\n", balance, sum, ok)
		fmt.Printf("purchased: %d  spent: %.2f PLN\n", stats.TotalPurchased, stats.TotalSpent)
		if len(stats.Recent) > 0 {
			fmt.Println("recent:")
			for _, tx := range stats.Recent {
				fmt.Printf("  %s %+6d %s\n", tx.CreatedAt.Format("2006-01-02 15:04"), tx.Amount, tx.Description)
			}
		}
		return nil
	},
}

var gencodeCmd = &cobra.Command{
	Use:   "gencode AMOUNT [CODE]",
	Short: "Create an activation code",
	Long:  `Create a one-shot activation code worth AMOUNT credits. A code is generated unless one is given.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || amount <= 0 {
			return fmt.Errorf("invalid amount %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		var code string
		if len(args) == 2 {
			code = strings.ToUpper(args[1])
		} else {
			code = newActivationCode()
		}
		if err := db.CreateCode(code, amount); err != nil {
			return err
		}
		fmt.Printf("code %s worth %d credits\n", code, amount)
		return nil
	},
}

func newActivationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
