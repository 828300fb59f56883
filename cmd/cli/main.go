package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/gofunds/internal/adapter/http/dto"
	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/auth"
	"github.com/iho/gofunds/internal/infrastructure/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiClient talks to the HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		token   string
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "gofunds-cli",
		Short:         "GoFunds CLI tool",
		Long:          `A command line interface for the GoFunds subscription API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("GOFUNDS_URL", "http://localhost:8080"), "Base URL of the GoFunds API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("GOFUNDS_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	client := func() *apiClient {
		return &apiClient{
			baseURL: strings.TrimRight(baseURL, "/"),
			token:   token,
			http:    &http.Client{Timeout: timeout},
		}
	}

	rootCmd.AddCommand(
		subscribeCmd(client),
		cancelCmd(client),
		historyCmd(client),
		fundsCmd(client),
		ledgerCmd(client),
		migrateCmd(),
		tokenCmd(),
	)

	return rootCmd
}

func subscribeCmd(client func() *apiClient) *cobra.Command {
	var (
		customerID string
		fundID     string
		amount     string
	)

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe a customer to a fund",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			var sub dto.SubscriptionResponse
			err = client().do(cmd.Context(), http.MethodPost, "/api/v1/subscriptions", dto.SubscribeRequest{
				CustomerID: customerID,
				FundID:     fundID,
				Amount:     value,
			}, &sub)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed %s to fund %s for %s (subscription %s)\n",
				sub.CustomerID, sub.FundID, sub.Amount.StringFixed(2), sub.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "Customer ID (defaults to the token subject)")
	cmd.Flags().StringVar(&fundID, "fund", "", "Fund ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to invest")
	_ = cmd.MarkFlagRequired("fund")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func cancelCmd(client func() *apiClient) *cobra.Command {
	var customerID string

	cmd := &cobra.Command{
		Use:   "cancel <subscription-id>",
		Short: "Cancel a subscription and refund its amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if customerID != "" {
				body = dto.CancelSubscriptionRequest{CustomerID: customerID}
			}

			var sub dto.SubscriptionResponse
			if err := client().do(cmd.Context(), http.MethodDelete, "/api/v1/subscriptions/"+url.PathEscape(args[0]), body, &sub); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled subscription %s, refunded %s\n", sub.ID, sub.Amount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "Requesting customer ID (defaults to the token subject)")

	return cmd
}

func historyCmd(client func() *apiClient) *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "history <customer-id>",
		Short: "Show a customer's transaction history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", fmt.Sprint(limit))
			if cursor != "" {
				q.Set("cursor", cursor)
			}

			var page dto.HistoryResponse
			path := "/api/v1/customers/" + url.PathEscape(args[0]) + "/transactions?" + q.Encode()
			if err := client().do(cmd.Context(), http.MethodGet, path, nil, &page); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tDESCRIPTION")
			for _, t := range page.Transactions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					t.CreatedAt.Format("2006-01-02 15:04"), t.Type, t.Amount.StringFixed(2), truncate(t.Description, 40))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if page.NextCursor != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nMore entries: --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Continue from a previous page")

	return cmd
}

func fundsCmd(client func() *apiClient) *cobra.Command {
	fundsCmd := &cobra.Command{
		Use:   "funds",
		Short: "Fund catalogue",
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List funds",
		RunE: func(cmd *cobra.Command, args []string) error {
			var list dto.ListResponse[dto.FundResponse]
			path := "/api/v1/funds"
			if all {
				path += "?active=false"
			}
			if err := client().do(cmd.Context(), http.MethodGet, path, nil, &list); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tMINIMUM\tACTIVE")
			for _, f := range list.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", f.ID, f.Name, f.Category, f.MinimumAmount.StringFixed(2), f.Active)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "Include inactive funds")

	fundsCmd.AddCommand(listCmd)
	return fundsCmd
}

func ledgerCmd(client func() *apiClient) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var asJSON bool
	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Check every customer's balance against the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ReconciliationResponse
			if err := client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "Customers checked: %d\n", report.TotalCustomers)
				fmt.Fprintf(out, "Reconciled:        %d\n", report.ReconciledCustomers)
				for _, d := range report.Discrepancies {
					fmt.Fprintf(out, "  %s: balance %s, ledger %s, active subscriptions %s, net subscribed %s\n",
						d.CustomerID, d.RecordedBalance.StringFixed(2), d.LedgerBalance.StringFixed(2),
						d.ActiveSubscriptions.StringFixed(2), d.NetSubscribed.StringFixed(2))
				}
			}

			if !report.Consistent {
				return fmt.Errorf("reconciliation FAILED: %d discrepancies", len(report.Discrepancies))
			}
			fmt.Fprintln(out, "Reconciliation PASSED")
			return nil
		},
	}
	reconcileCmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw report")

	ledgerCmd.AddCommand(reconcileCmd)
	return ledgerCmd
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL string
		path        string
		steps       int
	)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	migrateCmd.PersistentFlags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	logger := func(cmd *cobra.Command) zerolog.Logger {
		return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			return postgres.RunMigrations(databaseURL, path, logger(cmd))
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			return postgres.RunMigrationsDown(databaseURL, path, steps, logger(cmd))
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}

func tokenCmd() *cobra.Command {
	var (
		secret string
		role   string
		ttl    time.Duration
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "API tokens",
	}

	issueCmd := &cobra.Command{
		Use:   "issue <customer-id>",
		Short: "Issue a signed token for a customer or an admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}

			manager := auth.NewJWTManager(secret, ttl)
			token, err := manager.Generate(domain.Principal{CustomerID: args[0], Role: domain.Role(role)})
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), dto.TokenResponse{
				Token:     token,
				ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second),
			})
		},
	}
	issueCmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	issueCmd.Flags().StringVar(&role, "role", string(domain.RoleCustomer), "Role: customer or admin")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

// do sends a JSON request and decodes a JSON response into out. Non-2xx answers
// become errors carrying the API's error code.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s (HTTP %d)", apiErr.Code, apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("request failed (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
