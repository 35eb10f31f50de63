package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/awmpietro/golang-case-classification/internal/app"
	"github.com/awmpietro/golang-case-classification/internal/bootstrap"
	"github.com/awmpietro/golang-case-classification/internal/config"
	"github.com/awmpietro/golang-case-classification/internal/ruleset"
	"github.com/awmpietro/golang-case-classification/internal/transport/classifydto"
)

func newRootCmd(cfg config.Runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "casecls",
		Short:        "Case classification rules: classify cases and describe criteria",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(classifyCmd(cfg))
	rootCmd.AddCommand(describeCmd(cfg))
	rootCmd.AddCommand(diseasesCmd(cfg))
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}

// withService runs fn against a freshly wired service and flushes its
// observers afterwards.
func withService(cfg config.Runtime, cmd *cobra.Command, fn func(*app.Service) error) error {
	svc, closeFn, err := bootstrap.Service(cfg, cfg.Logger(cmd.ErrOrStderr()), nil)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(svc)
}

func classifyCmd(cfg config.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [request.json]",
		Short: "Classify a case read from a JSON file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var in classifydto.ClassifyRequest
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("invalid json: %w", err)
			}
			if country, _ := cmd.Flags().GetString("country"); country != "" {
				in.Country = country
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				in.Debug = true
			}

			return withService(cfg, cmd, func(svc *app.Service) error {
				res, err := svc.Classify(in.ToApp())
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			})
		},
	}
	cmd.Flags().String("country", "", "Server country, overrides the request")
	cmd.Flags().Bool("debug", false, "Include evaluation traces")
	return cmd
}

func describeCmd(cfg config.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the localized classification criteria of a disease",
		RunE: func(cmd *cobra.Command, args []string) error {
			disease, _ := cmd.Flags().GetString("disease")
			locale, _ := cmd.Flags().GetString("locale")
			country, _ := cmd.Flags().GetString("country")
			rulesPath, _ := cmd.Flags().GetString("rules")
			asHTML, _ := cmd.Flags().GetBool("html")

			req := app.DescribeRequest{Disease: disease, Locale: locale, Country: country}
			if rulesPath != "" {
				raw, err := os.ReadFile(rulesPath)
				if err != nil {
					return err
				}
				req.RulesDOT = string(raw)
			}

			return withService(cfg, cmd, func(svc *app.Service) error {
				desc, err := svc.Describe(req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asHTML {
					_, err := fmt.Fprintln(out, desc.HTML)
					return err
				}
				for _, tier := range desc.Tiers {
					if _, err := fmt.Fprintf(out, "%s\n  %s\n", tier.Title, tier.Markup); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().String("disease", "", "Disease of a built-in rule set")
	cmd.Flags().String("locale", "", "Output locale, defaults to DEFAULT_LOCALE")
	cmd.Flags().String("country", "", "Server country, enables extended tiers where configured")
	cmd.Flags().String("rules", "", "Path to a DOT rule set used instead of the built-in one")
	cmd.Flags().Bool("html", false, "Render the full HTML view")
	return cmd
}

func diseasesCmd(cfg config.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "diseases",
		Short: "List diseases with built-in rule sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cfg, cmd, func(svc *app.Service) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(svc.Diseases(), "\n"))
				return err
			})
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <rules.dot>...",
		Short: "Compile DOT rule sets and report errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			compiler := ruleset.NewCompiler()
			failed := 0
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err == nil {
					var rs *ruleset.RuleSet
					if rs, err = compiler.Compile(string(raw)); err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: ok %s %v\n", path, rs.Disease, rs.Tiers())
						continue
					}
				}
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d rule sets invalid", failed, len(args))
			}
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
