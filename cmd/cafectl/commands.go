package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jaisdevansh/monu-bhiya/internal/authz"
	"github.com/jaisdevansh/monu-bhiya/internal/models"
	"github.com/jaisdevansh/monu-bhiya/internal/provider"
	"github.com/jaisdevansh/monu-bhiya/internal/repository"
	"github.com/jaisdevansh/monu-bhiya/internal/seed"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/spf13/cobra"
)

func seedCmd(load configLoader) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the menu (built-in or --file) without duplicating existing items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := openDatabase(cfg); err != nil {
				return err
			}
			menu, err := seed.LoadMenu(file)
			if err != nil {
				return err
			}
			seeder := seed.NewSeeder(repository.NewCategoryRepository(models.DB), repository.NewProductRepository(models.DB))
			result, err := seeder.Apply(cmd.Context(), menu)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "categories created: %d, products created: %d, skipped: %d\n",
				result.CategoriesCreated, result.ProductsCreated, result.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Menu YAML file")
	return cmd
}

func hashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print a bcrypt hash for admin_auth.secret_hash (reads stdin when no argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := ""
			if len(args) == 1 {
				secret = args[0]
			} else {
				reader := bufio.NewReader(cmd.InOrStdin())
				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}
			if strings.TrimSpace(secret) == "" {
				return errors.New("secret is empty")
			}
			hash, err := service.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func otpPurgeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "otp-purge",
		Short: "Delete expired verification codes and abandoned checkout sessions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := openDatabase(cfg); err != nil {
				return err
			}
			container := provider.NewContainer(cfg)
			result, err := container.CheckoutService.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged challenges: %d, sessions: %d\n", result.Challenges, result.Sessions)
			return nil
		},
	}
}

func rolesCmd(load configLoader) *cobra.Command {
	openAuthz := func() (*authz.Service, error) {
		cfg, err := load()
		if err != nil {
			return nil, err
		}
		if err := openDatabase(cfg); err != nil {
			return nil, err
		}
		svc, err := authz.NewService(models.DB)
		if err != nil {
			return nil, err
		}
		if err := svc.BootstrapBuiltinRoles(); err != nil {
			return nil, err
		}
		return svc, nil
	}

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect and edit casbin role policies",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List roles and their policies",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := openAuthz()
				if err != nil {
					return err
				}
				roles, err := svc.ListRoles()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, role := range roles {
					fmt.Fprintln(out, role)
					policies, err := svc.GetRolePolicies(role)
					if err != nil {
						return err
					}
					for _, policy := range policies {
						fmt.Fprintf(out, "  %-6s %s\n", policy.Action, policy.Object)
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "grant <role> <object> <action>",
			Short: "Allow a role to call a route, e.g. grant kitchen /admin/orders GET",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := openAuthz()
				if err != nil {
					return err
				}
				if err := svc.GrantRolePolicy(args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "granted %s %s %s\n", args[0], strings.ToUpper(args[2]), authz.NormalizeObject(args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "revoke <role> <object> <action>",
			Short: "Remove a policy from a role",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := openAuthz()
				if err != nil {
					return err
				}
				if err := svc.RevokeRolePolicy(args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %s %s %s\n", args[0], strings.ToUpper(args[2]), authz.NormalizeObject(args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <role>",
			Short: "Delete a custom role (built-in roles are protected)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := openAuthz()
				if err != nil {
					return err
				}
				if err := svc.DeleteRole(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
