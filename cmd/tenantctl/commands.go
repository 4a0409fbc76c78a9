package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/modules/core/presentation/controllers/dtos"
	"github.com/iota-uz/tenantgate/pkg/configuration"
	"github.com/iota-uz/tenantgate/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	var status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply shared schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()
			if status {
				results, err := database.MigrationStatus(cmd.Context(), conf.Database.Opts)
				if err != nil {
					return err
				}
				out := make([]map[string]any, 0, len(results))
				for _, r := range results {
					out = append(out, map[string]any{
						"version": r.Source.Version,
						"path":    r.Source.Path,
						"state":   string(r.State),
					})
				}
				return writeJSON(out)
			}
			return database.Migrate(cmd.Context(), conf.Database.Opts, conf.Logger())
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Print migration status instead of applying")
	return cmd
}

func newOnboardCmd() *cobra.Command {
	dto := &tenant.CreateDTO{}
	var skipOrgCheck bool
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create a tenant and its isolation schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), envOptions{CheckOrganizations: !skipOrgCheck})
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.tenants.Onboard(e.ctx, dto)
			if err != nil {
				return err
			}
			return writeJSON(dtos.TenantToDTO(t))
		},
	}
	cmd.Flags().StringVar(&dto.OrganizationID, "org", "", "Identity provider organization id (required)")
	cmd.Flags().StringVar(&dto.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&dto.Tier, "tier", string(tenant.TierStarter), "Subscription tier")
	cmd.Flags().BoolVar(&skipOrgCheck, "skip-org-check", false, "Do not confirm the organization with the identity provider")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newPlanCmd() *cobra.Command {
	var (
		tier          string
		features      []string
		quotas        []string
		keepOverrides bool
	)
	cmd := &cobra.Command{
		Use:   "plan <tenant>",
		Short: "Change a tenant's tier and overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dto, err := planDTO(tier, features, quotas)
			if err != nil {
				return err
			}
			e, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.resolve(args[0])
			if err != nil {
				return err
			}
			if keepOverrides {
				mergeOverrides(dto, t)
			}
			t, err = e.tenants.ChangePlan(e.ctx, t.ID(), dto)
			if err != nil {
				return err
			}
			return writeJSON(dtos.TenantToDTO(t))
		},
	}
	cmd.Flags().StringVar(&tier, "tier", "", "Subscription tier (required)")
	cmd.Flags().StringSliceVar(&features, "feature", nil, "Feature override as name=true|false, repeatable")
	cmd.Flags().StringSliceVar(&quotas, "quota", nil, "Quota override as entity=limit (-1 for unlimited), repeatable")
	cmd.Flags().BoolVar(&keepOverrides, "keep-overrides", false, "Carry the tenant's current overrides into the new plan")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}

// mergeOverrides fills dto with the tenant's current overrides for every key
// the command line did not set.
func mergeOverrides(dto *tenant.PlanDTO, t *tenant.Tenant) {
	for k, v := range t.FeatureOverrides().Raw() {
		if _, ok := dto.FeatureOverrides[k]; !ok {
			dto.FeatureOverrides[k] = v
		}
	}
	for k, v := range t.QuotaOverrides().Raw() {
		if _, ok := dto.QuotaOverrides[k]; !ok {
			dto.QuotaOverrides[k] = v
		}
	}
}

func planDTO(tier string, features, quotas []string) (*tenant.PlanDTO, error) {
	dto := &tenant.PlanDTO{
		Tier:             tier,
		FeatureOverrides: map[string]bool{},
		QuotaOverrides:   map[string]int{},
	}
	for _, kv := range features {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --feature %q, want name=true|false", kv)
		}
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --feature %q: %w", kv, err)
		}
		dto.FeatureOverrides[name] = enabled
	}
	for _, kv := range quotas {
		entity, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --quota %q, want entity=limit", kv)
		}
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --quota %q: %w", kv, err)
		}
		dto.QuotaOverrides[entity] = limit
	}
	return dto, nil
}

func newStatusCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <tenant>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.resolve(args[0])
			if err != nil {
				return err
			}
			switch use {
			case "suspend":
				t, err = e.tenants.Suspend(e.ctx, t.ID())
			case "reactivate":
				t, err = e.tenants.Reactivate(e.ctx, t.ID())
			case "cancel":
				t, err = e.tenants.Cancel(e.ctx, t.ID())
			default:
				return fmt.Errorf("unknown status command %q", use)
			}
			if err != nil {
				return err
			}
			return writeJSON(dtos.TenantToDTO(t))
		},
	}
}

func newOffboardCmd() *cobra.Command {
	var hard bool
	cmd := &cobra.Command{
		Use:   "offboard <tenant>",
		Short: "Soft-delete a tenant, or drop its schema and row with --hard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.resolve(args[0])
			if err != nil {
				return err
			}
			if err := e.tenants.Offboard(e.ctx, t.ID(), hard); err != nil {
				return err
			}
			return writeJSON(map[string]any{
				"id":             t.ID().String(),
				"organizationId": t.OrganizationID(),
				"hard":           hard,
			})
		},
	}
	cmd.Flags().BoolVar(&hard, "hard", false, "Drop the tenant schema and delete its row")
	return cmd
}

func newListCmd() *cobra.Command {
	var includeDeleted bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			tenants, err := e.tenants.List(e.ctx, includeDeleted)
			if err != nil {
				return err
			}
			out := make([]dtos.TenantDTO, 0, len(tenants))
			for _, t := range tenants {
				out = append(out, dtos.TenantToDTO(t))
			}
			return writeJSON(out)
		},
	}
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "Include soft-deleted tenants")
	return cmd
}
