// Command hatchval validates package-metadata and registry-index documents
// from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	hatchval "github.com/crackingshells/hatchval"
	"github.com/crackingshells/hatchval/registry"
	"github.com/crackingshells/hatchval/schemacheck"
	"github.com/crackingshells/hatchval/schemaprov"
	"github.com/crackingshells/hatchval/validator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hatchval",
		Short:         "Validate Hatch package metadata and registry indexes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	root.AddCommand(newResolveCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	var (
		registryPath string
		allowLocal   bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a package-metadata document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			ctx := &hatchval.ValidationContext{AllowLocalDependencies: allowLocal}
			if registryPath != "" {
				snapshot, err := loadDocument(registryPath)
				if err != nil {
					return err
				}
				ctx.Registry = snapshot
			}

			source, err := validator.NewSource(validator.Deps{
				Provider: schemaprov.New(),
				Checker:  schemacheck.New(),
			})
			if err != nil {
				return err
			}
			orch, err := hatchval.NewOrchestrator(source)
			if err != nil {
				return err
			}
			outcome, err := orch.ValidatePackage(doc, ctx)
			if err != nil {
				return err
			}

			if asJSON {
				if err := printOutcomeJSON(cmd, outcome); err != nil {
					return err
				}
			} else {
				printOutcome(cmd, args[0], outcome)
			}
			if !outcome.OK {
				// Findings were already reported; exit nonzero without the
				// generic error banner.
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&registryPath, "registry", "", "registry index used for dependency checks")
	cmd.Flags().BoolVar(&allowLocal, "allow-local", false, "permit locally-resolved dependencies")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the outcome as JSON")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var registryPath string
	cmd := &cobra.Command{
		Use:   "resolve PACKAGE [CONSTRAINT]",
		Short: "Resolve the best matching release of a package",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if registryPath == "" {
				return fmt.Errorf("--registry is required")
			}
			snapshot, err := loadDocument(registryPath)
			if err != nil {
				return err
			}
			svc, err := registry.NewService(snapshot)
			if err != nil {
				return err
			}
			constraint := ""
			if len(args) == 2 {
				constraint = args[1]
			}
			v, err := svc.Resolve(args[0], constraint)
			if err != nil {
				return err
			}
			uri, err := svc.PackageURI(args[0], v)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", args[0], v, uri)
			return nil
		},
	}
	cmd.Flags().StringVar(&registryPath, "registry", "", "registry index to resolve against")
	return cmd
}

// loadDocument reads a JSON or YAML document, chosen by extension.
func loadDocument(path string) (hatchval.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return hatchval.Document(doc), nil
}

func printOutcome(cmd *cobra.Command, path string, outcome hatchval.Outcome) {
	out := cmd.OutOrStdout()
	if outcome.OK {
		fmt.Fprintf(out, "%s: valid\n", path)
		return
	}
	fmt.Fprintf(out, "%s: invalid\n", path)
	for _, concern := range hatchval.Concerns() {
		res, ok := outcome.Concerns[concern]
		if !ok || res.Valid {
			continue
		}
		for _, finding := range res.Errors {
			fmt.Fprintf(out, "  [%s] %s\n", concern, finding)
		}
	}
}

func printOutcomeJSON(cmd *cobra.Command, outcome hatchval.Outcome) error {
	type concernJSON struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors,omitempty"`
	}
	payload := struct {
		OK       bool                   `json:"ok"`
		Concerns map[string]concernJSON `json:"concerns"`
	}{
		OK:       outcome.OK,
		Concerns: make(map[string]concernJSON, len(outcome.Concerns)),
	}
	for concern, res := range outcome.Concerns {
		payload.Concerns[string(concern)] = concernJSON{Valid: res.Valid, Errors: res.Errors}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
