package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"ai-chat-relay/internal/provider"
)

const providersUsage = `Usage:
  ai-chat-relay providers [--config <path>] [--env-file <path>]

Flags:
  --config   string   Path to YAML configuration file
  --env-file string   Path to a dotenv file with provider API keys`

func providers(args []string) error {
	fs := flag.NewFlagSet("providers", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, providersUsage)
	}

	var settings settingsFlags
	settings.register(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse providers flags: %w", err)
	}

	_, creds, err := settings.load()
	if err != nil {
		return err
	}

	return writeProviders(os.Stdout, creds)
}

// writeProviders prints the catalog in auto-selection order. Keys are never printed.
func writeProviders(w io.Writer, creds provider.Credentials) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDEFAULT MODEL\tFAST MODEL\tKEY\tCONFIGURED")
	for _, desc := range provider.Catalog() {
		configured := "no"
		if creds.Has(desc.ID) {
			configured = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			desc.ID, desc.DisplayName, desc.DefaultModel, desc.FastModel, desc.CredentialEnvKey, configured)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write providers: %w", err)
	}

	if id := provider.Select(provider.IDAuto, creds); creds.Has(id) {
		fmt.Fprintf(w, "\nauto resolves to %s\n", id)
	} else {
		fmt.Fprintln(w, "\nno provider configured; auto falls back to claude")
	}
	return nil
}
