package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/andrasd/parlor/internal/export"
	chatmodel "github.com/andrasd/parlor/internal/model/chat"
	"github.com/andrasd/parlor/internal/model/persona"
	"github.com/andrasd/parlor/internal/reflow"
	"github.com/andrasd/parlor/internal/service/ai"
	"github.com/andrasd/parlor/internal/storage"
)

var (
	sessionsDir string
	width       int
	overwrite   bool
	formatKind  string
)

// cliDefaults fill the gaps in partial session records the same way the api
// server does.
var cliDefaults = chatmodel.GenerationParams{
	Model:           "gpt-4o-mini",
	MaxOutputTokens: 150,
	Personality:     persona.DefaultKey,
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	root := &cobra.Command{
		Use:           "parlorctl",
		Short:         "Inspect and export persisted parlor sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&sessionsDir, "sessions-dir", "sessions", "directory holding session records")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session transcript as reflowed plain text",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	showCmd.Flags().IntVar(&width, "width", reflow.DefaultWidth, "wrap width, clamped to the supported range")

	exportCmd := &cobra.Command{
		Use:   "export <id> <dest>",
		Short: "Export a session; the destination extension selects the format (txt, md, json)",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport,
	}
	exportCmd.Flags().IntVar(&width, "width", reflow.DefaultWidth, "wrap width for plain text, clamped to the supported range")
	exportCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace the destination if it already exists")
	exportCmd.Flags().StringVar(&formatKind, "format", "", "output format (txt, md, json); overrides the destination extension")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List persisted session identifiers",
			Args:  cobra.NoArgs,
			RunE:  runList,
		},
		showCmd,
		exportCmd,
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func openStore() (*storage.FileStore, error) {
	return storage.NewFileStore(sessionsDir, ai.BasePrompt)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	ids, err := store.List()
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	session, err := store.Load(args[0], cliDefaults)
	if err != nil {
		return err
	}

	entries := export.Normalize(session.Turns.Replay())
	fmt.Print(export.RenderText(entries, reflow.ClampWidth(width)))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	id, dest := args[0], args[1]

	store, err := openStore()
	if err != nil {
		return err
	}

	session, err := store.Load(id, cliDefaults)
	if err != nil {
		return err
	}

	format := export.FormatForPath(dest)
	if formatKind != "" {
		format, err = export.ParseFormat(formatKind)
		if err != nil {
			return err
		}
	}
	if export.Exists(dest) && !overwrite {
		return errors.Wrapf(export.ErrDestinationExists, "%q (pass --overwrite to replace)", dest)
	}

	var data []byte
	switch format {
	case export.FormatRecord:
		data, err = store.EncodeRecord(session)
		if err != nil {
			return err
		}
	case export.FormatMarkdown:
		data = []byte(export.RenderMarkdown(export.Normalize(session.Turns.Replay())))
	default:
		data = []byte(export.RenderText(export.Normalize(session.Turns.Replay()), reflow.ClampWidth(width)))
	}

	if err := export.WriteFile(dest, data); err != nil {
		return err
	}
	log.Info().Str("session", id).Str("path", dest).Str("format", string(format)).Msg("session exported")
	return nil
}
