// Command horizon inspects, backs up and edits personal save files.
//
// Usage:
//
//	horizon [flags] info <save>
//	horizon [flags] backup <save>
//	horizon [flags] verify <backup dir>
//	horizon [flags] wallet|miles|bank <save> [value]
//
// <save> is a personal save file or the folder holding it.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/meigma/horizon"
	"github.com/meigma/horizon/backup"
	"github.com/meigma/horizon/offsets"
	"github.com/meigma/horizon/settings"
)

type config struct {
	verbose      bool
	settingsPath string
	backupDir    string
	compress     bool
	assumeYes    bool
	workers      int
}

func main() {
	cfg, args := parseFlags()

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, args, os.Stdin, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "horizon:", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags() (config, []string) {
	var cfg config
	flag.BoolVar(&cfg.verbose, "v", false, "log debug output")
	flag.StringVar(&cfg.settingsPath, "settings", "", "settings file (default: user config dir)")
	flag.StringVar(&cfg.backupDir, "backup-dir", "", "backup folder (overrides settings)")
	flag.BoolVar(&cfg.compress, "compress", false, "store new backups zstd-compressed")
	flag.BoolVar(&cfg.assumeYes, "y", false, "open saves with unexpected sizes without asking")
	flag.IntVar(&cfg.workers, "workers", 0, "files copied concurrently during backup (0: auto)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: horizon [flags] info|backup|verify|wallet|miles|bank <path> [value]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	return cfg, flag.Args()
}

func run(ctx context.Context, cfg config, args []string, in io.Reader, out io.Writer, logger *slog.Logger) error {
	if len(args) < 2 {
		flag.Usage()
		return errors.New("missing command or path")
	}
	cmd, path, rest := args[0], args[1], args[2:]

	compression := backup.CompressionNone
	if cfg.compress {
		compression = backup.CompressionZstd
	}
	coord := backup.New(
		backup.WithLogger(logger),
		backup.WithWorkers(cfg.workers),
		backup.WithCompression(compression),
	)

	if cmd == "verify" {
		if err := coord.Verify(ctx, path); err != nil {
			return err
		}
		m, err := backup.ReadManifest(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d files ok (%s, created %s)\n",
			m.Identifier, len(m.Entries), m.Compression, m.Created.Format("2006-01-02 15:04:05"))
		return nil
	}

	store, err := openStore(cfg.settingsPath)
	if err != nil {
		return err
	}
	opts := []horizon.OpenOption{
		horizon.WithLogger(logger),
		horizon.WithSettingsStore(store),
		horizon.WithCoordinator(coord),
		horizon.WithEnvOverrides(),
		horizon.WithPrompter(&terminalPrompter{in: bufio.NewReader(in), out: out, assumeYes: cfg.assumeYes}),
	}
	if cfg.backupDir != "" {
		opts = append(opts, horizon.WithBackupRoot(cfg.backupDir))
	}

	s, err := horizon.Open(ctx, path, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	switch cmd {
	case "info":
		return printInfo(out, s)
	case "backup":
		return runBackup(ctx, out, s, coord, cfg.backupDir)
	case "wallet":
		return currency(ctx, out, s, offsets.Wallet, rest)
	case "miles":
		return currency(ctx, out, s, offsets.NookMiles, rest)
	case "bank":
		return currency(ctx, out, s, offsets.Bank, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func openStore(path string) (settings.Store, error) {
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return settings.NewFileStore(path), nil
}

func printInfo(out io.Writer, s *horizon.Session) error {
	buf := s.Buffer()
	fmt.Fprintf(out, "path:     %s\n", s.Path())
	fmt.Fprintf(out, "version:  %s\n", s.Version())
	fmt.Fprintf(out, "size:     %#x (expected %#x)\n", buf.Size(), buf.ExpectedSize())

	if buf.Has(offsets.PersonalID) {
		if id, err := buf.Personal(); err == nil {
			fmt.Fprintf(out, "town:     %s (%08X)\n", id.TownName, id.TownID)
			fmt.Fprintf(out, "player:   %s (%08X)\n", id.PlayerName, id.PlayerID)
		}
	}
	for _, f := range []offsets.Field{offsets.Wallet, offsets.NookMiles, offsets.Bank} {
		if !buf.Has(f) {
			continue
		}
		v, err := buf.Currency(f)
		if err != nil {
			fmt.Fprintf(out, "%-9s %v\n", f.String()+":", err)
			continue
		}
		fmt.Fprintf(out, "%-9s %d\n", f.String()+":", v)
	}
	for _, f := range []offsets.Field{offsets.Pockets1, offsets.Pockets2, offsets.Storage} {
		if !buf.Has(f) {
			continue
		}
		used := 0
		items := buf.Items(f)
		for _, it := range items {
			if !it.IsNone() {
				used++
			}
		}
		fmt.Fprintf(out, "%-9s %d/%d slots used\n", f.String()+":", used, len(items))
	}

	switch res := s.BackupResult(); {
	case s.BackupErr() != nil:
		fmt.Fprintf(out, "backup:   failed: %v\n", s.BackupErr())
	case res.Created:
		fmt.Fprintf(out, "backup:   created %s\n", res.Dir)
	case res.Dir != "":
		fmt.Fprintf(out, "backup:   exists %s\n", res.Dir)
	default:
		fmt.Fprintln(out, "backup:   disabled")
	}
	return nil
}

// runBackup backs up the save folder whether or not automatic backups are on.
func runBackup(ctx context.Context, out io.Writer, s *horizon.Session, coord *backup.Coordinator, dir string) error {
	if dir == "" {
		dir = s.Settings().BackupDir
	}
	if !s.Buffer().Has(offsets.PersonalID) {
		return fmt.Errorf("%w: save too short to name a backup", horizon.ErrBackupIO)
	}
	res, err := coord.BackupIfAbsent(ctx, s.Dir(), dir, s.Buffer().BackupTitle())
	if err != nil {
		return err
	}
	if res.Created {
		fmt.Fprintf(out, "created %s (%d files, %s)\n", res.Dir, res.Files, humanize.IBytes(res.Bytes))
		return nil
	}
	fmt.Fprintf(out, "exists %s\n", res.Dir)
	return nil
}

func currency(ctx context.Context, out io.Writer, s *horizon.Session, f offsets.Field, args []string) error {
	buf := s.Buffer()
	if !buf.Has(f) {
		return fmt.Errorf("%s is past the end of the save", f)
	}
	if len(args) == 0 {
		v, err := buf.Currency(f)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	}

	v, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("parse %s value: %w", f, err)
	}
	buf.SetCurrency(f, uint32(v))
	if err := s.Commit(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s set to %d\n", f, v)
	return nil
}

// terminalPrompter asks questions on the terminal.
type terminalPrompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func (p *terminalPrompter) Ask(_ context.Context, q horizon.Question) (horizon.Decision, error) {
	if p.assumeYes && q.Kind == horizon.QuestionSizeMismatch {
		return horizon.DecisionYes, nil
	}
	fmt.Fprintf(p.out, "%s [y/n/c] ", q)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return horizon.DecisionCancel, nil //nolint:nilerr // no answer means cancel
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return horizon.DecisionYes, nil
	case "n", "no":
		return horizon.DecisionNo, nil
	default:
		return horizon.DecisionCancel, nil
	}
}
