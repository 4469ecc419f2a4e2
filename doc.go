// Package horizon opens, edits and saves the personal save file of a
// life-simulation game whose byte layout changes between game revisions.
//
// Every field is reached through a per-version offset table (package
// [offsets]); the raw bytes live in a bounds-checked [save.Buffer]. Opening
// a save detects its version from the tag at the start of the file, asks
// the caller what to do when the file size disagrees with that version,
// and snapshots the save folder once before anything is edited.
//
// # Quick Start
//
//	s, err := horizon.Open(ctx, "/saves/Villager0",
//	    horizon.WithPrompter(horizon.PromptFunc(ask)),
//	    horizon.WithSettingsStore(settings.NewFileStore(path)),
//	)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	buf := s.Buffer()
//	bells, err := buf.Currency(offsets.Wallet)
//	if err != nil {
//	    return err
//	}
//	buf.SetCurrency(offsets.Wallet, bells+1000)
//	return s.Commit(ctx)
//
// # Backups
//
// On first use the prompter is asked whether automatic backups should be
// enabled; the answer is persisted through the settings store. With backups
// enabled, the folder holding the save is copied to
// <backup dir>/<town> - <player> unless that folder already exists. A
// failed backup is logged and reported by [Session.BackupErr]; it never
// prevents editing.
package horizon
