// Package backup snapshots a save folder before it is edited.
//
// A Coordinator copies the folder to <root>/<title> exactly once: if the
// destination already exists nothing is written. Each backup carries a
// manifest recording the size, digest, mode and modification time of every
// file, which Verify uses to detect damaged or incomplete backups.
//
//	c := backup.New(backup.WithCompression(backup.CompressionZstd))
//	res, err := c.BackupIfAbsent(ctx, saveDir, "bak", "Harbor - Robin")
//	if err != nil {
//	    // warn and continue; the save is still editable
//	}
//	err = c.Verify(ctx, res.Dir)
package backup
