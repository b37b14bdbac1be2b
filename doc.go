// Package wtf is the Composition Root for the wtf slang dictionary.
//
// It connects the core business logic (Domain Layer) with the infrastructure
// adapters (line files on disk, the GitHub-hosted shared dictionary) using the
// Hexagonal Architecture pattern.
//
// The dictionary is the union of a base snapshot, downloaded from the shared
// repository, and the user's own additions. Removals never touch either file:
// they are recorded as tombstones that hide an entry until it is recovered.
//
// Features:
//
//   - **Multimap store**: a term may carry many definitions, matched case-insensitively.
//   - **Soft delete**: remove/recover flip visibility without losing data.
//   - **Delta sync**: only the lines that changed upstream are downloaded when possible,
//     with a full snapshot download as the fallback.
//   - **Offline first**: every command works without a network; sync simply reports it.
//
// Usage:
//
//	svc, err := wtf.New("", wtf.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	entries, err := svc.Lookup(ctx, "rizz")
package wtf
