package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/wtf/pkg/core"
)

// maxVersionLen is the longest version identifier the legacy record could hold.
const maxVersionLen = 40

// metadataRecord is the on-disk shape of sync.meta.
type metadataRecord struct {
	LastSync     int64  `yaml:"last_sync"`
	LastVersion  string `yaml:"last_version"`
	AutoSync     *bool  `yaml:"auto_sync,omitempty"`
	SyncInterval int64  `yaml:"sync_interval,omitempty"` // seconds
}

func (m metadataRecord) toCore() core.SyncMetadata {
	meta := core.DefaultSyncMetadata()
	if m.LastSync > 0 {
		meta.LastSync = time.Unix(m.LastSync, 0)
	}
	meta.LastVersion = truncateVersion(m.LastVersion)
	if m.AutoSync != nil {
		meta.AutoSync = *m.AutoSync
	}
	if m.SyncInterval > 0 {
		meta.SyncInterval = time.Duration(m.SyncInterval) * time.Second
	}
	return meta
}

func recordFromCore(meta core.SyncMetadata) metadataRecord {
	rec := metadataRecord{
		LastVersion:  truncateVersion(meta.LastVersion),
		AutoSync:     &meta.AutoSync,
		SyncInterval: int64(meta.SyncInterval / time.Second),
	}
	if !meta.LastSync.IsZero() {
		rec.LastSync = meta.LastSync.Unix()
	}
	return rec
}

// LoadMetadata reads the sync metadata record. A missing file yields the
// defaults. A corrupted file is logged and also yields the defaults so the
// next successful sync rewrites it.
func (r *Repository) LoadMetadata(ctx context.Context) (core.SyncMetadata, error) {
	data, err := os.ReadFile(r.MetadataPath())
	if errors.Is(err, os.ErrNotExist) {
		return core.DefaultSyncMetadata(), nil
	}
	if err != nil {
		return core.SyncMetadata{}, fmt.Errorf("failed to read sync metadata: %w", err)
	}

	if rec, ok := parseLegacyMetadata(data); ok {
		return rec.toCore(), nil
	}

	var rec metadataRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		if r.config.Logger != nil {
			r.config.Logger.Warn("corrupted sync metadata, using defaults",
				"path", r.MetadataPath(),
				"error", err,
			)
		}
		return core.DefaultSyncMetadata(), nil
	}
	return rec.toCore(), nil
}

// SaveMetadata overwrites the sync metadata record.
func (r *Repository) SaveMetadata(ctx context.Context, meta core.SyncMetadata) error {
	if r.readOnly {
		return core.ErrReadOnly
	}

	data, err := yaml.Marshal(recordFromCore(meta))
	if err != nil {
		return fmt.Errorf("failed to encode sync metadata: %w", err)
	}
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data home: %w", err)
	}
	if err := writeFileAtomic(r.MetadataPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write sync metadata: %w", err)
	}
	return nil
}

// parseLegacyMetadata reads the old single-line "<unix> <sha>" record.
func parseLegacyMetadata(data []byte) (metadataRecord, bool) {
	text := strings.TrimSpace(string(data))
	if text == "" || strings.ContainsAny(text, ":\n") {
		return metadataRecord{}, false
	}
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return metadataRecord{}, false
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return metadataRecord{}, false
	}
	return metadataRecord{LastSync: ts, LastVersion: fields[1]}, true
}

func truncateVersion(v string) string {
	if len(v) > maxVersionLen {
		return v[:maxVersionLen]
	}
	return v
}
