package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// Trust mapping kinds as stored.
const (
	kindPersonal = "personal"
	kindPublic   = "public"
)

// SQLiteStore persists the current trust snapshot and the single uplink
// credential using GORM over SQLite. Configuration only: attack history is
// never written here.
type SQLiteStore struct {
	db *gorm.DB
}

var (
	_ ports.TrustRepository = (*SQLiteStore)(nil)
	_ ports.CredentialStore = (*SQLiteStore)(nil)
)

// TrustEntryModel is one allowed identifier for one SSID. Personal rows hold
// full addresses, public rows hold 3-octet prefixes, both already normalized
// by the trust store.
type TrustEntryModel struct {
	ID         uint   `gorm:"primaryKey"`
	Kind       string `gorm:"index:idx_trust_kind_ssid"`
	SSID       string `gorm:"index:idx_trust_kind_ssid"`
	Identifier string
}

// CredentialModel is the single credential row fed by the intake API.
type CredentialModel struct {
	ID       uint `gorm:"primaryKey"`
	SSID     string
	Password string
}

// NewSQLiteStore opens (or creates) the database and migrates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install gorm tracing: %w", err)
	}
	if err := db.AutoMigrate(&TrustEntryModel{}, &CredentialModel{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SaveSnapshot replaces the stored trust configuration wholesale, in one
// transaction, mirroring the in-memory swap semantics.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap domain.TrustSnapshot) error {
	rows := make([]TrustEntryModel, 0, 16)
	for ssid, addrs := range snap.Personal {
		for _, a := range addrs {
			rows = append(rows, TrustEntryModel{Kind: kindPersonal, SSID: ssid, Identifier: a})
		}
	}
	for ssid, prefixes := range snap.Public {
		for _, p := range prefixes {
			rows = append(rows, TrustEntryModel{Kind: kindPublic, SSID: ssid, Identifier: p})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&TrustEntryModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("save trust snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reconstructs the stored snapshot; empty (not nil) maps when
// nothing has been stored yet.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (domain.TrustSnapshot, error) {
	var rows []TrustEntryModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return domain.TrustSnapshot{}, fmt.Errorf("load trust snapshot: %w", err)
	}

	snap := domain.TrustSnapshot{
		Personal: map[string][]string{},
		Public:   map[string][]string{},
	}
	for _, row := range rows {
		switch row.Kind {
		case kindPersonal:
			snap.Personal[row.SSID] = append(snap.Personal[row.SSID], row.Identifier)
		case kindPublic:
			snap.Public[row.SSID] = append(snap.Public[row.SSID], row.Identifier)
		}
	}
	return snap, nil
}

// Save upserts the single credential row.
func (s *SQLiteStore) Save(ctx context.Context, cred domain.Credential) error {
	row := CredentialModel{ID: 1, SSID: cred.SSID, Password: cred.Password}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"ss_id", "password"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Load returns the stored credential; a zero Credential and nil error when
// none has been saved.
func (s *SQLiteStore) Load(ctx context.Context) (domain.Credential, error) {
	var row CredentialModel
	err := s.db.WithContext(ctx).First(&row, 1).Error
	if err == gorm.ErrRecordNotFound {
		return domain.Credential{}, nil
	}
	if err != nil {
		return domain.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	return domain.Credential{SSID: row.SSID, Password: row.Password}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
