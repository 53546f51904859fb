package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"go-myshop-agent/internal/models"
)

// record is the physical shape shared by every collection table. The
// business fields live in Payload so rows written by older mappers keep
// whatever keys they had. Ids are unique per owner only.
type record struct {
	OwnerID   string `gorm:"primaryKey;size:64"`
	ID        string `gorm:"primaryKey;size:64"`
	SortDate  string `gorm:"index;size:32"`
	Payload   string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

type profileRecord struct {
	ID        string `gorm:"primaryKey;size:64"` // owner id
	Payload   string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

func (profileRecord) TableName() string { return "profiles" }

// GormStore is the SQL-backed Gateway and UserRepository.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open connection and migrates every table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	for _, c := range Collections {
		if err := db.Table(string(c)).AutoMigrate(&record{}); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", c, err)
		}
	}
	if err := db.AutoMigrate(&profileRecord{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("migrate profiles/users: %w", err)
	}
	return &GormStore{db: db}, nil
}

// OpenGorm connects with the given driver ("mysql" or "sqlite"), waiting for
// the database the way a container start-up needs to.
func OpenGorm(driver, dsn string, log *logrus.Logger) (*GormStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		if dsn == "" {
			return nil, errors.New("DB_DSN is required for mysql")
		}
		dialector = mysql.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "myshop.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < 5; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.WithField("attempt", i+1).Warn("failed to connect to database, retrying in 2 seconds")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s after 5 attempts: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite only supports one writer at a time
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s, err := NewGormStore(db)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", driver).Info("database schema synced")
	return s, nil
}

func (s *GormStore) table(ctx context.Context, c Collection) *gorm.DB {
	return s.db.WithContext(ctx).Table(string(c))
}

func (s *GormStore) Select(ctx context.Context, c Collection, ownerID string) ([]Row, error) {
	if !c.Valid() {
		return nil, ErrUnknownCollection
	}
	q := s.table(ctx, c).Where("owner_id = ?", ownerID)
	if c.OrderedByDate() {
		q = q.Order("sort_date desc")
	}

	var recs []record
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("select %s: %w", c, err)
	}

	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, decodePayload(rec.ID, rec.OwnerID, rec.Payload))
	}
	return rows, nil
}

func (s *GormStore) Upsert(ctx context.Context, c Collection, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	recs, err := toRecords(c, rows)
	if err != nil {
		return err
	}
	err = s.table(ctx, c).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"sort_date", "payload", "updated_at"}),
	}).Create(&recs).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", c, err)
	}
	return nil
}

func (s *GormStore) Insert(ctx context.Context, c Collection, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	recs, err := toRecords(c, rows)
	if err != nil {
		return err
	}
	if err := s.table(ctx, c).Create(&recs).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("insert %s: %w", c, ErrDuplicateID)
		}
		return fmt.Errorf("insert %s: %w", c, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, c Collection, ownerID string, ids []string) error {
	if !c.Valid() {
		return ErrUnknownCollection
	}
	if len(ids) == 0 {
		return nil
	}
	err := s.table(ctx, c).Where("id IN ? AND owner_id = ?", ids, ownerID).Delete(&record{}).Error
	if err != nil {
		return fmt.Errorf("delete %s: %w", c, err)
	}
	return nil
}

func (s *GormStore) DeleteAll(ctx context.Context, c Collection, ownerID string) error {
	if !c.Valid() {
		return ErrUnknownCollection
	}
	if err := s.table(ctx, c).Where("owner_id = ?", ownerID).Delete(&record{}).Error; err != nil {
		return fmt.Errorf("delete all %s: %w", c, err)
	}
	return nil
}

func (s *GormStore) SelectProfile(ctx context.Context, ownerID string) (Row, error) {
	var rec profileRecord
	err := s.db.WithContext(ctx).Where("id = ?", ownerID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	row := decodePayload(rec.ID, "", rec.Payload)
	delete(row, ColumnOwnerID)
	return row, nil
}

func (s *GormStore) UpsertProfile(ctx context.Context, ownerID string, row Row) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	rec := profileRecord{ID: ownerID, Payload: string(payload), UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecords(c Collection, rows []Row) ([]record, error) {
	if err := checkRows(c, rows); err != nil {
		return nil, err
	}
	now := time.Now()
	recs := make([]record, 0, len(rows))
	for _, r := range rows {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode row %s: %w", r.ID(), err)
		}
		recs = append(recs, record{
			ID:        r.ID(),
			OwnerID:   r.OwnerID(),
			SortDate:  r.date(),
			Payload:   string(payload),
			UpdatedAt: now,
		})
	}
	return recs, nil
}

// decodePayload never fails: a payload that is not a JSON object still
// yields a row carrying its id so the mapper can default the rest.
func decodePayload(id, ownerID, payload string) Row {
	row := Row{}
	if err := json.Unmarshal([]byte(payload), &row); err != nil || row == nil {
		row = Row{}
	}
	row[ColumnID] = id
	if ownerID != "" {
		row[ColumnOwnerID] = ownerID
	}
	return row
}
