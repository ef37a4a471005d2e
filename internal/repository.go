package internal

import (
	"context"
	"database/sql"
	_ "embed"
	"log"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/rm-hull/l8tefuel-api/internal/models"
	"github.com/rm-hull/l8tefuel-api/internal/stats"
)

//go:embed sql/insert_user.sql
var insertUserSQL string

//go:embed sql/select_user.sql
var selectUserSQL string

//go:embed sql/select_settings.sql
var selectSettingsSQL string

//go:embed sql/update_settings.sql
var updateSettingsSQL string

//go:embed sql/select_favorites.sql
var selectFavoritesSQL string

//go:embed sql/insert_favorite.sql
var insertFavoriteSQL string

//go:embed sql/select_fuel_logs.sql
var selectFuelLogsSQL string

//go:embed sql/select_last_odometer_log.sql
var selectLastOdometerLogSQL string

//go:embed sql/insert_fuel_log.sql
var insertFuelLogSQL string

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already registered")
)

type Repository interface {
	CreateUser(ctx context.Context, username, hashedPassword string, isAdmin bool) (*models.User, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, username, hashedPassword string) error

	GetSettings(ctx context.Context, userId int64) (*models.UserSettings, error)
	UpdateSettings(ctx context.Context, userId int64, update models.SettingsUpdate) error

	ListFavorites(ctx context.Context, userId int64) ([]models.FavoriteLocation, error)
	GetFavorite(ctx context.Context, userId, id int64) (*models.FavoriteLocation, error)
	CreateFavorite(ctx context.Context, favorite models.FavoriteLocation) (*models.FavoriteLocation, error)
	DeleteFavorite(ctx context.Context, userId, id int64) error

	ListFuelLogs(ctx context.Context, userId int64) ([]models.FuelLog, error)
	CreateFuelLog(ctx context.Context, entry models.FuelLog) (*models.FuelLog, error)
	DeleteFuelLog(ctx context.Context, userId, id int64) error

	Check() checks.Check
	Close() error
}

type sqliteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) Repository {
	return &sqliteRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (repo *sqliteRepository) Check() checks.Check {
	return checks.SqlCheck{Sql: repo.db}
}

func (repo *sqliteRepository) Close() error {
	return repo.db.Close()
}

// withTx runs fn in a transaction, rolling back on error or panic.
func (repo *sqliteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("error rolling back transaction: %v", rbErr)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// CreateUser inserts the user together with default settings.
func (repo *sqliteRepository) CreateUser(ctx context.Context, username, hashedPassword string, isAdmin bool) (*models.User, error) {
	user := &models.User{
		Username:       username,
		HashedPassword: hashedPassword,
		IsAdmin:        isAdmin,
		CreatedAt:      repo.now(),
	}

	err := repo.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, insertUserSQL, user.Username, user.HashedPassword, user.IsAdmin, user.CreatedAt)
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		if err != nil {
			return errors.Wrap(err, "failed to insert user")
		}
		if user.Id, err = res.LastInsertId(); err != nil {
			return errors.Wrap(err, "failed to read user id")
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO user_settings (user_id) VALUES (?)", user.Id); err != nil {
			return errors.Wrap(err, "failed to insert default settings")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (repo *sqliteRepository) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := repo.db.QueryRowContext(ctx, selectUserSQL, username).Scan(
		&user.Id, &user.Username, &user.HashedPassword, &user.IsAdmin, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch user %q", username)
	}
	return &user, nil
}

func (repo *sqliteRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := repo.db.QueryContext(ctx, "SELECT id, username, is_admin, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.Id, &user.Username, &user.IsAdmin, &user.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}
	return users, errors.Wrap(rows.Err(), "error iterating over users")
}

func (repo *sqliteRepository) UpdatePassword(ctx context.Context, username, hashedPassword string) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE users SET hashed_password = ? WHERE username = ?", hashedPassword, username)
	if err != nil {
		return errors.Wrap(err, "failed to update password")
	}
	return expectAffected(res)
}

func (repo *sqliteRepository) GetSettings(ctx context.Context, userId int64) (*models.UserSettings, error) {
	var settings models.UserSettings
	err := repo.db.QueryRowContext(ctx, selectSettingsSQL, userId).Scan(
		&settings.UserId, &settings.Latitude, &settings.Longitude, &settings.Radius,
		&settings.TargetPrice, &settings.IsActive, &settings.ShowHeatmap,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch settings")
	}
	return &settings, nil
}

func (repo *sqliteRepository) UpdateSettings(ctx context.Context, userId int64, update models.SettingsUpdate) error {
	res, err := repo.db.ExecContext(ctx, updateSettingsSQL,
		update.Latitude, update.Longitude, update.Radius, update.TargetPrice,
		update.IsActive, update.ShowHeatmap, userId,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update settings")
	}
	return expectAffected(res)
}

func (repo *sqliteRepository) ListFavorites(ctx context.Context, userId int64) ([]models.FavoriteLocation, error) {
	rows, err := repo.db.QueryContext(ctx, selectFavoritesSQL, userId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list favorite locations")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	favorites := []models.FavoriteLocation{}
	for rows.Next() {
		var fav models.FavoriteLocation
		if err := rows.Scan(
			&fav.Id, &fav.UserId, &fav.Name, &fav.City, &fav.Latitude, &fav.Longitude, &fav.IsHome, &fav.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan favorite location")
		}
		favorites = append(favorites, fav)
	}
	return favorites, errors.Wrap(rows.Err(), "error iterating over favorite locations")
}

func (repo *sqliteRepository) GetFavorite(ctx context.Context, userId, id int64) (*models.FavoriteLocation, error) {
	var fav models.FavoriteLocation
	err := repo.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, city, latitude, longitude, is_home, created_at FROM favorite_locations WHERE id = ? AND user_id = ?",
		id, userId,
	).Scan(&fav.Id, &fav.UserId, &fav.Name, &fav.City, &fav.Latitude, &fav.Longitude, &fav.IsHome, &fav.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch favorite location")
	}
	return &fav, nil
}

// CreateFavorite inserts a favorite location. A new home location clears the
// home flag on every other location of the user in the same transaction.
func (repo *sqliteRepository) CreateFavorite(ctx context.Context, fav models.FavoriteLocation) (*models.FavoriteLocation, error) {
	fav.CreatedAt = repo.now()

	err := repo.withTx(ctx, func(tx *sql.Tx) error {
		if fav.IsHome {
			if _, err := tx.ExecContext(ctx, "UPDATE favorite_locations SET is_home = 0 WHERE user_id = ?", fav.UserId); err != nil {
				return errors.Wrap(err, "failed to clear previous home location")
			}
		}

		res, err := tx.ExecContext(ctx, insertFavoriteSQL,
			fav.UserId, fav.Name, fav.City, fav.Latitude, fav.Longitude, fav.IsHome, fav.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to insert favorite location")
		}
		fav.Id, err = res.LastInsertId()
		return errors.Wrap(err, "failed to read favorite location id")
	})
	if err != nil {
		return nil, err
	}

	return &fav, nil
}

func (repo *sqliteRepository) DeleteFavorite(ctx context.Context, userId, id int64) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM favorite_locations WHERE id = ? AND user_id = ?", id, userId)
	if err != nil {
		return errors.Wrap(err, "failed to delete favorite location")
	}
	return expectAffected(res)
}

func (repo *sqliteRepository) ListFuelLogs(ctx context.Context, userId int64) ([]models.FuelLog, error) {
	rows, err := repo.db.QueryContext(ctx, selectFuelLogsSQL, userId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list fuel logs")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	logs := []models.FuelLog{}
	for rows.Next() {
		entry, err := scanFuelLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *entry)
	}
	return logs, errors.Wrap(rows.Err(), "error iterating over fuel logs")
}

// CreateFuelLog stores a fill-up. Total price, distance and consumption are
// derived here from the entry and the latest prior odometer reading, inside
// the same transaction as the insert.
func (repo *sqliteRepository) CreateFuelLog(ctx context.Context, entry models.FuelLog) (*models.FuelLog, error) {
	entry.CreatedAt = repo.now()
	entry.TotalPrice = entry.Liters * entry.PricePerLiter

	err := repo.withTx(ctx, func(tx *sql.Tx) error {
		var prior *models.FuelLog
		if entry.Odometer != nil {
			var err error
			prior, err = scanFuelLog(tx.QueryRowContext(ctx, selectLastOdometerLogSQL, entry.UserId))
			if errors.Is(err, sql.ErrNoRows) {
				prior = nil
			} else if err != nil {
				return errors.Wrap(err, "failed to fetch previous odometer reading")
			}
		}
		entry.KmDriven, entry.Consumption = stats.Consumption(entry.Liters, entry.Odometer, prior)

		res, err := tx.ExecContext(ctx, insertFuelLogSQL,
			entry.UserId, entry.StationName, entry.City, entry.Liters, entry.PricePerLiter, entry.TotalPrice,
			string(entry.FuelType), entry.Odometer, entry.KmDriven, entry.Consumption, entry.CreatedAt, entry.Notes,
		)
		if err != nil {
			return errors.Wrap(err, "failed to insert fuel log")
		}
		entry.Id, err = res.LastInsertId()
		return errors.Wrap(err, "failed to read fuel log id")
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func (repo *sqliteRepository) DeleteFuelLog(ctx context.Context, userId, id int64) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM fuel_logs WHERE id = ? AND user_id = ?", id, userId)
	if err != nil {
		return errors.Wrap(err, "failed to delete fuel log")
	}
	return expectAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFuelLog(row scanner) (*models.FuelLog, error) {
	var entry models.FuelLog
	var fuelType string
	err := row.Scan(
		&entry.Id, &entry.UserId, &entry.StationName, &entry.City, &entry.Liters, &entry.PricePerLiter,
		&entry.TotalPrice, &fuelType, &entry.Odometer, &entry.KmDriven, &entry.Consumption,
		&entry.CreatedAt, &entry.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to scan fuel log")
	}
	entry.FuelType = models.FuelType(fuelType)
	return &entry, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
