package data

import (
	"context"
	"fmt"

	"divination-bot/internal/conf"
	"divination-bot/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"github.com/google/wire"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewDB,
	NewRedis,
	NewRedsync,
	NewData,
	NewUserRepo,
	NewBalanceRepo,
	NewReadingRepo,
	NewPaymentRepo,
	NewConversionRepo,
	NewPendingQuestionRepo,
	NewSessionRepo,
	NewGatewayClient,
	NewInterpreter,
	NewAnalyticsPinger,
)

// Data is the data layer holder.
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
}

// suffixNamer appends a configured suffix to every table name, so test and
// production data can share one database.
type suffixNamer struct {
	schema.NamingStrategy
	suffix string
}

func (n suffixNamer) TableName(table string) string {
	return n.NamingStrategy.TableName(table) + n.suffix
}

// NewDB opens the Postgres connection with a bounded pool.
func NewDB(c *conf.Bootstrap) (*gorm.DB, error) {
	if c.Data == nil || c.Data.Database == nil {
		return nil, fmt.Errorf("database config is nil")
	}
	dbc := c.Data.Database
	db, err := gorm.Open(postgres.Open(dbc.Source), &gorm.Config{
		NamingStrategy: suffixNamer{suffix: dbc.TableSuffix},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := dbc.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := dbc.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 2
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)

	if dbc.AutoMigrate {
		if err := db.AutoMigrate(
			&model.User{},
			&model.UserBalance{},
			&model.Divination{},
			&model.Payment{},
			&model.Conversion{},
			&model.PendingQuestion{},
		); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// NewRedis opens the Redis connection used for sessions and locks.
func NewRedis(c *conf.Bootstrap) (*redis.Client, error) {
	if c.Data == nil || c.Data.Redis == nil {
		return nil, fmt.Errorf("redis config is nil")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Data.Redis.Addr,
		Password:     c.Data.Redis.Password,
		DB:           c.Data.Redis.DB,
		ReadTimeout:  c.Data.Redis.ReadTimeout.AsDuration(),
		WriteTimeout: c.Data.Redis.WriteTimeout.AsDuration(),
	})
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// NewRedsync creates the distributed lock factory over the Redis connection.
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(rdb))
}

// NewData creates the data layer instance and its cleanup func.
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client) (*Data, func(), error) {
	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		if err := rdb.Close(); err != nil {
			log.NewHelper(logger).Errorf("failed to close redis: %v", err)
		}
	}

	return &Data{
		db:  db,
		rdb: rdb,
	}, cleanup, nil
}

// Ping checks that the datastore pool is reachable (health endpoint).
func (d *Data) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
