package post

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate applies the post and category schema using Gorm's AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "post.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying post schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Post{}, &Category{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("post schema migration failed")
		}
		return eris.Wrap(err, "auto migrating post schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("post schema migration complete")
	}

	return nil
}
