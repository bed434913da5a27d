// Package txrunner lets the service layer group writes to more than one
// aggregate's repository into a single database transaction, without the
// service layer importing gorm directly.
package txrunner

import (
	"context"

	"github.com/oggyb/sms-gateway/internal/db"
	"gorm.io/gorm"
)

// Run executes fn inside a single transaction against the adapter's
// underlying *gorm.DB. fn receives the live *gorm.DB handle so it can call
// the TxRunner helpers exposed by each repository package (InsertTx,
// DebitTx, ...).
func Run(ctx context.Context, d db.DB, fn func(tx *gorm.DB) error) error {
	conn := d.Conn().(*gorm.DB)
	return conn.WithContext(ctx).Transaction(fn)
}
