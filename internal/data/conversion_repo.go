package data

import (
	"context"
	"encoding/json"

	"divination-bot/internal/biz"
	"divination-bot/internal/data/model"

	"github.com/go-kratos/kratos/v2/log"
)

// conversionRepo funnel event data access
type conversionRepo struct {
	data *Data
	log  *log.Helper
}

// NewConversionRepo creates the conversion repo.
func NewConversionRepo(data *Data, logger log.Logger) biz.ConversionRepo {
	return &conversionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// SaveConversion appends a funnel event row.
func (r *conversionRepo) SaveConversion(ctx context.Context, c *biz.Conversion) error {
	metadata := ""
	if len(c.Metadata) > 0 {
		b, err := json.Marshal(c.Metadata)
		if err == nil {
			metadata = string(b)
		}
	}
	m := model.Conversion{
		UserID:          c.UserID,
		ClientID:        c.ClientID,
		ConversionType:  c.Type,
		ConversionValue: c.Value,
		Currency:        c.Currency,
		PackageID:       c.PackageID,
		DivinationType:  c.DivinationType,
		Metadata:        metadata,
	}
	return r.data.db.WithContext(ctx).Create(&m).Error
}
