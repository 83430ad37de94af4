package seeds

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	kosan "kosan_backend/internals/seeds/kosan"
)

const DefaultDataFile = "internals/seeds/kosan/data_kosan.json"

func RunAllSeeds(ctx context.Context, db *gorm.DB, log *zap.Logger, dataFile string) error {
	if dataFile == "" {
		dataFile = DefaultDataFile
	}

	//* Admin, kamar, penyewa, penempatan, keluhan
	return kosan.SeedKosanFromJSON(ctx, db, log, dataFile)
}
