package database

import "propfinder/server/internal/models"

func (d *Database) RunMigrations() error {
	records := []interface{}{
		&models.HyderabadRecord{},
		&models.GoaRecord{},
		&models.DubaiRecord{},
	}
	for _, r := range records {
		if err := d.db.AutoMigrate(r); err != nil {
			return err
		}
	}

	// Older deployments created the table before the share index existed
	if !d.db.Migrator().HasIndex(&models.HyderabadRecord{}, "idx_hyderabad_shares") {
		if err := d.db.Migrator().CreateIndex(&models.HyderabadRecord{}, "idx_hyderabad_shares"); err != nil {
			return err
		}
	}
	return nil
}
