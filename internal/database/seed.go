package database

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// SeedUsers creates the initial admin account when the users table is empty
func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding admin user...")

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = db.NamedExec(`
		INSERT INTO users (username, email, full_name, hashed_password, role)
		VALUES (:username, :email, :full_name, :hashed_password, :role)
	`, map[string]interface{}{
		"username":        "admin",
		"email":           "admin@waterlog.local",
		"full_name":       "Administrador",
		"hashed_password": string(adminPassword),
		"role":            "ADMIN",
	})
	if err != nil {
		return err
	}

	log.Println("✓ Successfully seeded admin user")
	log.Println("  👤 Admin: admin / admin123")
	return nil
}

// SeedDemoData adds drivers, trucks and clients for local testing.
// Each table is only filled when it has no rows of its own.
func SeedDemoData(db *sqlx.DB) error {
	var drivers int
	if err := db.Get(&drivers, "SELECT COUNT(*) FROM users WHERE role = 'CHOFER'"); err != nil {
		return err
	}
	if drivers == 0 {
		log.Println("🌱 Seeding demo drivers...")
		password, err := bcrypt.GenerateFromPassword([]byte(DefaultDriverPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		for _, d := range []struct{ username, name string }{
			{"jperez", "Juan Pérez"},
			{"mlopez", "María López"},
			{"cgarcia", "Carlos García"},
		} {
			_, err := db.Exec(`
				INSERT INTO users (username, email, full_name, hashed_password, role)
				VALUES ($1, $2, $3, $4, 'CHOFER')
			`, d.username, d.username+"@waterlog.local", d.name, string(password))
			if err != nil {
				return err
			}
			log.Printf("  ✓ Created driver: %s (%s)", d.name, d.username)
		}
	}

	var trucks int
	if err := db.Get(&trucks, "SELECT COUNT(*) FROM trucks"); err != nil {
		return err
	}
	if trucks == 0 {
		log.Println("🌱 Seeding demo trucks...")
		for _, t := range []struct {
			plate, nickname, brand, model string
			year                          int
		}{
			{"ABC-123-A", "La Blanca", "Nissan", "NP300", 2020},
			{"XYZ-987-B", "La Roja", "Ford", "Ranger", 2019},
			{"JKL-456-C", "La Azul", "Chevrolet", "S10", 2022},
		} {
			_, err := db.Exec(`
				INSERT INTO trucks (plate, nickname, brand, model, year)
				VALUES ($1, $2, $3, $4, $5)
			`, t.plate, t.nickname, t.brand, t.model, t.year)
			if err != nil {
				return err
			}
			log.Printf("  ✓ Created truck: %s (%s)", t.nickname, t.plate)
		}
	}

	var clients int
	if err := db.Get(&clients, "SELECT COUNT(*) FROM clients"); err != nil {
		return err
	}
	if clients == 0 {
		log.Println("🌱 Seeding demo clients...")
		_, err := db.Exec(`
			INSERT INTO clients (name, address, special_price) VALUES
				('Tienda Don Pepe', 'Av. Juárez 120', NULL),
				('Gimnasio Titán', 'Calle 5 de Mayo 44', 45.00),
				('Escuela Primaria Benito Juárez', 'Blvd. Hidalgo 300', 50.00),
				('Consultorio Dra. Ruiz', NULL, NULL)
		`)
		if err != nil {
			return err
		}
		log.Println("  ✓ Created 4 demo clients")
	}

	return nil
}
