package cmd

import (
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with reference data and sample users",
	Long:  `Seed dropdown reference tables, permissions and sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := sqlx.Connect("pgx", cfg.Database.Source)
		if err != nil {
			log.Fatalf("failed to connect db: %v", err)
		}
		defer db.Close()

		if clearData {
			clearSeedData(db)
		}

		seedReferenceData(db)
		seedPermissions(db)
		seedUsers(db)
	},
}

func clearSeedData(db *sqlx.DB) {
	tables := []string{
		"user_permissions", "permissions", "users",
		"resource_skills", "resource_projects", "resources",
		"designations", "locations", "skills", "projects", "roles",
	}
	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedReferenceData(db *sqlx.DB) {
	reference := map[string][]string{
		"designations": {"Software Engineer", "Senior Software Engineer", "Tech Lead", "Project Manager", "QA Engineer", "Business Analyst"},
		"locations":    {"Bangalore", "Chennai", "Hyderabad", "Pune", "Remote"},
		"skills":       {"Go", "Java", ".NET", "Angular", "React", "SQL Server", "PostgreSQL", "DevOps"},
		"projects":     {"Phoenix", "Atlas", "Orion", "Internal Tools", "Bench"},
		"roles":        {"Admin", "Manager", "Viewer"},
	}

	for table, names := range reference {
		for _, name := range names {
			var id int64
			if err := db.Get(&id, "SELECT id FROM "+table+" WHERE name = $1", name); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO "+table+" (name) VALUES ($1)", name); err != nil {
				log.Fatalf("failed to seed %s %q: %v", table, name, err)
			}
		}
		fmt.Printf("Seeded %s\n", table)
	}
}

func seedPermissions(db *sqlx.DB) {
	permissions := []struct {
		Name string
		Desc string
	}{
		{"admin", "full administrator"},
		{"view_resources", "Can view the resource grid"},
		{"manage_resources", "Can create, edit and delete resources"},
		{"bulk_import_resources", "Can bulk create and bulk edit resources"},
	}

	for _, p := range permissions {
		var pid int64
		if err := db.Get(&pid, "SELECT id FROM permissions WHERE name = $1", p.Name); err == nil {
			continue
		}
		if _, err := db.Exec("INSERT INTO permissions (name, description, created_at) VALUES ($1, $2, now())", p.Name, p.Desc); err != nil {
			log.Fatalf("failed to seed permission %q: %v", p.Name, err)
		}
	}
	fmt.Println("Seeded permissions")
}

func seedUsers(db *sqlx.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

	users := []struct {
		Email       string
		Name        string
		Permissions []string
	}{
		{"admin@mail.com", "Directory Admin", []string{"admin"}},
		{"viewer@mail.com", "Directory Viewer", []string{"view_resources"}},
	}

	for _, u := range users {
		var uid int64
		err := db.Get(&uid, "SELECT id FROM users WHERE email = $1", u.Email)
		if err != nil {
			if err := db.Get(&uid,
				"INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, $3, true, now(), now()) RETURNING id",
				u.Email, u.Name, string(hash)); err != nil {
				log.Fatalf("failed to seed user %q: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		} else {
			fmt.Println("user already exists; will ensure permissions:", u.Email)
		}

		for _, perm := range u.Permissions {
			var pid int64
			if err := db.Get(&pid, "SELECT id FROM permissions WHERE name = $1", perm); err != nil {
				log.Fatalf("missing permission %q: %v", perm, err)
			}

			var existing int
			if err := db.Get(&existing, "SELECT 1 FROM user_permissions WHERE user_id = $1 AND permission_id = $2", uid, pid); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO user_permissions (user_id, permission_id, created_at) VALUES ($1, $2, now())", uid, pid); err != nil {
				log.Fatalf("failed to grant %q to %q: %v", perm, u.Email, err)
			}
		}
	}
}
